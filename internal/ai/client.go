// Package ai wraps the generative model behind the two AI-invoking
// endpoints. The upstream is a single request/response collaborator: no
// retries, no streaming, one call per consumed quota slot.
package ai

import (
	"context"
	"errors"

	"github.com/chromabiz/palette-api/internal/palette"
)

// ErrUnconfigured is returned by wrappers whose underlying client is
// missing (no API key). Handlers treat it like any other upstream
// failure: fallback palettes or an apology.
var ErrUnconfigured = errors.New("ai upstream not configured")

// Client is the upstream collaborator. A nil Client means the upstream is
// unconfigured; handlers fall back to the static sets (generation) or an
// apology (chat).
type Client interface {
	// GeneratePalettes asks the model for palettes matching the profile.
	GeneratePalettes(ctx context.Context, profile palette.BusinessProfile) ([]palette.Palette, error)
	// Refine answers one chat turn in the context of the current palettes.
	Refine(ctx context.Context, message string, rc palette.ChatContext) (string, error)
}

// Apology is the canned chat answer when the upstream fails. Chat never
// surfaces a hard failure for upstream trouble; the revision was already
// charged, so the user gets a polite miss instead of a 500.
const Apology = "Sorry, I couldn't reach the color consultant right now. Please try your question again in a moment."
