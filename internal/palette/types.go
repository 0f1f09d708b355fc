package palette

import (
	"time"

	"github.com/google/uuid"
)

// Color is a single swatch inside a palette.
type Color struct {
	Hex   string `json:"hex"`
	Name  string `json:"name"`
	Usage string `json:"usage"`
}

// Palette is an AI-generated (or fallback) color palette. Immutable once
// created; favorites reference it by ID.
type Palette struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Psychology  string  `json:"psychology"`
	Colors      []Color `json:"colors"`
}

// New returns a palette with a freshly minted ID.
func New(name, description, psychology string, colors []Color) Palette {
	return Palette{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Psychology:  psychology,
		Colors:      colors,
	}
}

// BusinessProfile is the submitted form. Required fields are checked by
// Validate; brand_values and competitors are optional context.
type BusinessProfile struct {
	BusinessName     string   `json:"business_name"`
	BusinessCategory string   `json:"business_category"`
	TargetCountry    string   `json:"target_country"`
	AgeGroups        []string `json:"age_groups"`
	TargetGender     string   `json:"target_gender"`
	BrandValues      string   `json:"brand_values,omitempty"`
	Competitors      string   `json:"competitors,omitempty"`
}

// Validate reports missing required fields keyed by their JSON name.
func (p BusinessProfile) Validate() map[string]string {
	missing := map[string]string{}
	if p.BusinessName == "" {
		missing["business_name"] = "required"
	}
	if p.BusinessCategory == "" {
		missing["business_category"] = "required"
	}
	if p.TargetCountry == "" {
		missing["target_country"] = "required"
	}
	if len(p.AgeGroups) == 0 {
		missing["age_groups"] = "required"
	}
	if p.TargetGender == "" {
		missing["target_gender"] = "required"
	}
	if len(missing) == 0 {
		return nil
	}
	return missing
}

// ChatMessage is one entry in the refinement transcript.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// GenerateResponse is the body returned by POST /api/generate-palettes.
type GenerateResponse struct {
	Palettes             []Palette `json:"palettes"`
	RemainingGenerations int       `json:"remaining_generations"`
}

// ChatContext carries the palettes and profile the user is refining.
type ChatContext struct {
	Palettes     []Palette        `json:"palettes"`
	BusinessInfo *BusinessProfile `json:"business_info"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string      `json:"message"`
	Context   ChatContext `json:"context"`
	SessionID string      `json:"session_id"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Response           string `json:"response"`
	RemainingRevisions int    `json:"remaining_revisions"`
}

// RateLimitStatus is the body returned by GET /api/rate-limit.
type RateLimitStatus struct {
	GenerationsRemaining int    `json:"generations_remaining"`
	RevisionsRemaining   int    `json:"revisions_remaining"`
	ResetTime            string `json:"reset_time"`
}
