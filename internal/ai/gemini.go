package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/chromabiz/palette-api/internal/palette"
)

// Gemini talks to Google's generative API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates the upstream client. Callers check the API key before
// calling; an empty key should result in a nil Client, not a Gemini.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

var _ Client = (*Gemini)(nil)

func (g *Gemini) GeneratePalettes(ctx context.Context, profile palette.BusinessProfile) ([]palette.Palette, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := GenerationPrompt(profile)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("generate palettes: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	palettes := palette.ParseResponse(text)
	if len(palettes) == 0 {
		return nil, errors.New("no palettes in model output")
	}
	return palettes, nil
}

func (g *Gemini) Refine(ctx context.Context, message string, rc palette.ChatContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: RefinementSystemPrompt(rc)}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(message), cfg)
	if err != nil {
		return "", fmt.Errorf("refine chat: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty model response (check safety filters)")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
