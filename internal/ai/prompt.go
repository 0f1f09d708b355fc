package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromabiz/palette-api/internal/palette"
)

// GenerationPrompt builds the palette-generation prompt. The model is
// instructed to answer with a bare JSON array; palette.ParseResponse
// tolerates the chatter it adds anyway.
func GenerationPrompt(p palette.BusinessProfile) string {
	ageGroups := strings.Join(p.AgeGroups, ", ")

	var extra strings.Builder
	if p.BrandValues != "" {
		fmt.Fprintf(&extra, "- Brand Values: %s\n", p.BrandValues)
	}
	if p.Competitors != "" {
		fmt.Fprintf(&extra, "- Competitors to differentiate from: %s\n", p.Competitors)
	}

	return fmt.Sprintf(`Generate 5 professional color palettes for a %s business in the %s industry.

Target Audience:
- Country: %s
- Age Groups: %s
- Gender: %s
%s
For each palette, provide exactly 5 colors. Consider:
1. Cultural color associations for %s
2. Age-appropriate appeal for %s
3. Gender preferences if applicable
4. Industry standards and competitor differentiation

Return ONLY a JSON array with this exact structure (no other text):
[
  {
    "name": "Palette Name",
    "description": "Brief description",
    "psychology": "Color psychology explanation",
    "colors": [
      {"hex": "#XXXXXX", "name": "Color Name", "usage": "Primary/Secondary/Accent/Background/Text"}
    ]
  }
]`,
		p.BusinessName, p.BusinessCategory,
		p.TargetCountry, ageGroups, p.TargetGender, extra.String(),
		p.TargetCountry, ageGroups)
}

// RefinementSystemPrompt builds the system instruction for the chat
// endpoint from the palettes and profile the user is refining.
func RefinementSystemPrompt(rc palette.ChatContext) string {
	businessName := "a business"
	category := "General"
	country := "Global"
	audience := ""
	if bi := rc.BusinessInfo; bi != nil {
		if bi.BusinessName != "" {
			businessName = bi.BusinessName
		}
		if bi.BusinessCategory != "" {
			category = bi.BusinessCategory
		}
		if bi.TargetCountry != "" {
			country = bi.TargetCountry
		}
		audience = strings.TrimSpace(strings.Join(bi.AgeGroups, ", ") + " " + bi.TargetGender)
	}

	palettesJSON, err := json.MarshalIndent(rc.Palettes, "", "  ")
	if err != nil {
		palettesJSON = []byte("[]")
	}

	return fmt.Sprintf(`You are a professional color consultant helping refine color palettes for %s.

Business Context:
- Type: %s
- Target Country: %s
- Target Audience: %s

Current Palettes:
%s

Provide helpful, concise advice about color choices, psychology, and brand alignment. When suggesting color changes, always include specific hex codes. Format color suggestions clearly.`,
		businessName, category, country, audience, palettesJSON)
}
