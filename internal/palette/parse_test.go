package palette

import (
	"testing"
)

func TestParseResponse_BareArray(t *testing.T) {
	raw := `[
  {
    "name": "Ocean Calm",
    "description": "Cool coastal tones",
    "psychology": "Blue promotes trust",
    "colors": [
      {"hex": "#1890FF", "name": "Ocean Blue", "usage": "Primary"},
      {"hex": "#E6F7FF", "name": "Sky White", "usage": "Background"}
    ]
  }
]`
	ps := ParseResponse(raw)
	if len(ps) != 1 {
		t.Fatalf("expected 1 palette, got %d", len(ps))
	}
	p := ps[0]
	if p.ID == "" {
		t.Error("expected palette ID to be minted")
	}
	if p.Name != "Ocean Calm" {
		t.Errorf("expected name 'Ocean Calm', got %q", p.Name)
	}
	if len(p.Colors) != 2 {
		t.Fatalf("expected 2 colors, got %d", len(p.Colors))
	}
	if p.Colors[0].Hex != "#1890FF" || p.Colors[0].Usage != "Primary" {
		t.Errorf("unexpected first color: %+v", p.Colors[0])
	}
}

func TestParseResponse_ArrayWrappedInProse(t *testing.T) {
	raw := "Sure! Here are your palettes:\n```json\n" +
		`[{"name":"A","description":"d","psychology":"p","colors":[{"hex":"#112233","name":"N","usage":"Accent"}]}]` +
		"\n```\nLet me know if you want more."
	ps := ParseResponse(raw)
	if len(ps) != 1 {
		t.Fatalf("expected 1 palette, got %d", len(ps))
	}
	if ps[0].Colors[0].Hex != "#112233" {
		t.Errorf("unexpected hex: %q", ps[0].Colors[0].Hex)
	}
}

func TestParseResponse_ObjectWithPalettesKey(t *testing.T) {
	raw := `The result is {"palettes":[{"name":"B","colors":[{"hex":"#445566","name":"M","usage":"Text"}]}]} as requested.`
	ps := ParseResponse(raw)
	if len(ps) != 1 {
		t.Fatalf("expected 1 palette, got %d", len(ps))
	}
	if ps[0].Name != "B" {
		t.Errorf("expected name 'B', got %q", ps[0].Name)
	}
}

func TestParseResponse_MissingFieldsGetDefaults(t *testing.T) {
	raw := `[{"colors":[{}]}]`
	ps := ParseResponse(raw)
	if len(ps) != 1 {
		t.Fatalf("expected 1 palette, got %d", len(ps))
	}
	if ps[0].Name != "Palette" {
		t.Errorf("expected default name, got %q", ps[0].Name)
	}
	c := ps[0].Colors[0]
	if c.Hex != "#000000" || c.Name != "Unknown" || c.Usage != "General" {
		t.Errorf("expected default color fields, got %+v", c)
	}
}

func TestParseResponse_Garbage(t *testing.T) {
	for _, raw := range []string{"", "no json here", "[not valid", "{}"} {
		if ps := ParseResponse(raw); len(ps) != 0 {
			t.Errorf("ParseResponse(%q): expected no palettes, got %d", raw, len(ps))
		}
	}
}

func TestFallback_KnownCategory(t *testing.T) {
	ps := Fallback("Technology")
	if len(ps) != 1 {
		t.Fatalf("expected 1 palette for Technology, got %d", len(ps))
	}
	if ps[0].Name != "Digital Trust" {
		t.Errorf("expected 'Digital Trust', got %q", ps[0].Name)
	}
	if len(ps[0].Colors) != 5 {
		t.Errorf("expected 5 colors, got %d", len(ps[0].Colors))
	}
}

func TestFallback_UnknownCategoryGetsDefaults(t *testing.T) {
	ps := Fallback("Underwater Basket Weaving")
	if len(ps) != 5 {
		t.Fatalf("expected 5 default palettes, got %d", len(ps))
	}
}

func TestFallback_FreshIDsPerCall(t *testing.T) {
	a := Fallback("Technology")
	b := Fallback("Technology")
	if a[0].ID == b[0].ID {
		t.Error("expected distinct IDs across fallback servings")
	}
}

func TestBusinessProfile_Validate(t *testing.T) {
	full := BusinessProfile{
		BusinessName:     "Acme",
		BusinessCategory: "Technology",
		TargetCountry:    "United States",
		AgeGroups:        []string{"26-35"},
		TargetGender:     "All",
	}
	if errs := full.Validate(); errs != nil {
		t.Errorf("expected no validation errors, got %v", errs)
	}

	var empty BusinessProfile
	errs := empty.Validate()
	for _, field := range []string{"business_name", "business_category", "target_country", "age_groups", "target_gender"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s to be reported missing", field)
		}
	}

	partial := full
	partial.AgeGroups = nil
	errs = partial.Validate()
	if len(errs) != 1 {
		t.Errorf("expected exactly one missing field, got %v", errs)
	}
	if _, ok := errs["age_groups"]; !ok {
		t.Error("expected age_groups to be reported missing")
	}
}
