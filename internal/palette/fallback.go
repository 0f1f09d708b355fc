package palette

// Fallback returns static palettes for when the upstream model is
// unreachable or unconfigured. Category-specific sets exist for a couple
// of common industries; everything else gets the five generic sets.
func Fallback(category string) []Palette {
	if ps, ok := fallbackByCategory[category]; ok {
		return instantiate(ps)
	}
	return instantiate(fallbackDefaults)
}

// fallback palettes are stored without IDs and stamped on the way out so
// repeated fallback servings never collide in the favorites set.
type fallbackPalette struct {
	name, description, psychology string
	colors                        []Color
}

func instantiate(src []fallbackPalette) []Palette {
	out := make([]Palette, 0, len(src))
	for _, f := range src {
		colors := make([]Color, len(f.colors))
		copy(colors, f.colors)
		out = append(out, New(f.name, f.description, f.psychology, colors))
	}
	return out
}

var fallbackByCategory = map[string][]fallbackPalette{
	"Food & Beverage": {
		{
			name:        "Warm Appetite",
			description: "Warm, inviting colors that stimulate appetite",
			psychology:  "Red and orange stimulate hunger, while earth tones create comfort",
			colors: []Color{
				{Hex: "#D4380D", Name: "Tomato Red", Usage: "Primary"},
				{Hex: "#FA8C16", Name: "Orange Zest", Usage: "Secondary"},
				{Hex: "#FADB14", Name: "Golden Yellow", Usage: "Accent"},
				{Hex: "#F5F0E6", Name: "Cream", Usage: "Background"},
				{Hex: "#3D3D3D", Name: "Espresso", Usage: "Text"},
			},
		},
	},
	"Technology": {
		{
			name:        "Digital Trust",
			description: "Modern, trustworthy tech palette",
			psychology:  "Blue conveys trust and reliability, common in tech branding",
			colors: []Color{
				{Hex: "#1890FF", Name: "Tech Blue", Usage: "Primary"},
				{Hex: "#13C2C2", Name: "Cyan", Usage: "Secondary"},
				{Hex: "#722ED1", Name: "Purple", Usage: "Accent"},
				{Hex: "#F0F5FF", Name: "Ice White", Usage: "Background"},
				{Hex: "#262626", Name: "Charcoal", Usage: "Text"},
			},
		},
	},
}

var fallbackDefaults = []fallbackPalette{
	{
		name:        "Professional Classic",
		description: "Timeless professional palette",
		psychology:  "Blue builds trust, neutral tones provide balance",
		colors: []Color{
			{Hex: "#2F54EB", Name: "Royal Blue", Usage: "Primary"},
			{Hex: "#597EF7", Name: "Light Blue", Usage: "Secondary"},
			{Hex: "#F5222D", Name: "Action Red", Usage: "Accent"},
			{Hex: "#FAFAFA", Name: "Off White", Usage: "Background"},
			{Hex: "#1F1F1F", Name: "Near Black", Usage: "Text"},
		},
	},
	{
		name:        "Modern Minimal",
		description: "Clean, contemporary design",
		psychology:  "Monochrome with accent creates sophisticated modern feel",
		colors: []Color{
			{Hex: "#000000", Name: "Pure Black", Usage: "Primary"},
			{Hex: "#595959", Name: "Gray", Usage: "Secondary"},
			{Hex: "#EB2F96", Name: "Magenta", Usage: "Accent"},
			{Hex: "#FFFFFF", Name: "White", Usage: "Background"},
			{Hex: "#262626", Name: "Dark Gray", Usage: "Text"},
		},
	},
	{
		name:        "Nature Inspired",
		description: "Organic, earthy tones",
		psychology:  "Green represents growth and harmony, connecting to nature",
		colors: []Color{
			{Hex: "#52C41A", Name: "Fresh Green", Usage: "Primary"},
			{Hex: "#389E0D", Name: "Forest", Usage: "Secondary"},
			{Hex: "#FAAD14", Name: "Sunflower", Usage: "Accent"},
			{Hex: "#F6FFED", Name: "Mint Cream", Usage: "Background"},
			{Hex: "#135200", Name: "Deep Green", Usage: "Text"},
		},
	},
	{
		name:        "Warm Sunset",
		description: "Energetic and inviting",
		psychology:  "Warm colors evoke energy, passion, and friendliness",
		colors: []Color{
			{Hex: "#FA541C", Name: "Sunset Orange", Usage: "Primary"},
			{Hex: "#FAAD14", Name: "Gold", Usage: "Secondary"},
			{Hex: "#F5222D", Name: "Coral Red", Usage: "Accent"},
			{Hex: "#FFF7E6", Name: "Warm White", Usage: "Background"},
			{Hex: "#AD2102", Name: "Deep Orange", Usage: "Text"},
		},
	},
	{
		name:        "Cool Ocean",
		description: "Calm and refreshing",
		psychology:  "Cool tones promote relaxation and trust",
		colors: []Color{
			{Hex: "#1890FF", Name: "Ocean Blue", Usage: "Primary"},
			{Hex: "#13C2C2", Name: "Teal", Usage: "Secondary"},
			{Hex: "#722ED1", Name: "Purple Accent", Usage: "Accent"},
			{Hex: "#E6F7FF", Name: "Sky White", Usage: "Background"},
			{Hex: "#003A8C", Name: "Deep Blue", Usage: "Text"},
		},
	},
}
