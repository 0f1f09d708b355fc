// Package export renders a palette into the three takeaway formats: a
// CSS custom-property block, a pretty-printed JSON dump, and a swatch
// image. All pure functions over a palette; no network involved.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromabiz/palette-api/internal/palette"
)

// CSS renders the palette as a :root custom-property block keyed by
// sanitized usage names. Duplicate usages get a numeric suffix so no
// property is silently lost.
func CSS(p palette.Palette) string {
	var b strings.Builder
	fmt.Fprintf(&b, "/* %s */\n", p.Name)
	b.WriteString(":root {\n")

	seen := map[string]int{}
	for _, c := range p.Colors {
		name := sanitizeUsage(c.Usage)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		fmt.Fprintf(&b, "  --color-%s: %s; /* %s */\n", name, c.Hex, c.Name)
	}

	b.WriteString("}\n")
	return b.String()
}

// JSON renders the full palette record, pretty-printed.
func JSON(p palette.Palette) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export palette json: %w", err)
	}
	return string(data), nil
}

// sanitizeUsage turns a usage label into a CSS identifier fragment:
// lowercase, runs of non-alphanumerics collapsed to single hyphens.
func sanitizeUsage(usage string) string {
	if usage == "" {
		return "general"
	}
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(usage) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "general"
	}
	return out
}
