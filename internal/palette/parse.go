package palette

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ParseResponse extracts palettes out of raw model output. Models wrap the
// requested JSON in prose or code fences more often than not, so we slice
// out the first top-level JSON array (or an object carrying a "palettes"
// key) and tolerate missing fields per entry. Returns an empty slice when
// nothing parseable is found.
func ParseResponse(text string) []Palette {
	if arr := sliceJSON(text, '[', ']'); arr != "" {
		if parsed := gjson.Parse(arr); parsed.IsArray() {
			if ps := palettesFrom(parsed); len(ps) > 0 {
				return ps
			}
		}
	}

	if obj := sliceJSON(text, '{', '}'); obj != "" {
		if inner := gjson.Get(obj, "palettes"); inner.IsArray() {
			if ps := palettesFrom(inner); len(ps) > 0 {
				return ps
			}
		}
	}

	return nil
}

// sliceJSON returns the widest substring spanning the first open delimiter
// to the last close delimiter, mirroring the original greedy extraction.
func sliceJSON(text string, opener, closer byte) string {
	start := strings.IndexByte(text, opener)
	end := strings.LastIndexByte(text, closer)
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func palettesFrom(arr gjson.Result) []Palette {
	var out []Palette
	arr.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		var colors []Color
		item.Get("colors").ForEach(func(_, c gjson.Result) bool {
			colors = append(colors, Color{
				Hex:   stringOr(c.Get("hex"), "#000000"),
				Name:  stringOr(c.Get("name"), "Unknown"),
				Usage: stringOr(c.Get("usage"), "General"),
			})
			return true
		})
		out = append(out, New(
			stringOr(item.Get("name"), "Palette"),
			item.Get("description").String(),
			item.Get("psychology").String(),
			colors,
		))
		return true
	})
	return out
}

func stringOr(r gjson.Result, def string) string {
	if s := r.String(); s != "" {
		return s
	}
	return def
}
