package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/chromabiz/palette-api/internal/palette"
)

const (
	swatchSize    = 160
	labelBandH    = 28
	footerH       = 36
	paddingX      = 4
	unknownSwatch = 0x888888
)

// PNG renders the palette as one block per color labeled with its hex
// code, with the palette name beneath.
func PNG(p palette.Palette) ([]byte, error) {
	cols := len(p.Colors)
	if cols == 0 {
		return nil, fmt.Errorf("palette %q has no colors", p.Name)
	}

	width := cols * swatchSize
	height := swatchSize + labelBandH + footerH
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// White base so the label bands read cleanly.
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, c := range p.Colors {
		x0 := i * swatchSize
		block := image.Rect(x0, 0, x0+swatchSize, swatchSize)
		draw.Draw(img, block, image.NewUniform(parseHex(c.Hex)), image.Point{}, draw.Src)
		drawLabel(img, c.Hex, x0+paddingX, swatchSize+labelBandH-10, color.Black)
	}

	drawLabel(img, p.Name, paddingX, height-12, color.Black)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode palette png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawLabel(img draw.Image, text string, x, y int, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// parseHex decodes "#RRGGBB"; anything malformed falls back to a neutral
// gray rather than failing the whole export.
func parseHex(hex string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{R: unknownSwatch >> 16, G: (unknownSwatch >> 8) & 0xFF, B: unknownSwatch & 0xFF, A: 0xFF}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
