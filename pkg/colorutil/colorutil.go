// Package colorutil provides shared color helpers for rendered string-art output.
package colorutil

import (
	"fmt"
	"image/color"
)

// Palette used by the vector layout.
var (
	Black     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Gray      = color.RGBA{R: 136, G: 136, B: 136, A: 255}
	LightGray = color.RGBA{R: 204, G: 204, B: 204, A: 255}
)

// Hex returns the #rrggbb form of c, ignoring alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opacity returns c's alpha as a fraction in [0,1].
func Opacity(c color.RGBA) float64 {
	return float64(c.A) / 255.0
}

// WithAlpha returns c with its alpha replaced by a (0-1, clamped).
func WithAlpha(c color.RGBA, a float64) color.RGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(a*255 + 0.5)
	return c
}
