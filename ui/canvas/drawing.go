// Package canvas provides drawing primitives for the thread canvas.
package canvas

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"stria/pkg/colorutil"
	"stria/pkg/geometry"
)

// LabelMargin is the border, in map pixels, kept around the nail ring for
// nail numbers.
const LabelMargin = 16

// LabelEvery is the nail-number interval when numbers are shown.
const LabelEvery = 5

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// Theme holds the canvas colors. Thread alpha controls how strongly
// overlapping threads build up.
type Theme struct {
	Background color.RGBA
	Nail       color.RGBA
	Thread     color.RGBA
	Text       color.RGBA
}

// DarkTheme draws light threads on a near-black board.
func DarkTheme() Theme {
	return Theme{
		Background: color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 255},
		Nail:       color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 255},
		Thread:     colorutil.WithAlpha(colorutil.White, 0.4),
		Text:       color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 255},
	}
}

// LightTheme draws dark threads on a white board.
func LightTheme() Theme {
	return Theme{
		Background: colorutil.White,
		Nail:       colorutil.LightGray,
		Thread:     colorutil.WithAlpha(colorutil.Black, 0.4),
		Text:       color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 255},
	}
}

// Scene is everything needed to paint a (partial) string-art run.
type Scene struct {
	Size     int                 // side of the darkness map the nails live on
	Nails    []geometry.PointInt // map coordinates
	Sequence []int               // visited nails; len-1 threads
	Theme    Theme
	Numbers  bool
}

// Extent returns the side of the painted area in map pixels.
func (s Scene) Extent() int {
	return s.Size + 2*LabelMargin
}

// Threads returns the number of threads in the sequence.
func (s Scene) Threads() int {
	return max(len(s.Sequence)-1, 0)
}

// Render paints the whole scene at the given zoom.
func (s Scene) Render(zoom float64) *image.RGBA {
	img := s.base(zoom)
	s.drawThreads(img, 0, s.Threads(), zoom)
	if s.Numbers {
		s.drawNumbers(img, zoom)
	}
	return img
}

// toCanvas maps a map-pixel coordinate to the zoomed canvas.
func toCanvas(p geometry.PointInt, zoom float64) geometry.PointInt {
	return geometry.PointInt{
		X: int(float64(p.X+LabelMargin) * zoom),
		Y: int(float64(p.Y+LabelMargin) * zoom),
	}
}

// base returns a fresh canvas holding the background and nails.
func (s Scene) base(zoom float64) *image.RGBA {
	side := int(float64(s.Extent()) * zoom)
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	bg := s.Theme.Background
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = bg.R
		img.Pix[i+1] = bg.G
		img.Pix[i+2] = bg.B
		img.Pix[i+3] = 255
	}

	r := math.Max(1.5*zoom, 1)
	for _, p := range s.Nails {
		c := toCanvas(p, zoom)
		fillCircle(img, float64(c.X), float64(c.Y), r, s.Theme.Nail)
	}
	return img
}

// drawThreads paints threads from..to (exclusive) of the sequence.
func (s Scene) drawThreads(img *image.RGBA, from, to int, zoom float64) {
	bounds := img.Bounds()
	for i := from; i < to; i++ {
		a := toCanvas(s.Nails[s.Sequence[i]], zoom)
		b := toCanvas(s.Nails[s.Sequence[i+1]], zoom)
		for _, p := range geometry.RasterLine(a, b, bounds) {
			blend(img, p.X, p.Y, s.Theme.Thread)
		}
	}
}

// drawNumbers labels every LabelEvery-th nail just outside the ring.
func (s Scene) drawNumbers(img *image.RGBA, zoom float64) {
	center := float64(s.Size) / 2
	scale := int(zoom)
	if scale < 1 {
		scale = 1
	}
	if scale > 4 {
		scale = 4
	}

	for i := 0; i < len(s.Nails); i += LabelEvery {
		p := s.Nails[i]
		dx, dy := float64(p.X)-center, float64(p.Y)-center
		d := math.Hypot(dx, dy)
		if d == 0 {
			continue
		}
		off := LabelMargin / 2.0
		lx := (float64(p.X) + dx/d*off + LabelMargin) * zoom
		ly := (float64(p.Y) + dy/d*off + LabelMargin) * zoom
		drawLabel(img, strconv.Itoa(i), int(lx), int(ly), s.Theme.Text, scale)
	}
}

// blend composites c over the pixel at (x, y) using c's alpha.
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	i := img.PixOffset(x, y)
	a := float64(c.A) / 255
	inv := 1 - a
	img.Pix[i+0] = uint8(float64(c.R)*a + float64(img.Pix[i+0])*inv + 0.5)
	img.Pix[i+1] = uint8(float64(c.G)*a + float64(img.Pix[i+1])*inv + 0.5)
	img.Pix[i+2] = uint8(float64(c.B)*a + float64(img.Pix[i+2])*inv + 0.5)
	img.Pix[i+3] = 255
}

// fillCircle fills a circle centered at (cx, cy).
func fillCircle(img *image.RGBA, cx, cy, r float64, col color.RGBA) {
	bounds := img.Bounds()
	minX := int(cx - r - 1)
	maxX := int(cx + r + 1)
	minY := int(cy - r - 1)
	maxY := int(cy + r + 1)

	r2 := r * r
	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r2 {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// drawLabel draws a string of digits centered at (centerX, centerY).
// Non-digit characters are skipped.
func drawLabel(output *image.RGBA, label string, centerX, centerY int, col color.RGBA, scale int) {
	charWidth := 3 * scale
	charHeight := 5 * scale
	spacing := scale
	labelWidth := len(label)*charWidth + (len(label)-1)*spacing

	startX := centerX - labelWidth/2
	startY := centerY - charHeight/2

	bounds := output.Bounds()

	for i, ch := range label {
		if ch < '0' || ch > '9' {
			continue
		}
		pattern := digitPatterns[ch-'0']
		charX := startX + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				// Draw a scaled pixel block
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := startY + row*scale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							output.SetRGBA(px, py, col)
						}
					}
				}
			}
		}
	}
}
