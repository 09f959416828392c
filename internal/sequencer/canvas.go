package sequencer

import (
	"image"

	"gonum.org/v1/gonum/floats"

	pimage "stria/internal/image"
	"stria/pkg/geometry"
)

// Canvas is a square, row-major float buffer that only ever gets darker.
type Canvas struct {
	Size int
	Pix  []float64
}

// NewCanvas returns a size×size canvas filled with value.
func NewCanvas(size int, value float64) *Canvas {
	c := &Canvas{Size: size, Pix: make([]float64, size*size)}
	if value != 0 {
		for i := range c.Pix {
			c.Pix[i] = value
		}
	}
	return c
}

// CanvasFrom returns an independent copy of a darkness map.
func CanvasFrom(m *pimage.DarknessMap) *Canvas {
	c := &Canvas{Size: m.Size, Pix: make([]float64, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// MeanAlong returns the average canvas value over path, or 0 for an empty path.
func (c *Canvas) MeanAlong(path []geometry.PointInt) float64 {
	if len(path) == 0 {
		return 0
	}
	var total float64
	for _, p := range path {
		total += c.Pix[p.Y*c.Size+p.X]
	}
	return total / float64(len(path))
}

// Subtract lowers every pixel on path by amount, flooring at zero.
func (c *Canvas) Subtract(path []geometry.PointInt, amount float64) {
	for _, p := range path {
		i := p.Y*c.Size + p.X
		v := c.Pix[i] - amount
		if v < 0 {
			v = 0
		}
		c.Pix[i] = v
	}
}

// Sum returns the total of all canvas values.
func (c *Canvas) Sum() float64 {
	return floats.Sum(c.Pix)
}

// Gray renders the canvas as an 8-bit image clamped to the display range.
func (c *Canvas) Gray() *image.Gray {
	return pimage.PixToGray(c.Size, c.Pix)
}
