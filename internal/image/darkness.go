package image

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"stria/pkg/geometry"
)

// DarknessMap is a square single-channel grid of "ink still required" values
// in [0, 255], stored row-major. It is not modified after preprocessing.
type DarknessMap struct {
	Size int
	Pix  []float64
}

// NewDarknessMap allocates an all-zero map with the given side length.
func NewDarknessMap(size int) *DarknessMap {
	return &DarknessMap{Size: size, Pix: make([]float64, size*size)}
}

// Bounds returns the pixel rectangle covered by the map.
func (m *DarknessMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Size, m.Size)
}

// At returns the value at p. p must lie inside Bounds.
func (m *DarknessMap) At(p geometry.PointInt) float64 {
	return m.Pix[p.Y*m.Size+p.X]
}

// Sum returns the total darkness of the map.
func (m *DarknessMap) Sum() float64 {
	return floats.Sum(m.Pix)
}

// WindowMean returns the mean value inside r clipped to the map bounds.
// An empty window yields 0.
func (m *DarknessMap) WindowMean(r image.Rectangle) float64 {
	r = r.Intersect(m.Bounds())
	if r.Empty() {
		return 0
	}
	var total float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		total += floats.Sum(m.Pix[y*m.Size+r.Min.X : y*m.Size+r.Max.X])
	}
	return total / float64(r.Dx()*r.Dy())
}

// Gray renders the map as an 8-bit image, clamping to [0, 255].
func (m *DarknessMap) Gray() *image.Gray {
	return PixToGray(m.Size, m.Pix)
}

// PixToGray converts a square row-major float buffer into an 8-bit image.
// Values are clamped to [0, 255] and truncated.
func PixToGray(size int, pix []float64) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, size, size))
	for i, v := range pix {
		g.Pix[i] = uint8(math.Min(math.Max(v, 0), 255))
	}
	return g
}
