package image

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// CLAHE parameters used for local contrast normalization.
const (
	ClaheClipLimit = 2.0
	ClaheTileGrid  = 8
)

// Preprocess turns a decoded BGR (or gray) Mat into a DarknessMap: it
// center-crops to a square, converts to gray, whitens everything outside the
// inscribed circle, inverts so dark source pixels need the most thread, and
// equalizes contrast inside the circle.
func Preprocess(src gocv.Mat) (*DarknessMap, error) {
	if src.Empty() || src.Rows() == 0 || src.Cols() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrImageDecode)
	}

	h, w := src.Rows(), src.Cols()
	size := min(h, w)
	startY := (h - size) / 2
	startX := (w - size) / 2

	square := src.Region(image.Rect(startX, startY, startX+size, startY+size))
	defer square.Close()

	gray := toGray(square)
	defer gray.Close()

	mask := CircleMask(size)

	// Outside the circle becomes white, which inverts to zero ink.
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !mask[y*size+x] {
				gray.SetUCharAt(y, x, 255)
			}
		}
	}

	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(gray, &inverted)

	clahe := gocv.NewCLAHEWithParams(ClaheClipLimit, image.Point{X: ClaheTileGrid, Y: ClaheTileGrid})
	defer clahe.Close()

	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe.Apply(inverted, &enhanced)

	m := NewDarknessMap(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := y*size + x
			if mask[i] {
				m.Pix[i] = float64(enhanced.GetUCharAt(y, x))
			} else {
				m.Pix[i] = float64(inverted.GetUCharAt(y, x))
			}
		}
	}

	return m, nil
}

// CircleMask returns a row-major mask of the pixels within size/2-1 of the
// center (size/2, size/2).
func CircleMask(size int) []bool {
	center := size / 2
	radius := float64(center - 1)
	mask := make([]bool, size*size)
	for y := 0; y < size; y++ {
		dy := float64(y - center)
		for x := 0; x < size; x++ {
			dx := float64(x - center)
			mask[y*size+x] = math.Sqrt(dx*dx+dy*dy) <= radius
		}
	}
	return mask
}
