package geometry

import "image"

// RasterLine returns the pixels crossed by a straight line from a to b using
// Bresenham's algorithm. Pixels outside bounds are dropped; the walk itself
// still runs from a to b so the result is identical for any bounds.
func RasterLine(a, b PointInt, bounds image.Rectangle) []PointInt {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y

	dx := abs(x1 - x0)
	dy := abs(y1 - y0)

	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy
	pixels := make([]PointInt, 0, max(dx, dy)+1)

	for {
		p := PointInt{X: x0, Y: y0}
		if p.In(bounds) {
			pixels = append(pixels, p)
		}

		if x0 == x1 && y0 == y1 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}

	return pixels
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
