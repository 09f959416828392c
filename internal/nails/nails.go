// Package nails computes peg positions on the circular frame and caches the
// raster path of every admissible thread between them.
package nails

import (
	"fmt"

	"stria/pkg/geometry"
)

// Positions returns n nail coordinates evenly spaced on the circle of radius
// size/2-1 centered at (size/2, size/2), starting at angle 0.
func Positions(n, size int) ([]geometry.PointInt, error) {
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 nails, got %d", n)
	}
	center := float64(size / 2)
	radius := float64(size/2 - 1)

	points := geometry.GenerateCirclePoints(center, center, radius, n)
	coords := make([]geometry.PointInt, n)
	for i, p := range points {
		coords[i] = p.Truncate()
	}
	return coords, nil
}

// CircularDistance returns the shorter arc distance between nails i and j on
// a ring of n nails.
func CircularDistance(i, j, n int) int {
	d := i - j
	if d < 0 {
		d = -d
	}
	return min(d, n-d)
}
