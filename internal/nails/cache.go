package nails

import (
	"image"

	"stria/pkg/geometry"
)

// LineCache holds the rasterized path for every nail pair whose circular
// distance is at least the configured minimum. Paths are stored once per
// unordered pair in a flattened upper-triangular table; a nil slot means the
// pair is not admissible.
type LineCache struct {
	n           int
	minDistance int
	paths       [][]geometry.PointInt
	count       int
}

// NewLineCache rasterizes all admissible pairs between positions inside a
// size×size map.
func NewLineCache(positions []geometry.PointInt, size, minDistance int) *LineCache {
	n := len(positions)
	c := &LineCache{
		n:           n,
		minDistance: minDistance,
		paths:       make([][]geometry.PointInt, n*(n-1)/2),
	}
	bounds := image.Rect(0, 0, size, size)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if CircularDistance(i, j, n) < minDistance {
				continue
			}
			c.paths[c.offset(i, j)] = geometry.RasterLine(positions[i], positions[j], bounds)
			c.count++
		}
	}
	return c
}

// offset maps a pair with i < j to its slot in the triangular table.
func (c *LineCache) offset(i, j int) int {
	return i*(2*c.n-i-1)/2 + (j - i - 1)
}

// Path returns the cached pixels between nails i and j. The same slice is
// returned for (i, j) and (j, i). ok is false when the pair is not admissible.
func (c *LineCache) Path(i, j int) (path []geometry.PointInt, ok bool) {
	if i == j || i < 0 || j < 0 || i >= c.n || j >= c.n {
		return nil, false
	}
	if i > j {
		i, j = j, i
	}
	path = c.paths[c.offset(i, j)]
	return path, path != nil
}

// Has reports whether the pair (i, j) is admissible.
func (c *LineCache) Has(i, j int) bool {
	_, ok := c.Path(i, j)
	return ok
}

// Len returns the number of unique (unordered) paths in the cache.
func (c *LineCache) Len() int {
	return c.count
}

// Nails returns the number of nails the cache was built for.
func (c *LineCache) Nails() int {
	return c.n
}

// MinDistance returns the minimum circular distance used to build the cache.
func (c *LineCache) MinDistance() int {
	return c.minDistance
}
