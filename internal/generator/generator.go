// Package generator assembles a string-art run: it validates parameters,
// preprocesses the source image and precomputes everything the greedy
// sequencer needs.
package generator

import (
	"fmt"

	"gocv.io/x/gocv"

	pimage "stria/internal/image"
	"stria/internal/nails"
	"stria/internal/sequencer"
	"stria/pkg/geometry"
)

// Generator holds the immutable inputs of one run. Each Generator owns its
// own map, nails and cache; nothing is shared between runs.
type Generator struct {
	Params Params
	Target *pimage.DarknessMap
	Weight float64
	Nails  []geometry.PointInt
	Lines  *nails.LineCache
}

// New validates params and builds a Generator from a decoded BGR or gray Mat.
func New(src gocv.Mat, params Params) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	target, err := pimage.Preprocess(src)
	if err != nil {
		return nil, err
	}
	return FromTarget(target, params)
}

// FromTarget builds a Generator from an already preprocessed darkness map.
func FromTarget(target *pimage.DarknessMap, params Params) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	positions, err := nails.Positions(params.Nails, target.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	return &Generator{
		Params: params,
		Target: target,
		Weight: sequencer.ThreadWeight(target, params.MaxLines),
		Nails:  positions,
		Lines:  nails.NewLineCache(positions, target.Size, params.MinDistance),
	}, nil
}

// Sequencer returns a fresh sequencer over the generator's inputs.
func (g *Generator) Sequencer() *sequencer.Sequencer {
	return sequencer.New(sequencer.Config{
		Target:   g.Target,
		Nails:    g.Nails,
		Lines:    g.Lines,
		Weight:   g.Weight,
		MaxLines: g.Params.MaxLines,
	})
}
