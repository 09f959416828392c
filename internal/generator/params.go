package generator

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned when run parameters are out of range.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params controls a generation run.
type Params struct {
	Nails       int `json:"nails"`
	MaxLines    int `json:"max_lines"`
	MinDistance int `json:"min_distance"`
}

// DefaultParams returns the parameters used when a caller does not specify
// them. 200 nails and 4000 lines fall inside the recommended 200-300 nail and
// 3000-5000 line ranges.
func DefaultParams() Params {
	return Params{
		Nails:       200,
		MaxLines:    4000,
		MinDistance: 20,
	}
}

// WithNails returns a copy of params with a different nail count.
func (p Params) WithNails(n int) Params {
	p.Nails = n
	return p
}

// WithMaxLines returns a copy of params with a different line budget.
func (p Params) WithMaxLines(n int) Params {
	p.MaxLines = n
	return p
}

// WithMinDistance returns a copy of params with a different minimum nail
// distance.
func (p Params) WithMinDistance(d int) Params {
	p.MinDistance = d
	return p
}

// Validate checks the parameters before any image work is done.
func (p Params) Validate() error {
	if p.Nails < 2 {
		return fmt.Errorf("%w: nail count must be at least 2, got %d", ErrInvalidParameter, p.Nails)
	}
	if p.MaxLines < 0 {
		return fmt.Errorf("%w: line budget must not be negative, got %d", ErrInvalidParameter, p.MaxLines)
	}
	if p.MinDistance < 0 {
		return fmt.Errorf("%w: minimum nail distance must not be negative, got %d", ErrInvalidParameter, p.MinDistance)
	}
	return nil
}

// Limits bounds parameters accepted from untrusted callers. The line cache
// holds N*(N-1)/2 paths, so memory grows with the square of the nail count.
type Limits struct {
	MaxNails int
	MaxLines int
}

// DefaultLimits allows comfortably more than the recommended ranges.
func DefaultLimits() Limits {
	return Limits{
		MaxNails: 400,
		MaxLines: 20000,
	}
}

// ValidateWithin runs Validate and also rejects values above l. A zero field
// in l means no bound.
func (p Params) ValidateWithin(l Limits) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if l.MaxNails > 0 && p.Nails > l.MaxNails {
		return fmt.Errorf("%w: nail count must be at most %d, got %d", ErrInvalidParameter, l.MaxNails, p.Nails)
	}
	if l.MaxLines > 0 && p.MaxLines > l.MaxLines {
		return fmt.Errorf("%w: line budget must be at most %d, got %d", ErrInvalidParameter, l.MaxLines, p.MaxLines)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("nails=%d lines=%d min_distance=%d", p.Nails, p.MaxLines, p.MinDistance)
}
