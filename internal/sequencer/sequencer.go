// Package sequencer implements the greedy thread sequencer: starting from the
// darkest nail it repeatedly connects to the nail whose path has the most
// remaining darkness, and yields one step per drawn line.
package sequencer

import (
	"image"
	"iter"

	pimage "stria/internal/image"
	"stria/internal/nails"
	"stria/pkg/geometry"
)

// State is the sequencer's position in its lifecycle.
type State int

const (
	StateStartSelection State = iota
	StateIterating
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateStartSelection:
		return "StartSelection"
	case StateIterating:
		return "Iterating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Termination says why a run stopped.
type Termination int

const (
	// TerminationNone means the run has not stopped yet.
	TerminationNone Termination = iota
	// TerminationBudget means every requested line was drawn.
	TerminationBudget
	// TerminationNoCandidate means no admissible next nail existed.
	TerminationNoCandidate
)

func (t Termination) String() string {
	switch t {
	case TerminationBudget:
		return "line budget reached"
	case TerminationNoCandidate:
		return "no admissible nail"
	default:
		return "running"
	}
}

const (
	// StartWindow is the side of the square sampled around each nail when
	// picking the start nail.
	StartWindow = 40
	// StatsInterval is how often (in lines) a step carries score and
	// remaining darkness.
	StatsInterval = 100
)

// Step is emitted once for the start nail (Line 0) and once per drawn line.
type Step struct {
	Nail  int
	Line  int
	Total int

	// HasStats is set on every StatsInterval-th line.
	HasStats  bool
	Score     float64
	Remaining float64 // percent of the original darkness still undrawn
}

// Config holds the precomputed, read-only inputs of a run.
type Config struct {
	Target   *pimage.DarknessMap
	Nails    []geometry.PointInt
	Lines    *nails.LineCache
	Weight   float64
	MaxLines int
}

// Sequencer is a pull-based producer of Steps. It owns its canvases and
// sequence; it is not safe for concurrent use.
type Sequencer struct {
	cfg Config

	work   *Canvas
	result *Canvas

	state       State
	termination Termination
	sequence    []int
	current     int
	previous    int
	line        int
	targetSum   float64
}

// New prepares a sequencer. The working canvas starts as a copy of the
// target; the result canvas starts white.
func New(cfg Config) *Sequencer {
	return &Sequencer{
		cfg:       cfg,
		work:      CanvasFrom(cfg.Target),
		result:    NewCanvas(cfg.Target.Size, 255),
		state:     StateStartSelection,
		sequence:  make([]int, 0, max(cfg.MaxLines, 0)+1),
		current:   -1,
		previous:  -1,
		targetSum: cfg.Target.Sum(),
	}
}

// Next computes and returns the next step. It returns false once the run has
// terminated; Termination then reports why.
func (s *Sequencer) Next() (Step, bool) {
	switch s.state {
	case StateStartSelection:
		s.current = s.startNail()
		s.sequence = append(s.sequence, s.current)
		s.state = StateIterating
		return Step{Nail: s.current, Line: 0, Total: s.cfg.MaxLines}, true

	case StateIterating:
		if s.line >= s.cfg.MaxLines {
			s.terminate(TerminationBudget)
			return Step{}, false
		}

		best, score, ok := s.bestCandidate()
		if !ok {
			s.terminate(TerminationNoCandidate)
			return Step{}, false
		}

		path, _ := s.cfg.Lines.Path(s.current, best)
		s.work.Subtract(path, s.cfg.Weight)
		s.result.Subtract(path, s.cfg.Weight)

		s.previous = s.current
		s.current = best
		s.sequence = append(s.sequence, best)
		s.line++

		step := Step{Nail: best, Line: s.line, Total: s.cfg.MaxLines}
		if s.line%StatsInterval == 0 {
			step.HasStats = true
			step.Score = score
			step.Remaining = s.Remaining()
		}
		return step, true
	}
	return Step{}, false
}

// Steps adapts Next to a range-over-func iterator. Breaking out of the loop
// stops the computation; no further lines are drawn.
func (s *Sequencer) Steps() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for {
			step, ok := s.Next()
			if !ok || !yield(step) {
				return
			}
		}
	}
}

func (s *Sequencer) terminate(reason Termination) {
	s.state = StateTerminated
	s.termination = reason
}

// startNail returns the nail whose surrounding window in the target is
// darkest on average. Ties go to the lowest index.
func (s *Sequencer) startNail() int {
	half := StartWindow / 2
	best, bestMean := 0, -1.0
	for i, p := range s.cfg.Nails {
		window := image.Rect(p.X-half, p.Y-half, p.X+half, p.Y+half)
		if mean := s.cfg.Target.WindowMean(window); mean > bestMean {
			best, bestMean = i, mean
		}
	}
	return best
}

// bestCandidate scans nails in ascending order and returns the admissible one
// with the strictly highest mean remaining darkness along its path.
func (s *Sequencer) bestCandidate() (best int, bestScore float64, ok bool) {
	best, bestScore = -1, -1
	for next := 0; next < len(s.cfg.Nails); next++ {
		if next == s.current || next == s.previous {
			continue
		}
		path, admissible := s.cfg.Lines.Path(s.current, next)
		if !admissible {
			continue
		}
		if score := s.work.MeanAlong(path); score > bestScore {
			best, bestScore = next, score
		}
	}
	return best, bestScore, best >= 0
}

// Remaining returns the undrawn darkness as a percentage of the target's
// total. A target with no darkness reports 0.
func (s *Sequencer) Remaining() float64 {
	if s.targetSum == 0 {
		return 0
	}
	return 100 * s.work.Sum() / s.targetSum
}

// State returns the current lifecycle state.
func (s *Sequencer) State() State { return s.state }

// Termination reports why the run stopped, or TerminationNone while running.
func (s *Sequencer) Termination() Termination { return s.termination }

// Sequence returns a copy of the nail indices visited so far.
func (s *Sequencer) Sequence() []int {
	out := make([]int, len(s.sequence))
	copy(out, s.sequence)
	return out
}

// LinesDrawn returns the number of lines drawn so far.
func (s *Sequencer) LinesDrawn() int { return s.line }

// Working returns the remaining-darkness canvas. Callers must not modify it.
func (s *Sequencer) Working() *Canvas { return s.work }

// Result returns the rendered canvas. Callers must not modify it.
func (s *Sequencer) Result() *Canvas { return s.result }
