// Package report turns a sequencer run into an event stream and writes the
// run's artifacts.
package report

import "stria/internal/sequencer"

// EventType names the kind of event on the wire.
type EventType string

const (
	EventStep   EventType = "step"
	EventResult EventType = "result"
	EventError  EventType = "error"
)

// Event is one record of a run's output stream. A stream is zero or more
// StepEvents followed by at most one ResultEvent or ErrorEvent.
type Event interface {
	Kind() EventType
}

// StepEvent reports one nail: the start nail at line 0, then one per line.
type StepEvent struct {
	Type      EventType `json:"type"`
	Nail      int       `json:"nail"`
	Line      int       `json:"line"`
	Total     int       `json:"total"`
	Score     *float64  `json:"score,omitempty"`
	Remaining *float64  `json:"remaining,omitempty"`
}

// Kind implements Event.
func (StepEvent) Kind() EventType { return EventStep }

// ResultEvent is the terminal success record.
type ResultEvent struct {
	Type         EventType `json:"type"`
	Sequence     []int     `json:"sequence"`
	Image        string    `json:"image"`
	Message      string    `json:"message"`
	Lines        int       `json:"lines"`
	Requested    int       `json:"requested"`
	Truncated    bool      `json:"truncated"`
	Reason       string    `json:"reason"`
	ThreadWeight float64   `json:"thread_weight"`
}

// Kind implements Event.
func (ResultEvent) Kind() EventType { return EventResult }

// ErrorEvent is the terminal failure record.
type ErrorEvent struct {
	Type  EventType `json:"type"`
	Error string    `json:"error"`
}

// Kind implements Event.
func (ErrorEvent) Kind() EventType { return EventError }

func stepEvent(s sequencer.Step) StepEvent {
	ev := StepEvent{Type: EventStep, Nail: s.Nail, Line: s.Line, Total: s.Total}
	if s.HasStats {
		score, remaining := s.Score, s.Remaining
		ev.Score = &score
		ev.Remaining = &remaining
	}
	return ev
}

func errorEvent(err error) ErrorEvent {
	return ErrorEvent{Type: EventError, Error: err.Error()}
}
