package report

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"stria/internal/generator"
	pimage "stria/internal/image"
	"stria/internal/sequencer"
)

// ErrConsumerGone is returned when emit fails, meaning nobody is listening
// for further events.
var ErrConsumerGone = errors.New("event consumer stopped")

// Request describes one run: the source image and its parameters. Path, when
// set, names an image file to load; otherwise Image holds the encoded bytes.
type Request struct {
	Path   string
	Image  []byte
	Params generator.Params
}

func (req Request) source() (gocv.Mat, error) {
	if req.Path != "" {
		return pimage.Load(req.Path)
	}
	return pimage.Decode(req.Image)
}

// Report is a finished run, kept for writing artifacts.
type Report struct {
	Generator *generator.Generator
	Sequencer *sequencer.Sequencer
	Result    ResultEvent
}

// Run executes a full generation and streams its events to emit, one step
// event per nail followed by a single result event. Any failure becomes a
// single error event and nothing is emitted after it.
//
// Computation stops as soon as ctx is done or emit returns an error; in that
// case no terminal event is sent and the returned error says why.
func Run(ctx context.Context, req Request, emit func(Event) error) (*Report, error) {
	rep, err := run(ctx, req, emit)
	if err != nil && !errors.Is(err, ErrConsumerGone) && ctx.Err() == nil {
		if eerr := emit(errorEvent(err)); eerr != nil {
			log.Printf("report: failed to deliver error event: %v", eerr)
		}
	}
	return rep, err
}

func run(ctx context.Context, req Request, emit func(Event) error) (*Report, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}

	src, err := req.source()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	g, err := generator.New(src, req.Params)
	if err != nil {
		return nil, err
	}
	log.Printf("report: target %dx%d, thread weight %.3f, cached %d line paths (%s)",
		g.Target.Size, g.Target.Size, g.Weight, g.Lines.Len(), req.Params)

	seq := g.Sequencer()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step, ok := seq.Next()
		if !ok {
			break
		}
		if err := emit(stepEvent(step)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConsumerGone, err)
		}
	}

	png, err := EncodePNG(seq.Result().Gray())
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Generator: g,
		Sequencer: seq,
		Result:    resultEvent(g, seq, DataURL(png)),
	}
	if err := emit(rep.Result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConsumerGone, err)
	}
	return rep, nil
}

func resultEvent(g *generator.Generator, seq *sequencer.Sequencer, image string) ResultEvent {
	lines := seq.LinesDrawn()
	ev := ResultEvent{
		Type:         EventResult,
		Sequence:     seq.Sequence(),
		Image:        image,
		Lines:        lines,
		Requested:    g.Params.MaxLines,
		Truncated:    seq.Termination() == sequencer.TerminationNoCandidate,
		Reason:       seq.Termination().String(),
		ThreadWeight: g.Weight,
	}
	if ev.Truncated {
		ev.Message = fmt.Sprintf("Generation stopped early after %d of %d lines: %s", lines, ev.Requested, ev.Reason)
	} else {
		ev.Message = "Generation successful"
	}
	return ev
}
