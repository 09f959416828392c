package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stria/internal/generator"
	"stria/internal/sequencer"
	"stria/ui/canvas"
)

const (
	minSpeed     = 1
	maxSpeed     = 100
	defaultSpeed = 10

	frameInterval = 16 * time.Millisecond
)

// player drives one live run at a time into a ThreadCanvas. Each frame adds
// `speed` lines, refreshes the canvas and updates the status line.
type player struct {
	gen    *generator.Generator
	view   *canvas.ThreadCanvas
	status func(string)
	frame  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	paused bool
	resume chan struct{}
	speed  int
}

func newPlayer(gen *generator.Generator, view *canvas.ThreadCanvas, status func(string)) *player {
	return &player{
		gen:    gen,
		view:   view,
		status: status,
		frame:  frameInterval,
		speed:  defaultSpeed,
	}
}

// Restart abandons the current run, clears the canvas and plays a fresh run
// from the start nail.
func (p *player) Restart() {
	p.Stop()
	p.view.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.setPaused(false)
	p.mu.Unlock()

	seq := p.gen.Sequencer()
	go func() {
		defer close(done)
		p.run(ctx, seq)
	}()
}

// Stop cancels the current run and waits for it to return.
func (p *player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// TogglePause pauses or resumes the run and reports whether it is now paused.
func (p *player) TogglePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setPaused(!p.paused)
	return p.paused
}

// setPaused must be called with mu held.
func (p *player) setPaused(paused bool) {
	if paused == p.paused {
		return
	}
	p.paused = paused
	if paused {
		p.resume = make(chan struct{})
	} else {
		close(p.resume)
		p.resume = nil
	}
}

// SetSpeed sets the lines drawn per frame, clamped to 1..100.
func (p *player) SetSpeed(speed int) {
	speed = max(minSpeed, min(speed, maxSpeed))
	p.mu.Lock()
	p.speed = speed
	p.mu.Unlock()
}

func (p *player) Speed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// wait blocks while the player is paused.
func (p *player) wait(ctx context.Context) error {
	p.mu.Lock()
	resume := p.resume
	p.mu.Unlock()

	if resume != nil {
		select {
		case <-resume:
		case <-ctx.Done():
		}
	}
	return ctx.Err()
}

func (p *player) sleep(ctx context.Context) error {
	if p.frame <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.frame)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run pulls steps from seq until it terminates or ctx is cancelled.
// Leaving the loop early stops the sequencer as well.
func (p *player) run(ctx context.Context, seq *sequencer.Sequencer) {
	total := p.gen.Params.MaxLines
	batch := 0
	for step := range seq.Steps() {
		if p.wait(ctx) != nil {
			break
		}
		p.view.AddNail(step.Nail)

		batch++
		if batch < p.Speed() {
			continue
		}
		batch = 0
		p.view.Refresh()
		p.status(progress(step))
		if p.sleep(ctx) != nil {
			break
		}
	}

	p.view.Refresh()
	if ctx.Err() != nil {
		p.status(fmt.Sprintf("%d / %d steps (stopped)", seq.LinesDrawn(), total))
		return
	}
	p.status(fmt.Sprintf("%d / %d steps (%s)", seq.LinesDrawn(), total, seq.Termination()))
}

func progress(step sequencer.Step) string {
	if step.HasStats {
		return fmt.Sprintf("%d / %d steps, %.1f%% remaining", step.Line, step.Total, step.Remaining)
	}
	return fmt.Sprintf("%d / %d steps", step.Line, step.Total)
}
