package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"stria/internal/generator"
	pimage "stria/internal/image"
	"stria/pkg/geometry"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 96, 72))
	for y := 0; y < 72; y++ {
		for x := 0; x < 96; x++ {
			v := uint8(255)
			if (x/12+y/12)%2 == 0 {
				v = 40
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type recorder struct {
	events []Event
	failAt int // emit fails on this 1-based call; 0 never fails
}

func (r *recorder) emit(ev Event) error {
	r.events = append(r.events, ev)
	if r.failAt > 0 && len(r.events) == r.failAt {
		return errors.New("client went away")
	}
	return nil
}

func TestRunStreamsStepsThenResult(t *testing.T) {
	rec := &recorder{}
	params := generator.Params{Nails: 30, MaxLines: 120, MinDistance: 5}
	rep, err := Run(context.Background(), Request{Image: pngBytes(t), Params: params}, rec.emit)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got, want := len(rec.events), params.MaxLines+2; got != want {
		t.Fatalf("got %d events, want %d", got, want)
	}

	var nails []int
	for i, ev := range rec.events[:len(rec.events)-1] {
		step, ok := ev.(StepEvent)
		if !ok {
			t.Fatalf("event %d is %T, want StepEvent", i, ev)
		}
		if step.Line != i || step.Total != params.MaxLines {
			t.Fatalf("event %d = %+v", i, step)
		}
		if hasStats := step.Score != nil && step.Remaining != nil; hasStats != (i == 100) {
			t.Fatalf("event %d stats = %v", i, hasStats)
		}
		nails = append(nails, step.Nail)
	}

	result, ok := rec.events[len(rec.events)-1].(ResultEvent)
	if !ok {
		t.Fatalf("last event is %T, want ResultEvent", rec.events[len(rec.events)-1])
	}
	if diff := cmp.Diff(nails, result.Sequence); diff != "" {
		t.Fatalf("result sequence differs from streamed nails:\n%s", diff)
	}
	if result.Truncated || result.Lines != params.MaxLines || result.Message != "Generation successful" {
		t.Fatalf("result = %+v", result)
	}
	if !strings.HasPrefix(result.Image, "data:image/png;base64,") {
		t.Fatalf("image = %.40q", result.Image)
	}
	if rep == nil || rep.Generator.Params != params {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRunLoadsFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portrait.png")
	if err := os.WriteFile(path, pngBytes(t), 0o644); err != nil {
		t.Fatal(err)
	}
	params := generator.Params{Nails: 24, MaxLines: 20, MinDistance: 4}

	fromPath := &recorder{}
	if _, err := Run(context.Background(), Request{Path: path, Params: params}, fromPath.emit); err != nil {
		t.Fatalf("Run from path: %v", err)
	}
	fromBytes := &recorder{}
	if _, err := Run(context.Background(), Request{Image: pngBytes(t), Params: params}, fromBytes.emit); err != nil {
		t.Fatalf("Run from bytes: %v", err)
	}
	if diff := cmp.Diff(fromBytes.events, fromPath.events); diff != "" {
		t.Fatalf("path and bytes runs differ:\n%s", diff)
	}

	missing := &recorder{}
	_, err := Run(context.Background(), Request{Path: filepath.Join(t.TempDir(), "gone.png"), Params: params}, missing.emit)
	if !errors.Is(err, pimage.ErrImageDecode) {
		t.Fatalf("err = %v, want ErrImageDecode", err)
	}
	if len(missing.events) != 1 || missing.events[0].Kind() != EventError {
		t.Fatalf("events = %+v, want a single error", missing.events)
	}
}

func TestRunZeroBudget(t *testing.T) {
	rec := &recorder{}
	params := generator.Params{Nails: 200, MaxLines: 0, MinDistance: 20}
	if _, err := Run(context.Background(), Request{Image: pngBytes(t), Params: params}, rec.emit); err != nil {
		t.Fatal(err)
	}
	if len(rec.events) != 2 {
		t.Fatalf("got %d events, want start step and result", len(rec.events))
	}
	result := rec.events[1].(ResultEvent)
	if len(result.Sequence) != 1 || result.Lines != 0 || result.Truncated {
		t.Fatalf("result = %+v", result)
	}
}

func TestRunEarlyTerminationIsRecorded(t *testing.T) {
	rec := &recorder{}
	params := generator.Params{Nails: 4, MaxLines: 10, MinDistance: 2}
	if _, err := Run(context.Background(), Request{Image: pngBytes(t), Params: params}, rec.emit); err != nil {
		t.Fatal(err)
	}
	result := rec.events[len(rec.events)-1].(ResultEvent)
	if !result.Truncated || result.Lines != 1 || result.Requested != 10 {
		t.Fatalf("result = %+v", result)
	}
	if !strings.Contains(result.Message, "1 of 10") {
		t.Fatalf("message = %q", result.Message)
	}
}

func TestRunFailuresEmitSingleError(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		target error
	}{
		{
			name:   "invalid params",
			req:    Request{Image: []byte("ignored"), Params: generator.Params{Nails: 1, MaxLines: 10}},
			target: generator.ErrInvalidParameter,
		},
		{
			name:   "undecodable image",
			req:    Request{Image: []byte("not an image"), Params: generator.DefaultParams()},
			target: pimage.ErrImageDecode,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			_, err := Run(context.Background(), tc.req, rec.emit)
			if !errors.Is(err, tc.target) {
				t.Fatalf("err = %v, want %v", err, tc.target)
			}
			if len(rec.events) != 1 {
				t.Fatalf("got %d events, want 1", len(rec.events))
			}
			if ev, ok := rec.events[0].(ErrorEvent); !ok || ev.Error == "" {
				t.Fatalf("event = %#v, want non-empty ErrorEvent", rec.events[0])
			}
		})
	}
}

func TestRunStopsWhenConsumerFails(t *testing.T) {
	rec := &recorder{failAt: 3}
	params := generator.Params{Nails: 30, MaxLines: 500, MinDistance: 5}
	_, err := Run(context.Background(), Request{Image: pngBytes(t), Params: params}, rec.emit)
	if !errors.Is(err, ErrConsumerGone) {
		t.Fatalf("err = %v, want ErrConsumerGone", err)
	}
	if len(rec.events) != 3 {
		t.Fatalf("emit called %d times after failure, want 3", len(rec.events))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events []Event
	emit := func(ev Event) error {
		events = append(events, ev)
		if len(events) == 5 {
			cancel()
		}
		return nil
	}
	_, err := Run(ctx, Request{Image: pngBytes(t), Params: generator.Params{Nails: 30, MaxLines: 500, MinDistance: 5}}, emit)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	for _, ev := range events {
		if ev.Kind() != EventStep {
			t.Fatalf("unexpected %s event after cancel", ev.Kind())
		}
	}
}

func TestSequenceOutputIsReproducible(t *testing.T) {
	data := pngBytes(t)
	params := generator.Params{Nails: 40, MaxLines: 100, MinDistance: 8}

	render := func() []byte {
		rep, err := Run(context.Background(), Request{Image: data, Params: params}, func(Event) error { return nil })
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := WriteSequence(&buf, rep); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}

	a, b := render(), render()
	if !bytes.Equal(a, b) {
		t.Fatalf("sequence files differ:\n%s", cmp.Diff(string(a), string(b)))
	}

	lines := strings.Split(strings.TrimSpace(string(a)), "\n")
	header := []string{
		"# String Art Sequence",
		"# Nails: 40",
		"# Lines: 100",
	}
	if diff := cmp.Diff(header, lines[:3]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(lines[3], "# Thread Weight: ") || lines[4] != "# Min Distance: 8" || lines[5] != "" {
		t.Fatalf("header tail = %q", lines[3:6])
	}
	if len(lines[6:]) != 101 {
		t.Fatalf("got %d nail lines, want 101", len(lines[6:]))
	}
}

func TestWriteSVG(t *testing.T) {
	nails := []geometry.PointInt{{X: 10, Y: 5}, {X: 5, Y: 10}, {X: 0, Y: 5}, {X: 5, Y: 0}}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, 12, nails, []int{0, 2, 1, 3}, DefaultSVGStyle()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if got := strings.Count(out, "<line "); got != 3 {
		t.Fatalf("got %d lines, want 3", got)
	}
	// Four nails plus the frame.
	if got := strings.Count(out, "<circle "); got != 5 {
		t.Fatalf("got %d circles, want 5", got)
	}
	if !strings.Contains(out, `viewBox="0.000000 0.000000 12.000000 12.000000"`) {
		t.Fatalf("unexpected viewBox in:\n%s", out)
	}

	if err := WriteSVG(&buf, 12, nails, []int{0, 9}, DefaultSVGStyle()); err == nil {
		t.Fatal("out of range nail accepted")
	}
}

func TestNDJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)
	score, remaining := 12.5, 80.0
	events := []Event{
		StepEvent{Type: EventStep, Nail: 0, Line: 0, Total: 2},
		StepEvent{Type: EventStep, Nail: 7, Line: 1, Total: 2, Score: &score, Remaining: &remaining},
		ErrorEvent{Type: EventError, Error: "boom"},
	}
	for _, ev := range events {
		if err := w.Emit(ev); err != nil {
			t.Fatal(err)
		}
	}

	var got []map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		got = append(got, m)
	}
	want := []map[string]any{
		{"type": "step", "nail": 0.0, "line": 0.0, "total": 2.0},
		{"type": "step", "nail": 7.0, "line": 1.0, "total": 2.0, "score": 12.5, "remaining": 80.0},
		{"type": "error", "error": "boom"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("NDJSON mismatch (-want +got):\n%s", diff)
	}
}
