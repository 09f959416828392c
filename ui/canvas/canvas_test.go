package canvas

import (
	"bytes"
	"image/color"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/google/go-cmp/cmp"

	"stria/pkg/geometry"
)

// crossNails is a 4-nail frame on a 40px map: left, right, top, bottom.
func crossNails() []geometry.PointInt {
	return []geometry.PointInt{
		{X: 0, Y: 20},
		{X: 39, Y: 20},
		{X: 20, Y: 0},
		{X: 20, Y: 39},
	}
}

func rgbaAt(t *testing.T, s Scene, zoom float64, x, y int) color.RGBA {
	t.Helper()
	return s.Render(zoom).RGBAAt(x, y)
}

func TestSceneRenderLayers(t *testing.T) {
	theme := DarkTheme()
	s := Scene{Size: 40, Nails: crossNails(), Sequence: []int{0, 1}, Theme: theme}

	if got := rgbaAt(t, s, 1, 0, 0); got != theme.Background {
		t.Errorf("corner = %v, want background %v", got, theme.Background)
	}

	// Nail 2 sits at (20, 0), shifted by the label margin.
	if got := rgbaAt(t, s, 1, 20+LabelMargin, LabelMargin); got != theme.Nail {
		t.Errorf("nail pixel = %v, want %v", got, theme.Nail)
	}

	// The thread 0 -> 1 runs along y = 20.
	a := float64(theme.Thread.A) / 255
	want := uint8(float64(theme.Thread.R)*a + float64(theme.Background.R)*(1-a) + 0.5)
	got := rgbaAt(t, s, 1, 30+LabelMargin, 20+LabelMargin)
	if got.R != want || got.A != 255 {
		t.Errorf("thread pixel = %v, want R=%d A=255", got, want)
	}

	if got := rgbaAt(t, s, 1, 30+LabelMargin, 10+LabelMargin); got != theme.Background {
		t.Errorf("off-thread pixel = %v, want background", got)
	}
}

func TestSceneThreadsAccumulate(t *testing.T) {
	theme := LightTheme()
	once := Scene{Size: 40, Nails: crossNails(), Sequence: []int{0, 1}, Theme: theme}
	twice := Scene{Size: 40, Nails: crossNails(), Sequence: []int{0, 1, 0}, Theme: theme}

	x, y := 30+LabelMargin, 20+LabelMargin
	one := rgbaAt(t, once, 1, x, y)
	two := rgbaAt(t, twice, 1, x, y)
	if !(two.R < one.R && one.R < theme.Background.R) {
		t.Errorf("overlapping threads should darken: bg %d, one %d, two %d",
			theme.Background.R, one.R, two.R)
	}
}

func TestSceneNumbers(t *testing.T) {
	theme := DarkTheme()
	s := Scene{Size: 40, Nails: crossNails(), Theme: theme}

	// Nail 0 is labelled half a margin outside the ring, centered on (8, 36).
	// The top-left cell of "0" is lit.
	if got := rgbaAt(t, s, 1, 7, 34); got != theme.Background {
		t.Fatalf("label pixel without numbers = %v, want background", got)
	}
	s.Numbers = true
	if got := rgbaAt(t, s, 1, 7, 34); got != theme.Text {
		t.Errorf("label pixel = %v, want text color %v", got, theme.Text)
	}

	s.Numbers = false
	plain := s.Render(1)
	s.Numbers = true
	labelled := s.Render(1)
	if bytes.Equal(plain.Pix, labelled.Pix) {
		t.Error("numbers did not change the rendering")
	}
}

func TestSceneExtentAndThreads(t *testing.T) {
	s := Scene{Size: 100}
	if got, want := s.Extent(), 100+2*LabelMargin; got != want {
		t.Errorf("Extent() = %d, want %d", got, want)
	}
	if got := s.Threads(); got != 0 {
		t.Errorf("Threads() on empty = %d, want 0", got)
	}
	s.Sequence = []int{3}
	if got := s.Threads(); got != 0 {
		t.Errorf("Threads() with start nail only = %d, want 0", got)
	}
	s.Sequence = []int{3, 7, 1}
	if got := s.Threads(); got != 2 {
		t.Errorf("Threads() = %d, want 2", got)
	}
	if got, want := s.Render(2).Bounds().Dx(), 2*s.Extent(); got != want {
		t.Errorf("rendered side at zoom 2 = %d, want %d", got, want)
	}
}

func TestThreadCanvasIncrementalMatchesRender(t *testing.T) {
	test.NewApp()

	tc := NewThreadCanvas()
	tc.SetFrame(40, crossNails())
	tc.AddNail(0)
	tc.AddNail(1)

	tc.mu.Lock()
	tc.frame()
	painted := tc.painted
	tc.mu.Unlock()
	if painted != 1 {
		t.Fatalf("painted after first frame = %d, want 1", painted)
	}

	tc.AddNail(2)
	tc.AddNail(3)
	tc.AddNail(0)

	tc.mu.Lock()
	got := tc.frame()
	tc.mu.Unlock()

	want := Scene{Size: 40, Nails: crossNails(), Sequence: []int{0, 1, 2, 3, 0}, Theme: DarkTheme()}.Render(1)
	if !bytes.Equal(got.Pix, want.Pix) {
		t.Error("incremental frame differs from a full render")
	}

	tc.SetZoom(2)
	tc.mu.Lock()
	got = tc.frame()
	tc.mu.Unlock()
	want = Scene{Size: 40, Nails: crossNails(), Sequence: []int{0, 1, 2, 3, 0}, Theme: DarkTheme()}.Render(2)
	if !bytes.Equal(got.Pix, want.Pix) {
		t.Error("frame after zoom differs from a full render")
	}
}

func TestThreadCanvasReset(t *testing.T) {
	test.NewApp()

	tc := NewThreadCanvas()
	tc.SetFrame(40, crossNails())
	for _, n := range []int{0, 1, 2} {
		tc.AddNail(n)
	}
	if got := tc.Threads(); got != 2 {
		t.Fatalf("Threads() = %d, want 2", got)
	}

	seq := tc.Sequence()
	if diff := cmp.Diff([]int{0, 1, 2}, seq); diff != "" {
		t.Errorf("Sequence() mismatch (-want +got):\n%s", diff)
	}
	seq[0] = 99
	if tc.Sequence()[0] != 0 {
		t.Error("Sequence() exposed internal storage")
	}

	tc.mu.Lock()
	tc.frame()
	tc.mu.Unlock()

	tc.Reset()
	if got := tc.Threads(); got != 0 {
		t.Errorf("Threads() after Reset = %d, want 0", got)
	}

	tc.mu.Lock()
	got := tc.frame()
	tc.mu.Unlock()
	want := Scene{Size: 40, Nails: crossNails(), Theme: DarkTheme()}.Render(1)
	if !bytes.Equal(got.Pix, want.Pix) {
		t.Error("frame after Reset still shows threads")
	}
}

func TestThreadCanvasThemeAndNumbers(t *testing.T) {
	test.NewApp()

	tc := NewThreadCanvas()
	tc.SetFrame(40, crossNails())
	tc.AddNail(0)
	tc.AddNail(1)
	tc.SetTheme(LightTheme())
	tc.SetShowNumbers(true)

	img := tc.draw(100, 100)
	want := Scene{Size: 40, Nails: crossNails(), Sequence: []int{0, 1}, Theme: LightTheme(), Numbers: true}.Render(1)
	for _, p := range [][2]int{{0, 0}, {7, 34}, {30 + LabelMargin, 20 + LabelMargin}} {
		if got, w := img.At(p[0], p[1]), want.RGBAAt(p[0], p[1]); got != w {
			t.Errorf("pixel %v = %v, want %v", p, got, w)
		}
	}
	// Outside the scene the raster is padded with the background.
	if got := img.At(90, 90); got != LightTheme().Background {
		t.Errorf("padding = %v, want background", got)
	}
}

func TestThreadCanvasZoomClamp(t *testing.T) {
	test.NewApp()

	tc := NewThreadCanvas()
	tc.SetFrame(40, crossNails())

	var last float64
	tc.OnZoomChange(func(z float64) { last = z })

	tc.SetZoom(100)
	if got := tc.GetZoom(); got != maxZoom {
		t.Errorf("GetZoom() = %v, want %v", got, maxZoom)
	}
	if last != maxZoom {
		t.Errorf("callback zoom = %v, want %v", last, maxZoom)
	}

	tc.SetZoom(0.01)
	if got := tc.GetZoom(); got != minZoom {
		t.Errorf("GetZoom() = %v, want %v", got, minZoom)
	}

	tc.SetZoom(1)
	tc.ZoomIn()
	if got := tc.GetZoom(); got != zoomStep {
		t.Errorf("after ZoomIn = %v, want %v", got, zoomStep)
	}
}
