// Package canvas provides a zoomable thread canvas that paints a string-art
// run as nails are appended to it.
package canvas

import (
	"image"
	"image/draw"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"stria/pkg/geometry"
)

const (
	minZoom  = 0.25
	maxZoom  = 4.0
	zoomStep = 1.25
)

// ThreadCanvas displays nails and the threads drawn so far. Nails may be
// appended from any goroutine; threads already painted are kept in a cached
// layer so each frame only paints what is new.
type ThreadCanvas struct {
	widget.BaseWidget

	mu    sync.Mutex
	scene Scene
	zoom  float64

	// Cached background, nails and the first `painted` threads at layerZoom.
	layer     *image.RGBA
	layerZoom float64
	painted   int

	raster *fynecanvas.Raster
	scroll *zoomScroll

	fitToWindow    bool
	lastScrollSize fyne.Size

	onZoomChange func(zoom float64)
}

// zoomScroll is a widget that wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *ThreadCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *ThreadCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	// Use wheel for zoom, not scroll
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Size returns the scroll container's size.
func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// NewThreadCanvas creates an empty canvas using the dark theme.
func NewThreadCanvas() *ThreadCanvas {
	tc := &ThreadCanvas{
		zoom:  1.0,
		scene: Scene{Theme: DarkTheme()},
	}

	tc.raster = fynecanvas.NewRaster(tc.draw)
	tc.raster.ScaleMode = fynecanvas.ImageScalePixels
	tc.raster.SetMinSize(fyne.NewSize(400, 400))

	tc.scroll = newZoomScroll(tc.raster, tc)

	tc.ExtendBaseWidget(tc)
	return tc
}

// Container returns the canvas container for embedding in layouts.
func (tc *ThreadCanvas) Container() fyne.CanvasObject {
	return tc
}

// SetFrame sets the nail ring and clears any threads.
func (tc *ThreadCanvas) SetFrame(size int, nails []geometry.PointInt) {
	tc.mu.Lock()
	tc.scene.Size = size
	tc.scene.Nails = nails
	tc.scene.Sequence = nil
	tc.invalidate()
	tc.mu.Unlock()
	tc.updateContentSize()
}

// Reset removes all threads, keeping the nail ring.
func (tc *ThreadCanvas) Reset() {
	tc.mu.Lock()
	tc.scene.Sequence = nil
	tc.invalidate()
	tc.mu.Unlock()
	tc.Refresh()
}

// AddNail appends the next visited nail. Every nail after the first adds
// one thread. The display updates on the next Refresh.
func (tc *ThreadCanvas) AddNail(nail int) {
	tc.mu.Lock()
	tc.scene.Sequence = append(tc.scene.Sequence, nail)
	tc.mu.Unlock()
}

// Threads returns the number of threads added so far.
func (tc *ThreadCanvas) Threads() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.scene.Threads()
}

// Sequence returns a copy of the nails added so far.
func (tc *ThreadCanvas) Sequence() []int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return append([]int(nil), tc.scene.Sequence...)
}

// SetShowNumbers toggles nail numbers.
func (tc *ThreadCanvas) SetShowNumbers(show bool) {
	tc.mu.Lock()
	tc.scene.Numbers = show
	tc.mu.Unlock()
	tc.Refresh()
}

// SetTheme changes the colors and repaints everything.
func (tc *ThreadCanvas) SetTheme(theme Theme) {
	tc.mu.Lock()
	tc.scene.Theme = theme
	tc.invalidate()
	tc.mu.Unlock()
	tc.Refresh()
}

// SetZoom sets the zoom level.
func (tc *ThreadCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	tc.mu.Lock()
	tc.zoom = zoom
	tc.mu.Unlock()
	tc.updateContentSize()

	if tc.onZoomChange != nil {
		tc.onZoomChange(zoom)
	}
}

// GetZoom returns the current zoom level.
func (tc *ThreadCanvas) GetZoom() float64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.zoom
}

// ZoomIn increases the zoom level.
func (tc *ThreadCanvas) ZoomIn() {
	tc.SetZoom(tc.GetZoom() * zoomStep)
}

// ZoomOut decreases the zoom level.
func (tc *ThreadCanvas) ZoomOut() {
	tc.SetZoom(tc.GetZoom() / zoomStep)
}

// FitToWindow adjusts zoom to fit the ring in the visible area.
func (tc *ThreadCanvas) FitToWindow() {
	tc.mu.Lock()
	extent := tc.scene.Extent()
	tc.mu.Unlock()

	viewSize := tc.scroll.Size()
	if viewSize.Width <= 0 || viewSize.Height <= 0 {
		return
	}

	zoom := float64(min(viewSize.Width, viewSize.Height)) / float64(extent)
	tc.SetZoom(zoom * 0.95) // Leave a small margin
}

// SetFitToWindow enables or disables auto-fit on resize.
func (tc *ThreadCanvas) SetFitToWindow(fit bool) {
	tc.fitToWindow = fit
	if fit {
		tc.FitToWindow()
	}
}

// OnZoomChange sets a callback for zoom changes.
func (tc *ThreadCanvas) OnZoomChange(callback func(zoom float64)) {
	tc.onZoomChange = callback
}

// Refresh repaints the raster.
func (tc *ThreadCanvas) Refresh() {
	tc.raster.Refresh()
}

// invalidate drops the cached layer. Callers hold mu.
func (tc *ThreadCanvas) invalidate() {
	tc.layer = nil
	tc.painted = 0
}

// updateContentSize resizes the raster to the zoomed ring.
func (tc *ThreadCanvas) updateContentSize() {
	tc.mu.Lock()
	side := float32(float64(tc.scene.Extent()) * tc.zoom)
	tc.mu.Unlock()

	size := fyne.NewSize(side, side)
	tc.raster.SetMinSize(size)
	tc.raster.Resize(size)
	tc.raster.Refresh()
	if tc.scroll != nil {
		tc.scroll.scroll.Refresh()
	}
}

// frame brings the cached layer up to date and returns a copy with nail
// numbers on top. Callers hold mu.
func (tc *ThreadCanvas) frame() *image.RGBA {
	if tc.layer == nil || tc.layerZoom != tc.zoom || tc.painted > tc.scene.Threads() {
		tc.layer = tc.scene.base(tc.zoom)
		tc.layerZoom = tc.zoom
		tc.painted = 0
	}
	threads := tc.scene.Threads()
	tc.scene.drawThreads(tc.layer, tc.painted, threads, tc.zoom)
	tc.painted = threads

	out := image.NewRGBA(tc.layer.Bounds())
	copy(out.Pix, tc.layer.Pix)
	if tc.scene.Numbers {
		tc.scene.drawNumbers(out, tc.zoom)
	}
	return out
}

// draw is the raster drawing function.
func (tc *ThreadCanvas) draw(w, h int) image.Image {
	tc.mu.Lock()
	frame := tc.frame()
	bg := tc.scene.Theme.Background
	tc.mu.Unlock()

	output := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(output, output.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(output, frame.Bounds(), frame, image.Point{}, draw.Src)
	return output
}

// CreateRenderer implements fyne.Widget.
func (tc *ThreadCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &threadCanvasRenderer{canvas: tc}
}

type threadCanvasRenderer struct {
	canvas *ThreadCanvas
}

func (r *threadCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
	if r.canvas.fitToWindow && size.Width > 0 && size.Height > 0 && size != r.canvas.lastScrollSize {
		r.canvas.lastScrollSize = size
		r.canvas.FitToWindow()
	}
}

func (r *threadCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *threadCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *threadCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *threadCanvasRenderer) Destroy() {}
