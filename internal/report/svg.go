package report

import (
	"fmt"
	"image/color"
	"io"

	"github.com/jbeda/geom"

	"stria/pkg/colorutil"
	"stria/pkg/geometry"
)

// SVGStyle controls the look of the vector thread layout.
type SVGStyle struct {
	Thread      color.RGBA // alpha becomes stroke-opacity
	ThreadWidth float64
	Nail        color.RGBA
	NailRadius  float64 // in map pixels
	Frame       bool    // draw the circular frame
}

// DefaultSVGStyle returns thin translucent black threads over small gray nails.
func DefaultSVGStyle() SVGStyle {
	return SVGStyle{
		Thread:      colorutil.WithAlpha(colorutil.Black, 0.25),
		ThreadWidth: 0.5,
		Nail:        colorutil.Gray,
		NailRadius:  1.5,
		Frame:       true,
	}
}

func (st SVGStyle) threadCSS() string {
	return fmt.Sprintf("stroke: %s; stroke-opacity: %.3f; stroke-width: %g; fill: none",
		colorutil.Hex(st.Thread), colorutil.Opacity(st.Thread), st.ThreadWidth)
}

func (st SVGStyle) nailCSS() string {
	return "fill: " + colorutil.Hex(st.Nail)
}

// svgWriter is a minimal SVG serializer over an io.Writer. The first write
// error is kept and later writes are skipped.
type svgWriter struct {
	w   io.Writer
	err error
}

func (s *svgWriter) printf(format string, a ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, a...)
}

func (s *svgWriter) start(viewBox geom.Rect) {
	s.printf(`<?xml version="1.0"?>
<svg version="1.1"
     viewBox="%f %f %f %f"
     xmlns="http://www.w3.org/2000/svg">
`, viewBox.Min.X, viewBox.Min.Y, viewBox.Width(), viewBox.Height())
}

func (s *svgWriter) end() {
	s.printf("</svg>\n")
}

func (s *svgWriter) line(p1, p2 geom.Coord, style string) {
	s.printf("<line x1='%f' y1='%f' x2='%f' y2='%f' style='%s'/>\n", p1.X, p1.Y, p2.X, p2.Y, style)
}

func (s *svgWriter) circle(c geom.Coord, r float64, style string) {
	s.printf("<circle cx='%f' cy='%f' r='%f' style='%s'/>\n", c.X, c.Y, r, style)
}

func toCoord(p geometry.PointInt) geom.Coord {
	return geom.Coord{X: float64(p.X), Y: float64(p.Y)}
}

// WriteSVG renders the nail ring and the threads of sequence, in order, as
// an SVG document in map pixel coordinates.
func WriteSVG(w io.Writer, size int, nails []geometry.PointInt, sequence []int, style SVGStyle) error {
	for _, n := range sequence {
		if n < 0 || n >= len(nails) {
			return fmt.Errorf("sequence references nail %d of %d", n, len(nails))
		}
	}

	viewBox := geom.Rect{Min: geom.Coord{X: 0, Y: 0}, Max: geom.Coord{X: 0, Y: 0}}
	viewBox.ExpandToContainCoord(geom.Coord{X: float64(size), Y: float64(size)})

	svg := &svgWriter{w: w}
	svg.start(viewBox)

	if style.Frame {
		center := viewBox.Max.Times(0.5)
		svg.circle(center, float64(size/2-1), "stroke: "+colorutil.Hex(colorutil.LightGray)+"; fill: none")
	}
	thread := style.threadCSS()
	for i := 1; i < len(sequence); i++ {
		svg.line(toCoord(nails[sequence[i-1]]), toCoord(nails[sequence[i]]), thread)
	}
	nail := style.nailCSS()
	for _, p := range nails {
		svg.circle(toCoord(p), style.NailRadius, nail)
	}

	svg.end()
	return svg.err
}
