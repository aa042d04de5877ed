package interact

import (
	"fmt"
	"math"

	"github.com/ddl-r-abdulaziz/relmap/pkg/graph"
)

// Zoom bounds and the initial view.
const (
	MinScale     = 0.1
	MaxScale     = 4.0
	InitialScale = 0.8
	initialShift = 0.1 // fraction of the surface the initial view is shifted by
)

// Transform is a translate plus uniform scale: screen = scene*K + (X, Y).
type Transform struct {
	X, Y, K float64
}

// Apply maps a scene point to the screen.
func (t Transform) Apply(p graph.Point) graph.Point {
	return graph.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back into the scene.
func (t Transform) Invert(p graph.Point) graph.Point {
	return graph.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// String renders the transform as an SVG transform attribute value.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

// Viewport holds the zoom and pan state of one drawing surface.
type Viewport struct {
	width, height float64
	t             Transform
}

// NewViewport creates a viewport for a width x height surface in its initial
// view.
func NewViewport(width, height float64) *Viewport {
	v := &Viewport{width: width, height: height}
	v.Reset()
	return v
}

// Initial returns the transform Reset restores.
func (v *Viewport) Initial() Transform {
	return Transform{X: v.width * initialShift, Y: v.height * initialShift, K: InitialScale}
}

// Reset restores the initial view.
func (v *Viewport) Reset() { v.t = v.Initial() }

// Transform returns the current transform.
func (v *Viewport) Transform() Transform { return v.t }

// Relative returns the current transform with the initial one factored out,
// for content that is already laid out in surface coordinates. It is the
// identity until the view is zoomed or panned.
func (v *Viewport) Relative() Transform {
	i := v.Initial()
	k := v.t.K / i.K
	return Transform{X: v.t.X - i.X*k, Y: v.t.Y - i.Y*k, K: k}
}

// Resize changes the surface size. The current view is kept.
func (v *Viewport) Resize(width, height float64) {
	v.width, v.height = width, height
}

// ZoomAt multiplies the scale by factor, clamped to [MinScale, MaxScale],
// keeping the scene point under focal (a screen point) fixed.
func (v *Viewport) ZoomAt(factor float64, focal graph.Point) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	v.ZoomTo(v.t.K*factor, focal)
}

// ZoomTo sets the scale to k, clamped, keeping focal fixed.
func (v *Viewport) ZoomTo(k float64, focal graph.Point) {
	k = math.Min(math.Max(k, MinScale), MaxScale)
	anchor := v.t.Invert(focal)
	v.t = Transform{
		X: focal.X - anchor.X*k,
		Y: focal.Y - anchor.Y*k,
		K: k,
	}
}

// Pan shifts the view by (dx, dy) screen pixels.
func (v *Viewport) Pan(dx, dy float64) {
	v.t.X += dx
	v.t.Y += dy
}
