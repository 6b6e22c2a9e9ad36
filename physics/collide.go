package physics

import (
	"math"

	"github.com/lixenwraith/scratchrun/core"
)

// Body is one participant in a collision test
// Bounds is in output space (y down); Mask may be nil when no pixel data exists
type Body struct {
	Bounds core.Rect
	Mask   *Mask
}

// Collide runs the two-phase test: box rejection, then mask intersection when both
// masks are available. Masks are resampled to their box size before comparison
func Collide(a, b Body) bool {
	if !a.Bounds.Overlaps(b.Bounds) {
		return false
	}
	if a.Mask == nil || b.Mask == nil {
		return true
	}

	am := fit(a.Mask, a.Bounds)
	bm := fit(b.Mask, b.Bounds)
	dx := int(math.Round(b.Bounds.Min.X - a.Bounds.Min.X))
	dy := int(math.Round(b.Bounds.Min.Y - a.Bounds.Min.Y))
	return am.Overlaps(bm, dx, dy)
}

// OnEdge reports whether the box is not fully inside the canvas
func OnEdge(bounds, canvas core.Rect) bool {
	return !canvas.Contains(bounds)
}

func fit(m *Mask, r core.Rect) *Mask {
	w := int(math.Round(r.Width()))
	h := int(math.Round(r.Height()))
	return m.Scaled(w, h)
}
