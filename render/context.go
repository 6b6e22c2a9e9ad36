package render

import (
	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/vmath"
)

// Context is the frame state handed to renderers, passed by value
type Context struct {
	Frame uint64
	FPS   float64

	// Screen dimensions (terminal size)
	ScreenWidth  int
	ScreenHeight int

	// Stage viewport in cells; the status bar takes the last row
	Stage core.Rect

	// Output maps the engine's output canvas to cells
	Output vmath.Mapper

	World    *engine.World
	Actors   []*engine.Actor
	Monitors []engine.MonitorState
	Metrics  map[string]any
}

// StageViewport returns the cell rectangle the stage is drawn into
func StageViewport(width, height int) core.Rect {
	return core.Rect{
		Min: core.Point{X: 0, Y: 0},
		Max: core.Point{X: float64(max(width, 1)), Y: float64(max(height-1, 1))},
	}
}

// cellSpace describes a viewport as a top-left origin space
func cellSpace(r core.Rect) vmath.Space {
	return vmath.Space{Left: r.Min.X, Right: r.Max.X, Bottom: r.Max.Y, Top: r.Min.Y}
}

// OutputMapper maps the world's output canvas onto the stage viewport of a width x height screen
func OutputMapper(w *engine.World, width, height int) vmath.Mapper {
	return vmath.MustMapper(w.Mapper().To(), cellSpace(StageViewport(width, height)))
}

// NewContext captures the world for one frame
func NewContext(w *engine.World, frame uint64, fps float64, width, height int) Context {
	return Context{
		Frame:        frame,
		FPS:          fps,
		ScreenWidth:  width,
		ScreenHeight: height,
		Stage:        StageViewport(width, height),
		Output:       OutputMapper(w, width, height),
		World:        w,
		Actors:       w.LiveActors(),
		Monitors:     w.Monitors(),
		Metrics:      w.Metrics().Snapshot(),
	}
}

// CellRect converts an output-space rectangle to integer cell bounds
func (c Context) CellRect(r core.Rect) (x, y, w, h int) {
	cr := c.Output.MapRect(r)
	x0, y0 := int(cr.Min.X+0.5), int(cr.Min.Y+0.5)
	x1, y1 := int(cr.Max.X+0.5), int(cr.Max.Y+0.5)
	return x0, y0, max(x1-x0, 1), max(y1-y0, 1)
}
