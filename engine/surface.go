package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/physics"
	"github.com/lixenwraith/scratchrun/vmath"
)

const (
	// defaultSpriteExtent is the logical size used when a costume has no rotation center
	defaultSpriteExtent = 20
	// pointerExtent is the side of the virtual pointer actor in output pixels
	pointerExtent = 10

	// Menu values shared by motion, sensing and control blocks
	MenuMouse  = "_mouse_"
	MenuEdge   = "_edge_"
	MenuRandom = "_random_"
	MenuMyself = "_myself_"
	MenuStage  = "_stage_"
)

// Surface supplies collision geometry for actors in output space
type Surface interface {
	Bounds(a *Actor) core.Rect
	Mask(a *Actor) *physics.Mask
}

// BoxSurface derives bounds from costume rotation centers; it has no pixel masks
type BoxSurface struct {
	mapper vmath.Mapper
}

// NewBoxSurface creates a box surface for a logical-to-output mapper
func NewBoxSurface(m vmath.Mapper) *BoxSurface {
	return &BoxSurface{mapper: m}
}

// LogicalSize returns the unrotated, scaled costume size in logical units
func LogicalSize(a *Actor) (float64, float64) {
	w, h := float64(defaultSpriteExtent), float64(defaultSpriteExtent)
	if c, ok := a.Costume(); ok && c.RotationCenterX > 0 && c.RotationCenterY > 0 {
		w = 2 * c.RotationCenterX / c.BitmapResolution
		h = 2 * c.RotationCenterY / c.BitmapResolution
	}
	scale := a.Size() / 100
	return w * scale, h * scale
}

// Bounds returns the rotated bounding box of a in output space
func (s *BoxSurface) Bounds(a *Actor) core.Rect {
	if a.IsStage() {
		return s.mapper.MapRect(vmath.Logical.Bounds())
	}
	w, h := LogicalSize(a)
	if a.RotationStyle() == RotateAllAround {
		w, h = vmath.RotatedExtent(w, h, a.Direction())
	}
	sx, sy := s.mapper.Scale()
	center := s.mapper.MapPoint(core.Point{X: a.X(), Y: a.Y()})
	return core.RectFromCenter(center, w*sx, h*sy)
}

// Mask always returns nil; collisions stop at the box test
func (s *BoxSurface) Mask(*Actor) *physics.Mask { return nil }

// MaskSurface adds per-costume masks registered by asset id or costume name
type MaskSurface struct {
	*BoxSurface
	mu    sync.RWMutex
	masks map[string]*physics.Mask
}

// NewMaskSurface creates an empty mask surface
func NewMaskSurface(m vmath.Mapper) *MaskSurface {
	return &MaskSurface{
		BoxSurface: NewBoxSurface(m),
		masks:      make(map[string]*physics.Mask),
	}
}

// Register attaches a mask to a costume asset id or name
func (s *MaskSurface) Register(key string, m *physics.Mask) {
	s.mu.Lock()
	s.masks[key] = m
	s.mu.Unlock()
}

// Mask returns the mask of the actor's current costume, nil if none is registered
func (s *MaskSurface) Mask(a *Actor) *physics.Mask {
	c, ok := a.Costume()
	if !ok {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.masks[c.AssetID]; ok {
		return m
	}
	return s.masks[c.Name]
}

// ===== Collision queries =====

func (w *World) body(a *Actor) physics.Body {
	return physics.Body{Bounds: w.surface.Bounds(a), Mask: w.surface.Mask(a)}
}

// pointerBody is a virtual fully solid square centred on the pointer
func (w *World) pointerBody() physics.Body {
	p := w.input.Snapshot().Pointer
	return physics.Body{
		Bounds: core.RectFromCenter(p, pointerExtent, pointerExtent),
		Mask:   physics.FullMask(pointerExtent, pointerExtent),
	}
}

// Touching tests a against the pointer, the canvas edge or any live copy of a named sprite
func (w *World) Touching(a *Actor, target string) (bool, error) {
	switch target {
	case MenuMouse:
		return physics.Collide(w.body(a), w.pointerBody()), nil
	case MenuEdge:
		return physics.OnEdge(w.surface.Bounds(a), w.canvas), nil
	}
	if _, err := w.FindSprite(target); err != nil {
		return false, err
	}
	if !a.Visible() {
		return false, nil
	}
	self := w.body(a)
	for _, other := range w.LiveActors() {
		if other == a || other.Name != target || other.IsStage() || !other.Visible() {
			continue
		}
		if physics.Collide(self, w.body(other)) {
			return true, nil
		}
	}
	return false, nil
}

// OnEdge reports whether a's box leaves the canvas
func (w *World) OnEdge(a *Actor) bool {
	return physics.OnEdge(w.surface.Bounds(a), w.canvas)
}

// Bounce reflects a's direction off any canvas edge it crosses and pushes it back inside
func (w *World) Bounce(a *Actor) {
	b := w.surface.Bounds(a)
	c := w.canvas
	if c.Contains(b) {
		return
	}

	var dx, dy float64
	dir := a.Direction()
	switch {
	case b.Min.X < c.Min.X:
		dx = c.Min.X - b.Min.X
	case b.Max.X > c.Max.X:
		dx = c.Max.X - b.Max.X
	}
	switch {
	case b.Min.Y < c.Min.Y:
		dy = c.Min.Y - b.Min.Y
	case b.Max.Y > c.Max.Y:
		dy = c.Max.Y - b.Max.Y
	}
	if dx != 0 {
		dir = -dir
	}
	if dy != 0 {
		dir = 180 - dir
	}
	a.SetDirection(dir)

	// convert the output-space push into logical units
	inv := w.mapper.Inverse()
	x0, y0 := inv.Map(0, 0)
	x1, y1 := inv.Map(dx, dy)
	a.SetPosition(a.X()+x1-x0, a.Y()+y1-y0)
}

// HitTest returns the topmost visible sprite under an output-space point
func (w *World) HitTest(p core.Point) *Actor {
	live := w.LiveActors()
	for i := len(live) - 1; i >= 0; i-- {
		a := live[i]
		if a.IsStage() || !a.Visible() {
			continue
		}
		if w.surface.Bounds(a).ContainsPoint(p) {
			return a
		}
	}
	return nil
}

// TargetPosition resolves a position menu value: a sprite name, the pointer or a random point
func (w *World) TargetPosition(menu string) (float64, float64, error) {
	switch menu {
	case MenuMouse:
		x, y := w.Pointer()
		return x, y, nil
	case MenuRandom:
		x, y := RandomPosition()
		return x, y, nil
	}
	a, err := w.FindSprite(menu)
	if err != nil {
		return 0, 0, fmt.Errorf("position of %q: %w", menu, err)
	}
	return a.X(), a.Y(), nil
}

// RandomPosition returns a uniformly random point on the logical stage
func RandomPosition() (float64, float64) {
	b := vmath.Logical.Bounds()
	x := b.Min.X + rand.Float64()*b.Width()
	y := b.Min.Y + rand.Float64()*b.Height()
	return x, y
}
