package engine

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/vmath"
)

// Role distinguishes the stage from sprites
type Role uint8

const (
	RoleSprite Role = iota
	RoleStage
)

// CloneState tracks clone lifecycle
type CloneState int32

const (
	Original CloneState = iota
	Clone
	Deleted
)

func (s CloneState) String() string {
	switch s {
	case Original:
		return "original"
	case Clone:
		return "clone"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}

// Rotation styles
const (
	RotateAllAround = "all around"
	RotateLeftRight = "left-right"
	RotateNone      = "don't rotate"
)

// Transform is a consistent-enough copy of an actor's presentation state
type Transform struct {
	X, Y      float64
	Direction float64
	Size      float64
	Costume   int
	Visible   bool
}

// Actor is a sprite, clone or the stage
// Scalar fields are atomics; variables and lists are guarded by mu for one primitive at a time
type Actor struct {
	ID     string
	Name   string
	Role   Role
	Target *project.Target
	// Program is shared by an original and all of its clones
	Program *project.Program
	// Origin is the original sprite a clone was made from, nil otherwise
	Origin *Actor

	x, y          core.AtomicFloat
	direction     core.AtomicFloat
	size          core.AtomicFloat
	costume       atomic.Int64
	visible       atomic.Bool
	caption       core.AtomicString
	thinking      atomic.Bool
	rotationStyle core.AtomicString
	state         atomic.Int32

	mu    sync.Mutex
	vars  map[string]string
	lists map[string][]string
}

// newActor builds an original actor from its declaration
func newActor(t *project.Target) *Actor {
	a := &Actor{
		ID:      uuid.NewString(),
		Name:    t.Name,
		Target:  t,
		Program: t.Program,
		vars:    make(map[string]string, len(t.Variables)),
		lists:   make(map[string][]string, len(t.Lists)),
	}
	if t.IsStage {
		a.Role = RoleStage
	}
	a.x.Store(t.X)
	a.y.Store(t.Y)
	a.direction.Store(vmath.NormalizeDegrees(t.Direction))
	a.size.Store(t.Size)
	a.costume.Store(int64(t.CurrentCostume))
	a.visible.Store(t.Visible)
	style := t.RotationStyle
	if style == "" {
		style = RotateAllAround
	}
	a.rotationStyle.Store(style)

	for _, v := range t.Variables {
		a.vars[v.ID] = v.Value
	}
	for _, l := range t.Lists {
		items := make([]string, len(l.Items))
		copy(items, l.Items)
		a.lists[l.ID] = items
	}
	return a
}

// clone copies the attribute state; variables and list contents are independent copies
func (a *Actor) clone() *Actor {
	origin := a
	if a.Origin != nil {
		origin = a.Origin
	}
	c := &Actor{
		ID:      uuid.NewString(),
		Name:    a.Name,
		Role:    a.Role,
		Target:  a.Target,
		Program: a.Program,
		Origin:  origin,
	}
	c.x.Store(a.x.Load())
	c.y.Store(a.y.Load())
	c.direction.Store(a.direction.Load())
	c.size.Store(a.size.Load())
	c.costume.Store(a.costume.Load())
	c.visible.Store(a.visible.Load())
	c.rotationStyle.Store(a.rotationStyle.Load())
	c.state.Store(int32(Clone))

	a.mu.Lock()
	c.vars = make(map[string]string, len(a.vars))
	for k, v := range a.vars {
		c.vars[k] = v
	}
	c.lists = make(map[string][]string, len(a.lists))
	for k, l := range a.lists {
		items := make([]string, len(l))
		copy(items, l)
		c.lists[k] = items
	}
	a.mu.Unlock()
	return c
}

// ===== Presentation state =====

// IsStage reports whether the actor is the stage
func (a *Actor) IsStage() bool { return a.Role == RoleStage }

func (a *Actor) X() float64 { return a.x.Load() }
func (a *Actor) Y() float64 { return a.y.Load() }

// SetPosition moves the actor; no clamping is applied
func (a *Actor) SetPosition(x, y float64) {
	a.x.Store(x)
	a.y.Store(y)
}

func (a *Actor) SetX(x float64) { a.x.Store(x) }
func (a *Actor) SetY(y float64) { a.y.Store(y) }

// Direction returns the heading in [0,360)
func (a *Actor) Direction() float64 { return a.direction.Load() }

// SetDirection stores a normalized heading
func (a *Actor) SetDirection(deg float64) {
	a.direction.Store(vmath.NormalizeDegrees(deg))
}

// Size returns the scale in percent
func (a *Actor) Size() float64 { return a.size.Load() }

// SetSize stores the scale; negative sizes clamp to 0
func (a *Actor) SetSize(pct float64) {
	a.size.Store(max(0, pct))
}

// Costumes returns the declared costumes
func (a *Actor) Costumes() []project.Costume { return a.Target.Costumes }

// CostumeIndex returns the current 0-based costume index
func (a *Actor) CostumeIndex() int { return int(a.costume.Load()) }

// SetCostumeIndex selects a costume, wrapping around the costume list
func (a *Actor) SetCostumeIndex(i int) {
	n := len(a.Target.Costumes)
	if n == 0 {
		a.costume.Store(0)
		return
	}
	i %= n
	if i < 0 {
		i += n
	}
	a.costume.Store(int64(i))
}

// Costume returns the current costume, ok is false when none is declared
func (a *Actor) Costume() (project.Costume, bool) {
	cs := a.Target.Costumes
	i := a.CostumeIndex()
	if i < 0 || i >= len(cs) {
		return project.Costume{}, false
	}
	return cs[i], true
}

// CostumeByName returns the index of a costume name, or -1
func (a *Actor) CostumeByName(name string) int {
	for i, c := range a.Target.Costumes {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (a *Actor) Visible() bool { return a.visible.Load() }
func (a *Actor) SetVisible(v bool) { a.visible.Store(v) }

// Caption returns the say/think text; empty means hidden
func (a *Actor) Caption() string { return a.caption.Load() }

// Thinking reports whether the caption is a thought bubble
func (a *Actor) Thinking() bool { return a.thinking.Load() }

// SetCaption sets the bubble text
func (a *Actor) SetCaption(text string, think bool) {
	a.thinking.Store(think)
	a.caption.Store(text)
}

// RotationStyle returns the rotation style name
func (a *Actor) RotationStyle() string { return a.rotationStyle.Load() }

// SetRotationStyle stores a rotation style name
func (a *Actor) SetRotationStyle(style string) { a.rotationStyle.Store(style) }

// State returns the clone lifecycle state
func (a *Actor) State() CloneState { return CloneState(a.state.Load()) }

// Deleted reports whether the actor is an inert deleted clone
func (a *Actor) Deleted() bool { return a.State() == Deleted }

// markDeleted transitions a clone to Deleted; originals are never deleted
func (a *Actor) markDeleted() bool {
	return a.state.CompareAndSwap(int32(Clone), int32(Deleted))
}

// Transform returns the presentation state
func (a *Actor) Transform() Transform {
	return Transform{
		X:         a.x.Load(),
		Y:         a.y.Load(),
		Direction: a.direction.Load(),
		Size:      a.size.Load(),
		Costume:   a.CostumeIndex(),
		Visible:   a.visible.Load(),
	}
}

// ===== Variables and lists =====

// Var returns a variable held by this actor
func (a *Actor) Var(id string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.vars[id]
	return v, ok
}

// HasVar reports whether this actor holds the variable id
func (a *Actor) HasVar(id string) bool {
	_, ok := a.Var(id)
	return ok
}

// SetVar stores a variable held by this actor; unknown ids are not created
func (a *Actor) SetVar(id, v string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.vars[id]; !ok {
		return false
	}
	a.vars[id] = v
	return true
}

// HasList reports whether this actor holds the list id
func (a *Actor) HasList(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.lists[id]
	return ok
}

// ListOp runs fn on a list under the actor lock; fn must not block
func (a *Actor) ListOp(id string, fn func(items []string) []string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	items, ok := a.lists[id]
	if !ok {
		return false
	}
	a.lists[id] = fn(items)
	return true
}

// List returns a copy of a list's contents
func (a *Actor) List(id string) ([]string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	items, ok := a.lists[id]
	if !ok {
		return nil, false
	}
	out := make([]string, len(items))
	copy(out, items)
	return out, true
}

// Variables returns a copy of every variable value keyed by id
func (a *Actor) Variables() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]string, len(a.vars))
	for k, v := range a.vars {
		out[k] = v
	}
	return out
}

// Lists returns a copy of every list keyed by id
func (a *Actor) Lists() map[string][]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string][]string, len(a.lists))
	for k, l := range a.lists {
		items := make([]string, len(l))
		copy(items, l)
		out[k] = items
	}
	return out
}
