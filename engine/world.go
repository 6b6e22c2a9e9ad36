package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/input"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/status"
	"github.com/lixenwraith/scratchrun/vmath"
)

// LookupPolicy orders the namespaces searched for a variable or list id
type LookupPolicy string

const (
	StageFirst LookupPolicy = "stage-first"
	ActorFirst LookupPolicy = "actor-first"
)

// Config holds engine tunables; zero values are replaced by defaults
type Config struct {
	TickRate      float64 // dispatches per second, 0 = unlimited
	Burst         int
	GlideSteps    int
	ShutdownGrace time.Duration
	MaxClones     int
	LookupPolicy  LookupPolicy
	StageWidth    int
	StageHeight   int
	Username      string
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		TickRate:      1000,
		Burst:         16,
		GlideSteps:    100,
		ShutdownGrace: 500 * time.Millisecond,
		MaxClones:     300,
		LookupPolicy:  StageFirst,
		StageWidth:    480,
		StageHeight:   360,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickRate < 0 {
		c.TickRate = 0
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
	if c.GlideSteps <= 0 {
		c.GlideSteps = d.GlideSteps
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = d.ShutdownGrace
	}
	if c.MaxClones <= 0 {
		c.MaxClones = d.MaxClones
	}
	if c.LookupPolicy != ActorFirst {
		c.LookupPolicy = StageFirst
	}
	if c.StageWidth <= 0 {
		c.StageWidth = d.StageWidth
	}
	if c.StageHeight <= 0 {
		c.StageHeight = d.StageHeight
	}
	return c
}

// Options wires collaborators into a World; nil fields get working defaults
type Options struct {
	Config  Config
	Logger  *slog.Logger
	Metrics *status.Registry
	Clock   Clock
	Surface Surface
	Input   input.Source
}

// World is the runtime context shared by every thread
type World struct {
	cfg     Config
	pkg     *project.Package
	table   *Table
	log     *slog.Logger
	metrics *status.Registry
	clock   Clock
	limiter *Limiter
	surface Surface
	input   input.Source
	mapper  vmath.Mapper
	canvas  core.Rect

	ctx     context.Context
	cancel  context.CancelFunc
	stopped atomic.Bool

	actorsMu sync.RWMutex
	actors   []*Actor
	stage    *Actor
	clones   int

	threadsMu sync.Mutex
	threads   map[string]*Thread
	wg        sync.WaitGroup

	monitorsMu sync.RWMutex
	monitors   []*Monitor

	timerStart atomic.Int64 // unix nanos

	// Cached metric pointers
	statDispatches *atomic.Int64
	statTasks      *atomic.Int64
	statLive       *atomic.Int64
	statAbandoned  *atomic.Int64
	statClones     *atomic.Int64
	statClonesLive *atomic.Int64
	statMissing    *atomic.Int64
	statErrors     *atomic.Int64
	statResolve    *atomic.Int64
	statLastError  *core.AtomicString
}

// NewWorld builds actors and monitors from a package; no thread runs until GreenFlag
func NewWorld(pkg *project.Package, table *Table, opts Options) (*World, error) {
	if pkg == nil || pkg.Stage() == nil {
		return nil, fmt.Errorf("new world: %w", project.ErrNoStage)
	}
	cfg := opts.Config.withDefaults()

	w := &World{
		cfg:     cfg,
		pkg:     pkg,
		table:   table,
		log:     opts.Logger,
		metrics: opts.Metrics,
		clock:   opts.Clock,
		surface: opts.Surface,
		input:   opts.Input,
		threads: make(map[string]*Thread),
	}
	if w.table == nil {
		w.table = NewTable()
	}
	if w.log == nil {
		w.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if w.metrics == nil {
		w.metrics = status.NewRegistry()
	}
	if w.clock == nil {
		w.clock = NewTimeProvider()
	}
	if w.input == nil {
		w.input = input.NewState(0, nil)
	}
	w.mapper = vmath.MustMapper(vmath.Logical, vmath.Canvas(cfg.StageWidth, cfg.StageHeight))
	w.canvas = vmath.Canvas(cfg.StageWidth, cfg.StageHeight).Bounds()
	if w.surface == nil {
		w.surface = NewBoxSurface(w.mapper)
	}
	w.limiter = NewLimiter(cfg.TickRate, cfg.Burst)
	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.statDispatches = w.metrics.Ints.Get(status.Dispatches)
	w.statTasks = w.metrics.Ints.Get(status.TasksStarted)
	w.statLive = w.metrics.Ints.Get(status.TasksLive)
	w.statAbandoned = w.metrics.Ints.Get(status.TasksAbandoned)
	w.statClones = w.metrics.Ints.Get(status.ClonesCreated)
	w.statClonesLive = w.metrics.Ints.Get(status.ClonesLive)
	w.statMissing = w.metrics.Ints.Get(status.MissingHandlers)
	w.statErrors = w.metrics.Ints.Get(status.HandlerErrors)
	w.statResolve = w.metrics.Ints.Get(status.ResolveErrors)
	w.statLastError = w.metrics.Strings.Get(status.LastError)

	for _, t := range pkg.Targets {
		a := newActor(t)
		if a.IsStage() && w.stage == nil {
			w.stage = a
		}
		w.actors = append(w.actors, a)
	}
	sort.SliceStable(w.actors, func(i, j int) bool {
		return w.actors[i].Target.LayerOrder < w.actors[j].Target.LayerOrder
	})
	w.ResetTimer()
	w.loadMonitors()

	w.log.Info("world loaded",
		"targets", len(pkg.Targets),
		"opcodes", w.table.Len(),
		"lookup", string(cfg.LookupPolicy),
		"tick_rate", cfg.TickRate)
	return w, nil
}

// ===== Accessors =====

func (w *World) Config() Config { return w.cfg }
func (w *World) Logger() *slog.Logger { return w.log }
func (w *World) Metrics() *status.Registry { return w.metrics }
func (w *World) Clock() Clock { return w.clock }
func (w *World) Surface() Surface { return w.surface }
func (w *World) Table() *Table { return w.table }
func (w *World) Package() *project.Package { return w.pkg }
func (w *World) Stage() *Actor { return w.stage }
func (w *World) Context() context.Context { return w.ctx }
func (w *World) Input() input.Snapshot { return w.input.Snapshot() }

// Mapper returns the logical-to-output transform
func (w *World) Mapper() vmath.Mapper { return w.mapper }

// Canvas returns the output canvas rectangle
func (w *World) Canvas() core.Rect { return w.canvas }

// Stopped reports whether the global stop flag is set
func (w *World) Stopped() bool { return w.stopped.Load() }

// Pointer returns the pointer position in logical space
func (w *World) Pointer() (float64, float64) {
	p := w.input.Snapshot().Pointer
	return w.mapper.Inverse().Map(p.X, p.Y)
}

// ===== Actors =====

// Actors returns every actor including deleted clones not yet reclaimed
func (w *World) Actors() []*Actor {
	w.actorsMu.RLock()
	defer w.actorsMu.RUnlock()
	out := make([]*Actor, len(w.actors))
	copy(out, w.actors)
	return out
}

// LiveActors returns non-deleted actors in layer order and reclaims deleted clones
func (w *World) LiveActors() []*Actor {
	w.actorsMu.Lock()
	defer w.actorsMu.Unlock()

	live := w.actors[:0]
	for _, a := range w.actors {
		if a.Deleted() {
			w.clones--
			continue
		}
		live = append(live, a)
	}
	for i := len(live); i < len(w.actors); i++ {
		w.actors[i] = nil
	}
	w.actors = live
	w.statClonesLive.Store(int64(w.clones))

	out := make([]*Actor, len(live))
	copy(out, live)
	return out
}

// Sprite returns the original sprite with the given name
func (w *World) Sprite(name string) (*Actor, bool) {
	w.actorsMu.RLock()
	defer w.actorsMu.RUnlock()
	for _, a := range w.actors {
		if !a.IsStage() && a.Origin == nil && a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// SpriteNames returns original sprite names in layer order
func (w *World) SpriteNames() []string {
	w.actorsMu.RLock()
	defer w.actorsMu.RUnlock()
	var out []string
	for _, a := range w.actors {
		if !a.IsStage() && a.Origin == nil {
			out = append(out, a.Name)
		}
	}
	return out
}

// CreateClone duplicates a sprite and starts its clone hats
func (w *World) CreateClone(of *Actor) (*Actor, error) {
	if of == nil || of.IsStage() {
		return nil, fmt.Errorf("%w: the stage cannot be cloned", ErrUnknownTarget)
	}
	if of.Deleted() || w.Stopped() {
		return nil, ErrHalted
	}

	w.actorsMu.Lock()
	if w.clones >= w.cfg.MaxClones {
		w.actorsMu.Unlock()
		return nil, fmt.Errorf("%w (%d)", ErrCloneLimit, w.cfg.MaxClones)
	}
	c := of.clone()
	// clones are placed directly behind their parent
	idx := len(w.actors)
	for i, a := range w.actors {
		if a == of {
			idx = i
			break
		}
	}
	w.actors = append(w.actors, nil)
	copy(w.actors[idx+1:], w.actors[idx:])
	w.actors[idx] = c
	w.clones++
	w.actorsMu.Unlock()

	w.statClones.Add(1)
	w.statClonesLive.Add(1)

	for _, hat := range c.Program.HatsOf("control_start_as_clone") {
		w.Spawn(c, hat)
	}
	return c, nil
}

// DeleteClone marks a clone deleted and cancels its threads; originals are unaffected
func (w *World) DeleteClone(a *Actor) bool {
	if !a.markDeleted() {
		return false
	}
	a.SetCaption("", false)
	w.threadsMu.Lock()
	for _, t := range w.threads {
		if t.Actor == a {
			t.halt()
		}
	}
	w.threadsMu.Unlock()
	return true
}

// ===== Timer =====

// Timer returns seconds since the last timer reset
func (w *World) Timer() float64 {
	return float64(w.clock.Now().UnixNano()-w.timerStart.Load()) / float64(time.Second)
}

// ResetTimer restarts the project timer
func (w *World) ResetTimer() {
	w.timerStart.Store(w.clock.Now().UnixNano())
}

// ===== Reporting =====

// Report logs a non-fatal error with block context and updates metrics
func (w *World) Report(t *Thread, id project.BlockID, opcode string, err error) {
	be := &BlockError{Block: id, Opcode: opcode, Err: err}
	if t != nil {
		be.Actor = t.Actor.Name
		be.Task = t.ID
	}

	switch {
	case IsResolution(err):
		w.statResolve.Add(1)
	case errors.Is(err, ErrMissingHandler):
		w.statMissing.Add(1)
	default:
		w.statErrors.Add(1)
	}
	w.statLastError.Store(be.Error())

	w.log.Warn("block error",
		"actor", be.Actor,
		"task", be.Task,
		"block", string(id),
		"opcode", opcode,
		"err", err)
}

// FindSprite resolves a sprite name used by menu-driven blocks
func (w *World) FindSprite(name string) (*Actor, error) {
	if a, ok := w.Sprite(name); ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
}
