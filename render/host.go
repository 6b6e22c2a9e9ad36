package render

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/input"
	"github.com/lixenwraith/scratchrun/status"
)

// fpsSmoothing weights the newest frame in the frame rate average
const fpsSmoothing = 0.1

// HostOptions configures a Host; zero values get defaults
type HostOptions struct {
	FrameInterval time.Duration
	Logger        *slog.Logger
}

// Host runs a world inside a terminal: it feeds input, drives the scheduler and redraws
// Event handling and drawing happen on the Run goroutine only
type Host struct {
	screen tcell.Screen
	world  *engine.World
	sched  *engine.Scheduler
	input  *input.State
	orch   *RenderOrchestrator
	log    *slog.Logger

	frameInterval time.Duration
	width, height int
	frame         uint64
	lastFrame     time.Time
	fps           *core.AtomicFloat

	events chan tcell.Event
}

// NewHost wires a screen to a world; the screen must already be initialized
func NewHost(screen tcell.Screen, world *engine.World, sched *engine.Scheduler, in *input.State, opts HostOptions) *Host {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 30
	}
	if opts.Logger == nil {
		opts.Logger = world.Logger()
	}
	w, h := screen.Size()
	orch := NewRenderOrchestrator(screen, w, h)
	orch.RegisterDefaults()

	return &Host{
		screen:        screen,
		world:         world,
		sched:         sched,
		input:         in,
		orch:          orch,
		log:           opts.Logger,
		frameInterval: opts.FrameInterval,
		width:         w,
		height:        h,
		fps:           world.Metrics().Floats.Get(status.FrameRate),
		events:        make(chan tcell.Event, 256),
	}
}

// Run clicks the green flag and loops until ctx ends, the user quits or the screen closes
func (h *Host) Run(ctx context.Context) error {
	h.screen.EnableMouse()
	h.screen.HideCursor()

	done := make(chan struct{})
	defer close(done)
	// Input polling interacts directly with the terminal
	core.Go(func() { h.poll(done) })

	// Start clicks the green flag
	h.sched.Start()
	defer h.sched.Stop()
	h.log.Info("host started", "scripts", len(h.world.Threads()), "width", h.width, "height", h.height)

	ticker := time.NewTicker(h.frameInterval)
	defer ticker.Stop()
	h.Draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-h.events:
			if !ok {
				h.log.Info("screen closed")
				return nil
			}
			if !h.HandleEvent(ev) {
				h.log.Info("quit requested")
				return nil
			}
		case now := <-ticker.C:
			h.updateFPS(now)
			h.Draw()
		}
	}
}

func (h *Host) poll(done <-chan struct{}) {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			close(h.events)
			return
		}
		select {
		case h.events <- ev:
		case <-done:
			return
		}
	}
}

// HandleEvent applies one terminal event; false means the user asked to quit
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if input.IsQuit(ev) {
			return false
		}
		if name, ok := input.KeyName(ev); ok {
			h.input.Press(name)
		}
	case *tcell.EventMouse:
		col, row := ev.Position()
		p := HitCell(OutputMapper(h.world, h.width, h.height), col, row)
		h.input.SetPointer(p.X, p.Y)
		h.input.SetButton(ev.Buttons()&tcell.Button1 != 0)
	case *tcell.EventResize:
		h.width, h.height = ev.Size()
		h.orch.Resize(h.width, h.height)
	}
	return true
}

// Draw renders one frame
func (h *Host) Draw() {
	h.frame++
	h.orch.RenderFrame(NewContext(h.world, h.frame, h.fps.Load(), h.width, h.height))
}

// Frames returns the number of frames drawn
func (h *Host) Frames() uint64 { return h.frame }

func (h *Host) updateFPS(now time.Time) {
	if !h.lastFrame.IsZero() {
		if dt := now.Sub(h.lastFrame).Seconds(); dt > 0 {
			cur := h.fps.Load()
			inst := 1 / dt
			if cur == 0 {
				h.fps.Store(inst)
			} else {
				h.fps.Store(cur + fpsSmoothing*(inst-cur))
			}
		}
	}
	h.lastFrame = now
}
