package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/project"
)

// ThreadState is the lifecycle of one script execution
type ThreadState int32

const (
	Pending ThreadState = iota
	Running
	Completed
	Cancelled
)

func (s ThreadState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Thread is one script running on one actor, started from a hat block
// Frames and the current block are only touched by the owning goroutine
type Thread struct {
	ID    string
	Actor *Actor
	World *World
	Hat   project.BlockID

	ctx    context.Context
	cancel context.CancelFunc
	stop   atomic.Bool
	state  atomic.Int32
	done   chan struct{}

	frame   *Frame
	current project.BlockID
	// block outside the program, visible only to this thread
	detached *project.Block
}

func (w *World) newThread(a *Actor, hat project.BlockID) *Thread {
	ctx, cancel := context.WithCancel(w.ctx)
	return &Thread{
		ID:     uuid.NewString(),
		Actor:  a,
		World:  w,
		Hat:    hat,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Spawn starts a thread running the script under hat; nil if the world or actor is stopped
func (w *World) Spawn(a *Actor, hat project.BlockID) *Thread {
	if a.Deleted() {
		return nil
	}
	t := w.newThread(a, hat)

	w.threadsMu.Lock()
	// checked under the lock so Shutdown never sees a late wg.Add
	if w.Stopped() {
		w.threadsMu.Unlock()
		t.cancel()
		return nil
	}
	w.threads[t.ID] = t
	w.wg.Add(1)
	w.threadsMu.Unlock()

	w.statTasks.Add(1)
	w.statLive.Add(1)

	go t.run()
	return t
}

func (t *Thread) run() {
	w := t.World
	defer func() {
		final := Completed
		if t.Halted() {
			final = Cancelled
		}
		t.state.Store(int32(final))
		t.cancel()
		close(t.done)

		w.threadsMu.Lock()
		delete(w.threads, t.ID)
		w.threadsMu.Unlock()
		w.statLive.Add(-1)
		w.wg.Done()
	}()

	t.state.Store(int32(Running))
	err := core.Recover(func() error {
		_, err := t.Run(t.Hat, true)
		return err
	})
	var pe *core.PanicError
	if errors.As(err, &pe) {
		w.log.Error("thread panic", "actor", t.Actor.Name, "task", t.ID, "panic", pe.Value, "stack", string(pe.Stack))
	}
}

// State returns the lifecycle state
func (t *Thread) State() ThreadState { return ThreadState(t.state.Load()) }

// Done is closed when the thread finishes
func (t *Thread) Done() <-chan struct{} { return t.done }

// Context is cancelled when the thread must stop
func (t *Thread) Context() context.Context { return t.ctx }

// Current returns the block being executed
func (t *Thread) Current() project.BlockID { return t.current }

// Halted reports whether any stop condition applies to this thread
func (t *Thread) Halted() bool {
	return t.stop.Load() || t.World.stopped.Load() || t.Actor.Deleted() || t.ctx.Err() != nil
}

// halt sets the per-thread stop flag and wakes any sleep
func (t *Thread) halt() {
	t.stop.Store(true)
	t.cancel()
}

// Stop ends this thread; the current handler should return ErrHalted
func (t *Thread) Stop() error {
	t.halt()
	return ErrHalted
}

// Sleep suspends the thread for d, returning ErrHalted if stopped meanwhile
func (t *Thread) Sleep(d time.Duration) error {
	if err := t.World.clock.Sleep(t.ctx, d); err != nil || t.Halted() {
		return ErrHalted
	}
	return nil
}

// Yield takes one limiter token; loops call it once per iteration
func (t *Thread) Yield() error {
	if err := t.World.limiter.Wait(t.ctx); err != nil || t.Halted() {
		return ErrHalted
	}
	return nil
}

// Wait blocks until every thread in ts finishes or t is halted
func (t *Thread) Wait(ts []*Thread) error {
	for _, other := range ts {
		if other == nil {
			continue
		}
		select {
		case <-other.done:
		case <-t.ctx.Done():
			return ErrHalted
		}
	}
	if t.Halted() {
		return ErrHalted
	}
	return nil
}

// Report logs a non-fatal error against the current block
func (t *Thread) Report(err error) {
	opcode := ""
	if b := t.Actor.Program.Block(t.current); b != nil {
		opcode = b.Opcode
	}
	t.World.Report(t, t.current, opcode, err)
}

// ===== World-level thread control =====

// Threads returns the registered live threads
func (w *World) Threads() []*Thread {
	w.threadsMu.Lock()
	defer w.threadsMu.Unlock()
	out := make([]*Thread, 0, len(w.threads))
	for _, t := range w.threads {
		out = append(out, t)
	}
	return out
}

// Idle reports whether no thread is running
func (w *World) Idle() bool {
	w.threadsMu.Lock()
	defer w.threadsMu.Unlock()
	return len(w.threads) == 0
}

// StopAll sets the global stop flag; every dispatch becomes a no-op
func (w *World) StopAll() {
	if w.stopped.CompareAndSwap(false, true) {
		w.cancel()
		w.log.Info("stop all")
	}
}

// StopOthers halts every thread of a other than except
func (w *World) StopOthers(a *Actor, except *Thread) {
	w.threadsMu.Lock()
	defer w.threadsMu.Unlock()
	for _, t := range w.threads {
		if t.Actor == a && t != except {
			t.halt()
		}
	}
}

// Shutdown stops all threads and waits up to the grace period
// Threads still running afterwards are abandoned and counted, never killed
func (w *World) Shutdown() int {
	w.StopAll()
	// barrier: a Spawn that passed its stop check has finished wg.Add
	w.threadsMu.Lock()
	live := len(w.threads)
	w.threadsMu.Unlock()
	w.log.Debug("shutdown", "live", live)

	finished := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(finished)
	}()

	timer := time.NewTimer(w.cfg.ShutdownGrace)
	defer timer.Stop()
	select {
	case <-finished:
		w.log.Info("shutdown complete")
		return 0
	case <-timer.C:
	}

	abandoned := len(w.Threads())
	w.statAbandoned.Add(int64(abandoned))
	w.log.Warn("shutdown grace expired", "abandoned", abandoned, "grace", w.cfg.ShutdownGrace)
	return abandoned
}

// restart halts the live threads of a that were started from hat
func (w *World) restart(a *Actor, hat project.BlockID) {
	w.threadsMu.Lock()
	defer w.threadsMu.Unlock()
	for _, t := range w.threads {
		if t.Actor == a && t.Hat == hat {
			t.halt()
		}
	}
}

// running reports whether a thread for the same actor and hat is live and not halted
func (w *World) running(a *Actor, hat project.BlockID) bool {
	w.threadsMu.Lock()
	defer w.threadsMu.Unlock()
	for _, t := range w.threads {
		if t.Actor == a && t.Hat == hat && !t.stop.Load() {
			return true
		}
	}
	return false
}
