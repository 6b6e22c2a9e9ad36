package engine

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/input"
	"github.com/lixenwraith/scratchrun/project"
)

// Hat opcodes that start threads
const (
	HatFlag         = "event_whenflagclicked"
	HatKey          = "event_whenkeypressed"
	HatBroadcast    = "event_whenbroadcastreceived"
	HatSpriteClick  = "event_whenthisspriteclicked"
	HatStageClick   = "event_whenstageclicked"
	HatCloneStart   = "control_start_as_clone"
	HatProcedureDef = "procedures_definition"
)

// ===== Triggers =====

// GreenFlag resets the timer and starts every flag hat on every live actor
// Flag, broadcast and click hats restart: a live run of the same hat is halted first
func (w *World) GreenFlag() []*Thread {
	w.ResetTimer()
	return w.trigger(HatFlag, func(*Actor, *project.Block) bool { return true }, false)
}

// KeyPressed starts key hats matching a newly pressed key
// A hat whose previous run is still live is not restarted
func (w *World) KeyPressed(key string) []*Thread {
	key = strings.ToLower(key)
	return w.trigger(HatKey, func(_ *Actor, b *project.Block) bool {
		option := strings.ToLower(b.Fields["KEY_OPTION"].Value)
		return option == input.AnyKey || option == key
	}, true)
}

// Broadcast starts receive hats whose message matches name (case-insensitive) or id
func (w *World) Broadcast(name string) []*Thread {
	return w.trigger(HatBroadcast, func(_ *Actor, b *project.Block) bool {
		f := b.Fields["BROADCAST_OPTION"]
		return strings.EqualFold(f.Value, name) || (f.ID != "" && f.ID == name)
	}, false)
}

// Click starts the click hats of a sprite, or of the stage when a is nil
func (w *World) Click(a *Actor) []*Thread {
	if a == nil {
		if w.stage == nil {
			return nil
		}
		return w.spawnHats(w.stage, HatStageClick, nil, false)
	}
	return w.spawnHats(a, HatSpriteClick, nil, false)
}

func (w *World) trigger(opcode string, match func(*Actor, *project.Block) bool, skipRunning bool) []*Thread {
	var started []*Thread
	for _, a := range w.LiveActors() {
		started = append(started, w.spawnHats(a, opcode, match, skipRunning)...)
	}
	return started
}

func (w *World) spawnHats(a *Actor, opcode string, match func(*Actor, *project.Block) bool, skipRunning bool) []*Thread {
	var started []*Thread
	for _, hat := range a.Program.HatsOf(opcode) {
		b := a.Program.Block(hat)
		if b == nil || (match != nil && !match(a, b)) {
			continue
		}
		if skipRunning {
			if w.running(a, hat) {
				continue
			}
		} else {
			w.restart(a, hat)
		}
		if t := w.Spawn(a, hat); t != nil {
			started = append(started, t)
		}
	}
	return started
}

// ===== Host loop =====

// Scheduler polls input on a fixed tick and turns transitions into hat triggers
// It also reclaims deleted clones; script threads run independently of it
type Scheduler struct {
	world    *World
	interval time.Duration
	prev     input.Snapshot

	// Tick counter for debugging and metrics
	tickCount atomic.Uint64

	// Control channels
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewScheduler creates a scheduler ticking at interval
func NewScheduler(world *World, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Scheduler{
		world:    world,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start clicks the green flag and begins polling
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.prev = s.world.Input()
		s.world.GreenFlag()
		s.wg.Add(1)
		core.Go(s.loop)
	}
}

// Stop halts polling; script threads are stopped by World.Shutdown
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.running.CompareAndSwap(true, false) {
			close(s.stopChan)
			s.wg.Wait()
		}
	})
}

// Ticks returns the number of completed polls
func (s *Scheduler) Ticks() uint64 { return s.tickCount.Load() }

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-s.world.ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick processes one input poll; exported for hosts that drive their own loop
func (s *Scheduler) Tick() {
	w := s.world
	cur := w.Input()

	for _, key := range input.NewlyPressed(s.prev, cur) {
		w.KeyPressed(key)
	}
	if cur.Down && !s.prev.Down {
		w.Click(w.HitTest(cur.Pointer))
	}
	s.prev = cur

	w.LiveActors()
	s.tickCount.Add(1)
}
