// Package input holds the keyboard and pointer snapshot consumed by the engine
package input

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lixenwraith/scratchrun/core"
)

// AnyKey matches every key in key hats and the key pressed sensor
const AnyKey = "any"

// Snapshot is an immutable view of input at one instant
// Pointer is in output space
type Snapshot struct {
	Keys    map[string]bool
	Pointer core.Point
	Down    bool
}

// Pressed reports whether a Scratch key name is held; "any" matches any held key
func (s Snapshot) Pressed(name string) bool {
	name = strings.ToLower(name)
	if name == AnyKey {
		return len(s.Keys) > 0
	}
	return s.Keys[name]
}

// KeyList returns held keys in sorted order
func (s Snapshot) KeyList() []string {
	out := make([]string, 0, len(s.Keys))
	for k := range s.Keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NewlyPressed returns keys held in cur but not in prev
func NewlyPressed(prev, cur Snapshot) []string {
	var out []string
	for k := range cur.Keys {
		if !prev.Keys[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Source provides input snapshots to the engine
type Source interface {
	Snapshot() Snapshot
}

// State is a Source fed by a host event loop
// Terminals report key presses but not releases, so a press is held for the hold window
// and refreshed by auto-repeat; hold 0 means held until Release
type State struct {
	mu      sync.Mutex
	held    map[string]time.Time
	pointer core.Point
	down    bool
	hold    time.Duration
	now     func() time.Time
}

// NewState creates an input state; now defaults to time.Now
func NewState(hold time.Duration, now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	return &State{
		held: make(map[string]time.Time),
		hold: hold,
		now:  now,
	}
}

// Press marks a key held
func (s *State) Press(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var until time.Time
	if s.hold > 0 {
		until = s.now().Add(s.hold)
	}
	s.held[strings.ToLower(name)] = until
}

// Release clears a held key
func (s *State) Release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, strings.ToLower(name))
}

// SetPointer moves the pointer, in output space
func (s *State) SetPointer(x, y float64) {
	s.mu.Lock()
	s.pointer = core.Point{X: x, Y: y}
	s.mu.Unlock()
}

// SetButton sets the primary button state
func (s *State) SetButton(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

// Snapshot drops expired keys and returns a copy
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	keys := make(map[string]bool, len(s.held))
	for k, until := range s.held {
		if !until.IsZero() && now.After(until) {
			delete(s.held, k)
			continue
		}
		keys[k] = true
	}
	return Snapshot{Keys: keys, Pointer: s.pointer, Down: s.down}
}
