package input

import (
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestStateHoldWindow(t *testing.T) {
	clock := &fakeNow{t: time.Unix(1000, 0)}
	s := NewState(150*time.Millisecond, clock.now)

	s.Press("Space")
	if !s.Snapshot().Pressed("space") {
		t.Fatal("key not held after press")
	}

	clock.advance(100 * time.Millisecond)
	s.Press("space") // auto-repeat refresh
	clock.advance(100 * time.Millisecond)
	if !s.Snapshot().Pressed("space") {
		t.Error("refreshed key expired early")
	}

	clock.advance(100 * time.Millisecond)
	if s.Snapshot().Pressed("space") {
		t.Error("key still held after hold window")
	}
}

func TestStateHoldUntilRelease(t *testing.T) {
	clock := &fakeNow{t: time.Unix(1000, 0)}
	s := NewState(0, clock.now)

	s.Press("a")
	clock.advance(time.Hour)
	if !s.Snapshot().Pressed("a") {
		t.Fatal("zero hold should keep key until release")
	}
	s.Release("A")
	if s.Snapshot().Pressed("a") {
		t.Error("released key still held")
	}
}

func TestSnapshotAnyKey(t *testing.T) {
	empty := Snapshot{}
	if empty.Pressed(AnyKey) {
		t.Error("any matched with no keys")
	}
	snap := Snapshot{Keys: map[string]bool{"x": true}}
	if !snap.Pressed("any") || !snap.Pressed("X") || snap.Pressed("y") {
		t.Error("pressed lookup mismatch")
	}
}

func TestNewlyPressed(t *testing.T) {
	prev := Snapshot{Keys: map[string]bool{"a": true}}
	cur := Snapshot{Keys: map[string]bool{"a": true, "b": true, "space": true}}

	got := NewlyPressed(prev, cur)
	if len(got) != 2 || got[0] != "b" || got[1] != "space" {
		t.Errorf("NewlyPressed = %v", got)
	}
	if got := NewlyPressed(cur, prev); len(got) != 0 {
		t.Errorf("released keys reported as new: %v", got)
	}
}

func TestPointerAndButton(t *testing.T) {
	s := NewState(0, nil)
	s.SetPointer(12, 34)
	s.SetButton(true)
	snap := s.Snapshot()
	if snap.Pointer.X != 12 || snap.Pointer.Y != 34 || !snap.Down {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want string
		ok   bool
	}{
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), "space", true},
		{tcell.NewEventKey(tcell.KeyRune, 'W', tcell.ModNone), "w", true},
		{tcell.NewEventKey(tcell.KeyRune, '7', tcell.ModNone), "7", true},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), "up arrow", true},
		{tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), "", false},
	}
	for _, tt := range tests {
		got, ok := KeyName(tt.ev)
		if got != tt.want || ok != tt.ok {
			t.Errorf("KeyName(%v) = %q,%v want %q,%v", tt.ev.Name(), got, ok, tt.want, tt.ok)
		}
	}

	if !IsQuit(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape should quit")
	}
}

func TestStateConcurrentAccess(t *testing.T) {
	s := NewState(time.Millisecond, nil)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.Press("a")
				s.SetPointer(float64(j), 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = s.Snapshot().Pressed("a")
			}
		}()
	}
	wg.Wait()
}
