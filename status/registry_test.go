package status

import (
	"slices"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMetricMapGetReturnsSamePointer(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	a := m.Get("x")
	b := m.Get("x")
	if a != b {
		t.Fatal("Get should return the cached pointer")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestMetricMapConcurrentRegistration(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Get("shared").Add(1)
		}()
	}
	wg.Wait()

	if got := m.Get("shared").Load(); got != 16 {
		t.Errorf("shared = %d, want 16", got)
	}
}

func TestMetricMapRangeSorted(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	for _, k := range []string{"tasks", "clones", "dispatches"} {
		m.Get(k)
	}
	var keys []string
	m.Range(func(k string, _ *atomic.Int64) { keys = append(keys, k) })
	if want := []string{"clones", "dispatches", "tasks"}; !slices.Equal(keys, want) {
		t.Errorf("Range order = %v, want %v", keys, want)
	}
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get(Dispatches).Store(42)
	r.Floats.Get(FrameRate).Store(29.5)
	r.Strings.Get(LastError).Store("boom")

	snap := r.Snapshot()
	if snap[Dispatches] != int64(42) {
		t.Errorf("dispatches = %v", snap[Dispatches])
	}
	if snap[FrameRate] != 29.5 {
		t.Errorf("fps = %v", snap[FrameRate])
	}
	if snap[LastError] != "boom" {
		t.Errorf("last error = %v", snap[LastError])
	}
}
