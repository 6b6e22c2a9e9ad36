package status

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// MetricMap holds named metrics of type T, each allocated once and never removed
// Engine hot paths cache the pointer from Get and update it directly
type MetricMap[T any] struct {
	items sync.Map // string -> *T
	count atomic.Int64
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{}
}

// Get returns the metric for key, allocating it on first use
func (m *MetricMap[T]) Get(key string) *T {
	if v, ok := m.items.Load(key); ok {
		return v.(*T)
	}
	v, loaded := m.items.LoadOrStore(key, new(T))
	if !loaded {
		m.count.Add(1)
	}
	return v.(*T)
}

// Range visits metrics in key order so snapshots are stable
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	type entry struct {
		key string
		ptr *T
	}
	var entries []entry
	m.items.Range(func(k, v any) bool {
		entries = append(entries, entry{k.(string), v.(*T)})
		return true
	})
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.key, b.key) })
	for _, e := range entries {
		fn(e.key, e.ptr)
	}
}

func (m *MetricMap[T]) Count() int {
	return int(m.count.Load())
}
