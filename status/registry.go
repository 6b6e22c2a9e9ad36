// Package status holds the runtime counters of the engine
// Components cache metric pointers at construction and update atomics directly
package status

import (
	"sync/atomic"

	"github.com/lixenwraith/scratchrun/core"
)

// Metric keys shared between the engine and the hosts
const (
	Dispatches      = "engine.dispatches"
	TasksStarted    = "engine.tasks.started"
	TasksLive       = "engine.tasks.live"
	TasksAbandoned  = "engine.tasks.abandoned"
	ClonesCreated   = "engine.clones.created"
	ClonesLive      = "engine.clones.live"
	MissingHandlers = "engine.errors.missing_handler"
	HandlerErrors   = "engine.errors.handler"
	ResolveErrors   = "engine.errors.resolve"
	LastError       = "engine.last_error"
	FrameRate       = "host.fps"
)

// Registry is the central metrics facade
type Registry struct {
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[core.AtomicFloat]
	Strings *MetricMap[core.AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[core.AtomicFloat](),
		Strings: NewMetricMap[core.AtomicString](),
	}
}

// Snapshot copies every metric into a plain map for reporting
func (r *Registry) Snapshot() map[string]any {
	out := make(map[string]any, r.Ints.Count()+r.Floats.Count()+r.Strings.Count())
	r.Ints.Range(func(k string, v *atomic.Int64) { out[k] = v.Load() })
	r.Floats.Range(func(k string, v *core.AtomicFloat) { out[k] = v.Load() })
	r.Strings.Range(func(k string, v *core.AtomicString) { out[k] = v.Load() })
	return out
}
