package engine

import (
	"strings"
	"sync/atomic"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/project"
)

const (
	opVariable     = "data_variable"
	opListContents = "data_listcontents"
	monitorList    = "list"
	monitorDefault = "default"
)

// Monitor is the runtime state of one on-stage readout
type Monitor struct {
	Desc    project.Monitor
	owner   *Actor
	visible atomic.Bool
}

// MonitorState is a rendered monitor value
type MonitorState struct {
	ID      string   `yaml:"id"`
	Mode    string   `yaml:"mode"`
	Opcode  string   `yaml:"opcode"`
	Label   string   `yaml:"label"`
	Value   string   `yaml:"value,omitempty"`
	Items   []string `yaml:"items,omitempty"`
	Visible bool     `yaml:"visible"`
	X       float64  `yaml:"x"`
	Y       float64  `yaml:"y"`
}

func (w *World) loadMonitors() {
	for _, d := range w.pkg.Monitors {
		w.addMonitor(d)
	}
}

func (w *World) addMonitor(d project.Monitor) *Monitor {
	m := &Monitor{Desc: d, owner: w.stage}
	if d.SpriteName != "" {
		if a, ok := w.Sprite(d.SpriteName); ok {
			m.owner = a
		}
	}
	m.visible.Store(d.Visible)

	w.monitorsMu.Lock()
	w.monitors = append(w.monitors, m)
	w.monitorsMu.Unlock()
	return m
}

// SetMonitorVisible toggles the monitor of a variable or list id, creating it when absent
func (w *World) SetMonitorVisible(owner *Actor, id, name string, list, visible bool) {
	w.monitorsMu.RLock()
	for _, m := range w.monitors {
		if m.Desc.ID == id {
			w.monitorsMu.RUnlock()
			m.visible.Store(visible)
			return
		}
	}
	w.monitorsMu.RUnlock()

	d := project.Monitor{ID: id, Mode: monitorDefault, Opcode: opVariable, Params: map[string]string{"VARIABLE": name}, Visible: visible}
	if list {
		d.Mode, d.Opcode, d.Params = monitorList, opListContents, map[string]string{"LIST": name}
	}
	if owner != nil && !owner.IsStage() {
		d.SpriteName = owner.Name
	}
	w.addMonitor(d)
}

// Monitors evaluates every monitor
func (w *World) Monitors() []MonitorState {
	w.monitorsMu.RLock()
	ms := make([]*Monitor, len(w.monitors))
	copy(ms, w.monitors)
	w.monitorsMu.RUnlock()

	out := make([]MonitorState, 0, len(ms))
	for _, m := range ms {
		out = append(out, w.monitorState(m))
	}
	return out
}

func (w *World) monitorState(m *Monitor) MonitorState {
	d := m.Desc
	st := MonitorState{
		ID:      d.ID,
		Mode:    d.Mode,
		Opcode:  d.Opcode,
		Visible: m.visible.Load(),
		X:       d.X,
		Y:       d.Y,
	}
	prefix := ""
	if m.owner != nil && !m.owner.IsStage() {
		prefix = m.owner.Name + ": "
	}

	switch d.Opcode {
	case opVariable:
		st.Label = prefix + d.Params["VARIABLE"]
		if owner, id, ok := w.ResolveVar(m.owner, d.ID, d.Params["VARIABLE"]); ok {
			st.Value, _ = owner.Var(id)
		}
	case opListContents:
		st.Label = prefix + d.Params["LIST"]
		if owner, id, ok := w.ResolveList(m.owner, d.ID, d.Params["LIST"]); ok {
			st.Items, _ = owner.List(id)
		}
		if st.Items == nil {
			st.Items = []string{}
		}
	default:
		st.Label = prefix + monitorLabel(d.Opcode)
		st.Value = w.probe(m.owner, d)
	}
	return st
}

// probe runs a reporter handler on a detached block whose fields are the monitor params
func (w *World) probe(a *Actor, d project.Monitor) string {
	h, ok := w.table.Lookup(d.Opcode)
	if !ok || a == nil {
		return ""
	}
	t := w.newThread(a, "")
	defer t.cancel()
	t.detached = monitorBlock(d)

	var out string
	err := core.Recover(func() error {
		var herr error
		out, herr = h(t, t.detached.ID)
		return herr
	})
	if err != nil {
		w.log.Debug("monitor probe failed", "opcode", d.Opcode, "err", err)
		return ""
	}
	return out
}

func monitorBlock(d project.Monitor) *project.Block {
	b := &project.Block{
		ID:     project.BlockID("monitor:" + d.ID),
		Opcode: d.Opcode,
		Inputs: map[string]project.InputSpec{},
		Fields: make(map[string]project.FieldSpec, len(d.Params)),
	}
	for name, v := range d.Params {
		b.Fields[name] = project.FieldSpec{Value: v}
	}
	return b
}

func monitorLabel(opcode string) string {
	if i := strings.IndexByte(opcode, '_'); i >= 0 {
		return opcode[i+1:]
	}
	return opcode
}
