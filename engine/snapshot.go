package engine

import (
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// ActorSnapshot is the serializable state of one actor
type ActorSnapshot struct {
	Name      string              `yaml:"name"`
	ID        string              `yaml:"id"`
	Role      string              `yaml:"role"`
	State     string              `yaml:"state"`
	X         float64             `yaml:"x"`
	Y         float64             `yaml:"y"`
	Direction float64             `yaml:"direction"`
	Size      float64             `yaml:"size"`
	Costume   string              `yaml:"costume"`
	Visible   bool                `yaml:"visible"`
	Caption   string              `yaml:"caption,omitempty"`
	Variables map[string]string   `yaml:"variables,omitempty"`
	Lists     map[string][]string `yaml:"lists,omitempty"`
}

// Snapshot is the serializable state of the world
type Snapshot struct {
	Timer    float64         `yaml:"timer"`
	Stopped  bool            `yaml:"stopped"`
	Threads  int             `yaml:"threads"`
	Actors   []ActorSnapshot `yaml:"actors"`
	Monitors []MonitorState  `yaml:"monitors,omitempty"`
	Metrics  map[string]any  `yaml:"metrics,omitempty"`
}

// Snapshot captures live actors, monitors and metrics
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Timer:    w.Timer(),
		Stopped:  w.Stopped(),
		Threads:  len(w.Threads()),
		Monitors: w.Monitors(),
		Metrics:  w.metrics.Snapshot(),
	}
	for _, a := range w.LiveActors() {
		s.Actors = append(s.Actors, snapshotActor(a))
	}
	return s
}

func snapshotActor(a *Actor) ActorSnapshot {
	tr := a.Transform()
	role := "sprite"
	if a.IsStage() {
		role = "stage"
	}
	costume := ""
	if c, ok := a.Costume(); ok {
		costume = c.Name
	}

	varNames := make(map[string]string, len(a.Target.Variables))
	for _, v := range a.Target.Variables {
		varNames[v.ID] = v.Name
	}
	listNames := make(map[string]string, len(a.Target.Lists))
	for _, l := range a.Target.Lists {
		listNames[l.ID] = l.Name
	}

	snap := ActorSnapshot{
		Name:      a.Name,
		ID:        a.ID,
		Role:      role,
		State:     a.State().String(),
		X:         tr.X,
		Y:         tr.Y,
		Direction: tr.Direction,
		Size:      tr.Size,
		Costume:   costume,
		Visible:   tr.Visible,
		Caption:   a.Caption(),
	}
	for id, v := range a.Variables() {
		if snap.Variables == nil {
			snap.Variables = make(map[string]string)
		}
		snap.Variables[nameOr(varNames, id)] = v
	}
	for id, items := range a.Lists() {
		if snap.Lists == nil {
			snap.Lists = make(map[string][]string)
		}
		snap.Lists[nameOr(listNames, id)] = items
	}
	return snap
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

// WriteYAML encodes a snapshot of the world
func (w *World) WriteYAML(out io.Writer) error {
	snap := w.Snapshot()
	sort.SliceStable(snap.Actors, func(i, j int) bool {
		return snap.Actors[i].Role == "stage" && snap.Actors[j].Role != "stage"
	})
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return err
	}
	return enc.Close()
}
