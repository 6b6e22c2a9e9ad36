package render

import (
	"strings"
	"testing"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
)

func testWorld(t *testing.T) *engine.World {
	t.Helper()
	prog := func() *project.Program {
		return &project.Program{
			Blocks:        map[project.BlockID]*project.Block{},
			Procedures:    map[string]*project.Procedure{},
			Hats:          map[string][]project.BlockID{},
			ListNames:     map[string]string{},
			VariableNames: map[string]string{"score": "score"},
		}
	}
	stage := &project.Target{
		Name: "Stage", IsStage: true, Visible: true, Size: 100, Direction: 90,
		Costumes:  []project.Costume{{Name: "night", BitmapResolution: 1}},
		Variables: []project.Variable{{ID: "score", Name: "score", Value: "7"}},
		Program:   prog(),
	}
	cat := &project.Target{
		Name: "Cat", Visible: true, Size: 300, Direction: 90, LayerOrder: 1,
		RotationStyle: engine.RotateAllAround,
		Costumes:      []project.Costume{{Name: "c1", RotationCenterX: 10, RotationCenterY: 10, BitmapResolution: 1}},
		Program:       prog(),
	}
	pkg := &project.Package{
		Targets: []*project.Target{stage, cat},
		Monitors: []project.Monitor{{
			ID: "score", Mode: "default", Opcode: "data_variable",
			Params: map[string]string{"VARIABLE": "score"}, Visible: true,
		}},
	}
	w, err := engine.NewWorld(pkg, nil, engine.Options{})
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	t.Cleanup(func() { w.Shutdown() })
	return w
}

func render(t *testing.T, w *engine.World, r SystemRenderer) *Buffer {
	t.Helper()
	buf := NewBuffer(80, 25)
	r.Render(NewContext(w, 1, 30, 80, 25), buf)
	return buf
}

func TestStageViewport(t *testing.T) {
	r := StageViewport(80, 25)
	if r.Width() != 80 || r.Height() != 24 {
		t.Errorf("viewport = %v", r)
	}
	if r := StageViewport(0, 0); r.Width() != 1 || r.Height() != 1 {
		t.Errorf("degenerate viewport = %v", r)
	}
}

func TestHitCellRoundTrip(t *testing.T) {
	w := testWorld(t)
	m := OutputMapper(w, 80, 25)
	p := HitCell(m, 40, 12)
	// 480/80 = 6 px per column, 360/24 = 15 px per row
	if p.X != 243 || p.Y != 187.5 {
		t.Errorf("cell (40,12) -> %v", p)
	}
	if x, y := m.Map(p.X, p.Y); int(x) != 40 || int(y) != 12 {
		t.Errorf("round trip = (%v, %v)", x, y)
	}
}

func TestSpriteRenderer(t *testing.T) {
	w := testWorld(t)
	buf := render(t, w, &SpriteRenderer{})

	// 60x60 px centered at (240,180) covers columns 35-44 and rows 10-13
	if got := row(buf, 10); !strings.Contains(got, "┌────────┐") {
		t.Errorf("top edge row = %q", got)
	}
	if got := row(buf, 11); !strings.Contains(got, "│Cat") {
		t.Errorf("label row = %q", got)
	}
	if got := row(buf, 12); !strings.Contains(got, "│c1") {
		t.Errorf("costume row = %q", got)
	}

	cat, _ := w.Sprite("Cat")
	cat.SetVisible(false)
	if got := row(render(t, w, &SpriteRenderer{}), 11); strings.Contains(got, "Cat") {
		t.Errorf("hidden sprite drawn: %q", got)
	}
}

func TestCaptionRenderer(t *testing.T) {
	w := testWorld(t)
	cat, _ := w.Sprite("Cat")

	cat.SetCaption("hello", false)
	if got := row(render(t, w, &CaptionRenderer{}), 9); !strings.Contains(got, "<hello>") {
		t.Errorf("say row = %q", got)
	}
	cat.SetCaption("hmm", true)
	if got := row(render(t, w, &CaptionRenderer{}), 9); !strings.Contains(got, "(hmm)") {
		t.Errorf("think row = %q", got)
	}
}

func TestBubble(t *testing.T) {
	tests := []struct {
		text  string
		think bool
		want  string
	}{
		{"hi", false, "<hi>"},
		{"hi", true, "(hi)"},
		{"two\nlines", false, "<two lines>"},
		{strings.Repeat("a", 50), false, "<" + strings.Repeat("a", 39) + "…>"},
	}
	for _, tt := range tests {
		if got := Bubble(tt.text, tt.think); got != tt.want {
			t.Errorf("Bubble(%q, %v) = %q, want %q", tt.text, tt.think, got, tt.want)
		}
	}
}

func TestMonitorRenderer(t *testing.T) {
	w := testWorld(t)
	r := NewMonitorRenderer()
	if got := row(render(t, w, r), 0); !strings.HasPrefix(got, "score 7") {
		t.Errorf("monitor row = %q", got)
	}

	r.Toggle()
	if r.IsVisible() {
		t.Error("toggle did not hide monitors")
	}
}

func TestStageAndStatusRenderers(t *testing.T) {
	w := testWorld(t)
	if got := row(render(t, w, &StageRenderer{}), 0); !strings.Contains(got, " night ") {
		t.Errorf("backdrop row = %q", got)
	}

	status := row(render(t, w, &StatusBarRenderer{}), 24)
	for _, s := range []string{"fps 30", "threads 0", "errors 0"} {
		if !strings.Contains(status, s) {
			t.Errorf("status %q missing %q", status, s)
		}
	}

	w.StopAll()
	if status := row(render(t, w, &StatusBarRenderer{}), 24); !strings.Contains(status, "stopped") {
		t.Errorf("status after stop = %q", status)
	}
}

func TestSpriteColorStable(t *testing.T) {
	if SpriteColor("Cat") != SpriteColor("Cat") {
		t.Error("color not stable")
	}
}
