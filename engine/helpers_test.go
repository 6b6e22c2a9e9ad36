package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/scratchrun/project"
)

var testEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// ===== Program builders =====

func lit(v string) project.InputSpec {
	return project.InputSpec{Kind: project.InputLiteral, Value: v}
}

func expr(id project.BlockID) project.InputSpec {
	return project.InputSpec{Kind: project.InputExpression, Block: id}
}

func branch(id project.BlockID) project.InputSpec {
	return project.InputSpec{Kind: project.InputBranch, Block: id}
}

func varRef(id, name string) project.InputSpec {
	return project.InputSpec{Kind: project.InputVariable, RefID: id, Name: name}
}

func block(id, opcode string, inputs map[string]project.InputSpec) *project.Block {
	if inputs == nil {
		inputs = map[string]project.InputSpec{}
	}
	return &project.Block{
		ID:     project.BlockID(id),
		Opcode: opcode,
		Inputs: inputs,
		Fields: map[string]project.FieldSpec{},
	}
}

func hat(id, opcode string) *project.Block {
	b := block(id, opcode, nil)
	b.TopLevel = true
	return b
}

// chain links blocks through Next/Parent in order
func chain(blocks ...*project.Block) []*project.Block {
	for i := 0; i+1 < len(blocks); i++ {
		blocks[i].Next = blocks[i+1].ID
		blocks[i+1].Parent = blocks[i].ID
	}
	return blocks
}

func newProgram(blocks ...*project.Block) *project.Program {
	p := &project.Program{
		Blocks:        map[project.BlockID]*project.Block{},
		Procedures:    map[string]*project.Procedure{},
		Hats:          map[string][]project.BlockID{},
		ListNames:     map[string]string{},
		VariableNames: map[string]string{},
	}
	for _, b := range blocks {
		p.Blocks[b.ID] = b
		if b.TopLevel {
			p.Hats[b.Opcode] = append(p.Hats[b.Opcode], b.ID)
		}
	}
	return p
}

func newTarget(name string, stage bool, prog *project.Program) *project.Target {
	return &project.Target{
		Name:       name,
		IsStage:    stage,
		Direction:  90,
		Size:       100,
		Visible:    true,
		Broadcasts: map[string]string{},
		Program:    prog,
	}
}

func addVar(t *project.Target, id, name, value string) {
	t.Variables = append(t.Variables, project.Variable{ID: id, Name: name, Value: value})
	t.Program.VariableNames[name] = id
}

func addList(t *project.Target, id, name string, items ...string) {
	t.Lists = append(t.Lists, project.List{ID: id, Name: name, Items: items})
	t.Program.ListNames[name] = id
}

// ===== Test handlers =====

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) handler(t *Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	r.mu.Lock()
	r.values = append(r.values, p.Str("V"))
	r.mu.Unlock()
	return "", nil
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

func noop(*Thread, project.BlockID) (string, error) { return "", nil }

func testTable(rec *recorder) *Table {
	tb := NewTable()
	tb.Register(HatFlag, noop)
	tb.Register(HatKey, noop)
	tb.Register(HatBroadcast, noop)
	tb.Register(HatSpriteClick, noop)
	tb.Register(HatStageClick, noop)
	tb.Register(HatCloneStart, noop)
	tb.Register(HatProcedureDef, noop)
	tb.Register("test_record", rec.handler)
	tb.Register("test_echo", func(t *Thread, id project.BlockID) (string, error) {
		return t.Evaluate(id).Str("V"), nil
	})
	tb.Register("test_panic", func(*Thread, project.BlockID) (string, error) {
		panic("boom")
	})
	tb.Register("test_fail", func(*Thread, project.BlockID) (string, error) {
		return "", errors.New("handler failed")
	})
	tb.Register("test_forever", func(t *Thread, id project.BlockID) (string, error) {
		body := t.Evaluate(id).Block("SUBSTACK")
		for {
			if err := t.Yield(); err != nil {
				return "", err
			}
			if _, err := t.Run(body, true); err != nil {
				return "", err
			}
		}
	})
	tb.Register("test_setvar", func(t *Thread, id project.BlockID) (string, error) {
		f := t.Field(id, "VARIABLE")
		t.WriteVar(f.ID, f.Value, t.Evaluate(id).Str("V"))
		return "", nil
	})
	tb.Register("test_stop", func(t *Thread, id project.BlockID) (string, error) {
		return "", t.Stop()
	})
	tb.Register("test_clone", func(t *Thread, id project.BlockID) (string, error) {
		_, err := t.World.CreateClone(t.Actor)
		return "", err
	})
	tb.Register("test_delete", func(t *Thread, id project.BlockID) (string, error) {
		t.World.DeleteClone(t.Actor)
		return "", ErrHalted
	})
	tb.Register("test_const", func(*Thread, project.BlockID) (string, error) {
		return "42", nil
	})
	tb.Register("test_arg", func(t *Thread, id project.BlockID) (string, error) {
		v, ok := t.Arg(t.Evaluate(id).Str("NAME"))
		if !ok {
			return "", ErrArgumentUnbound
		}
		return v, nil
	})
	return tb
}

// ===== World construction =====

type testEnv struct {
	world *World
	clock *MockClock
	rec   *recorder
	logs  *syncWriter
}

func (e *testEnv) logText() string {
	e.logs.mu.Lock()
	defer e.logs.mu.Unlock()
	return e.logs.buf.String()
}

func newTestEnv(t *testing.T, cfg Config, targets ...*project.Target) *testEnv {
	t.Helper()
	rec := &recorder{}
	logs := &syncWriter{buf: &bytes.Buffer{}}
	clock := NewMockClock(testEpoch)
	w, err := NewWorld(&project.Package{Targets: targets}, testTable(rec), Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Clock:  clock,
	})
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	t.Cleanup(func() { w.Shutdown() })
	return &testEnv{world: w, clock: clock, rec: rec, logs: logs}
}

type syncWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

// waitThreads blocks until all threads finish or fails the test
func waitThreads(t *testing.T, ts ...*Thread) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for _, th := range ts {
		if th == nil {
			continue
		}
		select {
		case <-th.Done():
		case <-deadline:
			t.Fatalf("thread %s did not finish", th.ID)
		}
	}
}

// eventually polls cond until it holds or fails the test
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}
