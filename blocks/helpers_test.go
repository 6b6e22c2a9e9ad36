package blocks

import (
	"strconv"
	"testing"
	"time"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/input"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/status"
)

var testEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// ===== Program builders =====

type inputs = map[string]project.InputSpec
type fields = map[string]project.FieldSpec

func lit(v string) project.InputSpec {
	return project.InputSpec{Kind: project.InputLiteral, Value: v}
}

func expr(id string) project.InputSpec {
	return project.InputSpec{Kind: project.InputExpression, Block: project.BlockID(id)}
}

func branch(id string) project.InputSpec {
	return project.InputSpec{Kind: project.InputBranch, Block: project.BlockID(id)}
}

func ref(name string) project.FieldSpec {
	return project.FieldSpec{Value: name, ID: name}
}

func opt(v string) project.FieldSpec {
	return project.FieldSpec{Value: v}
}

func blk(id, opcode string, in inputs, f fields) *project.Block {
	if in == nil {
		in = inputs{}
	}
	if f == nil {
		f = fields{}
	}
	return &project.Block{ID: project.BlockID(id), Opcode: opcode, Inputs: in, Fields: f}
}

// stack links blocks through Next/Parent
func stack(blocks ...*project.Block) []*project.Block {
	for i := 0; i+1 < len(blocks); i++ {
		blocks[i].Next = blocks[i+1].ID
		blocks[i+1].Parent = blocks[i].ID
	}
	return blocks
}

// script is a stack whose first block is a top-level hat
func script(blocks ...*project.Block) []*project.Block {
	blocks[0].TopLevel = true
	return stack(blocks...)
}

func onFlag(id string, body ...*project.Block) []*project.Block {
	return script(append([]*project.Block{blk(id, engine.HatFlag, nil, nil)}, body...)...)
}

func program(groups ...[]*project.Block) *project.Program {
	p := &project.Program{
		Blocks:        map[project.BlockID]*project.Block{},
		Procedures:    map[string]*project.Procedure{},
		Hats:          map[string][]project.BlockID{},
		ListNames:     map[string]string{},
		VariableNames: map[string]string{},
	}
	for _, g := range groups {
		for _, b := range g {
			p.Blocks[b.ID] = b
			if b.TopLevel {
				p.Hats[b.Opcode] = append(p.Hats[b.Opcode], b.ID)
			}
		}
	}
	return p
}

// defineProcedure adds a definition hat, its prototype and body to p
func defineProcedure(p *project.Program, proccode string, argNames []string, body ...*project.Block) {
	def := blk("def:"+proccode, engine.HatProcedureDef, nil, nil)
	def.TopLevel = true
	meta := &project.ProcedureMeta{ProcCode: proccode}
	names := make(map[string]string, len(argNames))
	for i, n := range argNames {
		argID := "arg" + strconv.Itoa(i)
		meta.ArgumentIDs = append(meta.ArgumentIDs, argID)
		meta.ArgumentNames = append(meta.ArgumentNames, n)
		meta.Defaults = append(meta.Defaults, "")
		names[argID] = n
	}
	for _, b := range stack(append([]*project.Block{def}, body...)...) {
		p.Blocks[b.ID] = b
	}
	p.Hats[def.Opcode] = append(p.Hats[def.Opcode], def.ID)
	p.Procedures[proccode] = &project.Procedure{ProcCode: proccode, Definition: def.ID, Names: names, Meta: meta}
}

// callProcedure builds a procedures_call with argument inputs in declaration order
func callProcedure(id, proccode string, args ...project.InputSpec) *project.Block {
	b := blk(id, "procedures_call", nil, nil)
	b.Mutation = &project.ProcedureMeta{ProcCode: proccode}
	for i, in := range args {
		argID := "arg" + strconv.Itoa(i)
		b.Mutation.ArgumentIDs = append(b.Mutation.ArgumentIDs, argID)
		b.Inputs[argID] = in
	}
	return b
}

// setOut stores a reporter's value in the global variable "out"
func setOut(id, reporter string) *project.Block {
	return blk(id, "data_setvariableto", inputs{"VALUE": expr(reporter)}, fields{"VARIABLE": ref("out")})
}

func stageTarget(prog *project.Program) *project.Target {
	t := &project.Target{
		Name:       "Stage",
		IsStage:    true,
		Visible:    true,
		Size:       100,
		Direction:  90,
		Broadcasts: map[string]string{},
		Program:    prog,
		Costumes: []project.Costume{
			{Name: "backdrop1", BitmapResolution: 1},
			{Name: "backdrop2", BitmapResolution: 1},
		},
	}
	addVar(t, "out", "")
	return t
}

func spriteTarget(name string, prog *project.Program) *project.Target {
	return &project.Target{
		Name:          name,
		Visible:       true,
		Size:          100,
		Direction:     90,
		RotationStyle: engine.RotateAllAround,
		LayerOrder:    1,
		Broadcasts:    map[string]string{},
		Program:       prog,
		Costumes: []project.Costume{
			{Name: "c1", RotationCenterX: 10, RotationCenterY: 10, BitmapResolution: 1},
			{Name: "c2", RotationCenterX: 10, RotationCenterY: 10, BitmapResolution: 1},
			{Name: "c3", RotationCenterX: 10, RotationCenterY: 10, BitmapResolution: 1},
		},
	}
}

// addVar declares a variable whose id equals its name
func addVar(t *project.Target, name, v string) {
	t.Variables = append(t.Variables, project.Variable{ID: name, Name: name, Value: v})
	t.Program.VariableNames[name] = name
}

// addList declares a list whose id equals its name
func addList(t *project.Target, name string, items ...string) {
	t.Lists = append(t.Lists, project.List{ID: name, Name: name, Items: items})
	t.Program.ListNames[name] = name
}

// ===== World harness =====

type env struct {
	world   *engine.World
	clock   *engine.MockClock
	input   *input.State
	metrics *status.Registry
}

func newEnv(t *testing.T, cfg engine.Config, targets ...*project.Target) *env {
	t.Helper()
	e := &env{
		clock:   engine.NewMockClock(testEpoch),
		input:   input.NewState(0, nil),
		metrics: status.NewRegistry(),
	}
	w, err := engine.NewWorld(&project.Package{Targets: targets}, NewTable(), engine.Options{
		Config:  cfg,
		Clock:   e.clock,
		Input:   e.input,
		Metrics: e.metrics,
	})
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	e.world = w
	t.Cleanup(func() { w.Shutdown() })
	return e
}

// flag clicks the green flag and waits for every started script
func (e *env) flag(t *testing.T) {
	t.Helper()
	waitAll(t, e.world.GreenFlag()...)
}

func (e *env) out() string {
	v, _ := e.world.Stage().Var("out")
	return v
}

func (e *env) sprite(t *testing.T, name string) *engine.Actor {
	t.Helper()
	a, ok := e.world.Sprite(name)
	if !ok {
		t.Fatalf("sprite %s not found", name)
	}
	return a
}

func (e *env) stat(key string) int64 {
	return e.metrics.Ints.Get(key).Load()
}

func waitAll(t *testing.T, ts ...*engine.Thread) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for _, th := range ts {
		select {
		case <-th.Done():
		case <-deadline:
			t.Fatalf("thread %s did not finish", th.ID)
		}
	}
}

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

// evalStage runs "set out to (root)" on the stage and returns out
// extra holds the reporter's sub-blocks
func evalStage(t *testing.T, root *project.Block, extra ...*project.Block) string {
	t.Helper()
	prog := program(onFlag("flag", setOut("set", string(root.ID))), append(extra, root))
	e := newEnv(t, engine.Config{}, stageTarget(prog))
	e.flag(t)
	return e.out()
}
