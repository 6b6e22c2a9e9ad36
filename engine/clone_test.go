package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/status"
)

func cloneTargets(spriteBlocks ...*project.Block) []*project.Target {
	stage := newTarget("Stage", true, newProgram())
	cat := newTarget("Cat", false, newProgram(spriteBlocks...))
	cat.LayerOrder = 1
	addVar(cat, "v", "hp", "10")
	addList(cat, "l", "bag", "x")
	return []*project.Target{stage, cat}
}

func TestCloneCopiesState(t *testing.T) {
	env := newTestEnv(t, Config{}, cloneTargets()...)
	cat, _ := env.world.Sprite("Cat")
	cat.SetPosition(5, 6)
	cat.SetDirection(45)

	c, err := env.world.CreateClone(cat)
	if err != nil {
		t.Fatal(err)
	}
	if c.State() != Clone || c.Origin != cat || c.Program != cat.Program {
		t.Errorf("clone identity wrong: state=%v", c.State())
	}
	if c.X() != 5 || c.Y() != 6 || c.Direction() != 45 {
		t.Errorf("clone transform = %+v", c.Transform())
	}

	c.SetVar("v", "1")
	c.ListOp("l", func(items []string) []string { return append(items, "y") })
	if v, _ := cat.Var("v"); v != "10" {
		t.Errorf("origin variable changed to %q", v)
	}
	if items, _ := cat.List("l"); len(items) != 1 {
		t.Errorf("origin list changed: %v", items)
	}

	grand, err := env.world.CreateClone(c)
	if err != nil {
		t.Fatal(err)
	}
	if grand.Origin != cat {
		t.Error("clone of clone should point at the original")
	}
	if v, _ := grand.Var("v"); v != "1" {
		t.Errorf("clone of clone copied %q", v)
	}
}

func TestCloneLimit(t *testing.T) {
	env := newTestEnv(t, Config{MaxClones: 2}, cloneTargets()...)
	cat, _ := env.world.Sprite("Cat")

	for i := 0; i < 2; i++ {
		if _, err := env.world.CreateClone(cat); err != nil {
			t.Fatalf("clone %d: %v", i, err)
		}
	}
	if _, err := env.world.CreateClone(cat); !errors.Is(err, ErrCloneLimit) {
		t.Errorf("err = %v, want ErrCloneLimit", err)
	}
	if _, err := env.world.CreateClone(env.world.Stage()); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("stage clone err = %v", err)
	}
}

func TestDeletedCloneIsReclaimed(t *testing.T) {
	env := newTestEnv(t, Config{MaxClones: 1}, cloneTargets()...)
	cat, _ := env.world.Sprite("Cat")

	c, _ := env.world.CreateClone(cat)
	if env.world.DeleteClone(cat) {
		t.Error("original sprite was deleted")
	}
	if !env.world.DeleteClone(c) || !c.Deleted() {
		t.Fatal("clone not deleted")
	}

	for _, a := range env.world.LiveActors() {
		if a == c {
			t.Error("deleted clone still live")
		}
	}
	if len(env.world.Actors()) != 2 {
		t.Errorf("actors = %d after reclaim", len(env.world.Actors()))
	}
	if _, err := env.world.CreateClone(cat); err != nil {
		t.Errorf("clone slot not freed: %v", err)
	}
	if n := env.world.Metrics().Ints.Get(status.ClonesCreated).Load(); n != 2 {
		t.Errorf("clones created = %d", n)
	}
}

func TestCloneStartHatRunsOnClone(t *testing.T) {
	blocks := []*project.Block{
		hat("cs", HatCloneStart),
		block("rec", "test_record", map[string]project.InputSpec{"V": lit("clone ran")}),
		block("del", "test_delete", nil),
		block("after", "test_record", map[string]project.InputSpec{"V": lit("after delete")}),
	}
	chain(blocks...)
	env := newTestEnv(t, Config{}, cloneTargets(blocks...)...)
	cat, _ := env.world.Sprite("Cat")

	c, err := env.world.CreateClone(cat)
	if err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return c.Deleted() && env.world.Idle() }, "clone script did not finish")

	if got := env.rec.get(); len(got) != 1 || got[0] != "clone ran" {
		t.Errorf("recorded %v", got)
	}
}

func TestDeletedCloneStopsForeverLoop(t *testing.T) {
	blocks := []*project.Block{
		hat("cs", HatCloneStart),
		block("loop", "test_forever", map[string]project.InputSpec{"SUBSTACK": branch("body")}),
		block("body", "test_record", map[string]project.InputSpec{"V": lit("tick")}),
	}
	chain(blocks[0], blocks[1])
	env := newTestEnv(t, Config{TickRate: 2000}, cloneTargets(blocks...)...)
	cat, _ := env.world.Sprite("Cat")

	c, err := env.world.CreateClone(cat)
	if err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return len(env.rec.get()) > 3 }, "loop never ran")

	env.world.DeleteClone(c)
	eventually(t, env.world.Idle, "loop did not stop after delete")

	n := len(env.rec.get())
	time.Sleep(5 * time.Millisecond)
	if len(env.rec.get()) != n {
		t.Error("loop body ran after thread finished")
	}
}
