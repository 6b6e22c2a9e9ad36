package engine

import (
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/status"
)

func TestRunWalksChain(t *testing.T) {
	prog := newProgram(chain(
		hat("h", HatFlag),
		block("a", "test_record", map[string]project.InputSpec{"V": lit("1")}),
		block("b", "test_record", map[string]project.InputSpec{"V": lit("2")}),
		block("c", "test_record", map[string]project.InputSpec{"V": lit("3")}),
	)...)
	env := newTestEnv(t, Config{}, newTarget("Stage", true, prog))

	waitThreads(t, env.world.GreenFlag()...)

	got := strings.Join(env.rec.get(), ",")
	if got != "1,2,3" {
		t.Errorf("executed %q, want 1,2,3", got)
	}
}

func TestRunWithoutFollowNext(t *testing.T) {
	prog := newProgram(chain(
		block("a", "test_echo", map[string]project.InputSpec{"V": lit("first")}),
		block("b", "test_record", map[string]project.InputSpec{"V": lit("second")}),
	)...)
	env := newTestEnv(t, Config{}, newTarget("Stage", true, prog))
	th := env.world.newThread(env.world.Stage(), "")

	v, err := th.Run("a", false)
	if err != nil || v != "first" {
		t.Fatalf("Run = %q, %v", v, err)
	}
	if len(env.rec.get()) != 0 {
		t.Error("next block ran without followNext")
	}
	if v, err := th.Run("", true); v != "" || err != nil {
		t.Errorf("empty id = %q, %v", v, err)
	}
}

func TestMissingHandlerSkipsBlock(t *testing.T) {
	prog := newProgram(chain(
		hat("h", HatFlag),
		block("a", "test_recrod", nil),
		block("b", "test_record", map[string]project.InputSpec{"V": lit("after")}),
	)...)
	env := newTestEnv(t, Config{}, newTarget("Stage", true, prog))

	waitThreads(t, env.world.GreenFlag()...)

	if got := env.rec.get(); len(got) != 1 || got[0] != "after" {
		t.Errorf("chain did not continue past missing handler: %v", got)
	}
	if n := env.world.Metrics().Ints.Get(status.MissingHandlers).Load(); n != 1 {
		t.Errorf("missing handler metric = %d", n)
	}
	if !strings.Contains(env.logText(), "did you mean test_record") {
		t.Errorf("no suggestion logged:\n%s", env.logText())
	}
}

func TestHandlerFailuresFailForward(t *testing.T) {
	prog := newProgram(chain(
		hat("h", HatFlag),
		block("p", "test_panic", nil),
		block("f", "test_fail", nil),
		block("b", "test_record", map[string]project.InputSpec{"V": lit("survived")}),
	)...)
	env := newTestEnv(t, Config{}, newTarget("Stage", true, prog))

	ts := env.world.GreenFlag()
	waitThreads(t, ts...)

	if got := env.rec.get(); len(got) != 1 || got[0] != "survived" {
		t.Errorf("recorded %v", got)
	}
	if n := env.world.Metrics().Ints.Get(status.HandlerErrors).Load(); n != 2 {
		t.Errorf("handler error metric = %d, want 2", n)
	}
	if ts[0].State() != Completed {
		t.Errorf("thread state = %v", ts[0].State())
	}
	logs := env.logText()
	for _, want := range []string{"opcode=test_panic", "block=p", "actor=Stage", "task=" + ts[0].ID} {
		if !strings.Contains(logs, want) {
			t.Errorf("log missing %q", want)
		}
	}
}

func TestStopThisScript(t *testing.T) {
	prog := newProgram(chain(
		hat("h", HatFlag),
		block("a", "test_record", map[string]project.InputSpec{"V": lit("before")}),
		block("s", "test_stop", nil),
		block("b", "test_record", map[string]project.InputSpec{"V": lit("after")}),
	)...)
	env := newTestEnv(t, Config{}, newTarget("Stage", true, prog))

	ts := env.world.GreenFlag()
	waitThreads(t, ts...)

	if got := env.rec.get(); len(got) != 1 || got[0] != "before" {
		t.Errorf("recorded %v", got)
	}
	if ts[0].State() != Cancelled {
		t.Errorf("state = %v, want cancelled", ts[0].State())
	}
}

func TestStopAllMakesDispatchNoop(t *testing.T) {
	prog := newProgram(block("a", "test_record", map[string]project.InputSpec{"V": lit("x")}))
	env := newTestEnv(t, Config{}, newTarget("Stage", true, prog))
	th := env.world.newThread(env.world.Stage(), "")

	env.world.StopAll()
	if _, err := th.Run("a", true); err != ErrHalted {
		t.Errorf("err = %v, want ErrHalted", err)
	}
	if len(env.rec.get()) != 0 {
		t.Error("block ran after stop all")
	}
	if env.world.Spawn(env.world.Stage(), "a") != nil {
		t.Error("spawn succeeded after stop all")
	}
}

func TestDispatchCountsAndLimiter(t *testing.T) {
	var calls atomic.Int64
	prog := newProgram(chain(
		hat("h", HatFlag),
		block("a", "test_count", nil),
		block("b", "test_count", nil),
	)...)
	rec := &recorder{}
	tb := testTable(rec)
	tb.Register("test_count", func(*Thread, project.BlockID) (string, error) {
		calls.Add(1)
		return "", nil
	})
	w, err := NewWorld(&project.Package{Targets: []*project.Target{newTarget("Stage", true, prog)}}, tb, Options{
		Config: Config{TickRate: 10000, Burst: 1},
		Clock:  NewMockClock(testEpoch),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Shutdown()

	waitThreads(t, w.GreenFlag()...)
	if calls.Load() != 2 {
		t.Errorf("calls = %d", calls.Load())
	}
	if n := w.Metrics().Ints.Get(status.Dispatches).Load(); n != 3 {
		t.Errorf("dispatches = %d, want 3", n)
	}
}
