package blocks

import (
	"fmt"
	"math"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/registry"
	"github.com/lixenwraith/scratchrun/value"
)

// Stop menu options
const (
	StopAll          = "all"
	StopThisScript   = "this script"
	StopOtherScripts = "other scripts in sprite"
	StopOtherStage   = "other scripts in stage"
)

func init() {
	registry.RegisterFamily("control", controlHandlers)
}

func controlHandlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		"control_if":                   ifThen,
		"control_if_else":              ifElse,
		"control_repeat":               repeat,
		"control_repeat_until":         repeatUntil,
		"control_forever":              forever,
		"control_wait":                 wait,
		"control_wait_until":           waitUntil,
		"control_stop":                 stop,
		"control_create_clone_of":      createCloneOf,
		"control_create_clone_of_menu": menu("CLONE_OPTION"),
		"control_start_as_clone":       noop,
		"control_delete_this_clone":    deleteThisClone,
	}
}

// ===== Branches =====

func ifThen(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	if !p.Bool("CONDITION") {
		return "", nil
	}
	_, err := t.Run(p.Block("SUBSTACK"), true)
	return "", err
}

func ifElse(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	branch := p.Block("SUBSTACK2")
	if p.Bool("CONDITION") {
		branch = p.Block("SUBSTACK")
	}
	_, err := t.Run(branch, true)
	return "", err
}

// ===== Loops =====
// Every iteration takes a limiter token through Yield, which also fails once the
// thread is stopped or its actor deleted

func repeat(t *engine.Thread, id project.BlockID) (string, error) {
	p := t.Evaluate(id)
	n := value.ToInt(math.Round(p.Num("TIMES")))
	body := p.Block("SUBSTACK")
	for i := 0; i < n; i++ {
		if err := t.Yield(); err != nil {
			return "", err
		}
		if _, err := t.Run(body, true); err != nil {
			return "", err
		}
	}
	return "", nil
}

func repeatUntil(t *engine.Thread, id project.BlockID) (string, error) {
	body := t.Evaluate(id).Block("SUBSTACK")
	for {
		if err := t.Yield(); err != nil {
			return "", err
		}
		if value.ToBool(t.Input(id, "CONDITION")) {
			return "", nil
		}
		if _, err := t.Run(body, true); err != nil {
			return "", err
		}
	}
}

func forever(t *engine.Thread, id project.BlockID) (string, error) {
	body := t.Evaluate(id).Block("SUBSTACK")
	for {
		if err := t.Yield(); err != nil {
			return "", err
		}
		if _, err := t.Run(body, true); err != nil {
			return "", err
		}
	}
}

// ===== Waits =====

func wait(t *engine.Thread, id project.BlockID) (string, error) {
	return "", t.Sleep(value.Seconds(t.Evaluate(id).Num("DURATION")))
}

// waitUntil busy-polls its condition, re-evaluating it each time
func waitUntil(t *engine.Thread, id project.BlockID) (string, error) {
	for !value.ToBool(t.Input(id, "CONDITION")) {
		if err := t.Yield(); err != nil {
			return "", err
		}
	}
	return "", nil
}

// ===== Stop and clones =====

func stop(t *engine.Thread, id project.BlockID) (string, error) {
	switch opt := t.Field(id, "STOP_OPTION").Value; opt {
	case StopAll:
		t.World.StopAll()
		return "", engine.ErrHalted
	case StopThisScript:
		return "", t.Stop()
	case StopOtherScripts, StopOtherStage:
		t.World.StopOthers(t.Actor, t)
		return "", nil
	default:
		return "", fmt.Errorf("%w: stop option %q", engine.ErrMalformedParam, opt)
	}
}

func createCloneOf(t *engine.Thread, id project.BlockID) (string, error) {
	option := t.Evaluate(id).Str("CLONE_OPTION")
	of := t.Actor
	if option != engine.MenuMyself {
		var err error
		if of, err = t.World.FindSprite(option); err != nil {
			return "", err
		}
	}
	if of.IsStage() {
		return "", nil
	}
	_, err := t.World.CreateClone(of)
	return "", err
}

func deleteThisClone(t *engine.Thread, _ project.BlockID) (string, error) {
	if t.Actor.State() != engine.Clone {
		return "", nil
	}
	t.World.DeleteClone(t.Actor)
	return "", engine.ErrHalted
}
