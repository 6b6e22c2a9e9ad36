package blocks

import (
	"fmt"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/registry"
)

func init() {
	registry.RegisterFamily("procedures", procedureHandlers)
}

func procedureHandlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		"procedures_definition":           noop,
		"procedures_prototype":            noop,
		"procedures_call":                 call,
		"argument_reporter_string_number": argument,
		"argument_reporter_boolean":       argument,
	}
}

// call binds argument values by name in a fresh frame and runs the definition body
func call(t *engine.Thread, id project.BlockID) (string, error) {
	b := t.Block(id)
	if b == nil || b.Mutation == nil {
		return "", fmt.Errorf("%w: procedure call without mutation", engine.ErrMalformedParam)
	}
	proc, ok := t.Actor.Program.Procedures[b.Mutation.ProcCode]
	if !ok {
		return "", fmt.Errorf("%w: %q", engine.ErrUnknownProcedure, b.Mutation.ProcCode)
	}

	argIDs := b.Mutation.ArgumentIDs
	var defaults []string
	if proc.Meta != nil {
		argIDs = proc.Meta.ArgumentIDs
		defaults = proc.Meta.Defaults
	}
	args := make(map[string]string, len(argIDs))
	for i, argID := range argIDs {
		name, ok := proc.Names[argID]
		if !ok {
			continue
		}
		if in, ok := b.Inputs[argID]; ok {
			args[name] = t.EvalInput(in)
		} else if i < len(defaults) {
			args[name] = defaults[i]
		} else {
			args[name] = ""
		}
	}
	return "", t.CallProcedure(proc.ProcCode, args)
}

// argument reads the innermost frame; outside any call it is reported and reads as ""
func argument(t *engine.Thread, id project.BlockID) (string, error) {
	name := t.Field(id, "VALUE").Value
	if v, ok := t.Arg(name); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", engine.ErrArgumentUnbound, name)
}
