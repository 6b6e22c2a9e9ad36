package engine

import (
	"errors"

	"github.com/lixenwraith/scratchrun/core"
	"github.com/lixenwraith/scratchrun/project"
)

// Run executes a block and, with followNext, the rest of its stack
// The returned value is the first block's report; the error is only ever ErrHalted
func (t *Thread) Run(id project.BlockID, followNext bool) (string, error) {
	if id == "" {
		return "", nil
	}
	if t.Halted() {
		return "", ErrHalted
	}

	result, err := t.step(id)
	if err != nil || !followNext {
		return result, err
	}

	next := t.nextOf(id)
	for next != "" {
		if t.Halted() {
			return result, ErrHalted
		}
		if _, err := t.step(next); err != nil {
			return result, err
		}
		next = t.nextOf(next)
	}
	return result, nil
}

// step dispatches exactly one block; handler errors and panics stop at this boundary
func (t *Thread) step(id project.BlockID) (string, error) {
	w := t.World
	if err := w.limiter.Wait(t.ctx); err != nil || t.Halted() {
		return "", ErrHalted
	}

	block := t.Actor.Program.Block(id)
	if block == nil {
		w.Report(t, id, "", ErrMissingBlock)
		return "", nil
	}
	handler, ok := w.table.Lookup(block.Opcode)
	if !ok {
		w.Report(t, id, block.Opcode, w.table.missingHandlerError(block.Opcode))
		return "", nil
	}

	prev := t.current
	t.current = id
	defer func() { t.current = prev }()
	w.statDispatches.Add(1)

	var result string
	err := core.Recover(func() error {
		var herr error
		result, herr = handler(t, id)
		return herr
	})
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, ErrHalted):
		return result, ErrHalted
	}

	var pe *core.PanicError
	if errors.As(err, &pe) {
		w.log.Debug("handler panic", "opcode", block.Opcode, "stack", string(pe.Stack))
	}
	w.Report(t, id, block.Opcode, err)
	return "", nil
}

func (t *Thread) nextOf(id project.BlockID) project.BlockID {
	if b := t.Actor.Program.Block(id); b != nil {
		return b.Next
	}
	return ""
}
