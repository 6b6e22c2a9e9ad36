package engine

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/lixenwraith/scratchrun/project"
)

// Handler executes one block and returns its reported value ("" for stack blocks)
// A returned ErrHalted propagates; any other error is reported and execution continues
type Handler func(t *Thread, id project.BlockID) (string, error)

// Table maps opcodes to handlers; populate before constructing a World, read-only afterwards
type Table struct {
	handlers map[string]Handler
	opcodes  []string
}

// NewTable creates an empty opcode table
func NewTable() *Table {
	return &Table{handlers: make(map[string]Handler)}
}

// Register binds a handler; registering an opcode twice panics
func (tb *Table) Register(opcode string, h Handler) {
	if _, exists := tb.handlers[opcode]; exists {
		panic(fmt.Sprintf("engine: opcode %q registered twice", opcode))
	}
	tb.handlers[opcode] = h
	i := sort.SearchStrings(tb.opcodes, opcode)
	tb.opcodes = append(tb.opcodes, "")
	copy(tb.opcodes[i+1:], tb.opcodes[i:])
	tb.opcodes[i] = opcode
}

// RegisterAll binds every entry of a handler family
func (tb *Table) RegisterAll(family map[string]Handler) {
	for opcode, h := range family {
		tb.Register(opcode, h)
	}
}

// Lookup returns the handler for an opcode
func (tb *Table) Lookup(opcode string) (Handler, bool) {
	h, ok := tb.handlers[opcode]
	return h, ok
}

// Opcodes returns registered opcodes in sorted order
func (tb *Table) Opcodes() []string {
	out := make([]string, len(tb.opcodes))
	copy(out, tb.opcodes)
	return out
}

// Len returns the number of registered opcodes
func (tb *Table) Len() int { return len(tb.handlers) }

// Suggest returns the closest registered opcode, or "" when nothing is close
func (tb *Table) Suggest(opcode string) string {
	limit := max(2, len(opcode)/4)
	best, bestDist := "", limit+1
	for _, candidate := range tb.opcodes {
		d := levenshtein.ComputeDistance(opcode, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// missingHandlerError builds the reported error for an unregistered opcode
func (tb *Table) missingHandlerError(opcode string) error {
	if s := tb.Suggest(opcode); s != "" {
		return fmt.Errorf("%w: %s (did you mean %s?)", ErrMissingHandler, opcode, s)
	}
	return fmt.Errorf("%w: %s", ErrMissingHandler, opcode)
}
