// Package blocks implements the opcode handlers of the Scratch 3 block families
// Each family file registers itself with the registry at init; Register copies them into a table
package blocks

import (
	"math"

	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/registry"
	"github.com/lixenwraith/scratchrun/value"
)

// Register binds every registered family into tb
func Register(tb *engine.Table) {
	for _, name := range registry.FamilyNames() {
		factory, _ := registry.GetFamily(name)
		tb.RegisterAll(factory())
	}
}

// NewTable returns a table holding every built-in opcode
func NewTable() *engine.Table {
	tb := engine.NewTable()
	Register(tb)
	return tb
}

// ===== Shared handler helpers =====

// noop serves hats and prototypes, which do nothing when dispatched
func noop(*engine.Thread, project.BlockID) (string, error) { return "", nil }

// menu builds the handler of a shadow menu block that reports one field
func menu(field string) engine.Handler {
	return func(t *engine.Thread, id project.BlockID) (string, error) {
		return t.Field(id, field).Value, nil
	}
}

func num(f float64) string { return value.FormatNumber(f) }

// display rounds away float noise before a number is shown
func display(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return num(f)
	}
	return num(math.Round(f*1e9) / 1e9)
}

// sprite rejects handlers that only make sense for sprites
func sprite(t *engine.Thread) bool { return !t.Actor.IsStage() }
