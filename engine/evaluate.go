package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/value"
)

// Params holds evaluated block parameters keyed by upper-case input/field name
type Params map[string]string

// Str returns a parameter, "" when absent
func (p Params) Str(key string) string { return p[key] }

// Num returns a parameter coerced to a number
func (p Params) Num(key string) float64 { return value.ToNumber(p[key]) }

// Int returns a parameter truncated to an int
func (p Params) Int(key string) int { return value.ToInt(p[key]) }

// Bool returns a parameter coerced to a truth value
func (p Params) Bool(key string) bool { return value.ToBool(p[key]) }

// Block returns a branch parameter as a block id
func (p Params) Block(key string) project.BlockID { return project.BlockID(p[key]) }

// Has reports whether the key was produced
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// idFields yield the id half of their (name, id) pair
var idFields = map[string]bool{
	"VARIABLE":         true,
	"LIST":             true,
	"BROADCAST_OPTION": true,
}

// Block returns a block of the thread's program, nil when absent
func (t *Thread) Block(id project.BlockID) *project.Block {
	if d := t.detached; d != nil && id != "" && id == d.ID {
		return d
	}
	return t.Actor.Program.Block(id)
}

// Evaluate resolves every field and input of a block
// An empty or unknown id yields an empty map
func (t *Thread) Evaluate(id project.BlockID) Params {
	b := t.Block(id)
	if b == nil {
		return Params{}
	}
	p := make(Params, len(b.Fields)+len(b.Inputs))

	for name, f := range b.Fields {
		if idFields[name] && f.ID != "" {
			p[name] = f.ID
			continue
		}
		p[name] = f.Value
	}
	for name, in := range b.Inputs {
		p[name] = t.EvalInput(in)
	}
	return p
}

// Input evaluates a single named input of a block; missing inputs yield ""
// Used to re-evaluate conditions on every poll
func (t *Thread) Input(id project.BlockID, name string) string {
	b := t.Block(id)
	if b == nil {
		return ""
	}
	in, ok := b.Inputs[name]
	if !ok {
		return ""
	}
	return t.EvalInput(in)
}

// Field returns the display value of a block field
func (t *Thread) Field(id project.BlockID, name string) project.FieldSpec {
	if b := t.Block(id); b != nil {
		return b.Fields[name]
	}
	return project.FieldSpec{}
}

// EvalInput evaluates one tagged input
func (t *Thread) EvalInput(in project.InputSpec) string {
	switch in.Kind {
	case project.InputLiteral:
		return in.Value
	case project.InputExpression:
		v, _ := t.Run(in.Block, false)
		return v
	case project.InputVariable:
		return t.ReadVar(in.RefID, in.Name)
	case project.InputList:
		items, err := t.ListItems(in.RefID, in.Name)
		if err != nil {
			t.Report(err)
			return ""
		}
		return ListContents(items)
	case project.InputBranch:
		return string(in.Block)
	case project.InputEmpty:
		return ""
	default:
		t.Report(fmt.Errorf("%w: %s input %s", ErrMalformedParam, in.Kind, in.Value))
		return ""
	}
}

// ListContents renders a list the way a list reporter does:
// single-character items are concatenated, anything else is space separated
func ListContents(items []string) string {
	sep := ""
	for _, it := range items {
		if utf8.RuneCountInString(it) != 1 {
			sep = " "
			break
		}
	}
	return strings.Join(items, sep)
}
