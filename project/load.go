package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lixenwraith/scratchrun/value"
)

var (
	// ErrInvalidPackage is returned for input that is not a usable project document
	ErrInvalidPackage = errors.New("invalid project package")
	// ErrNoStage is returned when no target is flagged as the stage
	ErrNoStage = errors.New("project has no stage target")
)

// Primitive type codes used inside serialized inputs
const (
	primNumber       = 4
	primPositive     = 5
	primWhole        = 6
	primInteger      = 7
	primAngle        = 8
	primColor        = 9
	primText         = 10
	primBroadcast    = 11
	primVariable     = 12
	primList         = 13
	shadowSame       = 1
	shadowNone       = 2
	shadowObscured   = 3
	substackPrefix   = "SUBSTACK"
	customBlockInput = "custom_block"
)

// Load decodes a project.json document
// Unknown keys are ignored; malformed inputs are kept as InputMalformed for the evaluator to report
func Load(data []byte) (*Package, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidPackage)
	}
	doc := gjson.ParseBytes(data)
	targets := doc.Get("targets")
	if !targets.IsArray() {
		return nil, fmt.Errorf("%w: missing targets array", ErrInvalidPackage)
	}

	pkg := &Package{}
	var loadErr error
	targets.ForEach(func(_, t gjson.Result) bool {
		target, err := parseTarget(t)
		if err != nil {
			loadErr = err
			return false
		}
		pkg.Targets = append(pkg.Targets, target)
		return true
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if pkg.Stage() == nil {
		return nil, ErrNoStage
	}

	doc.Get("monitors").ForEach(func(_, m gjson.Result) bool {
		pkg.Monitors = append(pkg.Monitors, parseMonitor(m))
		return true
	})
	return pkg, nil
}

func parseTarget(t gjson.Result) (*Target, error) {
	name := t.Get("name").String()
	target := &Target{
		Name:           name,
		IsStage:        t.Get("isStage").Bool(),
		Broadcasts:     make(map[string]string),
		CurrentCostume: int(t.Get("currentCostume").Int()),
		X:              t.Get("x").Float(),
		Y:              t.Get("y").Float(),
		Direction:      90,
		Size:           100,
		Visible:        true,
		Draggable:      t.Get("draggable").Bool(),
		RotationStyle:  t.Get("rotationStyle").String(),
		LayerOrder:     int(t.Get("layerOrder").Int()),
	}
	if d := t.Get("direction"); d.Exists() {
		target.Direction = d.Float()
	}
	if s := t.Get("size"); s.Exists() {
		target.Size = s.Float()
	}
	if v := t.Get("visible"); v.Exists() {
		target.Visible = v.Bool()
	}

	prog := &Program{
		Blocks:        make(map[BlockID]*Block),
		Procedures:    make(map[string]*Procedure),
		Hats:          make(map[string][]BlockID),
		ListNames:     make(map[string]string),
		VariableNames: make(map[string]string),
	}
	target.Program = prog

	t.Get("variables").ForEach(func(id, v gjson.Result) bool {
		variable := Variable{
			ID:    id.String(),
			Name:  v.Get("0").String(),
			Value: scalar(v.Get("1")),
			Cloud: v.Get("2").Bool(),
		}
		target.Variables = append(target.Variables, variable)
		prog.VariableNames[variable.Name] = variable.ID
		return true
	})

	t.Get("lists").ForEach(func(id, l gjson.Result) bool {
		list := List{ID: id.String(), Name: l.Get("0").String(), Items: []string{}}
		l.Get("1").ForEach(func(_, item gjson.Result) bool {
			list.Items = append(list.Items, scalar(item))
			return true
		})
		target.Lists = append(target.Lists, list)
		prog.ListNames[list.Name] = list.ID
		return true
	})

	t.Get("broadcasts").ForEach(func(id, n gjson.Result) bool {
		target.Broadcasts[id.String()] = n.String()
		return true
	})

	t.Get("costumes").ForEach(func(_, c gjson.Result) bool {
		res := c.Get("bitmapResolution").Float()
		if res <= 0 {
			res = 1
		}
		target.Costumes = append(target.Costumes, Costume{
			Name:             c.Get("name").String(),
			AssetID:          c.Get("assetId").String(),
			MD5Ext:           c.Get("md5ext").String(),
			Format:           c.Get("dataFormat").String(),
			RotationCenterX:  c.Get("rotationCenterX").Float(),
			RotationCenterY:  c.Get("rotationCenterY").Float(),
			BitmapResolution: res,
		})
		return true
	})

	var blockErr error
	t.Get("blocks").ForEach(func(id, b gjson.Result) bool {
		// top-level variable/list reporters are serialized as bare arrays
		if !b.IsObject() {
			return true
		}
		block, err := parseBlock(BlockID(id.String()), b)
		if err != nil {
			blockErr = fmt.Errorf("target %q: %w", name, err)
			return false
		}
		prog.Blocks[block.ID] = block
		if block.TopLevel && isHat(block.Opcode) {
			prog.Hats[block.Opcode] = append(prog.Hats[block.Opcode], block.ID)
		}
		return true
	})
	if blockErr != nil {
		return nil, blockErr
	}

	linkProcedures(prog)
	return target, nil
}

func parseBlock(id BlockID, b gjson.Result) (*Block, error) {
	opcode := b.Get("opcode").String()
	if opcode == "" {
		return nil, fmt.Errorf("%w: block %s has no opcode", ErrInvalidPackage, id)
	}
	block := &Block{
		ID:       id,
		Opcode:   opcode,
		Inputs:   make(map[string]InputSpec),
		Fields:   make(map[string]FieldSpec),
		Next:     BlockID(b.Get("next").String()),
		Parent:   BlockID(b.Get("parent").String()),
		TopLevel: b.Get("topLevel").Bool(),
		Shadow:   b.Get("shadow").Bool(),
	}

	b.Get("inputs").ForEach(func(k, v gjson.Result) bool {
		name := strings.ToUpper(k.String())
		// procedure call inputs are keyed by argument id, which is case sensitive
		if opcode == "procedures_call" || k.String() == customBlockInput {
			name = k.String()
		}
		block.Inputs[name] = parseInput(name, v)
		return true
	})

	b.Get("fields").ForEach(func(k, v gjson.Result) bool {
		block.Fields[strings.ToUpper(k.String())] = FieldSpec{
			Value: scalar(v.Get("0")),
			ID:    v.Get("1").String(),
		}
		return true
	})

	if m := b.Get("mutation"); m.IsObject() {
		block.Mutation = parseMutation(m)
	}
	return block, nil
}

// parseInput classifies one serialized input
// Shape: [shadowTag, body, shadowBody?]; body is null, a block id or a primitive array
func parseInput(name string, v gjson.Result) InputSpec {
	if !v.IsArray() {
		return InputSpec{Kind: InputMalformed, Value: v.Raw}
	}
	tag := v.Get("0").Int()
	if tag != shadowSame && tag != shadowNone && tag != shadowObscured {
		return InputSpec{Kind: InputMalformed, Value: v.Raw}
	}
	body := v.Get("1")

	if strings.HasPrefix(name, substackPrefix) {
		return InputSpec{Kind: InputBranch, Block: BlockID(body.String())}
	}

	switch {
	case !body.Exists() || body.Type == gjson.Null:
		return InputSpec{Kind: InputEmpty}
	case body.Type == gjson.String:
		return InputSpec{Kind: InputExpression, Block: BlockID(body.Str)}
	case body.IsArray():
		return parsePrimitive(body)
	default:
		return InputSpec{Kind: InputMalformed, Value: v.Raw}
	}
}

func parsePrimitive(p gjson.Result) InputSpec {
	switch p.Get("0").Int() {
	case primNumber, primPositive, primWhole, primInteger, primAngle, primColor, primText:
		return InputSpec{Kind: InputLiteral, Value: scalar(p.Get("1"))}
	case primBroadcast:
		return InputSpec{Kind: InputLiteral, Value: p.Get("1").String(), Name: p.Get("1").String(), RefID: p.Get("2").String()}
	case primVariable:
		return InputSpec{Kind: InputVariable, Name: p.Get("1").String(), RefID: p.Get("2").String()}
	case primList:
		return InputSpec{Kind: InputList, Name: p.Get("1").String(), RefID: p.Get("2").String()}
	default:
		return InputSpec{Kind: InputMalformed, Value: p.Raw}
	}
}

// parseMutation decodes a procedure mutation; argument arrays are JSON encoded strings
func parseMutation(m gjson.Result) *ProcedureMeta {
	meta := &ProcedureMeta{
		ProcCode:      m.Get("proccode").String(),
		ArgumentIDs:   stringArray(m.Get("argumentids")),
		ArgumentNames: stringArray(m.Get("argumentnames")),
		Defaults:      stringArray(m.Get("argumentdefaults")),
	}
	switch w := m.Get("warp"); w.Type {
	case gjson.True:
		meta.Warp = true
	case gjson.String:
		meta.Warp = w.Str == "true"
	}
	return meta
}

func stringArray(r gjson.Result) []string {
	if r.Type == gjson.String {
		r = gjson.Parse(r.Str)
	}
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, scalar(v))
		return true
	})
	return out
}

// linkProcedures indexes every definition by the proccode of its prototype
func linkProcedures(prog *Program) {
	for _, defID := range prog.Hats["procedures_definition"] {
		def := prog.Blocks[defID]
		protoID := def.Inputs[customBlockInput].Block
		proto := prog.Blocks[protoID]
		if proto == nil || proto.Mutation == nil {
			continue
		}
		names := make(map[string]string, len(proto.Mutation.ArgumentIDs))
		for i, argID := range proto.Mutation.ArgumentIDs {
			if i < len(proto.Mutation.ArgumentNames) {
				names[argID] = proto.Mutation.ArgumentNames[i]
			}
		}
		prog.Procedures[proto.Mutation.ProcCode] = &Procedure{
			ProcCode:   proto.Mutation.ProcCode,
			Definition: defID,
			Prototype:  protoID,
			Names:      names,
			Meta:       proto.Mutation,
		}
	}
}

func parseMonitor(m gjson.Result) Monitor {
	mon := Monitor{
		ID:         m.Get("id").String(),
		Mode:       m.Get("mode").String(),
		Opcode:     m.Get("opcode").String(),
		Params:     make(map[string]string),
		SpriteName: m.Get("spriteName").String(),
		Visible:    m.Get("visible").Bool(),
		X:          m.Get("x").Float(),
		Y:          m.Get("y").Float(),
		Width:      m.Get("width").Float(),
		Height:     m.Get("height").Float(),
	}
	m.Get("params").ForEach(func(k, v gjson.Result) bool {
		mon.Params[strings.ToUpper(k.String())] = scalar(v)
		return true
	})
	return mon
}

func isHat(opcode string) bool {
	return strings.HasPrefix(opcode, "event_when") ||
		opcode == "control_start_as_clone" ||
		opcode == "procedures_definition"
}

// scalar renders a JSON scalar the way the runtime stores values
func scalar(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return value.FormatNumber(r.Num)
	case gjson.True:
		return value.True
	case gjson.False:
		return value.False
	case gjson.Null:
		return ""
	default:
		return r.Raw
	}
}
