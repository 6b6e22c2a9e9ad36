// Package project holds the immutable program model decoded from a Scratch 3 package
package project

// BlockID identifies a block within one target's program graph
type BlockID string

// InputKind tags how an input is evaluated
type InputKind uint8

const (
	// InputLiteral carries a constant value
	InputLiteral InputKind = iota
	// InputExpression runs a reporter block without following next
	InputExpression
	// InputVariable resolves a variable by id
	InputVariable
	// InputList resolves a list by id and reports its contents
	InputList
	// InputBranch passes a substack id through unevaluated
	InputBranch
	// InputEmpty is a slot with nothing in it
	InputEmpty
	// InputMalformed is an input the loader could not classify
	InputMalformed
)

var inputKindNames = [...]string{"literal", "expression", "variable", "list", "branch", "empty", "malformed"}

func (k InputKind) String() string {
	if int(k) < len(inputKindNames) {
		return inputKindNames[k]
	}
	return "unknown"
}

// InputSpec is one tagged input slot
type InputSpec struct {
	Kind  InputKind
	Value string  // literal value
	Block BlockID // expression or branch target
	RefID string  // variable/list id
	Name  string  // variable/list/broadcast display name
}

// FieldSpec is a dropdown or name field; ID is set for variable, list and broadcast fields
type FieldSpec struct {
	Value string
	ID    string
}

// ProcedureMeta is the mutation of a procedures_prototype or procedures_call block
type ProcedureMeta struct {
	ProcCode      string
	ArgumentIDs   []string
	ArgumentNames []string
	Defaults      []string
	Warp          bool
}

// Block is one node of the program graph; immutable after load
type Block struct {
	ID       BlockID
	Opcode   string
	Inputs   map[string]InputSpec
	Fields   map[string]FieldSpec
	Next     BlockID
	Parent   BlockID
	TopLevel bool
	Shadow   bool
	Mutation *ProcedureMeta
}

// Procedure links a definition hat to its prototype
type Procedure struct {
	ProcCode   string
	Definition BlockID
	Prototype  BlockID
	// argument id -> argument name, taken from the prototype
	Names map[string]string
	Meta  *ProcedureMeta
}

// Program is the shared, read-only block graph of one target and all its clones
type Program struct {
	Blocks     map[BlockID]*Block
	Procedures map[string]*Procedure
	// Hats lists top-level hat blocks grouped by opcode, in load order
	Hats map[string][]BlockID
	// ListNames resolves list display names to ids for this target
	ListNames map[string]string
	// VariableNames resolves variable display names to ids for this target
	VariableNames map[string]string
}

// Block returns the block with the given id, or nil
func (p *Program) Block(id BlockID) *Block {
	if p == nil || id == "" {
		return nil
	}
	return p.Blocks[id]
}

// HatsOf returns the hat blocks of an opcode
func (p *Program) HatsOf(opcode string) []BlockID {
	if p == nil {
		return nil
	}
	return p.Hats[opcode]
}

// Variable is a declared variable with its initial value
type Variable struct {
	ID    string
	Name  string
	Value string
	Cloud bool
}

// List is a declared list with its initial contents
type List struct {
	ID    string
	Name  string
	Items []string
}

// Costume describes one costume or backdrop; pixel data is not decoded
type Costume struct {
	Name             string
	AssetID          string
	MD5Ext           string
	Format           string
	RotationCenterX  float64
	RotationCenterY  float64
	BitmapResolution float64
}

// Target is a sprite or the stage as declared in the package
type Target struct {
	Name           string
	IsStage        bool
	Variables      []Variable
	Lists          []List
	Broadcasts     map[string]string // id -> name
	Costumes       []Costume
	CurrentCostume int
	X, Y           float64
	Direction      float64
	Size           float64
	Visible        bool
	Draggable      bool
	RotationStyle  string
	LayerOrder     int
	Program        *Program
}

// Monitor is an on-stage readout descriptor
type Monitor struct {
	ID         string
	Mode       string // default, large, slider, list
	Opcode     string
	Params     map[string]string
	SpriteName string
	Visible    bool
	X, Y       float64
	Width      float64
	Height     float64
}

// Package is a decoded project
type Package struct {
	Targets  []*Target
	Monitors []Monitor
	// Assets holds raw files from the container keyed by name; nil for bare JSON
	Assets map[string][]byte
}

// Stage returns the stage target, or nil
func (p *Package) Stage() *Target {
	for _, t := range p.Targets {
		if t.IsStage {
			return t
		}
	}
	return nil
}

// Sprite returns the first non-stage target with the name, or nil
func (p *Package) Sprite(name string) *Target {
	for _, t := range p.Targets {
		if !t.IsStage && t.Name == name {
			return t
		}
	}
	return nil
}

// Broadcasts returns every declared broadcast id -> name across targets
func (p *Package) Broadcasts() map[string]string {
	out := make(map[string]string)
	for _, t := range p.Targets {
		for id, name := range t.Broadcasts {
			out[id] = name
		}
	}
	return out
}
