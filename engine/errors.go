package engine

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/scratchrun/project"
)

var (
	// ErrHalted is the control error returned once a thread must stop executing
	ErrHalted = errors.New("thread halted")

	ErrMissingHandler   = errors.New("no handler for opcode")
	ErrMissingBlock     = errors.New("block not found")
	ErrMalformedParam   = errors.New("malformed parameter")
	ErrVariableNotFound = errors.New("variable not found")
	ErrListNotFound     = errors.New("list not found")
	ErrArgumentUnbound  = errors.New("procedure argument not bound")
	ErrIndexOutOfRange  = errors.New("list index out of range")
	ErrUnknownTarget    = errors.New("unknown target")
	ErrUnknownProcedure = errors.New("unknown procedure")
	ErrCloneLimit       = errors.New("clone limit reached")
)

// BlockError describes a failure inside one block; execution continues past it
type BlockError struct {
	Actor  string
	Task   string
	Block  project.BlockID
	Opcode string
	Err    error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("%s/%s block %s (%s): %v", e.Actor, e.Task, e.Block, e.Opcode, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// IsResolution reports whether err is a variable, list or argument lookup failure
func IsResolution(err error) bool {
	return errors.Is(err, ErrVariableNotFound) ||
		errors.Is(err, ErrListNotFound) ||
		errors.Is(err, ErrArgumentUnbound)
}
