package engine

import "fmt"

// maxFrameDepth bounds procedure recursion per thread
const maxFrameDepth = 2048

// Frame binds procedure argument names to values for one invocation
type Frame struct {
	ProcCode string
	args     map[string]string
	parent   *Frame
	depth    int
}

// PushFrame starts a new invocation scope
func (t *Thread) PushFrame(proccode string, args map[string]string) error {
	depth := 1
	if t.frame != nil {
		depth = t.frame.depth + 1
	}
	if depth > maxFrameDepth {
		return fmt.Errorf("procedure %q: call depth exceeds %d", proccode, maxFrameDepth)
	}
	t.frame = &Frame{ProcCode: proccode, args: args, parent: t.frame, depth: depth}
	return nil
}

// PopFrame ends the innermost invocation scope
func (t *Thread) PopFrame() {
	if t.frame != nil {
		t.frame = t.frame.parent
	}
}

// Depth returns the number of active frames
func (t *Thread) Depth() int {
	if t.frame == nil {
		return 0
	}
	return t.frame.depth
}

// Arg reads an argument bound in the innermost frame
func (t *Thread) Arg(name string) (string, bool) {
	if t.frame == nil {
		return "", false
	}
	v, ok := t.frame.args[name]
	return v, ok
}

// CallProcedure runs a procedure body of the thread's actor in a fresh frame
func (t *Thread) CallProcedure(proccode string, args map[string]string) error {
	proc, ok := t.Actor.Program.Procedures[proccode]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProcedure, proccode)
	}
	if err := t.PushFrame(proccode, args); err != nil {
		return err
	}
	defer t.PopFrame()
	_, err := t.Run(proc.Definition, true)
	return err
}
