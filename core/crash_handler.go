package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

var crashHook atomic.Pointer[func(r any, stack []byte)]

// SetCrashHandler installs the hook run before a fatal crash report
// The terminal host uses it to restore the screen
func SetCrashHandler(fn func(r any, stack []byte)) {
	crashHook.Store(&fn)
}

// HandleCrash is the unified panic handler for host goroutines; it never returns
func HandleCrash(r any) {
	if r == nil {
		return
	}
	stack := debug.Stack()

	if hook := crashHook.Load(); hook != nil && *hook != nil {
		(*hook)(r, stack)
	}

	os.Stdout.Sync()
	fmt.Fprintf(os.Stderr, "\r\nCRASH DETECTED: %v\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", stack)
	os.Stderr.Sync()

	os.Exit(1)
}

// Go runs fn in a new goroutine with fatal panic handling
// Use for host loops where a panic means the process state is unusable
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}

// PanicError wraps a recovered panic value with its stack
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Recover converts a panic in fn into a *PanicError
// Used at boundaries that must survive a faulty callee
func Recover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
