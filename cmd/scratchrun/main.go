package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	// Anything reaching here bypassed the host crash handler; report and exit
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nSCRATCHRUN CRASHED: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
