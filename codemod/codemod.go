// Package codemod wires the rewriters to the filesystem, the history journal
// and the console. Both command line tools and library callers go through it.
package codemod

import (
	"fmt"
	"runtime/debug"

	"github.com/sokinpui/codemod/internal/fs"
	"github.com/sokinpui/codemod/internal/nvim"
	"github.com/sokinpui/codemod/model"
)

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error { return e.Err }

// Outcome is what a run produced. History is set for revert and redo runs.
type Outcome struct {
	Imports model.ImportSummary
	Patch   model.PatchReport
	History *model.Summary
}

// ExitCode maps an import fixing outcome to the process exit status.
func (o Outcome) ExitCode() int {
	if o.History != nil {
		if len(o.History.Failed) > 0 {
			return 1
		}
		return 0
	}
	return o.Imports.ExitCode()
}

// recoverPanic turns a panic into a DetailedError stored in err.
func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = &DetailedError{
			Err:   fmt.Errorf("internal panic: %v", r),
			Stack: debug.Stack(),
		}
	}
}

// openWriter returns the sink for rewritten files and a function releasing it.
func openWriter(useNvim bool, override fs.Writer) (fs.Writer, func(), error) {
	if override != nil {
		return override, func() {}, nil
	}
	if !useNvim {
		return fs.DiskWriter{}, func() {}, nil
	}
	manager, err := nvim.New()
	if err != nil {
		return nil, nil, err
	}
	return manager, manager.Close, nil
}
