// Package vm executes a compiled Program: a register machine with a
// dispatch loop, a call-stack bounded against runaway recursion, and
// context/step-limit cancellation support.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/mna/ink/lang/builtin"
	"github.com/mna/ink/lang/compiler"
	"github.com/mna/ink/lang/value"
)

// maxCallStackDepth bounds recursive Ink calls: Ink has no way to run
// untrusted code without a recursion guard, since every function call is a
// plain expression.
const maxCallStackDepth = 10000

// Thread holds the state of one top-to-bottom execution of a compiled
// Program.
type Thread struct {
	// Name is an optional name describing the thread, for debugging.
	Name string

	// Stdout is where the `out` built-in writes. Stderr is kept alongside it,
	// but the VM itself does not write to it: runtime errors are returned to
	// the caller. os.Stdout/os.Stderr are used if nil.
	Stdout io.Writer
	Stderr io.Writer

	// MaxSteps bounds the number of instructions executed before the thread
	// is cancelled. A value <= 0 means no limit.
	MaxSteps int

	ctx       context.Context
	ctxCancel func()
	cancelled atomic.Bool

	steps, maxSteps uint64

	prog  *compiler.Program
	heap  []value.Value
	stack []*frame

	stdout io.Writer
	stderr io.Writer
}

// frame records one call to a compiled Block.
type frame struct {
	block    *compiler.Block
	blockIdx int
	regs     []value.Value
	pc       int
}

func (th *Thread) init() {
	if th.MaxSteps <= 0 {
		th.maxSteps--
	} else {
		th.maxSteps = uint64(th.MaxSteps)
	}
	if th.Stdout != nil {
		th.stdout = th.Stdout
	} else {
		th.stdout = os.Stdout
	}
	if th.Stderr != nil {
		th.stderr = th.Stderr
	} else {
		th.stderr = os.Stderr
	}
	// Ink's `out` built-in has no access to a Thread (its signature is fixed
	// by value.NativeFunc), so it writes through the package-level
	// builtin.Stdout var; since the language forbids concurrency (see
	// Non-goals), binding it here for the duration of this run is safe.
	builtin.Stdout = th.stdout
	if th.ctx == nil {
		th.ctx = context.Background()
		th.ctxCancel = func() {}
	} else {
		go func() {
			<-th.ctx.Done()
			th.cancelled.Store(true)
		}()
	}
}

// RunProgram executes p's top-level block (Block 0) to completion and
// returns its result.
func (th *Thread) RunProgram(ctx context.Context, p *compiler.Program) (value.Value, error) {
	if th.prog != nil {
		return nil, fmt.Errorf("thread %s is already executing a program", th.Name)
	}
	ctx, cancel := context.WithCancel(ctx)
	th.ctx, th.ctxCancel = ctx, cancel
	th.prog = p
	th.init()

	main := &value.Func{BlockIndex: 0}
	return th.call(main, nil)
}
