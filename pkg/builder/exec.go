package builder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"

	"github.com/coffee-is-power/c-project-manager/pkg/toolchain"
)

// Result is the outcome of a finished process
type Result struct {
	ExitCode int
	Stderr   string
}

// Executor runs invocations and waits for them to finish.
//
// A non-zero exit code is not an error; Run only fails if the process
// couldn't be started at all.
type Executor interface {
	Run(ctx context.Context, inv toolchain.Invocation) (Result, error)
}

// ProcessExecutor spawns real processes
type ProcessExecutor struct {
	// Stdout receives the process output, nil discards it
	Stdout io.Writer
	// Stderr receives a live copy of the error output, which is always captured as well
	Stderr io.Writer
}

var _ Executor = (*ProcessExecutor)(nil)

// Run implements Executor
func (e *ProcessExecutor) Run(ctx context.Context, inv toolchain.Invocation) (Result, error) {
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdout = e.Stdout

	var stderr bytes.Buffer
	if e.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, e.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}, nil
		}

		return Result{}, err
	}

	return Result{Stderr: stderr.String()}, nil
}
