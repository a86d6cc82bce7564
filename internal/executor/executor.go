package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/shinji-kodama/pkgscripts/internal/model"
)

// Executor runs shell command strings in the current working directory
// with the inherited environment.
//
// The zero value is not usable; create one with New.
type Executor struct {
	// Shell is the interpreter and its "run this string" flag, e.g.
	// []string{"sh", "-c"}. The command string is appended as the last argument.
	Shell []string

	// Stdin, Stdout and Stderr are connected to the child process.
	// Stderr output is additionally captured for ExecutionError.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the working directory for the child. Empty means the
	// current process's working directory.
	Dir string
}

// New creates an Executor wired to the process's standard streams and the
// platform default shell.
func New() *Executor {
	return &Executor{
		Shell:  DefaultShell(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// DefaultShell returns the shell invocation for the current platform.
func DefaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// Run executes command and blocks until the child exits.
//
// Cancelling ctx kills the child. There is no timeout beyond the context.
func (e *Executor) Run(ctx context.Context, command string) error {
	if len(e.Shell) == 0 {
		return &model.ExecutionError{
			Command:  command,
			ExitCode: -1,
			Err:      errors.New("no shell configured"),
		}
	}

	args := append(append([]string{}, e.Shell[1:]...), command)

	// #nosec G204 -- running the package manager command is the purpose of this tool
	cmd := exec.CommandContext(ctx, e.Shell[0], args...)
	cmd.Dir = e.Dir
	cmd.Env = os.Environ()
	cmd.Stdin = e.Stdin

	var stderr strings.Builder
	cmd.Stdout = e.Stdout
	if e.Stderr != nil {
		cmd.Stderr = io.MultiWriter(e.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// ExitCode reports -1 when the child was killed by a signal.
			exitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		return &model.ExecutionError{
			Command:  command,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	return nil
}
