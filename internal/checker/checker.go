// Package checker runs the pyright type checker against a single
// typesafety file and captures its output.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Pyright exit codes, see
// https://github.com/microsoft/pyright/blob/main/docs/command-line.md#pyright-exit-codes
const (
	ExitNoErrors       = 0
	ExitErrors         = 1
	ExitFatal          = 2
	ExitConfigError    = 3
	ExitInvalidCommand = 4
)

// RawResult is the captured output of a successful checker run.
// "Successful" means the checker analyzed the file; it may still
// have reported diagnostics.
type RawResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// InvocationError reports a checker run that did not complete
// normally: the process could not be started or exited with a code
// outside the success set. It is fatal for the item.
type InvocationError struct {
	// Args is the full command line that was run.
	Args []string

	// ExitCode is the process exit code, or -1 if it never ran.
	ExitCode int

	Stdout []byte
	Stderr []byte

	// Err is the underlying start or wait error, if any.
	Err error
}

func (e *InvocationError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("running %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Output returns the captured stderr followed by stdout, the order
// in which they are most useful for diagnosis.
func (e *InvocationError) Output() string {
	var sb strings.Builder
	if len(e.Stderr) > 0 {
		sb.WriteString("--- stderr ---\n")
		sb.Write(e.Stderr)
		if !bytes.HasSuffix(e.Stderr, []byte("\n")) {
			sb.WriteByte('\n')
		}
	}
	if len(e.Stdout) > 0 {
		sb.WriteString("--- stdout ---\n")
		sb.Write(e.Stdout)
		if !bytes.HasSuffix(e.Stdout, []byte("\n")) {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Runner checks one file and returns the checker's raw output.
type Runner interface {
	Run(ctx context.Context, file string) (*RawResult, error)
}

// Pyright runs the pyright command line tool.
type Pyright struct {
	// Binary is the pyright executable. Defaults to "pyright"
	// resolved through PATH.
	Binary string

	// Env, when non-nil, replaces the process environment.
	Env []string
}

// Args returns the arguments passed to pyright for file: the
// project root is the file's parent directory and output is JSON.
func Args(file string) []string {
	return []string{
		"--project=" + filepath.Dir(file),
		"--outputjson",
		file,
	}
}

// Run invokes pyright on file and waits for it to finish. There is
// no timeout beyond ctx. Stdout and stderr are captured separately.
func (p *Pyright) Run(ctx context.Context, file string) (*RawResult, error) {
	binary := p.Binary
	if binary == "" {
		binary = "pyright"
	}
	args := Args(file)

	cmd := exec.CommandContext(ctx, binary, args...)
	if p.Env != nil {
		cmd.Env = p.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code, runErr := exitCode(err)
	if runErr != nil {
		return nil, &InvocationError{
			Args:     append([]string{binary}, args...),
			ExitCode: -1,
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
			Err:      runErr,
		}
	}

	if !Succeeded(code) {
		return nil, &InvocationError{
			Args:     append([]string{binary}, args...),
			ExitCode: code,
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
			Err:      err,
		}
	}

	return &RawResult{
		ExitCode: code,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

// Succeeded reports whether code means pyright analyzed the file,
// with or without reporting errors.
func Succeeded(code int) bool {
	return code == ExitNoErrors || code == ExitErrors
}

// exitCode extracts the process exit code from the error returned
// by exec.Cmd.Run. A non-nil second result means the process never
// produced an exit code.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
