// Package example runs documentation examples and captures their output.
//
// Examples are untrusted code. They are executed in a separate process with
// the same privileges as the caller. Each run gets a private working directory
// and, on Unix, its own process group which is killed once the timeout expires.
// This is a trust boundary, not a security control.
package example

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultTimeout bounds a single example run.
	DefaultTimeout = 30 * time.Second
	// DefaultFilename is the name of the file the example is written to.
	DefaultFilename = "main.go"
)

// SourcePreparer turns extracted example text into a runnable file.
type SourcePreparer func(source string) ([]byte, error)

// Executor runs examples as subprocesses.
type Executor struct {
	command  []string
	dir      string
	filename string
	timeout  time.Duration
	prepare  SourcePreparer
	logger   *slog.Logger
}

// Option configures an [Executor].
type Option func(e *Executor)

// WithCommand sets the command used to run the example file.
// The path of the example file is appended to args.
func WithCommand(name string, args ...string) Option {
	return func(e *Executor) {
		e.command = append([]string{name}, args...)
	}
}

// WithDir sets the directory in which the per-run temporary directory is created.
// For Go examples this should be a directory inside the documented module,
// so that the example can import its packages.
func WithDir(dir string) Option {
	return func(e *Executor) { e.dir = dir }
}

// WithFilename sets the name of the file the example source is written to.
func WithFilename(name string) Option {
	return func(e *Executor) { e.filename = name }
}

// WithTimeout sets the wall-clock limit of a single run.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) { e.timeout = timeout }
}

// WithSourcePreparer replaces the default Go source preparation.
// A nil preparer writes the source as-is.
func WithSourcePreparer(prepare SourcePreparer) Option {
	return func(e *Executor) { e.prepare = prepare }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// NewExecutor creates an [Executor] which by default runs examples with "go run".
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		command:  []string{"go", "run"},
		filename: DefaultFilename,
		timeout:  DefaultTimeout,
		prepare:  PrepareGoSource,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the example and returns everything it wrote to standard output.
// If the run fails, a textual representation of the [Fault] is appended.
// Run never panics and never fails.
func (e *Executor) Run(ctx context.Context, source string) (output string) {
	var stdout, stderr bytes.Buffer
	defer func() {
		if r := recover(); r != nil {
			fault := &Fault{Kind: FaultPanic, Message: fmt.Sprint(r)}
			output = stdout.String() + fault.String()
		}
	}()

	fault := e.run(ctx, source, &stdout, &stderr)
	if fault == nil {
		return stdout.String()
	}
	e.logger.Debug("example failed", slog.String("kind", string(fault.Kind)), slog.String("error", fault.Message))
	return stdout.String() + fault.String()
}

func (e *Executor) run(ctx context.Context, source string, stdout, stderr *bytes.Buffer) *Fault {
	content := []byte(source)
	if e.prepare != nil {
		prepared, err := e.prepare(source)
		if err != nil {
			return &Fault{Kind: FaultPrepare, Message: err.Error()}
		}
		content = prepared
	}

	dir, err := os.MkdirTemp(e.dir, ".lowdown-example-")
	if err != nil {
		return &Fault{Kind: FaultStart, Message: errors.Wrap(err, "failed to create example directory").Error()}
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, e.filename)
	if err = os.WriteFile(path, content, 0o600); err != nil {
		return &Fault{Kind: FaultStart, Message: errors.Wrap(err, "failed to write example file").Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := append(append([]string{}, e.command[1:]...), path)
	cmd := exec.CommandContext(ctx, e.command[0], args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second
	isolateProcessGroup(cmd)

	e.logger.Debug("running example", slog.String("command", e.command[0]), slog.String("file", path))
	err = cmd.Run()
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		return &Fault{
			Kind:    FaultTimeout,
			Message: fmt.Sprintf("example did not finish within %s", e.timeout),
			Stderr:  stderr.String(),
		}
	case err == nil:
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Fault{Kind: FaultExit, Message: exitErr.Error(), Stderr: stderr.String()}
	}
	return &Fault{Kind: FaultStart, Message: err.Error(), Stderr: stderr.String()}
}
