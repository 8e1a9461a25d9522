// Package runner invokes the wrapped IaC CLI, capturing combined output
// for the post-action stage while streaming it live.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner runs the wrapped CLI inside the project root.
type Runner struct {
	Bin    string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
	Log    *zap.Logger
}

// Result captures a primary-command run. A non-zero ExitCode is not an
// error here: it is deferred and becomes the process exit code after the
// post-action stage ran.
type Result struct {
	Command  string
	Output   []byte
	ExitCode int
}

// ConfigSet runs `<bin> config set <key> <value>` against the selected
// stack. Failures abort the run.
func (r *Runner) ConfigSet(ctx context.Context, key, value string) error {
	cmd := exec.CommandContext(ctx, r.Bin, "config", "set", key, value)
	cmd.Dir = r.Dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s config set %s: %w (%s)", r.Bin, key, err, strings.TrimSpace(string(out)))
	}
	if r.Log != nil {
		r.Log.Debug("config value set", zap.String("key", key))
	}
	return nil
}

// Run executes the primary command. Stdout and stderr are teed into a
// temporary file so the post-action stage can reuse the output; the temp
// file is exclusively owned by this run and removed before returning.
func (r *Runner) Run(ctx context.Context, args []string) (*Result, error) {
	if len(args) == 0 {
		return nil, errors.New("no wrapped command given")
	}
	tmp, err := os.CreateTemp("", "stackrun-*.out")
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	cmd := exec.CommandContext(ctx, r.Bin, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = io.MultiWriter(stdout, tmp)
	cmd.Stderr = io.MultiWriter(stderr, tmp)

	line := r.Bin + " " + strings.Join(args, " ")
	if r.Log != nil {
		r.Log.Info("running wrapped command", zap.String("command", line))
	}
	runErr := cmd.Run()
	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", line, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind output file: %w", err)
	}
	output, err := io.ReadAll(tmp)
	if err != nil {
		return nil, fmt.Errorf("read captured output: %w", err)
	}
	return &Result{Command: line, Output: output, ExitCode: exitCode}, nil
}
