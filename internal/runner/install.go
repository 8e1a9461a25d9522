package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	manifestFile  = "package.json"
	lockFile      = "package-lock.json"
	dependencyDir = "node_modules"
)

// EnsureDependencies installs project dependencies when a manifest is
// present and the dependency directory is not. Anything else is a no-op.
func (r *Runner) EnsureDependencies(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(r.Dir, manifestFile)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", manifestFile, err)
	}
	if _, err := os.Stat(filepath.Join(r.Dir, dependencyDir)); err == nil {
		return nil
	}

	sub := "install"
	if _, err := os.Stat(filepath.Join(r.Dir, lockFile)); err == nil {
		sub = "ci"
	}
	if r.Log != nil {
		r.Log.Info("installing project dependencies", zap.String("command", "npm "+sub))
	}
	return r.runTool(ctx, "npm", sub)
}

// runTool runs an auxiliary tool with output going straight to the live
// streams; its output is not captured for post-actions.
func (r *Runner) runTool(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}
