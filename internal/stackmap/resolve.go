// Package stackmap resolves a source branch to the deployment stack the
// wrapped CLI should operate on.
package stackmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ErrNoMapping signals that no stack could be resolved for the branch.
// Callers treat it as "nothing to do", not as a failure.
var ErrNoMapping = errors.New("no stack mapped for branch")

// Options configure stack resolution and selection.
type Options struct {
	// Bin is the wrapped CLI binary, used for the stack-listing fallback
	// and for stack selection.
	Bin string
	// Dir is the project root the CLI runs in.
	Dir string
	// MapFile is the branch-to-stack JSON mapping file. A leading ~ is
	// expanded. An absent file triggers the listing fallback.
	MapFile string
}

// Resolve maps branch to a stack name. With a mapping file present the
// branch key decides; a missing key, empty value, or the literal "null"
// sentinel yields ErrNoMapping. Without a mapping file the existing
// stacks are listed and the sole candidate is picked automatically.
func Resolve(ctx context.Context, branch string, opts Options) (string, error) {
	path, err := homedir.Expand(opts.MapFile)
	if err != nil {
		return "", fmt.Errorf("expand map file path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read stack map %s: %w", path, err)
		}
		return soleStack(ctx, opts)
	}
	mapping := map[string]string{}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return "", fmt.Errorf("decode stack map %s: %w", path, err)
	}
	name := strings.TrimSpace(mapping[branch])
	if name == "" || name == "null" {
		return "", fmt.Errorf("branch %q has no entry in %s: %w", branch, path, ErrNoMapping)
	}
	return name, nil
}

type stackEntry struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

// soleStack lists existing stacks and picks the only one, or the only
// one marked current when several exist.
func soleStack(ctx context.Context, opts Options) (string, error) {
	cmd := exec.CommandContext(ctx, opts.Bin, "stack", "ls", "--json")
	cmd.Dir = opts.Dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s stack ls: %w", opts.Bin, err)
	}
	var entries []stackEntry
	if err := json.Unmarshal(out, &entries); err != nil {
		return "", fmt.Errorf("decode %s stack ls output: %w", opts.Bin, err)
	}
	if len(entries) == 1 {
		return entries[0].Name, nil
	}
	var current []string
	for _, e := range entries {
		if e.Current {
			current = append(current, e.Name)
		}
	}
	if len(current) == 1 {
		return current[0], nil
	}
	return "", fmt.Errorf("found %d stacks and no mapping file: %w", len(entries), ErrNoMapping)
}

// Select makes the resolved stack the active target for subsequent commands.
func Select(ctx context.Context, stack string, opts Options) error {
	cmd := exec.CommandContext(ctx, opts.Bin, "stack", "select", stack)
	cmd.Dir = opts.Dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s stack select %s: %w (%s)", opts.Bin, stack, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Remove deletes the stack. Used by the branch-deletion post-action when
// destroy-on-delete is enabled.
func Remove(ctx context.Context, stack string, opts Options) error {
	cmd := exec.CommandContext(ctx, opts.Bin, "stack", "rm", "--yes", stack)
	cmd.Dir = opts.Dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s stack rm %s: %w (%s)", opts.Bin, stack, err, strings.TrimSpace(string(out)))
	}
	return nil
}
