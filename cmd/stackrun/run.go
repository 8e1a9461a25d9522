// run.go wires the wrapper sequence: detect CI context, resolve the stack
// for the branch, run the wrapped CLI, then dispatch the post-action.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/example/stackrun/internal/cienv"
	"github.com/example/stackrun/internal/github"
	"github.com/example/stackrun/internal/logging"
	"github.com/example/stackrun/internal/project"
	"github.com/example/stackrun/internal/runner"
	"github.com/example/stackrun/internal/stackmap"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errNothingToDo marks soft skip conditions: the run is complete, nothing
// needed doing, and the process exits 0 with an explanation.
var errNothingToDo = errors.New("nothing to do")

// commandExitError defers the wrapped command's exit code until after the
// post-action stage has run.
type commandExitError struct {
	code int
}

func (e *commandExitError) Error() string {
	return fmt.Sprintf("wrapped command exited with code %d", e.code)
}

type runOptions struct {
	bin             string
	rawArgs         string
	root            string
	mapFile         string
	region          string
	regionKey       string
	logLevel        string
	destroyOnDelete bool
	skipInstall     bool
}

func newRootCommand() *cobra.Command {
	opts := &runOptions{
		bin:       "pulumi",
		root:      ".",
		mapFile:   "ci/stacks.json",
		regionKey: "aws:region",
		logLevel:  "info",
	}
	cmd := &cobra.Command{
		Use:           "stackrun [flags] [-- COMMAND ARGS...]",
		Short:         "CI entrypoint wrapper around an infrastructure-as-code CLI",
		Long: `stackrun runs inside a CI container, maps the triggering branch to a
deployment stack, forwards a command to the wrapped infrastructure CLI, and
reports the captured output back to the pull request that triggered it.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrapper(cmd, args, opts)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&opts.bin, "bin", opts.bin, "Wrapped infrastructure CLI binary")
	fl.StringVar(&opts.rawArgs, "args", "", "Command string forwarded to the wrapped CLI (positional args after -- take precedence)")
	fl.StringVar(&opts.root, "root", opts.root, "Project root the wrapped CLI runs in")
	fl.StringVar(&opts.mapFile, "map-file", opts.mapFile, "JSON file mapping branch names to stack names")
	fl.StringVar(&opts.region, "region", "", "Cloud region set on the stack before running (falls back to AWS_REGION)")
	fl.StringVar(&opts.regionKey, "region-key", opts.regionKey, "Configuration key the region is written to")
	fl.BoolVar(&opts.destroyOnDelete, "destroy-on-delete", false, "Destroy and remove the stack when the triggering event deletes its branch")
	fl.BoolVar(&opts.skipInstall, "skip-install", false, "Skip the gated project dependency install")
	fl.StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level for stackrun output (debug, info, warn, error)")
	cmd.AddCommand(newVersionCommand())
	bindViper(cmd)
	return cmd
}

func runWrapper(cmd *cobra.Command, args []string, opts *runOptions) error {
	logger, err := logging.New(opts.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	ctx := cmd.Context()

	cic, err := cienv.Detect(os.Getenv)
	if err != nil {
		return err
	}
	logger.Info("detected CI context",
		zap.String("system", cic.System),
		zap.String("event", cic.EventName),
		zap.String("workflow", cic.Workflow))

	var event *cienv.Event
	if cic.EventPath != "" {
		if event, err = cienv.LoadEvent(cic.EventPath); err != nil {
			return err
		}
	}
	if cic.EventName == "pull_request" {
		if event == nil || event.PullRequest == nil {
			return errors.New("pull_request event carries no pull request payload")
		}
		if !cienv.AllowedPRAction(event.Action) {
			return fmt.Errorf("pull request action %q requires no deployment: %w", event.Action, errNothingToDo)
		}
	}

	branch := event.Branch(cic)
	mapOpts := stackmap.Options{Bin: opts.bin, Dir: opts.root, MapFile: opts.mapFile}
	stack, err := stackmap.Resolve(ctx, branch, mapOpts)
	if err != nil {
		if errors.Is(err, stackmap.ErrNoMapping) {
			return fmt.Errorf("%v; add an entry for %q to %s to enable deployments: %w",
				err, branch, opts.mapFile, errNothingToDo)
		}
		return err
	}
	logger.Info("resolved stack", zap.String("branch", branch), zap.String("stack", stack))
	if err := stackmap.Select(ctx, stack, mapOpts); err != nil {
		return err
	}

	proj, err := project.Load(opts.root)
	if err != nil {
		return err
	}
	projName := ""
	if proj != nil {
		projName = proj.Name
	}

	run := &runner.Runner{
		Bin:    opts.bin,
		Dir:    opts.root,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		Log:    logger,
	}
	if !opts.skipInstall && nodeRuntime(proj) {
		if err := run.EnsureDependencies(ctx); err != nil {
			return err
		}
	}

	region := opts.region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region != "" {
		if err := run.ConfigSet(ctx, opts.regionKey, region); err != nil {
			return err
		}
	}

	forward := args
	if len(forward) == 0 && strings.TrimSpace(opts.rawArgs) != "" {
		if forward, err = shellwords.Parse(opts.rawArgs); err != nil {
			return fmt.Errorf("parse forwarded command string: %w", err)
		}
	}
	if len(forward) == 0 {
		return errors.New("no wrapped command given (pass arguments after -- or set STACKRUN_ARGS)")
	}

	result, err := run.Run(ctx, forward)
	if err != nil {
		return err
	}

	dispatchPostAction(ctx, logger, cic, event, stack, projName, result, opts, run, mapOpts)

	if result.ExitCode != 0 {
		return &commandExitError{code: result.ExitCode}
	}
	return nil
}

// nodeRuntime reports whether the gated npm install applies: no manifest
// says anything either way, so only a declared non-Node runtime opts out.
func nodeRuntime(proj *project.Project) bool {
	if proj == nil || proj.Runtime.Name == "" {
		return true
	}
	return proj.Runtime.Name == "nodejs"
}

// dispatchPostAction runs the event-keyed follow-up. Post-action failures
// are logged but never override the primary command's exit code.
func dispatchPostAction(ctx context.Context, logger *zap.Logger, cic *cienv.Context, event *cienv.Event,
	stack, projName string, result *runner.Result, opts *runOptions, run *runner.Runner, mapOpts stackmap.Options) {
	switch cic.EventName {
	case "pull_request":
		client := &github.Client{Token: cic.Token}
		body := github.FormatComment(projName, result.Command, result.Output)
		if err := client.PostComment(ctx, event.PullRequest.CommentsURL, body); err != nil {
			logger.Warn("posting pull request comment failed", zap.Error(err))
			return
		}
		logger.Info("posted pull request comment", zap.Int("pr", event.PullRequest.Number))
	case "delete":
		if !opts.destroyOnDelete {
			logger.Info("branch deleted; stack removal is disabled (enable with --destroy-on-delete)",
				zap.String("stack", stack))
			return
		}
		destroy, err := run.Run(ctx, []string{"destroy", "--yes"})
		if err != nil {
			logger.Warn("destroying stack resources failed", zap.Error(err))
			return
		}
		if destroy.ExitCode != 0 {
			logger.Warn("destroy exited non-zero; keeping stack",
				zap.String("stack", stack), zap.Int("exitCode", destroy.ExitCode))
			return
		}
		if err := stackmap.Remove(ctx, stack, mapOpts); err != nil {
			logger.Warn("removing stack failed", zap.Error(err))
			return
		}
		logger.Info("removed stack for deleted branch", zap.String("stack", stack))
	}
}
