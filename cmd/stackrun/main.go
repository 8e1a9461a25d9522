// main.go bootstraps stackrun: it builds the root Cobra command, executes it
// with a signal-aware context, and maps the outcome onto CI exit codes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	os.Exit(exitCode(err))
}

// exitCode maps an execution error onto the process exit code: soft
// "nothing to do" outcomes are success, a wrapped-command failure carries
// its own code, anything else is a hard failure.
func exitCode(err error) int {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if errors.Is(err, errNothingToDo) {
		color.New(color.FgYellow).Fprintf(os.Stderr, "stackrun: %s\n", err)
		return 0
	}
	var cmdErr *commandExitError
	if errors.As(err, &cmdErr) {
		return cmdErr.code
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	return 1
}

func bindViper(commands ...*cobra.Command) {
	if len(commands) == 0 {
		return
	}
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("STACKRUN")
	v.AutomaticEnv()
	configFile := os.Getenv("STACKRUN_CONFIG")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	cobra.OnInitialize(func() {
		for _, cmd := range commands {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				cobra.CheckErr(err)
			}
		}
		if configFile != "" {
			if err := v.ReadInConfig(); err != nil {
				cobra.CheckErr(err)
			}
		}
		for _, cmd := range commands {
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				if f.Changed {
					return
				}
				if !v.IsSet(f.Name) {
					return
				}
				val := fmt.Sprintf("%v", v.Get(f.Name))
				if val != "" {
					_ = f.Value.Set(val)
				}
			})
		}
	})
}
