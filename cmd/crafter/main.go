package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/crafter/pkg/config"
	"github.com/provide-io/crafter/pkg/logging"
	"github.com/provide-io/crafter/pkg/pipeline"
)

const version = "0.1.0"

var logLevel string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "crafter",
		Short:         "Install and launch game profiles",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(
		newNewCmd(),
		newEditCmd(),
		newInstallCmd(),
		newRunCmd(),
		newListCmd(),
		newVersionsCmd(),
		newJavaCmd(),
	)
	return rootCmd
}

// args wraps a cobra argument validator so its failures map to
// ExitInvalidArgs.
func args(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := v(cmd, a); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func newLogger() hclog.Logger {
	level := logLevel
	if level == "" {
		level = logging.GetLogLevel()
	}
	return logging.NewLogger("crafter", level, nil)
}

// newEnv loads settings and shared launcher state for a command.
func newEnv(ctx context.Context) (*pipeline.Env, hclog.Logger, error) {
	logger := newLogger()
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, &usageError{err: err}
	}
	env, err := pipeline.NewEnv(ctx, settings, logger)
	if err != nil {
		return nil, nil, err
	}
	return env, logger, nil
}

func run(ctx context.Context, argv []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(argv)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	}
	return exitCode(err)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			debug.PrintStack()
			os.Exit(ExitPanic)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// 🌶️☕🚀
