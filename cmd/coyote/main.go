package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oleg-peresada/coyote/internal/app"
	"github.com/oleg-peresada/coyote/pkg/logx"
)

var (
	flagConfig      string
	flagWatchConfig bool
	flagLogLevel    string
	flagColor       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coyote",
		Short: "Filter task-scheduler traces for reschedule anomalies",
		Long: `Coyote filters task-scheduler traces on stdin.

format normalizes raw <TaskSummaryLog> lines into one-line summary records.
detect consumes normalized records and flags parent tasks that get scheduled
again after their last spawn or continuation creation. run chains both in a
single process and matches the output of "coyote format | coyote detect".

Diagnostics go to stdout; logs stay on stderr so output can be piped.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (json, yaml or toml)")
	rootCmd.PersistentFlags().BoolVar(&flagWatchConfig, "watch-config", false, "Reload the config file on change")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "", "Report colors: auto, always or never")

	rootCmd.AddCommand(formatCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(runCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func formatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Normalize raw trace lines into summary records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd.Context(), nil, func(ctx context.Context, a *app.App) error {
				return a.RunFormat(ctx, os.Stdin, logx.Stdout())
			})
		},
	}
}

func detectCmd() *cobra.Command {
	var flagEcho bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Flag parents rescheduled after their last task creation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd.Context(), echoFlag(cmd, &flagEcho), func(ctx context.Context, a *app.App) error {
				return a.RunDetect(ctx, os.Stdin, logx.Stdout())
			})
		},
	}
	cmd.Flags().BoolVar(&flagEcho, "echo", false, "Reprint every input line with its token split")

	return cmd
}

func runCmd() *cobra.Command {
	var flagEcho bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Format and detect in one in-process pipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd.Context(), echoFlag(cmd, &flagEcho), func(ctx context.Context, a *app.App) error {
				return a.RunPipeline(ctx, os.Stdin, logx.Stdout())
			})
		},
	}
	cmd.Flags().BoolVar(&flagEcho, "echo", false, "Reprint every normalized record with its token split")

	return cmd
}

// echoFlag returns the echo value only when the flag was given, so an
// untouched flag falls through to the config file.
func echoFlag(cmd *cobra.Command, v *bool) *bool {
	if cmd.Flags().Changed("echo") {
		return v
	}
	return nil
}

func runFilter(ctx context.Context, echo *bool, pass func(context.Context, *app.App) error) error {
	a, err := app.New(app.Options{
		ConfigPath:  flagConfig,
		WatchConfig: flagWatchConfig,
		LogLevel:    flagLogLevel,
		ColorMode:   flagColor,
		Echo:        echo,
	})
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	passErr := pass(ctx, a)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Stop(stopCtx); err != nil && passErr == nil {
		passErr = err
	}
	return passErr
}
