package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/wyfcoding/segtree/algorithm/segtree/preset"
	"github.com/wyfcoding/segtree/config"
	"github.com/wyfcoding/segtree/logging"
	"github.com/wyfcoding/segtree/metrics"
	"github.com/wyfcoding/segtree/replay"
	"github.com/wyfcoding/segtree/tracing"
)

var errScenariosFailed = errors.New("one or more scenarios did not pass")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "segreplay",
		Short: "Replay segment tree scenarios",
		Long: `segreplay replays YAML scenarios against the segment tree family
(lazy, persistent, beats, point, persistent_point) and checks every expectation.

Commands:
  run       Replay scenario files or directories
  presets   List presets per variant`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

type runFlags struct {
	configPath  string
	watch       bool
	parallelism int
	failFast    bool
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [files or dirs...]",
		Short: "Replay scenario files",
		Long:  "Replay scenario files or directories. Without arguments the replay.scenarios list from the config is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-run whenever the config file changes")
	cmd.Flags().IntVarP(&flags.parallelism, "parallelism", "p", 0, "override replay.parallelism")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "stop scheduling scenarios after the first failure")
	return cmd
}

func runReplay(cmd *cobra.Command, flags runFlags, args []string) error {
	if flags.watch && flags.configPath == "" {
		return errors.New("--watch needs --config")
	}

	cfg := config.Default()
	if err := config.Load(flags.configPath, cfg); err != nil {
		return err
	}
	if flags.parallelism > 0 {
		cfg.Replay.Parallelism = flags.parallelism
	}
	if flags.failFast {
		cfg.Replay.FailFast = true
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	config.PrintWithMask(cfg)

	shutdown, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace)
		m.RegisterBuildInfo("segreplay", version)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !flags.watch {
		return replayOnce(ctx, cmd.OutOrStdout(), *cfg, args, logger, m)
	}

	reloads := make(chan config.Config, 1)
	config.RegisterReloadHook(func(c *config.Config) {
		select {
		case reloads <- *c:
		default:
		}
	})
	config.Watch(cfg)

	current := *cfg
	for {
		if err := replayOnce(ctx, cmd.OutOrStdout(), current, args, logger, m); err != nil && !errors.Is(err, errScenariosFailed) {
			logger.Error("replay failed", "error", err)
		}
		logging.Info(ctx, "watching config for changes", "file", flags.configPath)

		select {
		case <-ctx.Done():
			return nil
		case next := <-reloads:
			if flags.parallelism > 0 {
				next.Replay.Parallelism = flags.parallelism
			}
			current = next
		}
	}
}

func setupLogger(cfg *config.Config, out io.Writer) *logging.Logger {
	logging.InitLogger(logging.Config{
		Service:    "segreplay",
		Module:     "replay",
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		Console:    cfg.Log.Console,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Output:     out,
	})
	logging.SetLevel(cfg.Log.Level)
	return logging.Default()
}

func replayOnce(ctx context.Context, out io.Writer, cfg config.Config, args []string, logger *logging.Logger, m *metrics.Metrics) error {
	paths := args
	if len(paths) == 0 {
		paths = cfg.Replay.Scenarios
	}
	if len(paths) == 0 {
		return errors.New("no scenario files given and replay.scenarios is empty")
	}

	scenarios, err := replay.LoadFiles(paths...)
	if err != nil {
		return err
	}

	runner := replay.NewRunner(replay.Options{
		Parallelism: cfg.Replay.Parallelism,
		FailFast:    cfg.Replay.FailFast,
	}, logger, m)

	report, runErr := runner.Run(ctx, scenarios)
	if err := report.Render(out); err != nil {
		return err
	}

	if m != nil && cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logging.Error(ctx, "write metrics textfile failed", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	if runErr != nil && !report.OK() {
		return fmt.Errorf("%w: %w", errScenariosFailed, runErr)
	}
	if runErr != nil {
		return runErr
	}
	if !report.OK() {
		return fmt.Errorf("%w: %d of %d", errScenariosFailed, len(report.Results)-report.Count(replay.StatusPass), len(report.Results))
	}
	return nil
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List presets per variant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl := table.NewWriter()
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"Variant", "Presets"})

			lazy := strings.Join(preset.Names(), ", ")
			point := strings.Join(replay.PointPresets(), ", ")
			for _, v := range replay.Variants() {
				switch v {
				case replay.VariantLazy, replay.VariantPersistent:
					tbl.AppendRow(table.Row{v, lazy})
				case replay.VariantPoint, replay.VariantPersistentPoint:
					tbl.AppendRow(table.Row{v, point})
				case replay.VariantBeats:
					tbl.AppendRow(table.Row{v, replay.BeatsPreset})
				}
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "segreplay %s\n", version)
		},
	}
}
