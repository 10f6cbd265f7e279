// snowglobe renders animated holiday scenes in the terminal.
//
// Usage:
//
//	snowglobe list               - List available scenes
//	snowglobe view <scene>       - Show a scene
//	snowglobe menu               - Pick scenes interactively
//	snowglobe serve              - Start SSH server for remote viewing
//	snowglobe history [scene]    - Show recorded viewing sessions
//	snowglobe bench <scene>      - Run frames headless and print stats
//
// Global flags:
//
//	--fps <rate>        - Set frame rate (default: from viewer config)
//	--seed <value>      - Set RNG seed for a reproducible scene
//	--db <path>         - Set database path (default: ~/.snowglobe/sessions.db)
//	--detail <preset>   - Population preset: low, medium, high
//	--log <path>        - Log file (default: ~/.snowglobe/snowglobe.log)
//	--verbose           - Debug logging
//	--metrics <addr>    - Serve Prometheus metrics on addr
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snowglobe/internal/config"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/logging"
	"github.com/vovakirdan/snowglobe/internal/metrics"

	// Import scenes to register them
	_ "github.com/vovakirdan/snowglobe/internal/scenes/trainset"
	_ "github.com/vovakirdan/snowglobe/internal/scenes/village"
)

var (
	// Global flags
	flagFPS         int
	flagSeed        int64
	flagDBPath      string
	flagDetail      string
	flagLogPath     string
	flagVerbose     bool
	flagMetricsAddr string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snowglobe",
	Short: "Snowglobe - Holiday 3D scenes in your terminal",
	Long: `Snowglobe renders animated holiday scenes (a snowy village, a toy
train set) as 3D wireframes in your terminal.

Available commands:
  list     - Show all available scenes
  view     - Show a specific scene
  menu     - Interactive scene picker
  serve    - Start SSH server for remote viewing
  history  - View recorded sessions
  bench    - Run a scene headless and print frame stats

Examples:
  snowglobe list
  snowglobe view village
  snowglobe view trainset --detail low --seed 42
  snowglobe menu
  snowglobe serve --ssh :2222 --metrics :9090
  snowglobe history village`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (0 = viewer config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.snowglobe/sessions.db", "Path to sessions database")
	rootCmd.PersistentFlags().StringVar(&flagDetail, "detail", "", "Detail preset: low, medium, high")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "Log file (default ~/.snowglobe/snowglobe.log)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagMetricsAddr, "metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(benchCmd)
}

// app is the setup shared by the scene commands.
type app struct {
	logger   *log.Logger
	closeLog func() error
	viewer   config.ViewerConfig
	detail   config.DetailPreset
	metrics  *metrics.Metrics // Nil unless --metrics is set
}

// setup reads the viewer config and global flags. toStderr logs to the
// terminal instead of the log file, for commands that do not take over the
// screen.
func setup(toStderr bool) (*app, error) {
	detail, err := config.ParseDetail(flagDetail)
	if err != nil {
		return nil, err
	}

	opts := logging.Options{Verbose: flagVerbose, Prefix: "snowglobe"}
	switch {
	case flagLogPath != "":
		opts.Path = flagLogPath
	case toStderr:
		opts.Output = os.Stderr
	default:
		opts.Path = filepath.Join(config.DataDir(), "snowglobe.log")
	}
	logger, closeLog, err := logging.New(opts)
	if err != nil {
		return nil, err
	}

	viewer, err := config.LoadViewer("")
	if err != nil {
		logger.Warn("could not load viewer config, using defaults", "error", err)
		viewer = config.DefaultViewerConfig()
	}
	if flagFPS > 0 {
		viewer.FPS = flagFPS
	}

	rt := &app{
		logger:   logger,
		closeLog: closeLog,
		viewer:   viewer,
		detail:   detail,
	}
	if flagMetricsAddr != "" {
		rt.metrics = metrics.New()
	}
	return rt, nil
}

// serveMetrics starts the metrics endpoint in the background when enabled.
func (rt *app) serveMetrics(ctx context.Context) {
	if rt.metrics == nil {
		return
	}
	go func() {
		if err := rt.metrics.Serve(ctx, flagMetricsAddr, rt.logger); err != nil && !errors.Is(err, context.Canceled) {
			rt.logger.Error("metrics server failed", "error", err)
		}
	}()
}

// runtimeConfig returns the terminal size and global flags as a RuntimeConfig.
func runtimeConfig(viewer config.ViewerConfig) core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.FPS = viewer.FPS
	cfg.Seed = flagSeed
	return cfg
}
