package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snowglobe/internal/platform/tui"
	"github.com/vovakirdan/snowglobe/internal/registry"
	"github.com/vovakirdan/snowglobe/internal/stage"
	"github.com/vovakirdan/snowglobe/internal/storage"
)

var viewCmd = &cobra.Command{
	Use:   "view <scene>",
	Short: "Show a scene",
	Long: `Render the specified scene until you quit.

Controls:
  Left/Right/h/l  - Orbit camera
  Up/Down/k/j     - Tilt camera
  +/-             - Zoom
  A               - Toggle auto-rotate
  P/Space         - Pause
  Ctrl+S          - Save a screenshot
  ?               - Help
  Q/Ctrl+C        - Quit

Examples:
  snowglobe view village
  snowglobe view trainset --fps 20
  snowglobe view village --detail low
  snowglobe view village --config ./my-village.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

// flagConfig applies to the one scene named on the command line. menu and
// serve run several scenes, so each of them loads its own config along the
// search order instead.
var flagConfig string

func init() {
	viewCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a custom config YAML for this scene")
}

func runView(_ *cobra.Command, args []string) error {
	sceneID := args[0]
	if !registry.Exists(sceneID) {
		return fmt.Errorf("unknown scene %q (run 'snowglobe list' to see available scenes)", sceneID)
	}

	rt, err := setup(false)
	if err != nil {
		return err
	}
	defer rt.closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rt.serveMetrics(ctx)

	// Continue without storage if the database cannot be opened
	store, err := storage.Open(flagDBPath)
	if err != nil {
		rt.logger.Warn("could not open sessions database", "error", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	opts := rt.stageOptions(sceneID, "local")
	opts.ConfigPath = flagConfig
	_, err = tui.Run(ctx, tui.ViewerOptions{
		Store: store,
		Stage: opts,
	})
	return err
}

// stageOptions builds the stage options for a scene from the global flags.
// Scenes load their config along the search order unless the caller sets
// ConfigPath.
func (rt *app) stageOptions(sceneID, origin string) stage.Options {
	return stage.Options{
		SceneID: sceneID,
		Runtime: runtimeConfig(rt.viewer),
		Viewer:  rt.viewer,
		Detail:  rt.detail,
		Origin:  origin,
		Logger:  rt.logger,
		Metrics: rt.metrics,
	}
}
