package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snowglobe/internal/platform/tui"
	"github.com/vovakirdan/snowglobe/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start snowglobe with a scene picker menu",
	Long: `Start snowglobe in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to show a scene.
Leaving a scene with Esc returns you to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Show scene
  D            - Cycle detail preset
  Tab          - Session history
  Q            - Quit

Examples:
  snowglobe menu
  snowglobe menu --fps 20
  snowglobe menu --db ./sessions.db`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	rt, err := setup(false)
	if err != nil {
		return err
	}
	defer rt.closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rt.serveMetrics(ctx)

	store, err := storage.Open(flagDBPath)
	if err != nil {
		rt.logger.Warn("could not open sessions database", "error", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	cfg := runtimeConfig(rt.viewer)
	detail := rt.detail

	// Menu loop
	for ctx.Err() == nil {
		result, err := tui.RunMenu(cfg, detail)
		if err != nil {
			return err
		}
		cfg = result.Config
		detail = result.Detail

		switch {
		case result.Quit:
			return nil

		case result.WantsHistory:
			goBack, err := tui.RunHistory(store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				return err
			}
			if !goBack {
				return nil
			}

		case result.SceneID != "":
			opts := rt.stageOptions(result.SceneID, "local")
			opts.Runtime = cfg
			opts.Detail = detail
			back, err := tui.Run(ctx, tui.ViewerOptions{Store: store, Stage: opts})
			if err != nil {
				rt.logger.Error("scene failed", "scene", result.SceneID, "error", err)
				return err
			}
			if !back {
				return nil
			}
		}
	}
	return nil
}
