package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snowglobe/internal/registry"
	"github.com/vovakirdan/snowglobe/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history [scene]",
	Short: "Show recorded viewing sessions",
	Long: `Display recent sessions of a scene with a plot of their average frame
rate. Without a scene, prints a summary of every scene with sessions.

Examples:
  snowglobe history
  snowglobe history village
  snowglobe history trainset --limit 50
  snowglobe history village --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of sessions to show")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete the scene's sessions")
}

func runHistory(_ *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("cannot open sessions database: %w", err)
	}
	defer store.Close()

	if len(args) == 0 {
		return printSummaries(os.Stdout, store)
	}

	sceneID := args[0]
	if !registry.Exists(sceneID) {
		return fmt.Errorf("unknown scene %q (run 'snowglobe list' to see available scenes)", sceneID)
	}
	if flagHistoryClear {
		if err := store.ClearSessions(sceneID); err != nil {
			return err
		}
		fmt.Printf("Cleared sessions of %s.\n", sceneID)
		return nil
	}
	return printHistory(os.Stdout, store, sceneID, flagHistoryLimit)
}

// printSummaries writes one line per scene that has sessions.
func printSummaries(w io.Writer, store *storage.Store) error {
	ids, err := store.SceneIDs()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No sessions recorded yet.")
		return nil
	}

	fmt.Fprintf(w, "  %-12s  %8s  %10s  %8s  %8s\n", "Scene", "Sessions", "Frames", "Best FPS", "Failures")
	fmt.Fprintf(w, "  %-12s  %8s  %10s  %8s  %8s\n", "-----", "--------", "------", "--------", "--------")
	for _, id := range ids {
		sum, err := store.SceneSummary(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-12s  %8d  %10d  %8.1f  %8d\n",
			id, sum.Sessions, sum.TotalFrames, sum.BestFPS, sum.NodeFailures)
	}
	return nil
}

// printHistory writes the recent sessions of a scene and plots their
// average frame rate, oldest first.
func printHistory(w io.Writer, store *storage.Store, sceneID string, limit int) error {
	sessions, err := store.RecentSessions(sceneID, limit)
	if err != nil {
		return err
	}

	title := sceneID
	if sc, err := registry.Create(sceneID); err == nil {
		title = sc.Title()
	}
	fmt.Fprintf(w, "Sessions - %s\n\n", title)

	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded yet.")
		fmt.Fprintf(w, "\nRun 'snowglobe view %s' to record one.\n", sceneID)
		return nil
	}

	fmt.Fprintf(w, "  %-16s  %8s  %9s  %7s  %8s  %s\n", "When", "Frames", "Duration", "Avg FPS", "Failures", "From")
	fmt.Fprintf(w, "  %-16s  %8s  %9s  %7s  %8s  %s\n", "----", "------", "--------", "-------", "--------", "----")
	for _, s := range sessions {
		fmt.Fprintf(w, "  %-16s  %8d  %9s  %7.1f  %8s  %s\n",
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.Frames,
			s.Duration.Round(100*time.Millisecond).String(),
			s.AvgFPS,
			fmt.Sprintf("%d/%d", s.NodeFailures, s.LoadFailures),
			s.Origin,
		)
	}

	if len(sessions) < 2 {
		return nil
	}

	data := make([]float64, len(sessions))
	for i, s := range sessions {
		data[i] = s.AvgFPS
	}
	slices.Reverse(data)

	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption("average fps, oldest to newest"),
	))
	return nil
}
