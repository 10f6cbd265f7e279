package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/registry"
)

var flagListModels bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scenes",
	Long: `Shows a list of all scenes registered in snowglobe.

With --models, lists the bundled wireframe models instead.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&flagListModels, "models", false, "List bundled models instead of scenes")
}

func runList(cmd *cobra.Command, _ []string) error {
	if flagListModels {
		return printModels(cmd.Context(), cmd.OutOrStdout(), asset.NewCatalog(nil))
	}
	printScenes(cmd.OutOrStdout())
	return nil
}

func printScenes(w io.Writer) {
	scenes := registry.List()

	if len(scenes) == 0 {
		fmt.Fprintln(w, "No scenes available.")
		return
	}

	fmt.Fprintln(w, "Available scenes:")
	fmt.Fprintln(w)

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, s := range scenes {
		maxIDLen = max(maxIDLen, len(s.ID))
	}

	fmt.Fprintf(w, "  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Fprintf(w, "  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, s := range scenes {
		fmt.Fprintf(w, "  %-*s  %s\n", maxIDLen, s.ID, s.Title)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'snowglobe view <id>' to show a scene.")
}

// printModels lists every model in the catalog with its part count. Models
// that fail to parse are listed with the error.
func printModels(ctx context.Context, w io.Writer, catalog *asset.Catalog) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ids, err := catalog.IDs()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No models available.")
		return nil
	}

	maxIDLen := 2
	for _, id := range ids {
		maxIDLen = max(maxIDLen, len(id))
	}

	fmt.Fprintln(w, "Bundled models:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-*s  %s\n", maxIDLen, "ID", "Parts")
	fmt.Fprintf(w, "  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, id := range ids {
		m, err := catalog.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "  %-*s  error: %v\n", maxIDLen, id, err)
			continue
		}
		fmt.Fprintf(w, "  %-*s  %d\n", maxIDLen, id, len(m.Parts))
	}
	return nil
}
