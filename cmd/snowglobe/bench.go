package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/frame"
	"github.com/vovakirdan/snowglobe/internal/registry"
	"github.com/vovakirdan/snowglobe/internal/stage"
	"github.com/vovakirdan/snowglobe/internal/storage"
)

var (
	flagBenchFrames int
	flagBenchWidth  int
	flagBenchHeight int
	flagBenchSave   bool
)

var benchCmd = &cobra.Command{
	Use:   "bench <scene>",
	Short: "Run a scene headless and print frame stats",
	Long: `Build a scene off screen, run a fixed number of frames on a simulated
clock and report how long they took. The scene animates exactly as it would
at the configured frame rate, however fast the frames actually run.

Examples:
  snowglobe bench village
  snowglobe bench trainset --frames 1000 --detail low
  snowglobe bench village --seed 7 --save`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagBenchFrames, "frames", 300, "Number of frames to run")
	benchCmd.Flags().IntVar(&flagBenchWidth, "width", 120, "Screen width")
	benchCmd.Flags().IntVar(&flagBenchHeight, "height", 40, "Screen height")
	benchCmd.Flags().BoolVar(&flagBenchSave, "save", false, "Record the run in the sessions database")
	benchCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a custom config YAML for this scene")
}

func runBench(cmd *cobra.Command, args []string) error {
	sceneID := args[0]
	if !registry.Exists(sceneID) {
		return fmt.Errorf("unknown scene %q (run 'snowglobe list' to see available scenes)", sceneID)
	}

	if flagBenchFrames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", flagBenchFrames)
	}

	rt, err := setup(true)
	if err != nil {
		return err
	}
	defer rt.closeLog()

	opts := rt.stageOptions(sceneID, "bench")
	opts.ConfigPath = flagConfig
	opts.Runtime = core.RuntimeConfig{
		ScreenW: flagBenchWidth,
		ScreenH: flagBenchHeight,
		FPS:     rt.viewer.FPS,
		Seed:    flagSeed,
	}

	result, err := bench(cmd.Context(), opts, flagBenchFrames)
	if err != nil {
		return err
	}
	result.print(cmd.OutOrStdout())

	if flagBenchSave {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return fmt.Errorf("cannot open sessions database: %w", err)
		}
		defer store.Close()
		if _, err := store.SaveSession(result.session); err != nil {
			return err
		}
	}
	return nil
}

// benchResult holds the outcome of a headless run.
type benchResult struct {
	scene   string
	seed    int64
	stats   frame.Stats
	loaded  int64
	failed  int64
	drawn   int // Cells drawn on the last frame
	build   time.Duration
	frames  []time.Duration // Wall time of each frame
	session storage.Session
}

// bench builds the scene, waits for its assets and runs n frames. Each frame
// advances a simulated clock by one frame interval.
func bench(ctx context.Context, opts stage.Options, n int) (benchResult, error) {
	if n < 1 {
		return benchResult{}, fmt.Errorf("frame count must be positive, got %d", n)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	fps := opts.Viewer.FPS
	if fps <= 0 {
		fps = core.DefaultConfig().FPS
	}
	step := time.Second / time.Duration(fps)
	now := time.Unix(0, 0)
	opts.Clock = frame.NewClock(func() time.Time {
		now = now.Add(step)
		return now
	})

	started := time.Now()
	st, err := stage.New(ctx, opts)
	if err != nil {
		return benchResult{}, err
	}
	defer st.Stop()
	st.Assets.Wait()

	res := benchResult{
		scene:  st.Scene.ID(),
		seed:   st.Seed(),
		build:  time.Since(started),
		frames: make([]time.Duration, 0, n),
	}

	for range n {
		t0 := time.Now()
		if err := st.Tick(); err != nil {
			return res, err
		}
		res.frames = append(res.frames, time.Since(t0))
	}

	res.drawn = st.Screen.Filled()
	res.stats = st.Scheduler.Stats()
	res.loaded, res.failed, _ = st.Assets.Counts()
	res.session = st.Session()
	return res, nil
}

// print writes a short report of the run.
func (r benchResult) print(w io.Writer) {
	fmt.Fprintf(w, "Scene:     %s (seed %d)\n", r.scene, r.seed)
	fmt.Fprintf(w, "Build:     %s, %d assets loaded, %d failed\n", r.build.Round(time.Millisecond), r.loaded, r.failed)
	fmt.Fprintf(w, "Nodes:     %d\n", r.stats.Nodes)
	fmt.Fprintf(w, "Frames:    %d (%d updates, %d failures)\n", r.stats.Frames, r.stats.Updates, r.stats.Failures)
	fmt.Fprintf(w, "Drawn:     %d cells on the last frame\n", r.drawn)
	if len(r.frames) == 0 {
		return
	}

	sorted := slices.Clone(r.frames)
	slices.Sort(sorted)
	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	avg := total / time.Duration(len(sorted))
	p95 := sorted[min(len(sorted)-1, len(sorted)*95/100)]

	fmt.Fprintf(w, "Frame:     avg %s, p50 %s, p95 %s, max %s\n",
		avg.Round(time.Microsecond),
		sorted[len(sorted)/2].Round(time.Microsecond),
		p95.Round(time.Microsecond),
		sorted[len(sorted)-1].Round(time.Microsecond),
	)
	if avg > 0 {
		fmt.Fprintf(w, "Capacity:  %.0f fps\n", float64(time.Second)/float64(avg))
	}
}
