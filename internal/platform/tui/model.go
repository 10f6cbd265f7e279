package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/config"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/frame"
	"github.com/vovakirdan/snowglobe/internal/stage"
	"github.com/vovakirdan/snowglobe/internal/storage"
)

// ViewerOptions configures a viewer.
type ViewerOptions struct {
	Stage stage.Options
	Store *storage.Store // Optional session history
}

// loadErrorMsg carries a failed asset load from the manager's error channel.
type loadErrorMsg struct {
	err *asset.LoadError
}

// viewerStatus is shared by every copy of a ViewerModel and by the frame
// error callback, which runs inside Tick on the Bubble Tea goroutine.
type viewerStatus struct {
	lastFrameErr string
	finished     bool
}

// ViewerModel is the Bubble Tea model showing one running scene.
type ViewerModel struct {
	ctx       context.Context
	cancel    context.CancelFunc
	stage     *stage.Stage
	store     *storage.Store
	opts      stage.Options
	logger    *log.Logger
	keyMapper *KeyMapper
	help      help.Model
	status    *viewerStatus

	fps      int
	showHUD  bool
	showHelp bool
	paused   bool

	measured    float64 // Smoothed frames per second actually achieved
	lastTick    time.Time
	loadErrs    int
	lastLoadErr string
	notice      string

	standalone bool // Back quits the program instead of returning to a menu
	quitting   bool
	backToMenu bool
}

// NewViewerModel builds the scene and returns a viewer for it. Frames start
// with Init.
func NewViewerModel(ctx context.Context, opts ViewerOptions) (ViewerModel, error) {
	ctx, cancel := context.WithCancel(ctx)
	status := &viewerStatus{}

	so := opts.Stage
	if so.Logger == nil {
		so.Logger = log.New(io.Discard)
	}
	hook := so.OnFrameError
	so.OnFrameError = func(e *frame.FrameError) {
		status.lastFrameErr = e.Error()
		if hook != nil {
			hook(e)
		}
	}
	showHUD := so.Viewer.ShowHUD
	if showHUD && so.Runtime.ScreenH > 1 {
		so.Runtime.ScreenH--
	}

	st, err := stage.New(ctx, so)
	if err != nil {
		cancel()
		return ViewerModel{}, err
	}
	if so.Metrics != nil {
		so.Metrics.ViewerStarted()
	}

	fps := so.Runtime.FPS
	if fps <= 0 {
		fps = so.Viewer.FPS
	}

	h := help.New()
	h.ShowAll = true

	return ViewerModel{
		ctx:       ctx,
		cancel:    cancel,
		stage:     st,
		store:     opts.Store,
		opts:      so,
		logger:    so.Logger,
		keyMapper: NewKeyMapper(),
		help:      h,
		status:    status,
		fps:       fps,
		showHUD:   showHUD,
	}, nil
}

// Init starts the tick loop and the load error listener.
func (m ViewerModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.fps), m.waitForLoadError())
}

// waitForLoadError blocks on the asset error channel until a failure arrives
// or the viewer is closed.
func (m ViewerModel) waitForLoadError() tea.Cmd {
	errs := m.stage.Assets.Errors()
	done := m.ctx.Done()
	return func() tea.Msg {
		select {
		case le := <-errs:
			return loadErrorMsg{err: le}
		case <-done:
			return nil
		}
	}
}

// Update handles messages and updates the model state.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))

	case loadErrorMsg:
		m.loadErrs++
		m.lastLoadErr = msg.err.Error()
		return m, m.waitForLoadError()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m ViewerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keyMapper.Keys
	switch {
	case key.Matches(msg, keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.finish()
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionNone:
	case core.ActionBack:
		m.finish()
		m.backToMenu = true
		if m.standalone {
			return m, tea.Quit
		}
	case core.ActionPause:
		m.paused = !m.paused
		if m.paused {
			m.drawPauseBanner()
		} else {
			m.stage.Resume()
		}
	default:
		m.stage.Queue(action)
	}
	return m, nil
}

// handleResize processes window resize events.
func (m ViewerModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	h := msg.Height
	if m.showHUD && h > 1 {
		h--
	}
	m.stage.Resize(msg.Width, h)
	m.help.Width = msg.Width
	if m.paused {
		m.drawPauseBanner()
	}
	return m, nil
}

// pauseBanner is drawn over the middle of a paused scene.
const pauseBanner = " PAUSED - P to resume "

// drawPauseBanner writes the pause banner onto the held frame. The next
// rendered frame clears it.
func (m ViewerModel) drawPauseBanner() {
	s := m.stage.Screen
	x := max(0, (s.Width()-len(pauseBanner))/2)
	s.DrawText(x, s.Height()/2, pauseBanner, core.ColorGold)
}

// handleTick runs one frame and schedules the next tick.
func (m ViewerModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.quitting || m.backToMenu {
		return m, nil
	}

	if !m.lastTick.IsZero() {
		if dt := now.Sub(m.lastTick).Seconds(); dt > 0 {
			if m.measured == 0 {
				m.measured = 1 / dt
			} else {
				m.measured = m.measured*0.9 + (1/dt)*0.1
			}
		}
	}
	m.lastTick = now

	if !m.paused {
		if err := m.stage.Tick(); errors.Is(err, frame.ErrStopped) {
			return m, nil
		}
	}
	return m, tickCmd(m.fps)
}

// finish stops the scene and records the session. Only the first call does
// anything.
func (m *ViewerModel) finish() {
	if m.status.finished {
		return
	}
	m.status.finished = true

	m.stage.Stop()
	m.cancel()
	if m.opts.Metrics != nil {
		m.opts.Metrics.ViewerEnded()
	}

	sess := m.stage.Session()
	if m.store == nil || sess.Frames == 0 {
		return
	}
	if _, err := m.store.SaveSession(sess); err != nil {
		m.logger.Warn("could not save session", "scene", sess.SceneID, "error", err)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *ViewerModel) saveScreenshot() {
	dir := filepath.Join(config.DataDir(), "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.notice = "screenshot failed: " + err.Error()
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.stage.Scene.ID(), timestamp)
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(screenText(m.stage.Screen)), 0o600); err != nil {
		m.notice = "screenshot failed: " + err.Error()
		return
	}
	m.notice = "saved " + path
}

// screenText returns the screen as plain text without trailing blanks.
func screenText(s *core.Screen) string {
	lines := make([]string, s.Height())
	for y := range lines {
		lines[y] = strings.TrimRight(s.Row(y), " ")
	}
	return strings.Join(lines, "\n") + "\n"
}

// hudLine describes the running scene in one line.
func (m ViewerModel) hudLine() string {
	stats := m.stage.Scheduler.Stats()
	parts := []string{
		m.stage.Scene.Title(),
		fmt.Sprintf("%.0f fps", m.measured),
		fmt.Sprintf("%d nodes", stats.Nodes),
		fmt.Sprintf("%d failures", stats.Failures),
	}
	if n := m.stage.Assets.Pending(); n > 0 {
		parts = append(parts, fmt.Sprintf("loading %d", n))
	}
	if m.stage.Controller.AutoRotate() {
		parts = append(parts, "auto")
	}
	if m.paused {
		parts = append(parts, "PAUSED")
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	parts = append(parts, "? help")
	return " " + strings.Join(parts, " · ")
}

// alertLine reports the most recent failure, if any.
func (m ViewerModel) alertLine() string {
	switch {
	case m.lastLoadErr != "":
		return fmt.Sprintf(" %d load error(s), last: %s", m.loadErrs, m.lastLoadErr)
	case m.status.lastFrameErr != "":
		return " " + m.status.lastFrameErr
	}
	return ""
}

// View renders the scene to a string for display.
func (m ViewerModel) View() string {
	if m.quitting {
		return ""
	}

	width := m.stage.Screen.Width()
	lines := strings.Split(RenderScreen(m.stage.Screen), "\n")

	var footer []string
	if m.showHelp {
		footer = strings.Split(m.help.View(m.keyMapper.Keys), "\n")
	}
	if alert := m.alertLine(); alert != "" && m.showHUD {
		footer = append(footer, alertStyle.Render(fitLine(alert, width)))
	}
	if m.showHUD {
		footer = append(footer, hudStyle.Render(fitLine(m.hudLine(), width)))
	}

	// The HUD row is reserved below the screen; anything else covers the
	// bottom of the scene.
	keep := len(lines)
	if n := len(footer); m.showHUD {
		keep -= n - 1
	} else {
		keep -= n
	}
	keep = max(0, keep)

	return strings.Join(append(lines[:keep:keep], footer...), "\n")
}

// Stage returns the running scene.
func (m ViewerModel) Stage() *stage.Stage {
	return m.stage
}

// IsQuitting returns true if user requested to quit entirely.
func (m ViewerModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m ViewerModel) BackToMenu() bool {
	return m.backToMenu
}

// Run starts a Bubble Tea program showing one scene until the user quits.
// Returns true if the user left with Back rather than Quit.
func Run(ctx context.Context, opts ViewerOptions) (backToMenu bool, err error) {
	model, err := NewViewerModel(ctx, opts)
	if err != nil {
		return false, err
	}
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	vm, ok := finalModel.(ViewerModel)
	if !ok {
		vm = model
	}
	vm.finish()

	if err != nil && ctx.Err() == nil {
		return false, err
	}
	return vm.BackToMenu(), nil
}
