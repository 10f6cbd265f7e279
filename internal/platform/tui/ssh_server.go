package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/snowglobe/internal/config"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/metrics"
	"github.com/vovakirdan/snowglobe/internal/stage"
	"github.com/vovakirdan/snowglobe/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.snowglobe/host_key.
	HostKeyPath string

	// DBPath is the path to the session history database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Viewer settings applied to every session. Scenes load their own
	// configs along the search order.
	Viewer config.ViewerConfig
	Detail config.DetailPreset

	Logger  *log.Logger      // Nil logs to stderr
	Metrics *metrics.Metrics // Optional
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.snowglobe/sessions.db",
		IdleTimeout: 30 * time.Minute,
		Viewer:      config.DefaultViewerConfig(),
		Detail:      config.DetailMedium,
	}
}

// SSHServer wraps a Wish SSH server serving the viewer.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "snowglobe-ssh",
		})
	}

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open session database", "error", err)
		// Continue without storage
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = filepath.Join(config.DataDir(), "host_key")
	}

	// Ensure host key directory exists
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW: pty.Window.Width,
		ScreenH: pty.Window.Height,
		FPS:     s.config.Viewer.FPS,
	}

	model := NewSessionModel(sshSession.Context(), SessionOptions{
		Store:   s.store,
		Runtime: cfg,
		Viewer:  s.config.Viewer,
		Detail:  s.config.Detail,
		Logger:  s.logger.With("user", sshSession.User()),
		Metrics: s.config.Metrics,
		Origin:  "ssh",
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		started := time.Now()
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"duration", time.Since(started).Round(time.Second),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is cancelled.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		s.closeStore()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.closeStore()
	return err
}

func (s *SSHServer) closeStore() {
	if s.store != nil {
		s.store.Close()
		s.store = nil
	}
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionOptions configures a SessionModel.
type SessionOptions struct {
	Store   *storage.Store
	Runtime core.RuntimeConfig
	Viewer  config.ViewerConfig
	Detail  config.DetailPreset
	Logger  *log.Logger
	Metrics *metrics.Metrics
	Origin  string
}

// SessionModel manages the full flow of one terminal: menu -> scene -> menu,
// with the history board one key away. It is the top-level model of SSH
// sessions.
type SessionModel struct {
	ctx       context.Context
	opts      SessionOptions
	menu      MenuModel
	viewer    *ViewerModel
	history   *HistoryModel
	lastError string
	quitting  bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(ctx context.Context, opts SessionOptions) SessionModel {
	return SessionModel{
		ctx:  ctx,
		opts: opts,
		menu: NewMenuModel(opts.Runtime, opts.Detail),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Runtime.ScreenW = wsm.Width
		m.opts.Runtime.ScreenH = wsm.Height
	}

	switch {
	case m.viewer != nil:
		return m.updateViewer(msg)
	case m.history != nil:
		return m.updateHistory(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsHistory():
		h := NewHistoryModel(m.opts.Store, m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
		m.history = &h
		m.menu = m.freshMenu()
		return m, h.Init()

	case m.menu.Selected() != nil:
		selected := m.menu.Selected()
		m.opts.Detail = m.menu.Detail()
		m.menu = m.freshMenu()

		viewer, err := NewViewerModel(m.ctx, ViewerOptions{
			Store: m.opts.Store,
			Stage: stage.Options{
				SceneID: selected.SceneID,
				Runtime: m.opts.Runtime,
				Viewer:  m.opts.Viewer,
				Detail:  m.opts.Detail,
				Origin:  m.opts.Origin,
				Logger:  m.opts.Logger,
				Metrics: m.opts.Metrics,
			},
		})
		if err != nil {
			m.lastError = err.Error()
			if m.opts.Logger != nil {
				m.opts.Logger.Error("could not start scene", "scene", selected.SceneID, "error", err)
			}
			return m, nil
		}
		m.lastError = ""
		m.viewer = &viewer
		return m, viewer.Init()
	}

	return m, cmd
}

// freshMenu returns a menu that keeps the current size and detail.
func (m SessionModel) freshMenu() MenuModel {
	return NewMenuModel(m.opts.Runtime, m.opts.Detail)
}

// updateViewer handles updates when a scene is showing.
func (m SessionModel) updateViewer(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.viewer.Update(msg)
	if vm, ok := newModel.(ViewerModel); ok {
		m.viewer = &vm
	}

	if m.viewer.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.viewer.BackToMenu() {
		m.viewer = nil
		return m, nil
	}
	return m, cmd
}

// updateHistory handles updates when the history board is showing.
func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.history.Update(msg)
	if hm, ok := newModel.(HistoryModel); ok {
		m.history = &hm
	}

	if m.history.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.history.IsGoingBack() {
		m.history = nil
		return m, nil
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch {
	case m.viewer != nil:
		return m.viewer.View()
	case m.history != nil:
		return m.history.View()
	}

	view := m.menu.View()
	if m.lastError != "" {
		view += "\n" + alertStyle.Render(centerText(m.lastError, m.opts.Runtime.ScreenW))
	}
	return view
}
