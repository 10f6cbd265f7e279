// Package storage provides SQLite-based persistence for viewing sessions.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for session history.
type Store struct {
	db *sql.DB
}

// Session is one recorded run of a scene in the viewer.
type Session struct {
	ID           int64
	SceneID      string
	Origin       string // "local", "ssh" or "bench"
	Seed         int64
	Frames       int64
	Duration     time.Duration
	AvgFPS       float64
	NodeFailures int64 // Recovered update/render panics
	LoadFailures int64 // Assets that failed to load
	CreatedAt    time.Time
}

// Summary aggregates the sessions of one scene.
type Summary struct {
	SceneID      string
	Sessions     int
	TotalFrames  int64
	BestFPS      float64
	NodeFailures int64
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scene_id TEXT NOT NULL,
			origin TEXT NOT NULL DEFAULT 'local',
			seed INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			avg_fps REAL NOT NULL DEFAULT 0,
			node_failures INTEGER NOT NULL DEFAULT 0,
			load_failures INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_scene_id ON sessions(scene_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_recent ON sessions(scene_id, id DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession records a finished session. AvgFPS is derived from Frames and
// Duration when left at zero. Returns the ID of the inserted record.
func (s *Store) SaveSession(sess Session) (int64, error) {
	if sess.SceneID == "" {
		return 0, errors.New("storage: session has no scene id")
	}
	if sess.Origin == "" {
		sess.Origin = "local"
	}
	if sess.AvgFPS == 0 && sess.Duration > 0 {
		sess.AvgFPS = float64(sess.Frames) / sess.Duration.Seconds()
	}

	result, err := s.db.Exec(
		`INSERT INTO sessions
		 (scene_id, origin, seed, frames, duration_ms, avg_fps, node_failures, load_failures)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.SceneID,
		sess.Origin,
		sess.Seed,
		sess.Frames,
		sess.Duration.Milliseconds(),
		sess.AvgFPS,
		sess.NodeFailures,
		sess.LoadFailures,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentSessions retrieves the latest sessions, newest first.
// An empty sceneID returns sessions of every scene.
func (s *Store) RecentSessions(sceneID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, scene_id, origin, seed, frames, duration_ms, avg_fps,
		        node_failures, load_failures, created_at
		 FROM sessions
		 WHERE ? = '' OR scene_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		sceneID, sceneID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var durationMS int64
		var createdAt any
		if err := rows.Scan(
			&sess.ID,
			&sess.SceneID,
			&sess.Origin,
			&sess.Seed,
			&sess.Frames,
			&durationMS,
			&sess.AvgFPS,
			&sess.NodeFailures,
			&sess.LoadFailures,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sess.Duration = time.Duration(durationMS) * time.Millisecond
		sess.CreatedAt = parseTime(createdAt)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// SceneSummary aggregates all sessions of a scene.
// Returns a zero summary if the scene has no sessions.
func (s *Store) SceneSummary(sceneID string) (Summary, error) {
	sum := Summary{SceneID: sceneID}
	var total, failures sql.NullInt64
	var best sql.NullFloat64

	err := s.db.QueryRow(
		`SELECT COUNT(*), SUM(frames), MAX(avg_fps), SUM(node_failures)
		 FROM sessions
		 WHERE scene_id = ?`,
		sceneID,
	).Scan(&sum.Sessions, &total, &best, &failures)
	if err != nil {
		return sum, fmt.Errorf("storage: cannot query summary: %w", err)
	}

	sum.TotalFrames = total.Int64
	sum.BestFPS = best.Float64
	sum.NodeFailures = failures.Int64
	return sum, nil
}

// SceneIDs returns the scenes that have recorded sessions, sorted.
func (s *Store) SceneIDs() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT scene_id FROM sessions ORDER BY scene_id")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scenes: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ClearSessions deletes all sessions of the given scene.
func (s *Store) ClearSessions(sceneID string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE scene_id = ?", sceneID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
