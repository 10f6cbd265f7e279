// Package logging builds the charmbracelet loggers used across the viewer.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Options selects where logs go and how much is written.
type Options struct {
	// Path is a log file. Empty writes to Output instead. A leading ~ is
	// expanded to the home directory.
	Path string

	// Output is used when Path is empty. Nil discards everything.
	Output io.Writer

	Prefix  string
	Verbose bool // Debug level instead of Info
}

// New builds a logger. The returned close function releases the log file,
// if one was opened, and is never nil.
func New(opts Options) (*log.Logger, func() error, error) {
	w := opts.Output
	closeFn := func() error { return nil }

	if opts.Path != "" {
		path, err := expandHome(opts.Path)
		if err != nil {
			return nil, closeFn, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, closeFn, fmt.Errorf("logging: cannot create directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("logging: cannot open %s: %w", path, err)
		}
		w = f
		closeFn = f.Close
	}
	if w == nil {
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          opts.Prefix,
	})
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, closeFn, nil
}

// Discard returns a logger that writes nothing.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("logging: cannot get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
