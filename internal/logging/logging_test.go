package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Output: &buf, Prefix: "snowglobe"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer closeFn()

	logger.Info("frame loop started", "fps", 30)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "snowglobe") || !strings.Contains(out, "frame loop started") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, "fps=30") {
		t.Errorf("expected key/value pair in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug should be filtered at the default level")
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Output: &buf, Verbose: true})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	logger.Debug("asset loaded", "id", "snowman")
	if !strings.Contains(buf.String(), "asset loaded") {
		t.Errorf("debug message missing from %q", buf.String())
	}
}

func TestWritesToFileUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	logger, closeFn, err := New(Options{Path: "~/.snowglobe/snowglobe.log"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	logger.Warn("asset error channel full")
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, ".snowglobe", "snowglobe.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "asset error channel full") {
		t.Errorf("log file content %q", data)
	}
}

func TestNilOutputDiscards(t *testing.T) {
	logger, closeFn, err := New(Options{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer closeFn()
	logger.Error("nobody listens")
	Discard().Error("nobody listens either")
}
