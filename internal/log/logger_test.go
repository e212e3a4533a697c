package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("user", "bob").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "user=bob") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestNewUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("chatty", &buf)

	logger.Debug().Msg("debug")
	logger.Info().Msg("info")

	out := buf.String()
	if strings.Contains(out, "debug") {
		t.Errorf("debug line written at default level: %q", out)
	}
	if !strings.Contains(out, "info") {
		t.Errorf("info line missing: %q", out)
	}
}

func TestOpenFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	f, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	defer f.Close() //nolint:errcheck // test cleanup

	info, err := os.Stat(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}
