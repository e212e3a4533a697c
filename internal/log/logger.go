// Package log builds the zerolog logger shared by the CLI and the TUI.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// FileName is the log file inside the config directory.
const FileName = "dailyfortune.log"

// New returns a logger writing console-formatted lines to w at level.
// An unknown level falls back to info.
func New(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	return zerolog.New(output).Level(lvl).With().
		Timestamp().
		Str("app", "dailyfortune").
		Logger()
}

// OpenFile opens (creating if needed) the log file under dir.
// The TUI owns the terminal, so logs never go to stdout.
func OpenFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Nop discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
