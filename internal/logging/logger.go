// Package logging writes the runtime JSONL log under the state directory.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbright/herguard/internal/config"
)

// rotateBytes is the size past which New starts a fresh log file, keeping
// the previous one as log.jsonl.1.
const rotateBytes = 4 << 20

// Runtime is the process logger plus the file it writes to.
type Runtime struct {
	Logger *slog.Logger
	Path   string

	level *slog.LevelVar
	file  io.Closer
}

// New opens the log for appending at info level.
func New() (Runtime, error) {
	dir, err := config.StateDir()
	if err != nil {
		return Runtime{}, err
	}
	return open(filepath.Join(dir, "herguard", "log.jsonl"))
}

func open(path string) (Runtime, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Runtime{}, err
	}
	if err := rotate(path, rotateBytes); err != nil {
		return Runtime{}, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Runtime{}, err
	}

	level := new(slog.LevelVar)
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	return Runtime{
		Logger: slog.New(handler).With("app", "herguard", "pid", os.Getpid()),
		Path:   path,
		level:  level,
		file:   f,
	}, nil
}

// rotate moves path aside once it has grown past limit.
func rotate(path string, limit int64) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case info.Size() < limit:
		return nil
	}
	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}
	return nil
}

// Close closes the log file.
func (r Runtime) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// SetLevel applies config log.level once the config is loaded.
func (r Runtime) SetLevel(raw string) {
	if r.level != nil {
		r.level.Set(ParseLevel(raw))
	}
}

// ParseLevel maps log.level to a slog level. Unknown values mean info.
func ParseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}
