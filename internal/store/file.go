package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/lox/potgame/internal/pot"
)

// File stores the snapshot as JSON at a fixed path.
type File struct {
	path   string
	logger *log.Logger
}

// NewFile creates a file backed store.
func NewFile(path string, logger *log.Logger) *File {
	return &File{
		path:   path,
		logger: logger.WithPrefix("store"),
	}
}

// Path returns the snapshot location.
func (f *File) Path() string { return f.path }

// Load implements Store. Only I/O errors other than a missing file are
// returned; a damaged snapshot is logged and replaced by the default.
func (f *File) Load(ctx context.Context) (pot.State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.Debug("No saved game", "path", f.path)
		return pot.DefaultState(), nil
	}
	if err != nil {
		return pot.DefaultState(), fmt.Errorf("failed to read snapshot: %w", err)
	}

	s, err := Restore(data)
	if err != nil {
		f.logger.Warn("Discarding saved game", "path", f.path, "error", err)
		return pot.DefaultState(), nil
	}
	f.logger.Debug("Restored game", "path", f.path, "players", len(s.Players), "round", s.Round)
	return s, nil
}

// Save implements Store.
func (f *File) Save(ctx context.Context, s pot.State) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := writeFileAtomic(f.path, data, 0o644); err != nil {
		return err
	}
	f.logger.Debug("Saved game", "path", f.path, "pot", s.Pot, "round", s.Round)
	return nil
}

// Clear implements Store.
func (f *File) Clear(ctx context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// writeFileAtomic writes to a temporary file in the target directory and
// renames it over filename, so a reader sees the old or the new snapshot
// and never a torn one.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	committed = true
	return nil
}
