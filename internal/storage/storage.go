package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath is the state file used when none is configured
const DefaultPath = "posted_updates.json"

// Error is returned when the state file cannot be read or written
type Error struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Store handles persistence of posted update keys
type Store struct {
	path string
}

// New creates a new Store backed by path
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	// Create parent directory if it doesn't exist
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	return &Store{
		path: path,
	}, nil
}

// Path returns the state file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the posted keys. A missing file yields an empty list.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "load", Path: s.path, Err: err}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Nothing posted yet
			return []string{}, nil
		}
		return nil, &Error{Op: "load", Path: s.path, Err: fmt.Errorf("reading state: %w", err)}
	}

	var dates []string
	if err := json.Unmarshal(data, &dates); err != nil {
		return nil, &Error{Op: "load", Path: s.path, Err: fmt.Errorf("parsing state: %w", err)}
	}

	if dates == nil {
		dates = []string{}
	}

	return dates, nil
}

// Save replaces the state file with dates
func (s *Store) Save(ctx context.Context, dates []string) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "save", Path: s.path, Err: err}
	}

	if dates == nil {
		dates = []string{}
	}

	data, err := json.MarshalIndent(dates, "", "  ")
	if err != nil {
		return &Error{Op: "save", Path: s.path, Err: fmt.Errorf("encoding state: %w", err)}
	}

	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		return &Error{Op: "save", Path: s.path, Err: err}
	}

	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into place
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure before the rename
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName) // nolint:errcheck
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}

	committed = true
	return nil
}
