// Package store persists wavetree sessions.
//
// A session dir holds index.sqlite (tree, items, undo history and the event
// log), an optional session.json export, tui_state.json and the TUI log.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultSessionName = "default"

	sqliteFileName = "index.sqlite"
	// ExportFileName is the default name for `export` and `import`.
	ExportFileName = "session.json"
)

type Store struct {
	Dir string
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// SQLitePath is the database file. The TUI watches it for writes by other
// processes.
func (s Store) SQLitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

// Exists reports whether the session has been initialised.
func (s Store) Exists() bool {
	st, err := os.Stat(s.SQLitePath())
	return err == nil && st.Mode().IsRegular()
}

func atomicWriteFile(path string, b []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
