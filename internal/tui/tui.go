package tui

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"wavetree-cli/internal/logging"
	"wavetree-cli/internal/session"
	"wavetree-cli/internal/store"
	"wavetree-cli/internal/watch"
)

type Options struct {
	UndoLimit int
	LogLevel  logrus.Level
	// Glyphs is unicode or ascii.
	Glyphs string
	// Theme is light, dark or auto.
	Theme string
}

// Run opens the session in st and blocks until the viewer quits. Logs go to
// a file in the session dir since the terminal belongs to the viewer.
func Run(st store.Store, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)
	applyGlyphPreference(opts.Glyphs)

	log, closer, err := logging.OpenFile(st.Dir, opts.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := context.Background()
	sess, err := st.Load(ctx, session.Options{UndoLimit: opts.UndoLimit, Logger: log})
	if err != nil {
		log.WithError(err).Error("load session")
		return err
	}

	m := newModel(ctx, st, sess, opts, log)

	db := filepath.Base(st.SQLitePath())
	w, err := watch.New(st.Dir, []string{db, db + "-wal"}, watch.WithOnError(func(err error) {
		log.WithError(err).Warn("session watch")
	}))
	if err == nil {
		err = w.Start()
	}
	if err != nil {
		log.WithError(err).Warn("external changes will need a manual reload")
	} else {
		m.watcher = w
		defer w.Stop()
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
