package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wavetree-cli/internal/format"
	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/logging"
	"wavetree-cli/internal/session"
	"wavetree-cli/internal/store"
	"wavetree-cli/internal/tui"
)

type App struct {
	Dir        string
	Session    string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg store.Config
	log *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "wavetree",
		Short:        "wavetree: the item tree of a waveform viewer (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive viewer
  wavetree

  # Scriptable commands
  wavetree add group bus
  wavetree add variable --path top.cpu.clk --into 1
  wavetree mv 2 --before 0 --level 0

  # Direct item lookup (shortcut for: wavetree item <ref>)
  wavetree 2
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		lvl := app.LogLevel
		if lvl == "" {
			lvl = cfg.LogLevel
		}
		level, err := logging.ParseLevel(lvl)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log = logging.New(cmd.ErrOrStderr(), level)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("WAVETREE_DIR", ""), "Path to a session dir (overrides --session)")
	cmd.PersistentFlags().StringVar(&app.Session, "session", envOr("WAVETREE_SESSION", ""), "Session name (default: config default_session)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("WAVETREE_FORMAT", format.JSON), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newSessionsCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newItemCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newRemovePlaceholdersCmd(app))
	cmd.AddCommand(newGroupCmd(app))
	cmd.AddCommand(newFoldCmd(app))
	cmd.AddCommand(newFoldAllCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newStepCmd(app))
	cmd.AddCommand(newDropCmd(app))
	cmd.AddCommand(newFocusCmd(app))
	cmd.AddCommand(newSelectCmd(app))
	cmd.AddCommand(newFindCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newRedoCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	st, err := resolveStore(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := st.Init(cmd.Context()); err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(st, tui.Options{
		UndoLimit: app.cfg.UndoStackSize,
		LogLevel:  app.log.GetLevel(),
		Glyphs:    app.cfg.TUI.Glyphs,
		Theme:     app.cfg.TUI.Theme,
	})
}

// resolveStore picks the session dir: --dir, then --session, then the
// configured default session.
func resolveStore(app *App) (store.Store, error) {
	if app.Dir != "" {
		return store.Store{Dir: app.Dir}, nil
	}
	name := app.Session
	if name == "" {
		name = app.cfg.DefaultSession
	}
	if name == "" {
		name = store.DefaultSessionName
	}
	dir, err := store.SessionDir(name)
	if err != nil {
		return store.Store{}, err
	}
	app.Session = name
	app.Dir = dir
	return store.Store{Dir: dir}, nil
}

// loadSession opens an initialised session.
func loadSession(ctx context.Context, app *App) (store.Store, *session.Session, error) {
	st, err := resolveStore(app)
	if err != nil {
		return store.Store{}, nil, err
	}
	if !st.Exists() {
		return st, nil, errNoSession(st.Dir)
	}
	sess, err := st.Load(ctx, session.Options{UndoLimit: app.cfg.UndoStackSize, Logger: app.log})
	if err != nil {
		return st, nil, err
	}
	return st, sess, nil
}

// commit saves sess and records the operation in the event log.
func commit(ctx context.Context, app *App, st store.Store, sess *session.Session, typ string, ref itemtree.ItemRef, payload any) error {
	if err := st.Save(ctx, sess); err != nil {
		return err
	}
	if _, err := st.AppendEvent(ctx, typ, ref, payload); err != nil {
		return err
	}
	app.log.WithFields(logrus.Fields{"op": typ, "ref": ref}).Debug("committed")
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
