package cli

import (
	"os"

	"github.com/spf13/cobra"

	"wavetree-cli/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the session as JSON (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(args) == 0 {
				return store.WriteExport(cmd.OutOrStdout(), sess)
			}
			if err := store.WriteExportFile(args[0], sess); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": args[0], "items": sess.Tree.Len()}})
		},
	}
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the session with an exported one (undoable)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer f.Close()
			snap, err := store.ReadExport(f)
			if err != nil {
				return writeErr(cmd, err)
			}

			st, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.Init(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			_, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Import(snap); err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(cmd.Context(), app, st, sess, "session.import", 0, map[string]any{"path": args[0], "items": sess.Tree.Len()}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"items": sess.Tree.Len()}})
		},
	}
}
