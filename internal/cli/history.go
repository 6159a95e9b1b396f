package cli

import (
	"github.com/spf13/cobra"

	"wavetree-cli/internal/session"
	"wavetree-cli/internal/store"
)

func newUndoCmd(app *App) *cobra.Command {
	var (
		count int
		list  bool
	)
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Revert the last operations (--list shows the history)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if list {
				return writeOut(cmd, app, map[string]any{"data": historyMessages(sess)})
			}
			msg, _ := sess.History.PeekUndo()
			n := sess.Undo(count)
			return finishHistory(cmd, app, st, sess, "history.undo", n, msg)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of operations")
	cmd.Flags().BoolVar(&list, "list", false, "List undo and redo entries")
	return cmd
}

func newRedoCmd(app *App) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "redo",
		Short: "Re-apply undone operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			msg, _ := sess.History.PeekRedo()
			n := sess.Redo(count)
			return finishHistory(cmd, app, st, sess, "history.redo", n, msg)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of operations")
	return cmd
}

func finishHistory(cmd *cobra.Command, app *App, st store.Store, sess *session.Session, typ string, n int, msg string) error {
	if n > 0 {
		payload := map[string]any{"count": n, "message": msg}
		if err := commit(cmd.Context(), app, st, sess, typ, 0, payload); err != nil {
			return writeErr(cmd, err)
		}
	}
	return writeOut(cmd, app, map[string]any{"data": map[string]any{"count": n, "message": msg}})
}

func historyMessages(sess *session.Session) map[string][]string {
	undo, redo := sess.History.Entries()
	out := map[string][]string{"undo": {}, "redo": {}}
	for _, e := range undo {
		out["undo"] = append(out["undo"], e.Message)
	}
	for _, e := range redo {
		out["redo"] = append(out["redo"], e.Message)
	}
	return out
}
