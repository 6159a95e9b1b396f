package cli

import (
	"github.com/spf13/cobra"

	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/session"
)

func newFocusCmd(app *App) *cobra.Command {
	var unfocus bool
	cmd := &cobra.Command{
		Use:   "focus [visible-index]",
		Short: "Show, set or --clear the focused row",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			switch {
			case unfocus:
				sess.Unfocus()
			case len(args) == 1:
				vidx, err := parseVisibleIndex(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := sess.Focus(vidx); err != nil {
					return writeErr(cmd, err)
				}
			default:
				return writeOut(cmd, app, map[string]any{"data": focusedRow(sess.Rows(false))})
			}
			// Focus is not undoable, so only the state is saved.
			if err := st.Save(cmd.Context(), sess); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": focusedRow(sess.Rows(false))})
		},
	}
	cmd.Flags().BoolVar(&unfocus, "clear", false, "Remove the focus")
	return cmd
}

func newSelectCmd(app *App) *cobra.Command {
	var (
		toRange  bool
		reset    bool
		all      bool
		deselect bool
	)
	cmd := &cobra.Command{
		Use:   "select [visible-index...]",
		Short: "Select visible rows (--range extends from the focus)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			switch {
			case reset:
				sess.ClearSelection()
			case all:
				sess.SelectAll()
			case len(args) == 0:
				return writeOut(cmd, app, map[string]any{"data": refsOrEmpty(sess.SelectedRefs())})
			}
			for _, a := range args {
				vidx, err := parseVisibleIndex(a)
				if err != nil {
					return writeErr(cmd, err)
				}
				if toRange {
					err = sess.SelectRange(vidx)
				} else {
					err = sess.Select(vidx, !deselect)
				}
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := st.Save(cmd.Context(), sess); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": refsOrEmpty(sess.SelectedRefs())})
		},
	}
	cmd.Flags().BoolVar(&toRange, "range", false, "Select from the focused row to the given row")
	cmd.Flags().BoolVar(&reset, "clear", false, "Clear the selection first")
	cmd.Flags().BoolVar(&all, "all", false, "Select every visible row")
	cmd.Flags().BoolVar(&deselect, "deselect", false, "Deselect the given rows")
	cmd.MarkFlagsMutuallyExclusive("range", "deselect")
	return cmd
}

func focusedRow(rows []session.Row) any {
	for _, r := range rows {
		if r.Focused {
			return r
		}
	}
	return nil
}

func refsOrEmpty(refs []itemtree.ItemRef) []itemtree.ItemRef {
	if refs == nil {
		return []itemtree.ItemRef{}
	}
	return refs
}
