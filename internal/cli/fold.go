package cli

import (
	"github.com/spf13/cobra"

	"wavetree-cli/internal/itemtree"
)

func newFoldCmd(app *App) *cobra.Command {
	var (
		unfold    bool
		toggle    bool
		recursive bool
	)
	cmd := &cobra.Command{
		Use:   "fold [ref]",
		Short: "Fold (or --unfold) an item (default: focused item)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := optionalRef(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			idx, err := sess.IndexForRefOrFocus(ref)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, _ := sess.Tree.Get(idx)

			if toggle {
				err = sess.ToggleFold(&n.ItemRef)
			} else {
				err = sess.Fold(&n.ItemRef, unfold, recursive)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			payload := map[string]any{"unfolded": unfold, "recursive": recursive, "toggle": toggle}
			if err := commit(cmd.Context(), app, st, sess, "item.fold", n.ItemRef, payload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rowFor(sess, n.ItemRef)})
		},
	}
	cmd.Flags().BoolVar(&unfold, "unfold", false, "Unfold instead of fold")
	cmd.Flags().BoolVar(&toggle, "toggle", false, "Flip the current state")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Apply to the whole subtree")
	cmd.MarkFlagsMutuallyExclusive("toggle", "unfold")
	cmd.MarkFlagsMutuallyExclusive("toggle", "recursive")
	return cmd
}

func newFoldAllCmd(app *App) *cobra.Command {
	var unfold bool
	cmd := &cobra.Command{
		Use:   "fold-all",
		Short: "Fold (or --unfold) every item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.FoldAll(unfold); err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(cmd.Context(), app, st, sess, "tree.fold_all", itemtree.ItemRef(0), map[string]any{"unfolded": unfold}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"visible": sess.Tree.VisibleCount()}})
		},
	}
	cmd.Flags().BoolVar(&unfold, "unfold", false, "Unfold instead of fold")
	return cmd
}
