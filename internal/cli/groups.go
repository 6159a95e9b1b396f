package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"wavetree-cli/internal/itemtree"
)

func newGroupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group and ungroup items",
	}
	cmd.AddCommand(newGroupCreateCmd(app))
	cmd.AddCommand(newGroupDissolveCmd(app))
	return cmd
}

func newGroupCreateCmd(app *App) *cobra.Command {
	var before int
	cmd := &cobra.Command{
		Use:   "create <name> [ref...]",
		Short: "Create a group holding refs (default: the selection)",
		Long: strings.TrimSpace(`
Create a group and move the given items into it.

Without refs the selected visible items are grouped. Without --before the
group is placed next to the focused row, and the focused item joins it.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseRefs(args[1:])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var at *itemtree.ItemIndex
			if cmd.Flags().Changed("before") {
				if before < 0 {
					return writeErr(cmd, badArgError{what: "index", value: cmd.Flags().Lookup("before").Value.String()})
				}
				i := itemtree.ItemIndex(before)
				at = &i
			}
			ref, err := sess.GroupItems(args[0], at, refs)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(cmd.Context(), app, st, sess, "group.create", ref, map[string]any{"name": args[0], "refs": refs}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rowFor(sess, ref)})
		},
	}
	cmd.Flags().IntVar(&before, "before", 0, "Place the group in front of this index")
	return cmd
}

func newGroupDissolveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dissolve [ref]",
		Short: "Remove a group but keep its children (default: focused item)",
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
			var evRef itemtree.ItemRef
			if ref != nil {
				evRef = *ref
			} else if i, ok := sess.FocusedIndex(); ok {
				n, _ := sess.Tree.Get(i)
				evRef = n.ItemRef
			}
			if err := sess.DissolveGroup(ref); err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(cmd.Context(), app, st, sess, "group.dissolve", evRef, nil); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"dissolved": evRef}})
		},
	}
}

// optionalRef parses an optional single ref argument; nil means the focus.
func optionalRef(args []string) (*itemtree.ItemRef, error) {
	if len(args) == 0 {
		return nil, nil
	}
	r, err := parseRef(args[0])
	if err != nil {
		return nil, err
	}
	return &r, nil
}
