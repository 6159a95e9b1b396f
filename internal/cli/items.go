package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"
	"wavetree-cli/internal/session"
)

func newAddCmd(app *App) *cobra.Command {
	var (
		path       string
		marker     int
		color      string
		background string
		rows       int
		before     int
		level      int
		after      int
		into       string
	)

	cmd := &cobra.Command{
		Use:   "add <kind> [name]",
		Short: "Add an item (" + kindList() + ")",
		Long: strings.TrimSpace(`
Add an item to the tree.

Without a position flag the item goes next to the focused row (into it when
it is an open group), or at the end when nothing is focused.
`),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			it := model.Item{
				Kind:       kind,
				Path:       strings.TrimSpace(path),
				Color:      strings.TrimSpace(color),
				Background: strings.TrimSpace(background),
				Rows:       rows,
			}
			if len(args) == 2 {
				it.Name = strings.TrimSpace(args[1])
			}
			if kind == model.KindMarker {
				if marker < 0 || marker > 255 {
					return writeErr(cmd, badArgError{what: "marker", value: fmt.Sprint(marker)})
				}
				it.MarkerIdx = uint8(marker)
			}

			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var pos *itemtree.TargetPosition
			flags := cmd.Flags()
			switch {
			case flags.Changed("before") || flags.Changed("level"):
				l, err := levelArg(level)
				if err != nil {
					return writeErr(cmd, err)
				}
				pos = &itemtree.TargetPosition{Before: itemtree.ItemIndex(before), Level: l}
			case flags.Changed("after"):
				p, ok := sess.VisibleInsertPosition(itemtree.VisibleItemIndex(after))
				if !ok {
					return writeErr(cmd, fmt.Errorf("after %d: %w", after, itemtree.ErrInvalidIndex))
				}
				pos = &p
			case into != "":
				ref, err := parseRef(into)
				if err != nil {
					return writeErr(cmd, err)
				}
				p, err := intoPosition(sess, ref)
				if err != nil {
					return writeErr(cmd, err)
				}
				pos = &p
			}

			ref, err := sess.AddItem(it, pos)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(cmd.Context(), app, st, sess, "item.add", ref, map[string]any{"kind": kind}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rowFor(sess, ref)})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Full signal path (variables, placeholders, streams)")
	cmd.Flags().IntVar(&marker, "marker", 0, "Marker number (markers)")
	cmd.Flags().StringVar(&color, "color", "", "Color name")
	cmd.Flags().StringVar(&background, "background", "", "Background color name")
	cmd.Flags().IntVar(&rows, "rows", 0, "Rows a transaction stream occupies")
	cmd.Flags().IntVar(&before, "before", 0, "Insert in front of this index (with --level)")
	cmd.Flags().IntVar(&level, "level", 0, "Level for --before")
	cmd.Flags().IntVar(&after, "after", 0, "Insert below this visible row")
	cmd.Flags().StringVar(&into, "into", "", "Append as the last child of this group ref")
	cmd.MarkFlagsMutuallyExclusive("after", "into", "before")
	cmd.MarkFlagsMutuallyExclusive("after", "into", "level")
	return cmd
}

// intoPosition is the slot after the last descendant of group ref.
func intoPosition(sess *session.Session, ref itemtree.ItemRef) (itemtree.TargetPosition, error) {
	idx, ok := sess.Tree.IndexOf(ref)
	if !ok {
		return itemtree.TargetPosition{}, session.NotFoundError{Ref: ref}
	}
	it, _ := sess.Items.Get(ref)
	if !it.CanHaveChildren() {
		return itemtree.TargetPosition{}, session.NotGroupError{Ref: ref}
	}
	n, _ := sess.Tree.Get(idx)
	if int(n.Level)+1 > itemtree.MaxLevel {
		return itemtree.TargetPosition{}, itemtree.ErrLevelTooDeep
	}
	return itemtree.TargetPosition{Before: sess.Tree.SubtreeEnd(idx), Level: n.Level + 1}, nil
}

func kindList() string {
	parts := make([]string, 0, len(model.Kinds))
	for _, k := range model.Kinds {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, "|")
}

func rowFor(sess *session.Session, ref itemtree.ItemRef) *session.Row {
	for _, r := range sess.Rows(true) {
		if r.Ref == ref {
			return &r
		}
	}
	return nil
}

func newListCmd(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List visible rows (--all includes folded-away items)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rows := sess.Rows(all)
			if rows == nil {
				rows = []session.Row{}
			}
			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"meta": map[string]any{"count": sess.Tree.Len(), "visible": sess.Tree.VisibleCount()},
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include items hidden by folded groups")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the whole tree as text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), sess.Dump())
			return err
		},
	}
}

func newItemCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "item <ref>",
		Short: "Show one item and where it sits in the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			_, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			it, ok := sess.Items.Get(ref)
			row := rowFor(sess, ref)
			if !ok || row == nil {
				return writeErr(cmd, session.NotFoundError{Ref: ref})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"item": it, "node": row}})
		},
	}
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <ref> <name>",
		Short: "Set the display name of an item (empty resets it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Rename(ref, args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(cmd.Context(), app, st, sess, "item.rename", ref, map[string]any{"name": args[1]}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rowFor(sess, ref)})
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <ref>...",
		Short: "Remove items with everything nested under them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseRefs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			before := sess.Tree.Len()
			if err := sess.RemoveItems(refs); err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(cmd.Context(), app, st, sess, "item.remove", refs[0], map[string]any{"refs": refs}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": before - sess.Tree.Len()}})
		},
	}
}

func newRemovePlaceholdersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-placeholders",
		Short: "Remove every placeholder with everything nested under it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			removed, err := sess.RemovePlaceholders()
			if err != nil {
				return writeErr(cmd, err)
			}
			if removed == nil {
				removed = []itemtree.ItemRef{}
			}
			if err := commit(cmd.Context(), app, st, sess, "item.remove_placeholders", 0, map[string]any{"refs": removed}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": removed}})
		},
	}
}

func newFindCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy find visible items by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			matches := sess.Find(strings.Join(args, " "))
			if matches == nil {
				matches = []session.Match{}
			}
			return writeOut(cmd, app, map[string]any{"data": matches})
		},
	}
}
