package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"wavetree-cli/internal/itemtree"
)

func newMoveCmd(app *App) *cobra.Command {
	var (
		before int
		level  int
	)
	cmd := &cobra.Command{
		Use:   "mv <ref>... --before N --level L",
		Short: "Move items (with their subtrees) to a position",
		Long: `Move items, in tree order, so they land in front of index --before at
depth --level. Indices refer to the tree before the move.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseRefs(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			if before < 0 {
				return writeErr(cmd, badArgError{what: "index", value: cmd.Flags().Lookup("before").Value.String()})
			}
			l, err := levelArg(level)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			target := itemtree.TargetPosition{Before: itemtree.ItemIndex(before), Level: l}
			if err := sess.MoveItems(refs, target); err != nil {
				return writeErr(cmd, err)
			}
			payload := map[string]any{"refs": refs, "before": before, "level": level}
			if err := commit(cmd.Context(), app, st, sess, "item.move", refs[0], payload); err != nil {
				return writeErr(cmd, err)
			}
			rows := make([]any, 0, len(refs))
			for _, r := range refs {
				rows = append(rows, rowFor(sess, r))
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
	cmd.Flags().IntVar(&before, "before", 0, "Target index (required)")
	cmd.Flags().IntVar(&level, "level", 0, "Target level (required)")
	_ = cmd.MarkFlagRequired("before")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func newStepCmd(app *App) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "step <visible-index> up|down",
		Short: "Nudge a visible row one step up or down, entering and leaving groups",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vidx, err := parseVisibleIndex(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			dir, err := parseDir(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			info, ok := sess.Tree.GetVisibleInfo(vidx)
			if !ok {
				return writeErr(cmd, itemtree.ErrInvalidIndex)
			}
			if err := sess.Focus(vidx); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.MoveFocusedItem(dir, count); err != nil {
				return writeErr(cmd, err)
			}
			ref := info.Node.ItemRef
			if err := commit(cmd.Context(), app, st, sess, "item.step", ref, map[string]any{"dir": dir.String(), "count": count}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rowFor(sess, ref)})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of steps")
	return cmd
}

func newDropCmd(app *App) *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "drop <visible-index> <slot>",
		Short: "Drag a visible row, with the selection, in front of another row",
		Long: `Drop the row at <visible-index>, together with every selected row, in
front of visible row <slot> (the row count drops at the end). Without
--level the rows line up with the row above the slot; an explicit --level
must be one the neighbours of the slot allow.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseVisibleIndex(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			slot, err := parseVisibleIndex(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			var lvl *uint8
			if cmd.Flags().Changed("level") {
				l, err := levelArg(level)
				if err != nil {
					return writeErr(cmd, err)
				}
				lvl = &l
			}
			st, sess, err := loadSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			info, ok := sess.Tree.GetVisibleInfo(source)
			if !ok {
				return writeErr(cmd, itemtree.ErrInvalidIndex)
			}
			valid := sess.DropLevels(slot)
			target, err := sess.DropTarget(slot, lvl)
			if err != nil {
				return writeErr(cmd, err)
			}

			refs := sess.SelectedRefs()
			if !slices.Contains(refs, info.Node.ItemRef) {
				refs = append(refs, info.Node.ItemRef)
			}
			if err := sess.DropSelection(source, target); err != nil {
				return writeErr(cmd, err)
			}
			payload := map[string]any{"refs": refs, "before": target.Before, "level": target.Level}
			if err := commit(cmd.Context(), app, st, sess, "item.move", info.Node.ItemRef, payload); err != nil {
				return writeErr(cmd, err)
			}
			rows := make([]any, 0, len(refs))
			for _, r := range refs {
				rows = append(rows, rowFor(sess, r))
			}
			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"meta": map[string]any{"levels": []int{valid.Start, valid.End}},
			})
		},
	}
	cmd.Flags().IntVar(&level, "level", 0, "Target level (default: line up with the row above)")
	return cmd
}
