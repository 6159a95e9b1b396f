package session

import (
	"fmt"
	"slices"

	"wavetree-cli/internal/itemtree"
)

// MoveFocusedItem nudges the focused item count steps in dir. The focus
// follows the item. An item that cannot move any further stops early.
func (s *Session) MoveFocusedItem(dir itemtree.MoveDir, count int) error {
	if s.Focused == nil {
		return ErrNoFocus
	}
	if count < 1 {
		count = 1
	}
	return s.apply(fmt.Sprintf("Move item %s", dir), func() error {
		ref, ok := s.focusedRef()
		if !ok {
			return ErrNoFocus
		}
		for range count {
			if _, err := s.Tree.MoveItem(*s.Focused, dir, s.canHaveChildren); err != nil {
				return err
			}
			// Open subtrees in between make the returned index unreliable.
			s.refocus(ref, true)
			if s.Focused == nil {
				break
			}
		}
		return nil
	})
}

// MoveItems moves refs, in tree order, to target. Descendants of a listed
// item come along with it.
func (s *Session) MoveItems(refs []itemtree.ItemRef, target itemtree.TargetPosition) error {
	return s.apply(fmt.Sprintf("Move %d items", len(refs)), func() error {
		idxs, err := s.indicesOf(refs)
		if err != nil {
			return err
		}
		focused, had := s.focusedRef()
		if err := s.Tree.MoveItems(idxs, target); err != nil {
			return err
		}
		s.refocus(focused, had)
		return nil
	})
}

// DropSelection finishes a drag of the visible row source onto target. The
// selected visible items move along with source.
func (s *Session) DropSelection(source itemtree.VisibleItemIndex, target itemtree.TargetPosition) error {
	info, ok := s.Tree.GetVisibleInfo(source)
	if !ok {
		return fmt.Errorf("drag source %d: %w", source, itemtree.ErrInvalidIndex)
	}
	var refs []itemtree.ItemRef
	for sel := range s.Tree.VisibleSelected() {
		refs = append(refs, sel.Node.ItemRef)
	}
	if !slices.Contains(refs, info.Node.ItemRef) {
		refs = append(refs, info.Node.ItemRef)
	}

	return s.apply("Drag items", func() error {
		idxs, err := s.indicesOf(refs)
		if err != nil {
			return err
		}
		if err := s.Tree.MoveItems(idxs, target); err != nil {
			return err
		}
		s.refocus(info.Node.ItemRef, true)
		return nil
	})
}

// DropLevels returns the levels an item may take when dropped in front of
// the visible row slot (slot == VisibleCount() drops at the end).
func (s *Session) DropLevels(slot itemtree.VisibleItemIndex) itemtree.LevelRange {
	return s.Tree.ValidLevelsVisible(slot, s.canHaveChildren)
}

// DropTarget turns a visible drop slot into a tree position. With a nil
// level the drop lines up with the row above, as far as the neighbours
// allow.
func (s *Session) DropTarget(slot itemtree.VisibleItemIndex, level *uint8) (itemtree.TargetPosition, error) {
	var before itemtree.ItemIndex
	switch n := s.Tree.VisibleCount(); {
	case slot < 0 || int(slot) > n:
		return itemtree.TargetPosition{}, fmt.Errorf("drop slot %d: %w", slot, itemtree.ErrInvalidIndex)
	case int(slot) == n:
		before = itemtree.ItemIndex(s.Tree.Len())
	default:
		before, _ = s.Tree.ToIndex(slot)
	}

	valid := s.DropLevels(slot)
	if level != nil {
		if !valid.Contains(int(*level)) {
			return itemtree.TargetPosition{}, fmt.Errorf("drop level %d not in [%d, %d): %w", *level, valid.Start, valid.End, itemtree.ErrInvalidLevel)
		}
		return itemtree.TargetPosition{Before: before, Level: *level}, nil
	}

	want := valid.Start
	if slot > 0 {
		if above, ok := s.Tree.GetVisible(slot - 1); ok {
			want = int(above.Level)
		}
	}
	want = min(max(want, valid.Start), valid.End-1)
	return itemtree.TargetPosition{Before: before, Level: uint8(want)}, nil
}

func (s *Session) indicesOf(refs []itemtree.ItemRef) ([]itemtree.ItemIndex, error) {
	idxs := make([]itemtree.ItemIndex, 0, len(refs))
	for _, r := range refs {
		i, ok := s.Tree.IndexOf(r)
		if !ok {
			return nil, NotFoundError{Ref: r}
		}
		idxs = append(idxs, i)
	}
	slices.Sort(idxs)
	return slices.Compact(idxs), nil
}
