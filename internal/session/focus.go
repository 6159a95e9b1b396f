package session

import (
	"fmt"

	"wavetree-cli/internal/itemtree"
)

// Focus moves the keyboard focus to the visible node vidx.
func (s *Session) Focus(vidx itemtree.VisibleItemIndex) error {
	if vidx < 0 || int(vidx) >= s.Tree.VisibleCount() {
		return fmt.Errorf("focus %d: %w", vidx, itemtree.ErrInvalidIndex)
	}
	s.Focused = &vidx
	return nil
}

func (s *Session) Unfocus() {
	s.Focused = nil
}

// FocusedIndex returns the full-sequence index of the focused node.
func (s *Session) FocusedIndex() (itemtree.ItemIndex, bool) {
	if s.Focused == nil {
		return 0, false
	}
	return s.Tree.ToIndex(*s.Focused)
}

func (s *Session) focusedRef() (itemtree.ItemRef, bool) {
	if s.Focused == nil {
		return 0, false
	}
	n, ok := s.Tree.GetVisible(*s.Focused)
	return n.ItemRef, ok
}

// refocus points the focus at ref again after the visible list changed.
// The focus is dropped when ref is gone or hidden.
func (s *Session) refocus(ref itemtree.ItemRef, had bool) {
	if !had {
		s.Focused = nil
		return
	}
	s.Focused = s.visibleIndexOf(ref)
}

func (s *Session) visibleIndexOf(ref itemtree.ItemRef) *itemtree.VisibleItemIndex {
	for info := range s.Tree.VisibleInfo() {
		if info.Node.ItemRef == ref {
			v := info.VisibleIndex
			return &v
		}
	}
	return nil
}

// MoveFocus moves the focus count visible rows up or down, clamped to the
// list. Without a focus, moving up starts below the last row and moving down
// starts above the first. With extend, both the old and the new focus end up
// selected.
func (s *Session) MoveFocus(dir itemtree.MoveDir, count int, extend bool) {
	n := s.Tree.VisibleCount()
	if n == 0 {
		return
	}

	var next int
	switch dir {
	case itemtree.MoveUp:
		from := n
		if s.Focused != nil {
			from = int(*s.Focused)
		}
		next = max(from-count, 0)
	default:
		from := -1
		if s.Focused != nil {
			from = int(*s.Focused)
		}
		next = min(max(from+count, 0), n-1)
	}

	if extend {
		if s.Focused != nil {
			_ = s.Tree.Select(*s.Focused, true)
		}
		_ = s.Tree.Select(itemtree.VisibleItemIndex(next), true)
	}
	v := itemtree.VisibleItemIndex(next)
	s.Focused = &v
}

// FocusedInsertPosition is where new items go relative to the focus: into
// an open group as its first child, past a closed group, otherwise right
// after the focused item on its level.
func (s *Session) FocusedInsertPosition() (itemtree.TargetPosition, bool) {
	if s.Focused == nil {
		return itemtree.TargetPosition{}, false
	}
	info, ok := s.Tree.GetVisibleInfo(*s.Focused)
	if !ok {
		return itemtree.TargetPosition{}, false
	}
	it, ok := s.Items.Get(info.Node.ItemRef)
	if !ok {
		return itemtree.TargetPosition{}, false
	}

	node := info.Node
	switch {
	case it.CanHaveChildren() && node.Unfolded:
		return itemtree.TargetPosition{Before: info.Index + 1, Level: node.Level + 1}, true
	case it.CanHaveChildren():
		before := itemtree.ItemIndex(s.Tree.Len())
		if next, ok := s.Tree.ToIndex(*s.Focused + 1); ok {
			before = next
		}
		return itemtree.TargetPosition{Before: before, Level: node.Level}, true
	default:
		return itemtree.TargetPosition{Before: info.Index + 1, Level: node.Level}, true
	}
}

// VisibleInsertPosition is the slot right below the visible node vidx,
// inside it when it is an open group.
func (s *Session) VisibleInsertPosition(vidx itemtree.VisibleItemIndex) (itemtree.TargetPosition, bool) {
	info, ok := s.Tree.GetVisibleInfo(vidx)
	if !ok {
		return itemtree.TargetPosition{}, false
	}
	it, ok := s.Items.Get(info.Node.ItemRef)
	if !ok {
		return itemtree.TargetPosition{}, false
	}
	if it.CanHaveChildren() && info.Node.Unfolded {
		return itemtree.TargetPosition{Before: info.Index + 1, Level: info.Node.Level + 1}, true
	}
	// Hidden children stay with their folded parent.
	return itemtree.TargetPosition{Before: s.Tree.SubtreeEnd(info.Index), Level: info.Node.Level}, true
}

func (s *Session) EndInsertPosition() itemtree.TargetPosition {
	return itemtree.TargetPosition{Before: itemtree.ItemIndex(s.Tree.Len()), Level: 0}
}

// IndexForRefOrFocus resolves ref, or the focused node when ref is nil.
func (s *Session) IndexForRefOrFocus(ref *itemtree.ItemRef) (itemtree.ItemIndex, error) {
	if ref != nil {
		i, ok := s.Tree.IndexOf(*ref)
		if !ok {
			return 0, NotFoundError{Ref: *ref}
		}
		return i, nil
	}
	i, ok := s.FocusedIndex()
	if !ok {
		return 0, ErrNoFocus
	}
	return i, nil
}
