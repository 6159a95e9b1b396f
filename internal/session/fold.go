package session

import (
	"wavetree-cli/internal/itemtree"
)

// Fold opens or closes ref, or the focused item when ref is nil. With
// recursive the whole subtree is set. A focus that ends up hidden is moved
// to the folded item.
func (s *Session) Fold(ref *itemtree.ItemRef, unfolded, recursive bool) error {
	msg := "Fold item"
	if unfolded {
		msg = "Unfold item"
	}
	return s.apply(msg, func() error {
		idx, err := s.IndexForRefOrFocus(ref)
		if err != nil {
			return err
		}
		node, _ := s.Tree.Get(idx)
		focused, had := s.focusedRef()

		if recursive {
			err = s.Tree.FoldRecursive(idx, unfolded)
		} else {
			err = s.Tree.Fold(idx, unfolded)
		}
		if err != nil {
			return err
		}
		s.refocus(focused, had)
		if had && s.Focused == nil {
			s.refocus(node.ItemRef, true)
		}
		return nil
	})
}

// ToggleFold flips the fold state of ref, or of the focused item.
func (s *Session) ToggleFold(ref *itemtree.ItemRef) error {
	idx, err := s.IndexForRefOrFocus(ref)
	if err != nil {
		return err
	}
	n, _ := s.Tree.Get(idx)
	return s.Fold(&n.ItemRef, !n.Unfolded, false)
}

func (s *Session) FoldAll(unfolded bool) error {
	msg := "Fold all"
	if unfolded {
		msg = "Unfold all"
	}
	return s.apply(msg, func() error {
		focused, had := s.focusedRef()
		root := focused
		if had {
			// Folding everything leaves the root of the focused item.
			if i, ok := s.Tree.IndexOf(focused); ok {
				for j := i; j >= 0; j-- {
					if n, _ := s.Tree.Get(j); n.Level == 0 {
						root = n.ItemRef
						break
					}
				}
			}
		}
		s.Tree.FoldAll(unfolded)
		s.refocus(focused, had)
		if had && s.Focused == nil {
			s.refocus(root, true)
		}
		return nil
	})
}

// Selection changes are not undoable.

// Select sets the selection of the visible item vidx.
func (s *Session) Select(vidx itemtree.VisibleItemIndex, selected bool) error {
	return s.Tree.Select(vidx, selected)
}

// ToggleSelected flips the selection of vidx, or of the focused item.
func (s *Session) ToggleSelected(vidx *itemtree.VisibleItemIndex) error {
	if vidx == nil {
		vidx = s.Focused
	}
	if vidx == nil {
		return ErrNoFocus
	}
	n, ok := s.Tree.GetVisible(*vidx)
	if !ok {
		return itemtree.ErrInvalidIndex
	}
	return s.Tree.Select(*vidx, !n.Selected)
}

// SelectRange selects every visible item between the focus and to.
func (s *Session) SelectRange(to itemtree.VisibleItemIndex) error {
	if s.Focused == nil {
		return ErrNoFocus
	}
	if to < 0 || int(to) >= s.Tree.VisibleCount() {
		return itemtree.ErrInvalidIndex
	}
	s.Tree.SelectVisibleRange(*s.Focused, to, true)
	return nil
}

func (s *Session) SelectAll() {
	s.Tree.SelectAllVisible(true)
}

func (s *Session) ClearSelection() {
	s.Tree.ClearSelection()
}

// SelectedRefs lists the selected visible items in display order.
func (s *Session) SelectedRefs() []itemtree.ItemRef {
	var out []itemtree.ItemRef
	for info := range s.Tree.VisibleSelected() {
		out = append(out, info.Node.ItemRef)
	}
	return out
}
