package session

import (
	"fmt"
	"slices"
	"strings"

	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"
)

// AddItem stores it under a fresh ref and inserts it at pos. Without pos the
// item goes next to the focus, or at the end when nothing is focused. A
// focused session moves its focus to the new item. Adding clears the visible
// selection.
func (s *Session) AddItem(it model.Item, pos *itemtree.TargetPosition) (itemtree.ItemRef, error) {
	var ref itemtree.ItemRef
	msg := fmt.Sprintf("Add %s %s", it.Kind, it.DisplayName())
	err := s.apply(strings.TrimSpace(msg), func() error {
		var err error
		ref, err = s.insert(it, pos)
		return err
	})
	return ref, err
}

func (s *Session) insert(it model.Item, pos *itemtree.TargetPosition) (itemtree.ItemRef, error) {
	target, ok := itemtree.TargetPosition{}, false
	if pos != nil {
		target, ok = *pos, true
	}
	if !ok {
		target, ok = s.FocusedInsertPosition()
	}
	if !ok {
		target = s.EndInsertPosition()
	}

	ref := s.nextRef()
	idx, err := s.Tree.InsertItem(ref, target)
	if err != nil {
		return 0, fmt.Errorf("insert at %d/%d: %w", target.Before, target.Level, err)
	}
	it.Ref = ref
	if it.CreatedAt.IsZero() {
		it.CreatedAt = s.now().UTC()
	}
	s.Items.Put(it)

	if s.Focused != nil {
		if v, ok := s.Tree.ToVisible(idx); ok {
			s.Focused = &v
		} else {
			s.Focused = nil
		}
	}
	s.Tree.SelectAllVisible(false)
	return ref, nil
}

func (s *Session) AddGroup(name string, pos *itemtree.TargetPosition) (itemtree.ItemRef, error) {
	return s.AddItem(model.Item{Kind: model.KindGroup, Name: name}, pos)
}

// GroupItems creates a group and moves refs into it as its children.
//
// The group is placed in front of before when given. Otherwise it goes next
// to the focus, and the focused item joins the group. With no refs the
// visible selection is grouped.
func (s *Session) GroupItems(name string, before *itemtree.ItemIndex, refs []itemtree.ItemRef) (itemtree.ItemRef, error) {
	if strings.TrimSpace(name) == "" {
		name = "Group"
	}
	var group itemtree.ItemRef
	err := s.apply("Create group "+name, func() error {
		var (
			target itemtree.TargetPosition
			anchor bool
		)
		if before != nil {
			n, ok := s.Tree.Get(*before)
			if !ok {
				return fmt.Errorf("group before %d: %w", *before, itemtree.ErrInvalidIndex)
			}
			target = itemtree.TargetPosition{Before: *before, Level: n.Level}
		} else if t, ok := s.FocusedInsertPosition(); ok {
			target, anchor = t, true
		} else {
			target = s.EndInsertPosition()
		}

		members := slices.Clone(refs)
		if len(members) == 0 {
			for info := range s.Tree.VisibleSelected() {
				members = append(members, info.Node.ItemRef)
			}
		}
		if anchor {
			if ref, ok := s.focusedRef(); ok {
				members = append(members, ref)
			}
		}
		if len(members) == 0 {
			return ErrNothingToGroup
		}
		for _, r := range members {
			if _, ok := s.Tree.IndexOf(r); !ok {
				return NotFoundError{Ref: r}
			}
		}

		hadFocus := s.Focused != nil
		var err error
		group, err = s.insert(model.Item{Kind: model.KindGroup, Name: name}, &target)
		if err != nil {
			return err
		}

		var idxs []itemtree.ItemIndex
		for i, n := range s.Tree.All() {
			if slices.Contains(members, n.ItemRef) {
				idxs = append(idxs, i)
			}
		}
		if int(target.Level)+1 > itemtree.MaxLevel {
			return fmt.Errorf("move items into group: %w", itemtree.ErrLevelTooDeep)
		}
		err = s.Tree.MoveItems(idxs, itemtree.TargetPosition{Before: target.Before + 1, Level: target.Level + 1})
		if err != nil {
			s.log.WithError(err).WithField("group", name).Warn("failed to move items into group")
			return fmt.Errorf("move items into group: %w", err)
		}
		s.Tree.SelectAllVisible(false)
		s.refocus(group, hadFocus)
		return nil
	})
	return group, err
}

// DissolveGroup removes a group but keeps its children, which move up one
// level. ref nil means the focused item.
func (s *Session) DissolveGroup(ref *itemtree.ItemRef) error {
	return s.apply("Dissolve group", func() error {
		idx, err := s.IndexForRefOrFocus(ref)
		if err != nil {
			return err
		}
		n, _ := s.Tree.Get(idx)
		if !s.canHaveChildren(n) {
			return NotGroupError{Ref: n.ItemRef}
		}

		focused, had := s.focusedRef()
		prev := s.Focused
		removed, err := s.Tree.RemoveDissolve(idx)
		if err != nil {
			return err
		}
		s.Items.Delete(removed)
		s.keepFocusAfterRemoval(focused, had, prev)
		return nil
	})
}

// RemoveItem removes the item ref with everything nested under it.
func (s *Session) RemoveItem(ref itemtree.ItemRef) error {
	name := "one item"
	if it, ok := s.Items.Get(ref); ok {
		name = "item " + it.DisplayName()
	}
	return s.apply("Remove "+name, func() error {
		return s.remove(ref)
	})
}

// RemoveItems removes several items as one undoable step.
func (s *Session) RemoveItems(refs []itemtree.ItemRef) error {
	if len(refs) == 1 {
		return s.RemoveItem(refs[0])
	}
	return s.apply(fmt.Sprintf("Remove %d items", len(refs)), func() error {
		sorted := slices.Clone(refs)
		slices.Sort(sorted)
		slices.Reverse(sorted)
		for _, r := range sorted {
			// An earlier removal may already have taken r along.
			if _, ok := s.Tree.IndexOf(r); !ok {
				if _, known := s.Items.Get(r); known {
					continue
				}
				return NotFoundError{Ref: r}
			}
			if err := s.remove(r); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Session) remove(ref itemtree.ItemRef) error {
	idx, ok := s.Tree.IndexOf(ref)
	if !ok {
		return NotFoundError{Ref: ref}
	}
	focused, had := s.focusedRef()
	prev := s.Focused

	removed, err := s.Tree.RemoveRecursive(idx)
	if err != nil {
		return err
	}
	s.Items.Delete(removed...)
	s.keepFocusAfterRemoval(focused, had, prev)
	return nil
}

// keepFocusAfterRemoval keeps the focus on the same item when it survived,
// else on the same row when that still exists, else on the last row.
func (s *Session) keepFocusAfterRemoval(ref itemtree.ItemRef, had bool, prev *itemtree.VisibleItemIndex) {
	if !had {
		s.Focused = nil
		return
	}
	if v := s.visibleIndexOf(ref); v != nil {
		s.Focused = v
		return
	}
	if prev != nil && int(*prev) < s.Tree.VisibleCount() {
		v := *prev
		s.Focused = &v
		return
	}
	if n := s.Tree.VisibleCount(); n > 0 {
		v := itemtree.VisibleItemIndex(n - 1)
		s.Focused = &v
		return
	}
	s.Focused = nil
}

// RemovePlaceholders drops every placeholder together with anything nested
// under it.
func (s *Session) RemovePlaceholders() ([]itemtree.ItemRef, error) {
	var removed []itemtree.ItemRef
	err := s.apply("Remove placeholders", func() error {
		focused, had := s.focusedRef()
		removed = s.Tree.DrainRecursiveIf(func(n itemtree.Node) bool {
			it, ok := s.Items.Get(n.ItemRef)
			return ok && it.Kind == model.KindPlaceholder
		})
		s.Items.Delete(removed...)
		s.refocus(focused, had)
		return nil
	})
	return removed, err
}

// Rename sets the manual display name of ref.
func (s *Session) Rename(ref itemtree.ItemRef, name string) error {
	return s.apply("Rename item to "+name, func() error {
		it, ok := s.Items.Get(ref)
		if !ok {
			return NotFoundError{Ref: ref}
		}
		it.ManualName = strings.TrimSpace(name)
		s.Items.Put(it)
		return nil
	})
}
