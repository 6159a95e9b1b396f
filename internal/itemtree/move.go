package itemtree

import "slices"

type MoveDir int

const (
	MoveUp MoveDir = iota
	MoveDown
)

func (d MoveDir) String() string {
	if d == MoveUp {
		return "up"
	}
	return "down"
}

// MoveItem moves the visible node vidx one step up or down, the way a user
// nudges an item around with the keyboard, and returns its new visible index.
//
// A step is either a level change in place (leaving or entering the
// neighbouring group) or a jump past the neighbouring visible node or
// subtree. canHaveChildren decides whether a neighbour may adopt the moved
// node. At either end of the list the move is a no-op.
func (t *Tree) MoveItem(vidx VisibleItemIndex, dir MoveDir, canHaveChildren func(Node) bool) (VisibleItemIndex, error) {
	idx, ok := t.ToIndex(vidx)
	if !ok {
		return vidx, ErrInvalidIndex
	}
	i := int(idx)
	level := int(t.nodes[i].Level)
	end := subtreeEnd(t.nodes, i)

	switch dir {
	case MoveDown:
		if end >= len(t.nodes) || int(t.nodes[end].Level) < level {
			// Last thing in its group: step out of it.
			if err := shiftToLevel(t.nodes[i:end], max(level-1, 0)); err != nil {
				return vidx, err
			}
			return vidx, nil
		}
		next := t.nodes[end]
		if next.Unfolded && canHaveChildren(next) {
			if int(next.Level)+1 > MaxLevel {
				return vidx, ErrLevelTooDeep
			}
			err := t.MoveItems([]ItemIndex{idx}, TargetPosition{
				Before: ItemIndex(end + 1),
				Level:  next.Level + 1,
			})
			if err != nil {
				return vidx, err
			}
			return vidx + 1, nil
		}
		err := t.MoveItems([]ItemIndex{idx}, TargetPosition{
			Before: ItemIndex(subtreeEnd(t.nodes, end)),
			Level:  uint8(level),
		})
		if err != nil {
			return vidx, err
		}
		return vidx + 1, nil

	default:
		p, ok := t.visiblePredecessor(i)
		if !ok {
			return vidx, nil
		}
		pred := t.nodes[p]
		predLevel := int(pred.Level)
		if predLevel > level || (predLevel >= level && pred.Unfolded && canHaveChildren(pred)) {
			// The node above is deeper, or an open group: step into it.
			if err := shiftToLevel(t.nodes[i:end], level+1); err != nil {
				return vidx, err
			}
			return vidx, nil
		}
		err := t.MoveItems([]ItemIndex{idx}, TargetPosition{
			Before: ItemIndex(p),
			Level:  pred.Level,
		})
		if err != nil {
			return vidx, err
		}
		return vidx - 1, nil
	}
}

// MoveItems moves the listed nodes, each with its whole subtree, to target.
//
// Indices may be unsorted and may repeat. The moved chunks keep their
// relative order and are shifted so that every chunk root lands on
// target.Level. A listed node whose ancestor is also listed is detached from
// that ancestor and travels as its own chunk, placed after the ancestor's
// chunk. Moving a subtree to a position inside itself fails with
// ErrCircularMove; directly behind it is fine, even one level deeper. On
// any error the tree is unchanged.
func (t *Tree) MoveItems(indices []ItemIndex, target TargetPosition) error {
	if len(indices) == 0 {
		return nil
	}
	for _, i := range indices {
		if !t.valid(i) {
			return ErrInvalidIndex
		}
	}
	before := int(target.Before)
	if before < 0 || before > len(t.nodes) {
		return ErrInvalidIndex
	}

	roots := slices.Clone(indices)
	slices.Sort(roots)
	roots = slices.Compact(roots)
	slices.Reverse(roots)

	result := slices.Clone(t.nodes)
	var moved []Node
	type chunk struct{ start, size int }
	var done []chunk

	shifted := before
	for _, s := range roots {
		start := int(s)
		end := subtreeEnd(t.nodes, start)

		// Listed descendants were pulled out already; the chunk shrinks by
		// their size.
		size := end - start
		for _, c := range done {
			if c.start > start && c.start < end {
				size -= c.size
			}
		}

		// The target follows the chunks removed so far; landing strictly
		// inside the original subtree would make it its own descendant.
		if start < shifted && shifted < end {
			return ErrCircularMove
		}
		if start < shifted {
			shifted -= size
		}

		part := slices.Clone(result[start : start+size])
		if err := shiftToLevel(part, int(target.Level)); err != nil {
			return err
		}
		result = slices.Delete(result, start, start+size)
		moved = append(part, moved...)
		done = append(done, chunk{start: start, size: size})
	}

	if err := checkLocation(result, TargetPosition{Before: ItemIndex(shifted), Level: target.Level}); err != nil {
		return err
	}

	t.nodes = slices.Insert(result, shifted, moved...)
	return nil
}

// shiftToLevel moves every node of a subtree by the same offset so that the
// first one ends up at level. Nothing is changed when any node would leave
// the [0, MaxLevel] range.
func shiftToLevel(nodes []Node, level int) error {
	if len(nodes) == 0 {
		return nil
	}
	offset := level - int(nodes[0].Level)
	for _, n := range nodes {
		l := int(n.Level) + offset
		if l < 0 {
			return ErrInvalidLevel
		}
		if l > MaxLevel {
			return ErrLevelTooDeep
		}
	}
	for i := range nodes {
		nodes[i].Level = uint8(int(nodes[i].Level) + offset)
	}
	return nil
}
