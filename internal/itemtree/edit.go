package itemtree

import "slices"

// InsertItem places a new unfolded, unselected node for ref at target and
// returns its index.
func (t *Tree) InsertItem(ref ItemRef, target TargetPosition) (ItemIndex, error) {
	if err := checkLocation(t.nodes, target); err != nil {
		return 0, err
	}
	t.nodes = slices.Insert(t.nodes, int(target.Before), Node{
		ItemRef:  ref,
		Level:    target.Level,
		Unfolded: true,
	})
	return target.Before, nil
}

// RemoveRecursive removes the node at i together with its subtree and
// returns the removed refs in sequence order.
func (t *Tree) RemoveRecursive(i ItemIndex) ([]ItemRef, error) {
	if !t.valid(i) {
		return nil, ErrInvalidIndex
	}
	return t.drain(int(i), subtreeEnd(t.nodes, int(i))), nil
}

// RemoveDissolve removes only the node at i. Its descendants move up one
// level and take its place.
func (t *Tree) RemoveDissolve(i ItemIndex) (ItemRef, error) {
	if !t.valid(i) {
		return 0, ErrInvalidIndex
	}
	end := subtreeEnd(t.nodes, int(i))
	for j := int(i) + 1; j < end; j++ {
		t.nodes[j].Level--
	}
	ref := t.nodes[i].ItemRef
	t.nodes = slices.Delete(t.nodes, int(i), int(i)+1)
	return ref, nil
}

// DrainRecursiveIf removes, in one forward scan, every node matching pred
// along with its subtree. Descendants of a removed node are not tested.
func (t *Tree) DrainRecursiveIf(pred func(Node) bool) []ItemRef {
	var removed []ItemRef
	for i := 0; i < len(t.nodes); {
		if pred(t.nodes[i]) {
			removed = append(removed, t.drain(i, subtreeEnd(t.nodes, i))...)
			continue
		}
		i++
	}
	return removed
}

func (t *Tree) drain(start, end int) []ItemRef {
	refs := make([]ItemRef, 0, end-start)
	for _, n := range t.nodes[start:end] {
		refs = append(refs, n.ItemRef)
	}
	t.nodes = slices.Delete(t.nodes, start, end)
	return refs
}
