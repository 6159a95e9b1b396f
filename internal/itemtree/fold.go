package itemtree

// Folding a node hides its descendants. Hidden nodes never stay selected,
// so every fold clears the selection of what it hides.

func (t *Tree) Fold(i ItemIndex, unfolded bool) error {
	if !t.valid(i) {
		return ErrInvalidIndex
	}
	t.nodes[i].Unfolded = unfolded
	if !unfolded {
		end := subtreeEnd(t.nodes, int(i))
		for j := int(i) + 1; j < end; j++ {
			t.nodes[j].Selected = false
		}
	}
	return nil
}

// FoldRecursive sets the fold state of i and all of its descendants.
func (t *Tree) FoldRecursive(i ItemIndex, unfolded bool) error {
	if !t.valid(i) {
		return ErrInvalidIndex
	}
	end := subtreeEnd(t.nodes, int(i))
	t.nodes[i].Unfolded = unfolded
	for j := int(i) + 1; j < end; j++ {
		t.nodes[j].Unfolded = unfolded
		if !unfolded {
			t.nodes[j].Selected = false
		}
	}
	return nil
}

// FoldAll sets the fold state of every node. Folding everything leaves only
// root-level nodes visible, so only those keep their selection.
func (t *Tree) FoldAll(unfolded bool) {
	for i := range t.nodes {
		t.nodes[i].Unfolded = unfolded
		if !unfolded && t.nodes[i].Level > 0 {
			t.nodes[i].Selected = false
		}
	}
}

func (t *Tree) Select(vidx VisibleItemIndex, selected bool) error {
	i, ok := t.ToIndex(vidx)
	if !ok {
		return ErrInvalidIndex
	}
	t.nodes[i].Selected = selected
	return nil
}

func (t *Tree) SelectAllVisible(selected bool) {
	for i := 0; i < len(t.nodes); i = nextVisible(t.nodes, i) {
		t.nodes[i].Selected = selected
	}
}

// SelectVisibleRange changes the selection of the visible nodes between from
// and to, both included, in either order. Bounds past the last visible node
// are clamped.
func (t *Tree) SelectVisibleRange(from, to VisibleItemIndex, selected bool) {
	if from > to {
		from, to = to, from
	}
	vidx := VisibleItemIndex(0)
	for i := 0; i < len(t.nodes) && vidx <= to; i = nextVisible(t.nodes, i) {
		if vidx >= from {
			t.nodes[i].Selected = selected
		}
		vidx++
	}
}

// ClearSelection deselects every node, hidden ones included.
func (t *Tree) ClearSelection() {
	for i := range t.nodes {
		t.nodes[i].Selected = false
	}
}

// SelectedIndices returns the indices of all selected nodes in order.
func (t *Tree) SelectedIndices() []ItemIndex {
	var out []ItemIndex
	for i, n := range t.nodes {
		if n.Selected {
			out = append(out, ItemIndex(i))
		}
	}
	return out
}
