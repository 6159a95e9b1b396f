package itemtree

import "iter"

// Info describes a visible node together with its position in both index
// spaces.
type Info struct {
	Node         Node
	Index        ItemIndex
	VisibleIndex VisibleItemIndex
	// HasChildren is true when the following node is deeper, whether or not
	// those children are currently shown.
	HasChildren bool
	// Last is true for the final visible node.
	Last bool
}

// nextVisible returns the index of the next visible node after i, or
// len(nodes). i must be a valid index and visible itself.
func nextVisible(nodes []Node, i int) int {
	if nodes[i].Unfolded {
		return i + 1
	}
	return subtreeEnd(nodes, i)
}

// Visible yields the visible nodes in order. A node is visible when none of
// its ancestors is folded.
func (t *Tree) Visible() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for i := 0; i < len(t.nodes); i = nextVisible(t.nodes, i) {
			if !yield(t.nodes[i]) {
				return
			}
		}
	}
}

// VisibleInfo yields the visible nodes with their indices and layout hints.
func (t *Tree) VisibleInfo() iter.Seq[Info] {
	return func(yield func(Info) bool) {
		vidx := 0
		for i := 0; i < len(t.nodes); {
			next := nextVisible(t.nodes, i)
			info := Info{
				Node:         t.nodes[i],
				Index:        ItemIndex(i),
				VisibleIndex: VisibleItemIndex(vidx),
				HasChildren:  i+1 < len(t.nodes) && t.nodes[i+1].Level > t.nodes[i].Level,
				Last:         next >= len(t.nodes),
			}
			if !yield(info) {
				return
			}
			i = next
			vidx++
		}
	}
}

// VisibleSelected yields the visible nodes that are selected.
func (t *Tree) VisibleSelected() iter.Seq[Info] {
	return func(yield func(Info) bool) {
		for info := range t.VisibleInfo() {
			if info.Node.Selected && !yield(info) {
				return
			}
		}
	}
}

func (t *Tree) GetVisibleInfo(vidx VisibleItemIndex) (Info, bool) {
	if vidx < 0 {
		return Info{}, false
	}
	for info := range t.VisibleInfo() {
		if info.VisibleIndex == vidx {
			return info, true
		}
	}
	return Info{}, false
}

func (t *Tree) GetVisible(vidx VisibleItemIndex) (Node, bool) {
	info, ok := t.GetVisibleInfo(vidx)
	return info.Node, ok
}

// ToIndex translates a visible index into a full-sequence index.
func (t *Tree) ToIndex(vidx VisibleItemIndex) (ItemIndex, bool) {
	info, ok := t.GetVisibleInfo(vidx)
	return info.Index, ok
}

// ToVisible translates a full-sequence index into a visible index. It fails
// for hidden nodes.
func (t *Tree) ToVisible(i ItemIndex) (VisibleItemIndex, bool) {
	if !t.valid(i) {
		return 0, false
	}
	for info := range t.VisibleInfo() {
		if info.Index == i {
			return info.VisibleIndex, true
		}
		if info.Index > i {
			break
		}
	}
	return 0, false
}

func (t *Tree) VisibleCount() int {
	n := 0
	for range t.Visible() {
		n++
	}
	return n
}

// visiblePredecessor finds the visible node shown directly above idx,
// regardless of its level. Subtrees of folded nodes between the two are
// skipped.
func (t *Tree) visiblePredecessor(idx int) (int, bool) {
	if idx <= 0 || idx >= len(t.nodes) {
		return 0, false
	}

	startLevel := t.nodes[idx].Level
	candidate := idx - 1
	limit := t.nodes[candidate].Level
	for {
		idx--
		n := t.nodes[idx]
		// Anything deeper than limit belongs to a subtree we already passed.
		if n.Level < limit {
			limit = n.Level
			if !n.Unfolded {
				candidate = idx
			}
		}
		if n.Level <= startLevel || idx == 0 {
			return candidate, true
		}
	}
}
