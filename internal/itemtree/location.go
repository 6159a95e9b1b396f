package itemtree

// LevelRange is a half-open range of levels [Start, End).
type LevelRange struct {
	Start int
	End   int
}

func (r LevelRange) Contains(level int) bool {
	return r.Start <= level && level < r.End
}

func (r LevelRange) Empty() bool {
	return r.End <= r.Start
}

// CheckLocation reports whether target is a legal insertion point.
func (t *Tree) CheckLocation(target TargetPosition) error {
	return checkLocation(t.nodes, target)
}

// ValidLevelsVisible returns the levels an item can take when it is dropped
// in front of the visible node vidx (vidx == VisibleCount() appends).
// canHaveChildren decides whether the visible node above may adopt the item.
func (t *Tree) ValidLevelsVisible(vidx VisibleItemIndex, canHaveChildren func(Node) bool) LevelRange {
	if vidx <= 0 {
		return LevelRange{0, 1}
	}

	split := int(vidx) - 1
	var pair []Node
	n := 0
	for node := range t.Visible() {
		if n >= split {
			pair = append(pair, node)
			if len(pair) == 2 {
				break
			}
		}
		n++
	}

	extra := func(pre Node) int {
		if canHaveChildren(pre) && pre.Unfolded {
			return 1
		}
		return 0
	}
	// End never passes MaxLevel+1, so every level in range fits a uint8.
	upTo := func(pre Node) int {
		return min(int(pre.Level)+1+extra(pre), MaxLevel+1)
	}
	switch len(pair) {
	case 0:
		return LevelRange{0, 1}
	case 1:
		return LevelRange{0, upTo(pair[0])}
	default:
		pre, post := pair[0], pair[1]
		return LevelRange{int(post.Level), upTo(pre)}
	}
}

// checkLocation derives the legal levels from the neighbours of the
// insertion point. The node that would follow the new one must keep its
// parent, and the new node cannot be deeper than one below its predecessor.
func checkLocation(nodes []Node, target TargetPosition) error {
	before := int(target.Before)
	if before < 0 || before > len(nodes) {
		return ErrInvalidIndex
	}

	var valid LevelRange
	switch {
	case before == 0:
		valid = LevelRange{0, 1}
	case before == len(nodes):
		valid = LevelRange{0, int(nodes[before-1].Level) + 2}
	default:
		prev, next := int(nodes[before-1].Level), int(nodes[before].Level)
		switch {
		case next > prev:
			valid = LevelRange{next, next + 1}
		case next == prev:
			valid = LevelRange{prev, prev + 2}
		default:
			valid = LevelRange{next, prev + 2}
		}
	}

	if !valid.Contains(int(target.Level)) {
		return ErrInvalidLevel
	}
	return nil
}
