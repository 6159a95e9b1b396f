// Package itemtree holds the ordered, foldable tree of displayed items.
//
// The tree is stored as one flat pre-order sequence of nodes. Nesting is
// encoded by a per-node level: a node's children are the nodes following it
// that are exactly one level deeper, up to the next node at the same or a
// shallower level. Adjacent nodes may step deeper by at most one level, and
// the first node is always at level 0. Every exported mutation either keeps
// that shape or fails and leaves the tree untouched.
package itemtree

import (
	"iter"
	"math"
	"slices"
)

// MaxLevel is the deepest level a node can be placed at.
const MaxLevel = math.MaxUint8

// ItemRef identifies the displayed item a node stands for. The tree never
// interprets it.
type ItemRef uint64

// ItemIndex is a position in the full node sequence, hidden nodes included.
type ItemIndex int

// VisibleItemIndex is an ordinal among the visible nodes only.
type VisibleItemIndex int

// Node is one entry of the tree.
type Node struct {
	ItemRef  ItemRef `json:"item_ref"`
	Level    uint8   `json:"level"`
	Unfolded bool    `json:"unfolded"`
	Selected bool    `json:"selected"`
}

// TargetPosition names an insertion point: the new node goes in front of
// Before (Before == Len() appends) at the given level.
type TargetPosition struct {
	Before ItemIndex `json:"before"`
	Level  uint8     `json:"level"`
}

// Tree is not safe for concurrent use. Callers own one tree per session and
// serialize mutations themselves.
type Tree struct {
	nodes []Node
}

func New() *Tree {
	return &Tree{}
}

// FromNodes builds a tree from a persisted node list and checks that the list
// is shaped like a tree.
func FromNodes(nodes []Node) (*Tree, error) {
	if err := validate(nodes); err != nil {
		return nil, err
	}
	return &Tree{nodes: slices.Clone(nodes)}, nil
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) IsEmpty() bool {
	return len(t.nodes) == 0
}

// Get returns the node at i.
func (t *Tree) Get(i ItemIndex) (Node, bool) {
	if !t.valid(i) {
		return Node{}, false
	}
	return t.nodes[i], true
}

// All yields every node in sequence order, hidden ones included.
func (t *Tree) All() iter.Seq2[ItemIndex, Node] {
	return func(yield func(ItemIndex, Node) bool) {
		for i, n := range t.nodes {
			if !yield(ItemIndex(i), n) {
				return
			}
		}
	}
}

// Nodes returns a copy of the node sequence.
func (t *Tree) Nodes() []Node {
	return slices.Clone(t.nodes)
}

func (t *Tree) Clone() *Tree {
	return &Tree{nodes: slices.Clone(t.nodes)}
}

// Equal reports whether both trees hold the same nodes in the same order.
func (t *Tree) Equal(o *Tree) bool {
	return slices.Equal(t.nodes, o.nodes)
}

// IndexOf returns the position of the first node referring to ref.
func (t *Tree) IndexOf(ref ItemRef) (ItemIndex, bool) {
	i := slices.IndexFunc(t.nodes, func(n Node) bool { return n.ItemRef == ref })
	if i < 0 {
		return 0, false
	}
	return ItemIndex(i), true
}

// SubtreeEnd returns the index just past the subtree rooted at i: the first
// later node at the same or a shallower level, or Len().
func (t *Tree) SubtreeEnd(i ItemIndex) ItemIndex {
	if !t.valid(i) {
		return ItemIndex(len(t.nodes))
	}
	return ItemIndex(subtreeEnd(t.nodes, int(i)))
}

// SubtreeContains reports whether candidate lies in the subtree rooted at
// root, root itself included.
func (t *Tree) SubtreeContains(root, candidate ItemIndex) bool {
	if !t.valid(root) || !t.valid(candidate) {
		return false
	}
	return root <= candidate && int(candidate) < subtreeEnd(t.nodes, int(root))
}

// Validate checks the depth invariant over the whole sequence.
func (t *Tree) Validate() error {
	return validate(t.nodes)
}

func (t *Tree) valid(i ItemIndex) bool {
	return i >= 0 && int(i) < len(t.nodes)
}

func subtreeEnd(nodes []Node, start int) int {
	level := nodes[start].Level
	for i := start + 1; i < len(nodes); i++ {
		if nodes[i].Level <= level {
			return i
		}
	}
	return len(nodes)
}

func validate(nodes []Node) error {
	for i, n := range nodes {
		if i == 0 {
			if n.Level != 0 {
				return &CorruptTreeError{Index: ItemIndex(i), Level: n.Level}
			}
			continue
		}
		if int(n.Level) > int(nodes[i-1].Level)+1 {
			return &CorruptTreeError{Index: ItemIndex(i), Level: n.Level}
		}
	}
	return nil
}
