package itemtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func selectedRefs(t *Tree) []ItemRef {
	var out []ItemRef
	for _, n := range t.All() {
		if n.Selected {
			out = append(out, n.ItemRef)
		}
	}
	return out
}

func allSelected(t *Tree) *Tree {
	for i := range t.nodes {
		t.nodes[i].Selected = true
	}
	return t
}

func TestFoldClearsHiddenSelection(t *testing.T) {
	tree := allSelected(testTree())
	require.NoError(t, tree.Fold(5, false))
	require.Equal(t, []ItemRef{0, 1, 2, 20, 200, 3, 4, 5}, selectedRefs(tree))
	require.Equal(t, []ItemRef{0, 1, 2, 3, 4, 5}, visibleRefs(tree))

	require.NoError(t, tree.Fold(5, true))
	require.Equal(t, []ItemRef{0, 1, 2, 3, 30, 31, 4, 5}, visibleRefs(tree))
	// Unfolding does not bring the selection back.
	require.Equal(t, []ItemRef{0, 1, 2, 20, 200, 3, 4, 5}, selectedRefs(tree))

	require.ErrorIs(t, tree.Fold(10, false), ErrInvalidIndex)
}

func TestFoldRecursive(t *testing.T) {
	tree := allSelected(testTree())
	require.NoError(t, tree.FoldRecursive(2, true))
	require.Equal(t, []ItemRef{0, 1, 2, 20, 200, 3, 30, 31, 4, 5}, visibleRefs(tree))

	require.NoError(t, tree.FoldRecursive(2, false))
	for _, i := range []ItemIndex{2, 3, 4} {
		n, _ := tree.Get(i)
		require.False(t, n.Unfolded)
	}
	// The root of the fold stays selected; only its descendants are hidden.
	require.Equal(t, []ItemRef{0, 1, 2, 3, 30, 31, 4, 5}, selectedRefs(tree))

	require.ErrorIs(t, tree.FoldRecursive(-1, true), ErrInvalidIndex)
}

func TestFoldAll(t *testing.T) {
	tree := allSelected(testTree())
	tree.FoldAll(false)
	require.Equal(t, []ItemRef{0, 1, 2, 3, 4, 5}, visibleRefs(tree))
	require.Equal(t, []ItemRef{0, 1, 2, 3, 4, 5}, selectedRefs(tree))

	tree.FoldAll(true)
	require.Equal(t, []ItemRef{0, 1, 2, 20, 200, 3, 30, 31, 4, 5}, visibleRefs(tree))
}

func TestSelect(t *testing.T) {
	tree := testTree()
	require.NoError(t, tree.Select(3, true))
	require.Equal(t, []ItemRef{3}, selectedRefs(tree))
	require.ErrorIs(t, tree.Select(8, true), ErrInvalidIndex)

	tree.SelectAllVisible(true)
	// The hidden children of 2 are left alone.
	require.Equal(t, []ItemRef{0, 1, 2, 3, 30, 31, 4, 5}, selectedRefs(tree))

	tree.SelectAllVisible(false)
	require.Empty(t, selectedRefs(tree))
}

func TestSelectVisibleRange(t *testing.T) {
	tree := testTree()
	tree.SelectVisibleRange(2, 4, true)
	require.Equal(t, []ItemRef{2, 3, 30}, selectedRefs(tree))

	tree = testTree()
	tree.SelectVisibleRange(5, 1, true)
	require.Equal(t, []ItemRef{1, 2, 3, 30, 31}, selectedRefs(tree))

	tree.SelectVisibleRange(3, 3, false)
	require.Equal(t, []ItemRef{1, 2, 30, 31}, selectedRefs(tree))

	tree = testTree()
	tree.SelectVisibleRange(6, 100, true)
	require.Equal(t, []ItemRef{4, 5}, selectedRefs(tree))

	require.Equal(t, []ItemIndex{8, 9}, tree.SelectedIndices())
	var sel []ItemRef
	for info := range tree.VisibleSelected() {
		sel = append(sel, info.Node.ItemRef)
	}
	require.Equal(t, []ItemRef{4, 5}, sel)

	tree.ClearSelection()
	require.Empty(t, tree.SelectedIndices())
}
