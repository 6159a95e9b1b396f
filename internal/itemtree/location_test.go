package itemtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckLocation(t *testing.T) {
	tree := testTree()
	cases := []struct {
		before ItemIndex
		level  uint8
		err    error
	}{
		{0, 0, nil},
		{0, 1, ErrInvalidLevel},
		// end: anything from the root to one below the last node
		{10, 0, nil},
		{10, 1, nil},
		{10, 2, ErrInvalidLevel},
		{11, 0, ErrInvalidIndex},
		// next node deeper: must match it
		{3, 1, nil},
		{3, 0, ErrInvalidLevel},
		{3, 2, ErrInvalidLevel},
		// equal neighbours: same level or one deeper
		{7, 1, nil},
		{7, 2, nil},
		{7, 0, ErrInvalidLevel},
		// cliff: between the next node's level and one below the previous
		{5, 0, nil},
		{5, 3, nil},
		{5, 4, ErrInvalidLevel},
		{-1, 0, ErrInvalidIndex},
	}
	for _, tc := range cases {
		err := tree.CheckLocation(TargetPosition{Before: tc.before, Level: tc.level})
		if tc.err == nil {
			require.NoError(t, err, "before=%d level=%d", tc.before, tc.level)
			continue
		}
		require.ErrorIs(t, err, tc.err, "before=%d level=%d", tc.before, tc.level)
	}
}

func TestValidLevelsVisible(t *testing.T) {
	tree := buildTree(
		/* 0 */ row{0, 0, true, false},
		/* 1 */ row{1, 0, true, false},
		/* 2 */ row{2, 0, false, false},
		/* - */ row{20, 1, true, false},
		/* 3 */ row{3, 0, true, false},
		/* 4 */ row{30, 1, true, false},
		/* 5 */ row{300, 2, true, false},
		/* 6 */ row{4, 0, true, false},
		/* 7 */ row{40, 1, true, false},
		/* 8 */ row{400, 2, true, false},
		/* 9 */ row{41, 1, true, false},
		/* 10 */ row{410, 2, true, false},
	)
	never := func(Node) bool { return false }
	always := func(Node) bool { return true }

	cases := []struct {
		name         string
		vidx         VisibleItemIndex
		never, every LevelRange
	}{
		// No indent in front of the first node.
		{"first", 0, LevelRange{0, 1}, LevelRange{0, 1}},
		// Flat neighbours: indent only when the node above accepts children.
		{"flat", 1, LevelRange{0, 1}, LevelRange{0, 2}},
		// The node above is folded; its hidden child does not count.
		{"after folded", 3, LevelRange{0, 1}, LevelRange{0, 1}},
		// Past a cliff every level down to the root is fine.
		{"cliff", 6, LevelRange{0, 3}, LevelRange{0, 4}},
		// The next node is indented; the root would steal it.
		{"next indented", 9, LevelRange{1, 3}, LevelRange{1, 4}},
		{"past end", 11, LevelRange{0, 3}, LevelRange{0, 4}},
		{"far past end", 42, LevelRange{0, 1}, LevelRange{0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.never, tree.ValidLevelsVisible(tc.vidx, never))
			require.Equal(t, tc.every, tree.ValidLevelsVisible(tc.vidx, always))
		})
	}
}

func TestValidLevelsVisibleAtMaxLevel(t *testing.T) {
	var nodes []row
	for l := 0; l <= MaxLevel; l++ {
		nodes = append(nodes, row{ItemRef(l), uint8(l), true, false})
	}
	tree := buildTree(nodes...)
	always := func(Node) bool { return true }

	end := VisibleItemIndex(tree.Len())
	require.Equal(t, LevelRange{0, MaxLevel + 1}, tree.ValidLevelsVisible(end, always))
	require.Equal(t, LevelRange{MaxLevel, MaxLevel + 1}, tree.ValidLevelsVisible(end-1, always))
}

func TestLevelRange(t *testing.T) {
	r := LevelRange{1, 3}
	require.False(t, r.Contains(0))
	require.True(t, r.Contains(1))
	require.True(t, r.Contains(2))
	require.False(t, r.Contains(3))
	require.False(t, r.Empty())
	require.True(t, LevelRange{2, 2}.Empty())
}
