package session

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"wavetree-cli/internal/itemtree"
)

// Dump renders every node, hidden ones included, one per line:
//
//	top   (1)
//	├╴child   (2) !SEL!
//	╰╴last   (3)
func (s *Session) Dump() string {
	var b strings.Builder
	for i, n := range s.Tree.All() {
		if n.Level > 1 {
			b.WriteString(strings.Repeat(" ", int(n.Level)-1))
		}
		if n.Level > 0 {
			if next, ok := s.Tree.Get(i + 1); ok && next.Level < n.Level {
				b.WriteString("╰╴")
			} else {
				b.WriteString("├╴")
			}
		}
		name := "?"
		if it, ok := s.Items.Get(n.ItemRef); ok {
			name = it.DisplayName()
		}
		fmt.Fprintf(&b, "%s   (%d)", name, n.ItemRef)
		if n.Selected {
			b.WriteString(" !SEL! ")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Match is one hit of Find.
type Match struct {
	VisibleIndex itemtree.VisibleItemIndex `json:"visibleIndex"`
	Ref          itemtree.ItemRef          `json:"ref"`
	Name         string                    `json:"name"`
	Score        int                       `json:"score"`
	Positions    []int                     `json:"positions,omitempty"`
}

// Find fuzzy matches query against the display names of the visible items,
// best match first.
func (s *Session) Find(query string) []Match {
	var (
		names []string
		infos []itemtree.Info
	)
	for info := range s.Tree.VisibleInfo() {
		it, _ := s.Items.Get(info.Node.ItemRef)
		names = append(names, it.DisplayName())
		infos = append(infos, info)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var out []Match
	for _, m := range fuzzy.Find(query, names) {
		info := infos[m.Index]
		out = append(out, Match{
			VisibleIndex: info.VisibleIndex,
			Ref:          info.Node.ItemRef,
			Name:         m.Str,
			Score:        m.Score,
			Positions:    m.MatchedIndexes,
		})
	}
	return out
}
