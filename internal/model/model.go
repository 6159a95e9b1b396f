package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"wavetree-cli/internal/itemtree"
)

type ItemKind string

const (
	KindVariable    ItemKind = "variable"
	KindDivider     ItemKind = "divider"
	KindMarker      ItemKind = "marker"
	KindTimeLine    ItemKind = "timeline"
	KindPlaceholder ItemKind = "placeholder"
	KindStream      ItemKind = "stream"
	KindGroup       ItemKind = "group"
)

var Kinds = []ItemKind{
	KindVariable,
	KindDivider,
	KindMarker,
	KindTimeLine,
	KindPlaceholder,
	KindStream,
	KindGroup,
}

func ParseKind(s string) (ItemKind, error) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Kinds, k) {
		return k, nil
	}
	return "", fmt.Errorf("unknown item kind: %q", s)
}

// Item is the content a tree node points at.
type Item struct {
	Ref  itemtree.ItemRef `json:"ref"`
	Kind ItemKind         `json:"kind"`

	// Name is the display name. For variables and placeholders it defaults
	// to the last path segment.
	Name       string `json:"name,omitempty"`
	ManualName string `json:"manualName,omitempty"`

	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`

	// Path is the full hierarchical signal path (variables, placeholders,
	// streams).
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`

	// MarkerIdx is the marker number (markers only).
	MarkerIdx uint8 `json:"markerIdx,omitempty"`
	// Rows is the number of rows a transaction stream occupies.
	Rows int `json:"rows,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// CanHaveChildren reports whether other items may be nested under this one.
func (it Item) CanHaveChildren() bool {
	return it.Kind == KindGroup
}

// DisplayName returns the name shown in lists.
func (it Item) DisplayName() string {
	if s := strings.TrimSpace(it.ManualName); s != "" {
		return s
	}
	if s := strings.TrimSpace(it.Name); s != "" {
		return s
	}
	switch it.Kind {
	case KindVariable, KindPlaceholder, KindStream:
		if it.Path != "" {
			parts := strings.Split(it.Path, ".")
			return parts[len(parts)-1]
		}
	case KindMarker:
		return fmt.Sprintf("Marker %d", it.MarkerIdx)
	case KindTimeLine:
		return "Time"
	}
	return string(it.Kind)
}

// Items maps tree refs to their content.
type Items map[itemtree.ItemRef]Item

func (m Items) Get(ref itemtree.ItemRef) (Item, bool) {
	it, ok := m[ref]
	return it, ok
}

func (m Items) Put(it Item) {
	m[it.Ref] = it
}

func (m Items) Delete(refs ...itemtree.ItemRef) {
	for _, r := range refs {
		delete(m, r)
	}
}

func (m Items) Clone() Items {
	return maps.Clone(m)
}

// CanHaveChildren is the predicate tree moves take. Unknown refs never adopt.
func (m Items) CanHaveChildren(n itemtree.Node) bool {
	it, ok := m[n.ItemRef]
	return ok && it.CanHaveChildren()
}

// Sorted returns the items ordered by ref.
func (m Items) Sorted() []Item {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b Item) int {
		switch {
		case a.Ref < b.Ref:
			return -1
		case a.Ref > b.Ref:
			return 1
		}
		return 0
	})
	return out
}

type Event struct {
	ID      string           `json:"id"`
	TS      time.Time        `json:"ts"`
	Type    string           `json:"type"`
	Ref     itemtree.ItemRef `json:"ref,omitempty"`
	Payload any              `json:"payload"`
}
