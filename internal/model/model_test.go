package model

import (
	"testing"

	"wavetree-cli/internal/itemtree"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds {
		got, err := ParseKind("  " + string(k) + " ")
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k, err)
		}
		if got != k {
			t.Fatalf("ParseKind(%q) = %q", k, got)
		}
	}
	if got, err := ParseKind("GROUP"); err != nil || got != KindGroup {
		t.Fatalf("expected case-insensitive match; got %q, %v", got, err)
	}
	if _, err := ParseKind("signal"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		it   Item
		want string
	}{
		{Item{Kind: KindVariable, Path: "tb.dut.clk"}, "clk"},
		{Item{Kind: KindVariable, Path: "tb.dut.clk", Name: "clock"}, "clock"},
		{Item{Kind: KindVariable, Path: "tb.dut.clk", Name: "clock", ManualName: "CLK"}, "CLK"},
		{Item{Kind: KindMarker, MarkerIdx: 3}, "Marker 3"},
		{Item{Kind: KindTimeLine}, "Time"},
		{Item{Kind: KindDivider}, "divider"},
	}
	for _, tc := range cases {
		if got := tc.it.DisplayName(); got != tc.want {
			t.Fatalf("DisplayName(%+v) = %q; want %q", tc.it, got, tc.want)
		}
	}
}

func TestItemsCanHaveChildren(t *testing.T) {
	t.Parallel()

	items := Items{}
	items.Put(Item{Ref: 1, Kind: KindGroup})
	items.Put(Item{Ref: 2, Kind: KindVariable})

	if !items.CanHaveChildren(itemtree.Node{ItemRef: 1}) {
		t.Fatalf("expected group to accept children")
	}
	if items.CanHaveChildren(itemtree.Node{ItemRef: 2}) {
		t.Fatalf("expected variable to reject children")
	}
	if items.CanHaveChildren(itemtree.Node{ItemRef: 3}) {
		t.Fatalf("expected unknown ref to reject children")
	}

	c := items.Clone()
	c.Delete(1)
	if _, ok := items.Get(1); !ok {
		t.Fatalf("clone must not share storage")
	}
	if got := items.Sorted(); len(got) != 2 || got[0].Ref != 1 || got[1].Ref != 2 {
		t.Fatalf("unexpected sort order: %+v", got)
	}
}
