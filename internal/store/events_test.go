package store

import (
	"context"
	"testing"
)

func TestAppendReadEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := Store{Dir: t.TempDir()}

	evs, err := st.ReadEvents(ctx, 0)
	if err != nil || len(evs) != 0 {
		t.Fatalf("expected no events on a fresh dir; got %v %v", evs, err)
	}

	for i, typ := range []string{"item.add", "item.move", "item.remove"} {
		ev, err := st.AppendEvent(ctx, typ, 0, map[string]any{"n": i})
		if err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
		if ev.ID == "" {
			t.Fatalf("expected event id")
		}
	}

	all, err := st.ReadEvents(ctx, 0)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(all) != 3 || all[0].Type != "item.add" || all[2].Type != "item.remove" {
		t.Fatalf("unexpected events: %#v", all)
	}
	p, ok := all[1].Payload.(map[string]any)
	if !ok || p["n"] != float64(1) {
		t.Fatalf("unexpected payload: %#v", all[1].Payload)
	}

	tail, err := st.ReadEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ReadEvents tail: %v", err)
	}
	if len(tail) != 2 || tail[0].Type != "item.move" || tail[1].Type != "item.remove" {
		t.Fatalf("unexpected tail: %#v", tail)
	}
}
