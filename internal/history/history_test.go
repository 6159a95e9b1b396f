package history

import (
	"reflect"
	"testing"
)

func TestUndoRedo(t *testing.T) {
	t.Parallel()

	s := New[int](10)
	s.Push("one", 0)
	s.Push("two", 1)

	state, n := s.Undo(2, 1)
	if state != 1 || n != 1 {
		t.Fatalf("undo: got state=%d n=%d", state, n)
	}
	if msg, ok := s.PeekRedo(); !ok || msg != "two" {
		t.Fatalf("expected redo label 'two'; got %q %v", msg, ok)
	}

	state, n = s.Redo(state, 1)
	if state != 2 || n != 1 {
		t.Fatalf("redo: got state=%d n=%d", state, n)
	}

	state, n = s.Undo(state, 5)
	if state != 0 || n != 2 {
		t.Fatalf("undo all: got state=%d n=%d", state, n)
	}
	if u, r := s.Len(); u != 0 || r != 2 {
		t.Fatalf("expected 0/2 entries; got %d/%d", u, r)
	}
}

func TestPushClearsRedo(t *testing.T) {
	t.Parallel()

	s := New[string](10)
	s.Push("a", "x")
	cur, _ := s.Undo("y", 1)
	s.Push("b", cur)
	if _, ok := s.PeekRedo(); ok {
		t.Fatalf("expected redo to be cleared")
	}
	if msg, _ := s.PeekUndo(); msg != "b" {
		t.Fatalf("expected undo label 'b'; got %q", msg)
	}
}

func TestLimitDropsOldest(t *testing.T) {
	t.Parallel()

	s := New[int](3)
	for i := 0; i < 5; i++ {
		s.Push("op", i)
	}
	undo, _ := s.Entries()
	var got []int
	for _, e := range undo {
		got = append(got, e.State)
	}
	if !reflect.DeepEqual(got, []int{2, 3, 4}) {
		t.Fatalf("expected oldest entries dropped; got %v", got)
	}

	s2 := New[int](2)
	s2.Restore(undo, nil)
	if u, _ := s2.Len(); u != 2 {
		t.Fatalf("expected restore to trim to limit; got %d", u)
	}
	if New[int](0).Limit() != DefaultLimit {
		t.Fatalf("expected default limit")
	}
}
