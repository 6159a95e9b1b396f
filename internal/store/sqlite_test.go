package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"
	"wavetree-cli/internal/session"
)

var fixedNow = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(session.Options{Now: func() time.Time { return fixedNow }})
	g, err := s.AddGroup("bus", nil)
	if err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	gi, _ := s.Tree.IndexOf(g)
	for _, name := range []string{"clk", "rst"} {
		pos := itemtree.TargetPosition{Before: itemtree.ItemIndex(s.Tree.Len()), Level: 1}
		if _, err := s.AddItem(model.Item{Kind: model.KindVariable, Path: "top." + name}, &pos); err != nil {
			t.Fatalf("AddItem %s: %v", name, err)
		}
	}
	if _, err := s.AddItem(model.Item{Kind: model.KindMarker, MarkerIdx: 2}, nil); err != nil {
		t.Fatalf("AddItem marker: %v", err)
	}
	if err := s.Tree.Fold(gi, false); err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if err := s.Focus(1); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	return s
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := Store{Dir: t.TempDir()}
	if st.Exists() {
		t.Fatalf("expected fresh dir to have no session")
	}

	want := newTestSession(t)
	if err := st.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !st.Exists() {
		t.Fatalf("expected session after save")
	}

	got, err := st.Load(ctx, session.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Tree.Equal(want.Tree) {
		t.Fatalf("tree mismatch:\nwant: %#v\ngot:  %#v", want.Tree.Nodes(), got.Tree.Nodes())
	}
	if got.Dump() != want.Dump() {
		t.Fatalf("dump mismatch:\nwant:\n%s\ngot:\n%s", want.Dump(), got.Dump())
	}
	if got.NextRef != want.NextRef {
		t.Fatalf("next ref: want %d got %d", want.NextRef, got.NextRef)
	}
	if got.Focused == nil || *got.Focused != 1 {
		t.Fatalf("expected focus 1; got %v", got.Focused)
	}
	it, ok := got.Items.Get(2)
	if !ok || it.DisplayName() != "clk" || !it.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected item 2: %#v", it)
	}

	wantUndo, _ := want.History.Len()
	gotUndo, gotRedo := got.History.Len()
	if gotUndo != wantUndo || gotRedo != 0 {
		t.Fatalf("history: want %d/0 got %d/%d", wantUndo, gotUndo, gotRedo)
	}
	// Undo after reload walks back through the persisted snapshots.
	if n := got.Undo(1); n != 1 {
		t.Fatalf("expected one undo step; got %d", n)
	}
	if _, ok := got.Items.Get(4); ok {
		t.Fatalf("expected marker to be gone after undo")
	}
}

func TestLoad_MissingDatabaseIsEmpty(t *testing.T) {
	t.Parallel()

	st := Store{Dir: t.TempDir()}
	sess, err := st.Load(context.Background(), session.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !sess.Tree.IsEmpty() || st.Exists() {
		t.Fatalf("expected empty session without creating a database")
	}
}

func TestLoad_RejectsCorruptNodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := Store{Dir: t.TempDir()}
	if err := st.Save(ctx, newTestSession(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	db, err := sql.Open("sqlite", st.SQLitePath())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// Push the second node two levels below the first.
	if _, err := db.Exec(`UPDATE nodes SET level = 2 WHERE pos = 1`); err != nil {
		t.Fatalf("update: %v", err)
	}
	_ = db.Close()

	_, err = st.Load(ctx, session.Options{})
	if !errors.Is(err, itemtree.ErrCorruptTree) {
		t.Fatalf("expected ErrCorruptTree; got %v", err)
	}
	var ct *itemtree.CorruptTreeError
	if !errors.As(err, &ct) || ct.Index != 1 {
		t.Fatalf("expected corruption at node 1; got %v", err)
	}
}

func TestSave_ReplacesPreviousState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := Store{Dir: t.TempDir()}
	sess := newTestSession(t)
	if err := st.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := sess.RemovePlaceholders(); err != nil {
		t.Fatalf("RemovePlaceholders: %v", err)
	}
	if err := sess.RemoveItem(1); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := st.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load(ctx, session.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Tree.Len() != 1 || len(got.Items) != 1 {
		t.Fatalf("expected only the marker left; got\n%s", got.Dump())
	}
}

func TestInitIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := Store{Dir: t.TempDir()}
	for i := 0; i < 2; i++ {
		if err := st.Init(ctx); err != nil {
			t.Fatalf("Init #%d: %v", i, err)
		}
	}
	if !st.Exists() {
		t.Fatalf("expected database after Init")
	}
}
