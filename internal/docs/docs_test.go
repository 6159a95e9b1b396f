package docs

import (
	"slices"
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	t.Parallel()

	got := Topics()
	for _, want := range []string{"keys", "overview", "tree"} {
		if !slices.Contains(got, want) {
			t.Fatalf("expected topic %q in %v", want, got)
		}
	}
	if !slices.IsSorted(got) {
		t.Fatalf("expected sorted topics; got %v", got)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	body, ok := Get(" Tree ")
	if !ok || !strings.Contains(body, "circular move") {
		t.Fatalf("unexpected tree topic: %v %q", ok, body)
	}
	if _, ok := Get("nope"); ok {
		t.Fatalf("expected unknown topic")
	}
	if _, ok := Get(""); ok {
		t.Fatalf("expected empty topic to fail")
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	out, err := Render("# Title\n\nbody text", 60, "notty")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "body text") {
		t.Fatalf("unexpected render: %q", out)
	}
}
