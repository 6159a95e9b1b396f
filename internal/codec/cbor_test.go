package codec

import (
	"bytes"
	"testing"
	"time"
)

func TestMarshalIsDeterministic(t *testing.T) {
	t.Parallel()

	a := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	b := map[string]int{"mid": 3, "alpha": 2, "zeta": 1}

	ab, err := Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for i := 0; i < 20; i++ {
		bb, err := Marshal(b)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(ab, bb) {
			t.Fatalf("expected identical encodings:\n%x\n%x", ab, bb)
		}
	}
}

func TestUnmarshalAnyUsesStringKeys(t *testing.T) {
	t.Parallel()

	raw, err := Marshal(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out any
	if err := Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any; got %T", out)
	}
	if m["k"] != "v" {
		t.Fatalf("unexpected value: %#v", m)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	type stamped struct {
		At time.Time `cbor:"1,keyasint"`
	}
	in := stamped{At: time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC)}
	raw, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out stamped
	if err := Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !out.At.Equal(in.At) {
		t.Fatalf("time changed: %v -> %v", in.At, out.At)
	}
}
