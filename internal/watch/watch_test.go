package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherCollapsesBursts(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, []string{"index.sqlite", "index.sqlite-wal"}, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != ErrAlreadyStarted {
		t.Fatalf("expected ErrAlreadyStarted; got %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, "index.sqlite-wal"), []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case <-w.Changed():
	case <-time.After(3 * time.Second):
		t.Fatalf("expected a change notification")
	}

	select {
	case <-w.Changed():
		t.Fatalf("expected the burst to collapse into one notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, []string{"index.sqlite"}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "wavetree.log"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-w.Changed():
		t.Fatalf("unexpected notification for an unwatched file")
	case <-time.After(200 * time.Millisecond):
	}
}
