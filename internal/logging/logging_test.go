package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    logrus.Level
		wantErr bool
	}{
		{in: "", want: DefaultLevel},
		{in: "debug", want: logrus.DebugLevel},
		{in: " INFO ", want: logrus.InfoLevel},
		{in: "loud", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseLevel(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewWritesFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, logrus.DebugLevel)
	l.WithFields(logrus.Fields{"op": "move", "ref": 3}).Debug("applied")

	out := buf.String()
	for _, want := range []string{"level=debug", "op=move", "ref=3", "msg=applied"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestOpenFileAppends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l, c, err := OpenFile(dir, logrus.InfoLevel)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	l.Info("first")
	l.Debug("hidden")
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "msg=first") || strings.Contains(string(b), "hidden") {
		t.Fatalf("unexpected log contents: %q", string(b))
	}
}
