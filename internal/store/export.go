package store

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"
	"wavetree-cli/internal/session"
)

const exportVersion = 1

// Export is the shape of session.json: the tree as its ordered node list plus
// the items its refs point at. Undo history is not exported.
type Export struct {
	Version int              `json:"version"`
	NextRef itemtree.ItemRef `json:"nextRef"`
	Tree    *itemtree.Tree   `json:"tree"`
	Items   []model.Item     `json:"items"`
}

func NewExport(sess *session.Session) Export {
	return Export{
		Version: exportVersion,
		NextRef: sess.NextRef,
		Tree:    sess.Tree.Clone(),
		Items:   sess.Items.Sorted(),
	}
}

func WriteExport(w io.Writer, sess *session.Session) error {
	b, err := json.MarshalIndent(NewExport(sess), "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// WriteExportFile writes session.json atomically.
func WriteExportFile(path string, sess *session.Session) error {
	b, err := json.MarshalIndent(NewExport(sess), "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(path, append(b, '\n'), 0o644)
}

// ReadExport parses session.json. Decoding the tree re-checks the depth
// invariant; every node must also point at a known item.
func ReadExport(r io.Reader) (session.Snapshot, error) {
	var ex Export
	if err := json.NewDecoder(r).Decode(&ex); err != nil {
		return session.Snapshot{}, fmt.Errorf("decode session export: %w", err)
	}
	if ex.Version != exportVersion {
		return session.Snapshot{}, fmt.Errorf("unsupported export version %d", ex.Version)
	}
	if ex.Tree == nil {
		ex.Tree = itemtree.New()
	}

	known := map[itemtree.ItemRef]bool{}
	maxRef := ex.NextRef
	for _, it := range ex.Items {
		known[it.Ref] = true
		maxRef = max(maxRef, it.Ref)
	}
	for i, n := range ex.Tree.All() {
		if !known[n.ItemRef] {
			return session.Snapshot{}, fmt.Errorf("node %d refers to unknown item %d", i, n.ItemRef)
		}
	}
	return session.Snapshot{
		Nodes:   ex.Tree.Nodes(),
		Items:   ex.Items,
		NextRef: maxRef,
	}, nil
}
