package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"wavetree-cli/internal/session"
)

type WriteOptions struct {
	Title         string
	IncludeFolded bool
	Overwrite     bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteSession writes index.md plus one page per item under toDir/items.
func WriteSession(sess *session.Session, toDir string, opt WriteOptions) (WriteResult, error) {
	if sess == nil {
		return WriteResult{}, errors.New("missing session")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	itemsDir := filepath.Join(toDir, "items")
	if err := os.MkdirAll(itemsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	index := RenderIndexMarkdown(sess, RenderOptions{
		Title:         opt.Title,
		IncludeFolded: opt.IncludeFolded,
		Links:         true,
	})
	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(index), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stop on the first failure; pages already written stay.
	written := []string{indexPath}
	for _, r := range sess.Rows(opt.IncludeFolded) {
		md, err := RenderItemMarkdown(sess, r.Ref)
		if err != nil {
			return WriteResult{Written: written}, err
		}
		p := filepath.Join(toDir, filepath.FromSlash(itemPagePath(r.Ref)))
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{Written: written}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
