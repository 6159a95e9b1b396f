package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"
	"wavetree-cli/internal/session"
)

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`

	Index *itemtree.ItemIndex `json:"index,omitempty"`
	Ref   itemtree.ItemRef    `json:"ref,omitempty"`
}

type DoctorReport struct {
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

var ErrDoctorIssuesFound = errors.New("doctor: issues found")

// Doctor checks the stored session without loading it, so it can describe
// damage that would make Load fail.
func (s Store) Doctor(ctx context.Context) DoctorReport {
	var issues []DoctorIssue
	add := func(level DoctorIssueLevel, code, msg string) *DoctorIssue {
		issues = append(issues, DoctorIssue{Level: level, Code: code, Message: msg})
		return &issues[len(issues)-1]
	}

	if !s.Exists() {
		add(DoctorIssueLevelError, "no_session", "no session in "+s.Dir)
		return DoctorReport{Issues: issues}
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		add(DoctorIssueLevelError, "sqlite_open_failed", err.Error())
		return DoctorReport{Issues: issues}
	}
	defer db.Close()

	var integrity string
	if err := db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&integrity); err != nil {
		add(DoctorIssueLevelError, "sqlite_integrity_failed", err.Error())
	} else if integrity != "ok" {
		add(DoctorIssueLevelError, "sqlite_integrity_failed", integrity)
	}

	meta, err := readMeta(ctx, db)
	if err != nil {
		add(DoctorIssueLevelError, "meta_unreadable", err.Error())
		return DoctorReport{Issues: issues}
	}
	if v := meta["version"]; v != strconv.Itoa(schemaVersion) {
		add(DoctorIssueLevelError, "version_mismatch", fmt.Sprintf("schema version %q, want %d", v, schemaVersion))
	}

	items, err := readJSONRows[model.Item](ctx, db, `SELECT json FROM items ORDER BY ref`)
	if err != nil {
		add(DoctorIssueLevelError, "items_unreadable", err.Error())
		return DoctorReport{Issues: issues}
	}
	nodes, err := readNodes(ctx, db)
	if err != nil {
		add(DoctorIssueLevelError, "nodes_unreadable", err.Error())
		return DoctorReport{Issues: issues}
	}

	tree, err := itemtree.FromNodes(nodes)
	var corrupt *itemtree.CorruptTreeError
	switch {
	case errors.As(err, &corrupt):
		idx := corrupt.Index
		add(DoctorIssueLevelError, "tree_level_jump", err.Error()).Index = &idx
	case err != nil:
		add(DoctorIssueLevelError, "tree_invalid", err.Error())
	}

	known := map[itemtree.ItemRef]bool{}
	var maxRef itemtree.ItemRef
	for _, it := range items {
		known[it.Ref] = true
		maxRef = max(maxRef, it.Ref)
	}
	inTree := map[itemtree.ItemRef]bool{}
	for i, n := range nodes {
		idx := itemtree.ItemIndex(i)
		if inTree[n.ItemRef] {
			is := add(DoctorIssueLevelError, "duplicate_ref", fmt.Sprintf("item %d appears more than once", n.ItemRef))
			is.Index, is.Ref = &idx, n.ItemRef
		}
		inTree[n.ItemRef] = true
		if !known[n.ItemRef] {
			is := add(DoctorIssueLevelError, "missing_item", fmt.Sprintf("node %d points at unknown item %d", i, n.ItemRef))
			is.Index, is.Ref = &idx, n.ItemRef
		}
	}
	for _, it := range items {
		if !inTree[it.Ref] {
			add(DoctorIssueLevelWarn, "orphan_item", fmt.Sprintf("item %d is not in the tree", it.Ref)).Ref = it.Ref
		}
	}

	if v := meta["next_ref"]; v != "" {
		next, err := strconv.ParseUint(v, 10, 64)
		switch {
		case err != nil:
			add(DoctorIssueLevelError, "next_ref_invalid", err.Error())
		case itemtree.ItemRef(next) < maxRef:
			add(DoctorIssueLevelError, "next_ref_behind", fmt.Sprintf("next_ref %d is below item %d", next, maxRef))
		}
	}
	if v := meta["focused"]; v != "" && tree != nil {
		f, err := strconv.Atoi(v)
		if err != nil || f < 0 || f >= tree.VisibleCount() {
			add(DoctorIssueLevelWarn, "focus_out_of_range", fmt.Sprintf("focused row %q is not visible", v))
		}
	}

	for _, side := range []string{historyUndo, historyRedo} {
		entries, err := readHistory(ctx, db, side)
		if err != nil {
			add(DoctorIssueLevelWarn, "history_unreadable", err.Error())
			continue
		}
		for i, e := range entries {
			if err := session.New(session.Options{}).Restore(e.State); err != nil {
				add(DoctorIssueLevelWarn, "history_snapshot_invalid", fmt.Sprintf("%s entry %d (%s): %v", side, i, e.Message, err))
			}
		}
	}

	return DoctorReport{Issues: issuesOrEmpty(issues)}
}

func issuesOrEmpty(xs []DoctorIssue) []DoctorIssue {
	if xs == nil {
		return []DoctorIssue{}
	}
	return xs
}
