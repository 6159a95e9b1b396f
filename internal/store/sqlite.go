package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"wavetree-cli/internal/codec"
	"wavetree-cli/internal/history"
	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"
	"wavetree-cli/internal/session"
)

const schemaVersion = 1

const (
	historyUndo = "undo"
	historyRedo = "redo"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.SQLitePath())
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI read while a CLI command writes; busy_timeout rides
	// out short lock contention between the two.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			ref INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			pos INTEGER PRIMARY KEY,
			item_ref INTEGER NOT NULL,
			level INTEGER NOT NULL,
			unfolded INTEGER NOT NULL,
			selected INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			side TEXT NOT NULL,
			seq INTEGER NOT NULL,
			message TEXT NOT NULL,
			snapshot BLOB NOT NULL,
			PRIMARY KEY (side, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			item_ref INTEGER NOT NULL,
			payload_json TEXT NOT NULL,
			issued_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_issued ON events(issued_at_unixms);`,
		`CREATE INDEX IF NOT EXISTS idx_events_ref ON events(item_ref, issued_at_unixms);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Init creates the session database. It is a no-op on an existing session.
func (s Store) Init(ctx context.Context) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `INSERT OR IGNORE INTO state_meta(k, v) VALUES('version', ?)`, strconv.Itoa(schemaVersion))
	return err
}

// Load reads the session. A dir without a database yields an empty session.
// The node list is checked against the tree invariant before anything is
// handed out.
func (s Store) Load(ctx context.Context, opts session.Options) (*session.Session, error) {
	sess := session.New(opts)
	if !s.Exists() {
		return sess, nil
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, err
	}
	if v := meta["version"]; v != "" && v != strconv.Itoa(schemaVersion) {
		return nil, fmt.Errorf("unsupported session version %s", v)
	}

	items, err := readJSONRows[model.Item](ctx, db, `SELECT json FROM items ORDER BY ref`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	nodes, err := readNodes(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}

	snap := session.Snapshot{Nodes: nodes, Items: items}
	if v := meta["next_ref"]; v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("load next_ref: %w", err)
		}
		snap.NextRef = itemtree.ItemRef(n)
	}
	if v := meta["focused"]; v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			f := itemtree.VisibleItemIndex(n)
			snap.Focused = &f
		}
	}
	if err := sess.Restore(snap); err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}

	undo, err := readHistory(ctx, db, historyUndo)
	if err != nil {
		return nil, err
	}
	redo, err := readHistory(ctx, db, historyRedo)
	if err != nil {
		return nil, err
	}
	sess.History.Restore(undo, redo)
	return sess, nil
}

// Save replaces the stored session with sess in one transaction.
func (s Store) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	focused := ""
	if sess.Focused != nil {
		focused = strconv.Itoa(int(*sess.Focused))
	}
	meta := map[string]string{
		"version":  strconv.Itoa(schemaVersion),
		"next_ref": strconv.FormatUint(uint64(sess.NextRef), 10),
		"focused":  focused,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}

	// Replace-all: sessions are small and every save is a full snapshot.
	for _, t := range []string{"items", "nodes", "history"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()
	for _, it := range sess.Items.Sorted() {
		raw, err := json.Marshal(it)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO items(ref, kind, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			int64(it.Ref), string(it.Kind), string(raw), nowMs); err != nil {
			return err
		}
	}
	for i, n := range sess.Tree.All() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO nodes(pos, item_ref, level, unfolded, selected) VALUES(?, ?, ?, ?, ?)`,
			int(i), int64(n.ItemRef), int(n.Level), boolToInt(n.Unfolded), boolToInt(n.Selected)); err != nil {
			return err
		}
	}

	undo, redo := sess.History.Entries()
	if err := writeHistory(ctx, tx, historyUndo, undo); err != nil {
		return err
	}
	if err := writeHistory(ctx, tx, historyRedo, redo); err != nil {
		return err
	}

	return tx.Commit()
}

func readMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT k, v FROM state_meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, rows.Err()
}

func readNodes(ctx context.Context, db *sql.DB) ([]itemtree.Node, error) {
	rows, err := db.QueryContext(ctx, `SELECT item_ref, level, unfolded, selected FROM nodes ORDER BY pos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []itemtree.Node
	for rows.Next() {
		var (
			ref                int64
			level              int
			unfolded, selected int
		)
		if err := rows.Scan(&ref, &level, &unfolded, &selected); err != nil {
			return nil, err
		}
		if level < 0 || level > itemtree.MaxLevel {
			return nil, &itemtree.CorruptTreeError{Index: itemtree.ItemIndex(len(out)), Level: uint8(min(max(level, 0), itemtree.MaxLevel))}
		}
		out = append(out, itemtree.Node{
			ItemRef:  itemtree.ItemRef(ref),
			Level:    uint8(level),
			Unfolded: unfolded != 0,
			Selected: selected != 0,
		})
	}
	return out, rows.Err()
}

func readHistory(ctx context.Context, db *sql.DB, side string) ([]history.Entry[session.Snapshot], error) {
	rows, err := db.QueryContext(ctx, `SELECT message, snapshot FROM history WHERE side = ? ORDER BY seq`, side)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []history.Entry[session.Snapshot]
	for rows.Next() {
		var (
			msg string
			raw []byte
		)
		if err := rows.Scan(&msg, &raw); err != nil {
			return nil, err
		}
		var snap session.Snapshot
		if err := codec.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("decode %s history: %w", side, err)
		}
		out = append(out, history.Entry[session.Snapshot]{Message: msg, State: snap})
	}
	return out, rows.Err()
}

func writeHistory(ctx context.Context, tx *sql.Tx, side string, entries []history.Entry[session.Snapshot]) error {
	for i, e := range entries {
		raw, err := codec.Marshal(e.State)
		if err != nil {
			return fmt.Errorf("encode %s history: %w", side, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO history(side, seq, message, snapshot) VALUES(?, ?, ?, ?)`,
			side, i, e.Message, raw); err != nil {
			return err
		}
	}
	return nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
