package store

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"
)

// AppendEvent records one applied operation in the session's event log.
func (s Store) AppendEvent(ctx context.Context, typ string, ref itemtree.ItemRef, payload any) (model.Event, error) {
	ev := model.Event{
		ID:      uuid.NewString(),
		TS:      time.Now().UTC(),
		Type:    typ,
		Ref:     ref,
		Payload: payload,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return model.Event{}, err
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Event{}, err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO events(id, type, item_ref, payload_json, issued_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		ev.ID, ev.Type, int64(ev.Ref), string(raw), ev.TS.UnixMilli())
	if err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// ReadEvents returns the newest limit events, oldest first. limit <= 0 reads
// everything.
func (s Store) ReadEvents(ctx context.Context, limit int) ([]model.Event, error) {
	if !s.Exists() {
		return []model.Event{}, nil
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `SELECT id, type, item_ref, payload_json, issued_at_unixms FROM events
		ORDER BY issued_at_unixms DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev   model.Event
			ref  int64
			raw  string
			tsMs int64
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &ref, &raw, &tsMs); err != nil {
			return nil, err
		}
		ev.Ref = itemtree.ItemRef(ref)
		ev.TS = time.UnixMilli(tsMs).UTC()
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			ev.Payload = payload
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
