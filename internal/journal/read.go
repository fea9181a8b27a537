package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/quark/internal/object"
	"github.com/roach88/quark/internal/value"
)

// ReadAll returns every recorded event ordered by seq.
// Returns an empty slice (not nil) when the journal is empty.
func (j *Journal) ReadAll(ctx context.Context) ([]object.Event, error) {
	return j.readEvents(ctx, `
		SELECT seq, kind, instance_id, type_name, name, payload
		FROM events
		ORDER BY seq ASC
	`)
}

// ReadTrace returns all events for one instance ordered by seq.
// Returns an empty slice (not nil) when no events exist for the id.
func (j *Journal) ReadTrace(ctx context.Context, instanceID string) ([]object.Event, error) {
	return j.readEvents(ctx, `
		SELECT seq, kind, instance_id, type_name, name, payload
		FROM events
		WHERE instance_id = ?
		ORDER BY seq ASC
	`, instanceID)
}

func (j *Journal) readEvents(ctx context.Context, query string, args ...any) ([]object.Event, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []object.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

func scanEvent(rows *sql.Rows) (object.Event, error) {
	var (
		ev      object.Event
		kind    string
		payload sql.NullString
	)
	if err := rows.Scan(&ev.Seq, &kind, &ev.InstanceID, &ev.TypeName, &ev.Name, &payload); err != nil {
		return object.Event{}, fmt.Errorf("scan event: %w", err)
	}
	ev.Kind = object.EventKind(kind)

	if payload.Valid {
		v, err := value.Unmarshal([]byte(payload.String))
		if err != nil {
			return object.Event{}, fmt.Errorf("decode payload for seq %d: %w", ev.Seq, err)
		}
		ev.Value = v
	}

	return ev, nil
}
