package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/quark/internal/object"
	"github.com/roach88/quark/internal/value"
)

//go:embed schema.sql
var schemaSQL string

// Journal provides SQLite-backed durable storage for runtime events.
// Uses WAL mode for concurrent read access while the runtime writes.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a SQLite journal at the given path.
// Use ":memory:" for an ephemeral per-run journal.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends a runtime event.
//
// Implements object.Journal. The event payload is serialized to canonical
// JSON per RFC 8785 so traces compare byte-identical across runs.
// Duplicate seq stamps are impossible by construction (the registry clock
// is monotonic), so conflicts are treated as errors rather than ignored.
func (j *Journal) Record(ev object.Event) error {
	var payload sql.NullString
	if ev.Value != nil {
		data, err := value.MarshalCanonical(ev.Value)
		if err != nil {
			return fmt.Errorf("record event: marshal payload: %w", err)
		}
		payload = sql.NullString{String: string(data), Valid: true}
	}

	_, err := j.db.ExecContext(context.Background(), `
		INSERT INTO events (seq, kind, instance_id, type_name, name, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		ev.Seq,
		string(ev.Kind),
		ev.InstanceID,
		ev.TypeName,
		ev.Name,
		payload,
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
