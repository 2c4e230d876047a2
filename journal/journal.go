package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vavavavavavavavava/pubsubtk/bus"
	"github.com/vavavavavavavavava/pubsubtk/store"
	"github.com/vavavavavavavavava/pubsubtk/topic"
)

//go:embed schema.sql
var schemaSQL string

// Record is one journaled mutation row.
type Record struct {
	Seq   int64
	Op    store.MutationOp
	Path  string
	Key   string
	Index int
	Value json.RawMessage
}

// Journal is an append-only SQLite log of store mutations.
type Journal struct {
	db     *sql.DB
	clock  *Clock
	logger *slog.Logger
}

// Open creates or opens a journal database at the given path, applying
// pragmas and schema idempotently. The logical clock resumes from the
// highest recorded seq.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	var last sql.NullInt64
	if err := db.QueryRow("SELECT MAX(seq) FROM mutations").Scan(&last); err != nil {
		db.Close()
		return nil, fmt.Errorf("read journal position: %w", err)
	}

	return &Journal{
		db:     db,
		clock:  NewClockAt(last.Int64),
		logger: slog.Default(),
	}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append writes one mutation record, stamping it with the next seq.
func (j *Journal) Append(ctx context.Context, m store.Mutation) error {
	value, err := json.Marshal(m.Value)
	if err != nil {
		return fmt.Errorf("append mutation: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO mutations (seq, op, path, key, idx, value)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		j.clock.Next(),
		string(m.Op),
		m.Path,
		m.Key,
		m.Index,
		string(value),
	)
	if err != nil {
		return fmt.Errorf("append mutation: %w", err)
	}
	return nil
}

// Attach subscribes the journal to a bus's mutation topic so every
// subsequent store mutation is recorded. Append failures inside the
// handler are logged and dropped: journaling must not fail the mutation
// that already succeeded. Returns the subscription for detaching.
func (j *Journal) Attach(b *bus.Bus) bus.Subscription {
	return b.Subscribe(topic.Mutation.String(), func(msg bus.Message) {
		m, ok := msg.Payload.(store.Mutation)
		if !ok {
			j.logger.Error("journal: unexpected mutation payload", "type", fmt.Sprintf("%T", msg.Payload))
			return
		}
		if err := j.Append(context.Background(), m); err != nil {
			j.logger.Error("journal: append failed", "path", m.Path, "err", err)
		}
	})
}

// Records returns all journaled mutations in seq order.
func (j *Journal) Records(ctx context.Context) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, op, path, key, idx, value
		FROM mutations
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var op, value string
		if err := rows.Scan(&r.Seq, &op, &r.Path, &r.Key, &r.Index, &value); err != nil {
			return nil, fmt.Errorf("read journal: %w", err)
		}
		r.Op = store.MutationOp(op)
		r.Value = json.RawMessage(value)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return records, nil
}

// Len reports how many mutations the journal holds.
func (j *Journal) Len(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mutations").Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal: %w", err)
	}
	return n, nil
}
