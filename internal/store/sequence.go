package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// sequenceCounter hands out the monotonic revision number stamped on every
// snapshot. Row ids can be reused after a prune empties the table; the
// counter never goes backwards.
type sequenceCounter struct{}

// newSequenceCounter ensures the tracking table exists.
func newSequenceCounter(ctx context.Context, db sqlx.ExecerContext) (*sequenceCounter, error) {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.ExecContext(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{}, nil
}

// Next atomically returns the next sequence number and increments the
// counter. It runs on q so callers can include it in their transaction.
func (sc *sequenceCounter) Next(ctx context.Context, q sqlx.QueryerContext) (int64, error) {
	var seq int64
	err := sqlx.GetContext(ctx, q, &seq,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
