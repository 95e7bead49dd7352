package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Snapshot is one saved revision of the progress document.
type Snapshot struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	Data      ProgressData
}

type snapshotRow struct {
	ID       int64  `db:"id"`
	Sequence int64  `db:"sequence"`
	TakenAt  int64  `db:"taken_at"`
	Data     string `db:"data"`
}

// SQLiteRepo keeps every saved progress document as a snapshot row. Load
// returns the newest; Prune trims old revisions.
type SQLiteRepo struct {
	db  *sqlx.DB
	seq *sequenceCounter
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at dsn, applies the
// recommended pragmas and creates the schema.
func OpenSQLite(dsn string) (*SQLiteRepo, error) {
	if dsn == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := ensureDir(dsn); err != nil {
			return nil, &StorageError{Op: "open", Err: err}
		}
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("open database: %w", err)}
	}
	// SQLite has a single writer; one connection also keeps :memory: databases
	// alive for the lifetime of the repo.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("apply pragmas: %w", err)}
	}

	ctx := context.Background()
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("migrate: %w", err)}
	}
	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: err}
	}

	return &SQLiteRepo{db: db, seq: seq, now: time.Now}, nil
}

// Close closes the database connection.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		taken_at INTEGER NOT NULL,
		data TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Load(ctx context.Context) (*ProgressData, error) {
	snap, err := r.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}
	return &snap.Data, nil
}

func (r *SQLiteRepo) Save(ctx context.Context, data *ProgressData) error {
	_, err := r.SaveSnapshot(ctx, data)
	return err
}

// SaveSnapshot inserts data as a new revision and returns it.
func (r *SQLiteRepo) SaveSnapshot(ctx context.Context, data *ProgressData) (*Snapshot, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, &StorageError{Op: "save", Err: fmt.Errorf("marshal snapshot data: %w", err)}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "save", Err: fmt.Errorf("begin: %w", err)}
	}
	defer tx.Rollback()

	seq, err := r.seq.Next(ctx, tx)
	if err != nil {
		return nil, &StorageError{Op: "save", Err: err}
	}
	row := snapshotRow{
		Sequence: seq,
		TakenAt:  r.now().UTC().UnixNano(),
		Data:     string(raw),
	}
	res, err := tx.NamedExecContext(ctx,
		`INSERT INTO snapshots (sequence, taken_at, data) VALUES (:sequence, :taken_at, :data)`, row)
	if err != nil {
		return nil, &StorageError{Op: "save", Err: fmt.Errorf("insert snapshot: %w", err)}
	}
	if row.ID, err = res.LastInsertId(); err != nil {
		return nil, &StorageError{Op: "save", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "save", Err: fmt.Errorf("commit: %w", err)}
	}
	return rowToSnapshot(row, *data), nil
}

// Latest returns the most recent snapshot, or nil if none exist.
func (r *SQLiteRepo) Latest(ctx context.Context) (*Snapshot, error) {
	var row snapshotRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, sequence, taken_at, data FROM snapshots ORDER BY sequence DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "load", Err: fmt.Errorf("query latest snapshot: %w", err)}
	}

	var data ProgressData
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		return nil, &StorageError{Op: "load", Err: fmt.Errorf("unmarshal snapshot data: %w", err)}
	}
	return rowToSnapshot(row, data), nil
}

// Count returns the number of stored snapshots.
func (r *SQLiteRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM snapshots`); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return n, nil
}

// Prune deletes all but the keep most recent snapshots.
func (r *SQLiteRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("prune: keep must be positive, got %d", keep)
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY sequence DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, &StorageError{Op: "prune", Err: fmt.Errorf("prune snapshots: %w", err)}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StorageError{Op: "prune", Err: err}
	}
	return n, nil
}

func rowToSnapshot(row snapshotRow, data ProgressData) *Snapshot {
	return &Snapshot{
		ID:        row.ID,
		Sequence:  row.Sequence,
		Timestamp: time.Unix(0, row.TakenAt).UTC(),
		Data:      data,
	}
}
