package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLiteRepo {
	t.Helper()
	r, err := OpenSQLite(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func sampleData(attempts int) *ProgressData {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &ProgressData{
		User: UserRecord{ID: "default_user", CreatedAt: at, LastAccessedAt: at},
		History: []HistoryRecord{
			{QuestionID: "q1", SelectedAnswer: -1, IsCorrect: false, AnsweredAt: at},
		},
		QuestionStats: map[string]QuestionStatRecord{
			"q1": {Attempts: attempts, CorrectCount: 0, LastAttemptAt: &at},
		},
		CategoryStats: map[string]CategoryStatRecord{
			"technology": {TotalAttempts: attempts, LastStudiedAt: &at},
			"management": {},
			"strategy":   {},
		},
		WeakQuestions: []string{},
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		kind    string
		path    string
		wantErr bool
	}{
		{KindFile, filepath.Join(dir, "a", "user_progress.json"), false},
		{"", filepath.Join(dir, "b", "user_progress.json"), false},
		{KindSQLite, filepath.Join(dir, "c", "progress.db"), false},
		{"mongo", filepath.Join(dir, "d"), true},
	}
	for _, tt := range tests {
		r, err := Open(tt.kind, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("Open(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			continue
		}
		if r != nil {
			r.Close()
		}
	}
}

func TestFileRepo_LoadMissing(t *testing.T) {
	r, err := OpenFile(filepath.Join(t.TempDir(), "user_progress.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := r.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data != nil {
		t.Fatal("expected nil document when file does not exist")
	}
}

func TestFileRepo_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_progress.json")
	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()

	if err := r.Save(ctx, sampleData(2)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := r.Save(ctx, sampleData(3)); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.QuestionStats["q1"].Attempts != 3 {
		t.Errorf("attempts = %d, want 3", got.QuestionStats["q1"].Attempts)
	}
	if got.History[0].SelectedAnswer != -1 {
		t.Errorf("selectedAnswer = %d, want -1", got.History[0].SelectedAnswer)
	}
	if got.CategoryStats["management"].LastStudiedAt != nil {
		t.Error("management lastStudiedAt should stay null")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the progress file (no temp leftovers)", len(entries))
	}
}

func TestFileRepo_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_progress.json")
	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := r.Save(context.Background(), sampleData(1)); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "\n  \"user\": {") {
		t.Errorf("document is not indented with two spaces:\n%s", raw)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"user", "history", "questionStats", "categoryStats", "weakQuestions"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("top-level key %q missing", key)
		}
	}
	if len(doc) != 5 {
		t.Errorf("top-level keys = %d, want 5", len(doc))
	}
}

func TestFileRepo_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_progress.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = r.Load(context.Background())
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *StorageError", err)
	}
	if serr.Op != "load" {
		t.Errorf("op = %q, want load", serr.Op)
	}
}

func TestPragmasApplied(t *testing.T) {
	r := openTestSQLite(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		if err := r.db.Get(&got, "PRAGMA "+tt.pragma); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	r := openTestSQLite(t)
	ctx := context.Background()

	// Nothing saved yet.
	data, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("load (empty): %v", err)
	}
	if data != nil {
		t.Fatal("expected nil document when no snapshot exists")
	}

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	snap, err := r.SaveSnapshot(ctx, sampleData(4))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if snap.Sequence != 1 {
		t.Errorf("sequence = %d, want 1", snap.Sequence)
	}

	latest, err := r.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if !latest.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", latest.Timestamp, now)
	}
	if latest.Data.QuestionStats["q1"].Attempts != 4 {
		t.Errorf("attempts = %d, want 4", latest.Data.QuestionStats["q1"].Attempts)
	}
}

func TestSnapshotLatestReturnsNewest(t *testing.T) {
	r := openTestSQLite(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := r.Save(ctx, sampleData(i)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	data, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.QuestionStats["q1"].Attempts != 3 {
		t.Errorf("attempts = %d, want 3", data.QuestionStats["q1"].Attempts)
	}
}

func TestSnapshotPrune(t *testing.T) {
	r := openTestSQLite(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		if err := r.Save(ctx, sampleData(i)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	removed, err := r.Prune(ctx, 5)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	count, err := r.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Errorf("remaining snapshots = %d, want 5", count)
	}

	// Latest should still be sequence 7.
	snap, err := r.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Sequence != 7 {
		t.Errorf("latest sequence = %d, want 7", snap.Sequence)
	}
}

func TestSnapshotPruneWithFewerThanKeep(t *testing.T) {
	r := openTestSQLite(t)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		if err := r.Save(ctx, sampleData(i)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	removed, err := r.Prune(ctx, 5)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}

	if _, err := r.Prune(ctx, 0); err == nil {
		t.Error("prune with keep=0 should fail")
	}
}

func TestSequenceSurvivesPrune(t *testing.T) {
	r := openTestSQLite(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := r.Save(ctx, sampleData(i)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if _, err := r.Prune(ctx, 1); err != nil {
		t.Fatalf("prune: %v", err)
	}

	snap, err := r.SaveSnapshot(ctx, sampleData(9))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if snap.Sequence != 4 {
		t.Errorf("sequence = %d, want 4", snap.Sequence)
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	r := openTestSQLite(t)

	for _, table := range []string{"snapshots", "global_sequence"} {
		var name string
		err := r.db.Get(&name,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := error(&StorageError{Op: "save", Err: inner})
	if !errors.Is(err, inner) {
		t.Error("StorageError should unwrap to its cause")
	}
	if err.Error() != "storage save: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
}
