package store

import (
	"context"
	"fmt"
	"time"
)

// Store kinds.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// UserRecord is the implicit single user.
type UserRecord struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// HistoryRecord is one logged submission. SelectedAnswer is -1 for a timeout.
type HistoryRecord struct {
	QuestionID     string    `json:"questionId"`
	SelectedAnswer int       `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// QuestionStatRecord holds per-question counters.
type QuestionStatRecord struct {
	Attempts      int        `json:"attempts"`
	CorrectCount  int        `json:"correctCount"`
	LastAttemptAt *time.Time `json:"lastAttemptAt"`
}

// CategoryStatRecord holds per-category counters.
type CategoryStatRecord struct {
	TotalAttempts int        `json:"totalAttempts"`
	CorrectCount  int        `json:"correctCount"`
	LastStudiedAt *time.Time `json:"lastStudiedAt"`
}

// ProgressData is the persisted progress document. Its JSON shape is the
// system-of-record layout.
type ProgressData struct {
	User          UserRecord                    `json:"user"`
	History       []HistoryRecord               `json:"history"`
	QuestionStats map[string]QuestionStatRecord `json:"questionStats"`
	CategoryStats map[string]CategoryStatRecord `json:"categoryStats"`
	WeakQuestions []string                      `json:"weakQuestions"`
}

// ProgressRepo loads and saves the whole progress document.
type ProgressRepo interface {
	// Load returns the stored document, or nil if nothing has been saved yet.
	Load(ctx context.Context) (*ProgressData, error)

	// Save replaces the stored document.
	Save(ctx context.Context, data *ProgressData) error

	Close() error
}

// Pruner is implemented by repos that keep older revisions.
type Pruner interface {
	// Prune deletes all but the keep most recent revisions and reports how
	// many were removed.
	Prune(ctx context.Context, keep int) (int64, error)
}

// StorageError reports a failed read or write of the progress document.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
