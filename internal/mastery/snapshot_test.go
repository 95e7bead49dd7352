package mastery

import (
	"testing"
	"time"

	"github.com/abhisek/fequiz/internal/store"
)

func TestFromData_Nil(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := FromData(nil, now)
	if p.User.ID != DefaultUserID {
		t.Errorf("user id = %q, want %q", p.User.ID, DefaultUserID)
	}
	if !p.User.CreatedAt.Equal(now) {
		t.Errorf("createdAt = %v, want %v", p.User.CreatedAt, now)
	}
	if len(p.CategoryStats) != 3 {
		t.Errorf("categoryStats = %d, want 3", len(p.CategoryStats))
	}
}

func TestFromData_Normalizes(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d := &store.ProgressData{
		QuestionStats: map[string]store.QuestionStatRecord{
			"q1": {Attempts: 2, CorrectCount: 5},
		},
		CategoryStats: map[string]store.CategoryStatRecord{
			"technology": {TotalAttempts: 2, CorrectCount: 1},
		},
		WeakQuestions: []string{"q1", "q1"},
	}
	for i := 0; i < 120; i++ {
		d.History = append(d.History, store.HistoryRecord{QuestionID: "q1"})
	}

	p := FromData(d, now)
	if p.User.ID != DefaultUserID {
		t.Errorf("user id = %q", p.User.ID)
	}
	if got := p.QuestionStats["q1"]; got.CorrectCount != 2 {
		t.Errorf("correctCount = %d, want clamped to 2", got.CorrectCount)
	}
	if len(p.CategoryStats) != 3 {
		t.Errorf("categoryStats = %d, want all 3 categories", len(p.CategoryStats))
	}
	if p.CategoryStats["technology"].TotalAttempts != 2 {
		t.Error("stored category stat lost")
	}
	if len(p.Weak) != 1 {
		t.Errorf("weak = %v, want duplicates collapsed", p.Weak)
	}
	if len(p.History) != HistoryLimit {
		t.Errorf("history = %d, want %d", len(p.History), HistoryLimit)
	}

	back := p.Data()
	if back.History == nil || back.WeakQuestions == nil {
		t.Error("Data() should emit empty slices, not null")
	}
}
