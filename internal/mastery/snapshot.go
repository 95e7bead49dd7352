package mastery

import (
	"time"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/store"
)

// DefaultUserID is the id of the single implicit user.
const DefaultUserID = "default_user"

// HistoryLimit is the maximum number of retained history entries.
const HistoryLimit = 100

// User is the implicit single user record.
type User struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// QuestionStat holds per-question counters. CorrectCount never exceeds Attempts.
type QuestionStat struct {
	Attempts      int        `json:"attempts"`
	CorrectCount  int        `json:"correctCount"`
	LastAttemptAt *time.Time `json:"lastAttemptAt"`
}

// CorrectRate returns CorrectCount/Attempts, or 0 with no attempts.
func (s QuestionStat) CorrectRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.Attempts)
}

// CategoryStat holds per-category counters.
type CategoryStat struct {
	TotalAttempts int        `json:"totalAttempts"`
	CorrectCount  int        `json:"correctCount"`
	LastStudiedAt *time.Time `json:"lastStudiedAt"`
}

// HistoryEntry is one logged submission.
type HistoryEntry struct {
	QuestionID     string    `json:"questionId"`
	SelectedAnswer int       `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// Progress is the aggregate of all learner state.
type Progress struct {
	User          User
	History       []HistoryEntry
	QuestionStats map[string]QuestionStat
	CategoryStats map[catalog.CategoryID]CategoryStat
	Weak          []string
}

// NewProgress returns a fresh aggregate created at now.
func NewProgress(now time.Time) *Progress {
	p := &Progress{
		User:          User{ID: DefaultUserID, CreatedAt: now, LastAccessedAt: now},
		History:       []HistoryEntry{},
		QuestionStats: make(map[string]QuestionStat),
		CategoryStats: make(map[catalog.CategoryID]CategoryStat, len(catalog.CategoryIDs)),
		Weak:          []string{},
	}
	for _, id := range catalog.CategoryIDs {
		p.CategoryStats[id] = CategoryStat{}
	}
	return p
}

// IsWeak reports whether questionID is in the weak set.
func (p *Progress) IsWeak(questionID string) bool {
	for _, id := range p.Weak {
		if id == questionID {
			return true
		}
	}
	return false
}

// addWeak inserts questionID once.
func (p *Progress) addWeak(questionID string) bool {
	if p.IsWeak(questionID) {
		return false
	}
	p.Weak = append(p.Weak, questionID)
	return true
}

// removeWeak deletes questionID if present; absent ids are a no-op.
func (p *Progress) removeWeak(questionID string) bool {
	for i, id := range p.Weak {
		if id == questionID {
			p.Weak = append(p.Weak[:i], p.Weak[i+1:]...)
			return true
		}
	}
	return false
}

// appendHistory adds e and evicts the oldest entries beyond HistoryLimit.
func (p *Progress) appendHistory(e HistoryEntry) {
	p.History = append(p.History, e)
	if over := len(p.History) - HistoryLimit; over > 0 {
		p.History = append([]HistoryEntry(nil), p.History[over:]...)
	}
}

// FromData converts a stored document into an aggregate, filling in any
// missing collections and the fixed categories. A nil document yields a
// fresh aggregate.
func FromData(d *store.ProgressData, now time.Time) *Progress {
	if d == nil {
		return NewProgress(now)
	}

	p := NewProgress(now)
	p.User = User(d.User)
	if p.User.ID == "" {
		p.User.ID = DefaultUserID
	}
	if p.User.CreatedAt.IsZero() {
		p.User.CreatedAt = now
	}
	if p.User.LastAccessedAt.IsZero() {
		p.User.LastAccessedAt = p.User.CreatedAt
	}

	for _, h := range d.History {
		p.History = append(p.History, HistoryEntry(h))
	}
	if over := len(p.History) - HistoryLimit; over > 0 {
		p.History = p.History[over:]
	}

	for id, s := range d.QuestionStats {
		stat := QuestionStat(s)
		if stat.CorrectCount > stat.Attempts {
			stat.CorrectCount = stat.Attempts
		}
		p.QuestionStats[id] = stat
	}
	for id, s := range d.CategoryStats {
		p.CategoryStats[catalog.CategoryID(id)] = CategoryStat(s)
	}
	for _, id := range d.WeakQuestions {
		p.addWeak(id)
	}
	return p
}

// Data converts the aggregate into its stored document.
func (p *Progress) Data() *store.ProgressData {
	d := &store.ProgressData{
		User:          store.UserRecord(p.User),
		History:       make([]store.HistoryRecord, 0, len(p.History)),
		QuestionStats: make(map[string]store.QuestionStatRecord, len(p.QuestionStats)),
		CategoryStats: make(map[string]store.CategoryStatRecord, len(p.CategoryStats)),
		WeakQuestions: append([]string{}, p.Weak...),
	}
	for _, h := range p.History {
		d.History = append(d.History, store.HistoryRecord(h))
	}
	for id, s := range p.QuestionStats {
		d.QuestionStats[id] = store.QuestionStatRecord(s)
	}
	for id, s := range p.CategoryStats {
		d.CategoryStats[string(id)] = store.CategoryStatRecord(s)
	}
	return d
}
