package mastery

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/store"
)

// Tracker owns the progress aggregate. Every read and mutation goes through
// its mutex, so submissions are applied one at a time.
type Tracker struct {
	mu       sync.Mutex
	repo     store.ProgressRepo
	bank     *catalog.Bank
	glossary *catalog.Glossary
	policy   WeakPolicy
	now      func() time.Time
	log      *logger.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPolicy overrides the weak-set policy.
func WithPolicy(p WeakPolicy) Option {
	return func(t *Tracker) { t.policy = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// NewTracker creates a tracker over repo. glossary may be nil, in which case
// related terms always resolve to none.
func NewTracker(repo store.ProgressRepo, bank *catalog.Bank, glossary *catalog.Glossary, opts ...Option) *Tracker {
	t := &Tracker{
		repo:     repo,
		bank:     bank,
		glossary: glossary,
		policy:   DefaultWeakPolicy(),
		now:      time.Now,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Result is the verdict returned for a submission.
type Result struct {
	IsCorrect     bool           `json:"isCorrect"`
	CorrectAnswer int            `json:"correctAnswer"`
	Explanation   string         `json:"explanation"`
	Stats         QuestionStat   `json:"stats"`
	RelatedTerms  []catalog.Term `json:"relatedTerms"`
}

// Init persists a fresh aggregate if the repo is empty.
func (t *Tracker) Init(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.repo.Load(ctx)
	if err != nil {
		return err
	}
	if data != nil {
		return nil
	}
	return t.repo.Save(ctx, NewProgress(t.now().UTC()).Data())
}

// load reads the aggregate. The caller holds t.mu.
func (t *Tracker) load(ctx context.Context) (*Progress, error) {
	data, err := t.repo.Load(ctx)
	if err != nil {
		t.log.Error("load progress failed", "error", err)
		return nil, err
	}
	return FromData(data, t.now().UTC()), nil
}

// SubmitAnswer scores ans against the question and records it. The update is
// applied to a freshly loaded copy and only becomes visible once saved; on
// any error the stored progress is unchanged.
func (t *Tracker) SubmitAnswer(ctx context.Context, questionID string, ans Answer) (*Result, error) {
	if err := ans.Validate(); err != nil {
		return nil, err
	}
	q, err := t.bank.Question(questionID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	now := t.now().UTC()
	correct := !ans.IsTimeout() && ans.Index() == q.CorrectAnswer

	stat := p.QuestionStats[q.ID]
	stat.Attempts++
	if correct {
		stat.CorrectCount++
	}
	stat.LastAttemptAt = &now
	p.QuestionStats[q.ID] = stat

	if cs, ok := p.CategoryStats[q.Category]; ok {
		cs.TotalAttempts++
		if correct {
			cs.CorrectCount++
		}
		cs.LastStudiedAt = &now
		p.CategoryStats[q.Category] = cs
	}

	p.appendHistory(HistoryEntry{
		QuestionID:     q.ID,
		SelectedAnswer: ans.Index(),
		IsCorrect:      correct,
		AnsweredAt:     now,
	})

	switch t.policy.Evaluate(stat) {
	case WeakAdd:
		if p.addWeak(q.ID) {
			t.log.Debug("question marked weak", "question_id", q.ID,
				"attempts", stat.Attempts, "correct", stat.CorrectCount)
		}
	case WeakRemove:
		if p.removeWeak(q.ID) {
			t.log.Debug("question cleared from weak set", "question_id", q.ID,
				"attempts", stat.Attempts, "correct", stat.CorrectCount)
		}
	}

	p.User.LastAccessedAt = now

	if err := t.repo.Save(ctx, p.Data()); err != nil {
		t.log.Error("save progress failed", "question_id", q.ID, "error", err)
		return nil, err
	}

	return &Result{
		IsCorrect:     correct,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Stats:         stat,
		RelatedTerms:  t.relatedTerms(q),
	}, nil
}

func (t *Tracker) relatedTerms(q catalog.Question) []catalog.Term {
	if t.glossary == nil {
		return []catalog.Term{}
	}
	return t.glossary.Resolve(q.RelatedTerms)
}

// Summary is the aggregate progress view.
type Summary struct {
	User               User                                `json:"user"`
	CategoryStats      map[catalog.CategoryID]CategoryStat `json:"categoryStats"`
	TotalAttempts      int                                 `json:"totalAttempts"`
	TotalCorrect       int                                 `json:"totalCorrect"`
	OverallCorrectRate float64                             `json:"overallCorrectRate"`
	WeakQuestionsCount int                                 `json:"weakQuestionsCount"`
}

// Summary totals the category stats. Totals are always recomputed rather
// than stored.
func (t *Tracker) Summary(ctx context.Context) (*Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		User:               p.User,
		CategoryStats:      p.CategoryStats,
		WeakQuestionsCount: len(p.Weak),
	}
	for _, cs := range p.CategoryStats {
		s.TotalAttempts += cs.TotalAttempts
		s.TotalCorrect += cs.CorrectCount
	}
	s.OverallCorrectRate = percentOneDecimal(s.TotalCorrect, s.TotalAttempts)
	return s, nil
}

// percentOneDecimal returns num/den*100 rounded to one decimal, or 0 when
// den is 0.
func percentOneDecimal(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num)/float64(den)*1000) / 10
}

// Reset replaces the aggregate with a fresh one.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.repo.Save(ctx, NewProgress(t.now().UTC()).Data()); err != nil {
		t.log.Error("reset progress failed", "error", err)
		return err
	}
	t.log.Info("progress reset")
	return nil
}

// HistoryItem is a history entry with a preview of its question, or nil
// when the question is no longer in the bank.
type HistoryItem struct {
	HistoryEntry
	Question *catalog.QuestionPreview `json:"question"`
}

// History returns the most recent limit entries, newest first. A limit of
// zero or less returns the whole retained log.
func (t *Tracker) History(ctx context.Context, limit int) ([]HistoryItem, error) {
	t.mu.Lock()
	p, err := t.load(ctx)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	entries := p.History
	if limit > 0 && limit < len(entries) {
		entries = entries[len(entries)-limit:]
	}

	out := make([]HistoryItem, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		item := HistoryItem{HistoryEntry: entries[i]}
		if q, err := t.bank.Question(entries[i].QuestionID); err == nil {
			preview := q.Preview()
			item.Question = &preview
		}
		out = append(out, item)
	}
	return out, nil
}

// WeakQuestions returns the weak-set questions in bank order.
func (t *Tracker) WeakQuestions(ctx context.Context) ([]catalog.Question, error) {
	t.mu.Lock()
	p, err := t.load(ctx)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return t.bank.Subset(p.Weak), nil
}

// QuestionStatus classifies a question by its answer record.
type QuestionStatus string

const (
	StatusUnanswered QuestionStatus = "unanswered"
	StatusCorrect    QuestionStatus = "correct"
	StatusIncorrect  QuestionStatus = "incorrect"
)

// StatusOf returns unanswered with no attempts, correct at a 50% rate or
// better, and incorrect otherwise.
func StatusOf(stat QuestionStat) QuestionStatus {
	switch {
	case stat.Attempts == 0:
		return StatusUnanswered
	case stat.CorrectRate() >= 0.5:
		return StatusCorrect
	default:
		return StatusIncorrect
	}
}

// ListedQuestion is one row of the question list.
type ListedQuestion struct {
	ID           string             `json:"id"`
	Category     catalog.CategoryID `json:"category"`
	CategoryName string             `json:"categoryName"`
	Subcategory  string             `json:"subcategory"`
	Text         string             `json:"question"`
	Difficulty   catalog.Difficulty `json:"difficulty,omitempty"`
	Status       QuestionStatus     `json:"status"`
	Attempts     int                `json:"attempts"`
	CorrectCount int                `json:"correctCount"`
}

// QuestionList returns the filtered questions with their answer status.
func (t *Tracker) QuestionList(ctx context.Context, f catalog.Filter) ([]ListedQuestion, error) {
	t.mu.Lock()
	p, err := t.load(ctx)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	qs := t.bank.Filter(f)
	out := make([]ListedQuestion, 0, len(qs))
	for _, q := range qs {
		stat := p.QuestionStats[q.ID]
		out = append(out, ListedQuestion{
			ID:           q.ID,
			Category:     q.Category,
			CategoryName: q.CategoryName,
			Subcategory:  q.Subcategory,
			Text:         q.Text,
			Difficulty:   q.Difficulty,
			Status:       StatusOf(stat),
			Attempts:     stat.Attempts,
			CorrectCount: stat.CorrectCount,
		})
	}
	return out, nil
}
