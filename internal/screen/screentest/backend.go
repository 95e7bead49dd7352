// Package screentest provides an in-memory screen.Backend for screen tests.
package screentest

import (
	"context"
	"strings"
	"sync"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
	"github.com/abhisek/fequiz/internal/screen"
)

var _ screen.Backend = (*Backend)(nil)

// Submission is one recorded Submit call.
type Submission struct {
	QuestionID string
	Answer     mastery.Answer
}

// Backend serves fixed questions and scores answers against Answers, which
// holds original choice indexes.
type Backend struct {
	mu sync.Mutex

	Questions []catalog.PublicQuestion
	Answers   map[string]int
	WeakIDs   []string
	Terms     []catalog.Term
	Items     []mastery.HistoryItem
	Summary   mastery.Summary

	FetchErr  error
	SubmitErr error

	Submissions []Submission
	Limits      []int
	Filters     []catalog.Filter
}

// New returns a backend with two technology/management questions whose
// correct answers are 1 and 2.
func New() *Backend {
	return &Backend{
		Questions: []catalog.PublicQuestion{
			{ID: "q1", Category: catalog.CategoryTechnology, CategoryName: "Technology", Subcategory: "Basic theory",
				Text: "Binary 1010 in decimal?", Choices: [4]string{"8", "10", "12", "5"}, RelatedTerms: []string{}},
			{ID: "q2", Category: catalog.CategoryManagement, CategoryName: "Management", Subcategory: "Project management",
				Text: "What does the critical path determine?", Choices: [4]string{"Cost", "Staffing", "Minimum duration", "Quality"}, RelatedTerms: []string{}},
		},
		Answers: map[string]int{"q1": 1, "q2": 2},
		Summary: mastery.Summary{
			CategoryStats: map[catalog.CategoryID]mastery.CategoryStat{},
		},
	}
}

func (b *Backend) Random(_ context.Context, category catalog.CategoryID, count int) ([]catalog.PublicQuestion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FetchErr != nil {
		return nil, b.FetchErr
	}
	var out []catalog.PublicQuestion
	for _, q := range b.Questions {
		if category != "" && q.Category != category {
			continue
		}
		out = append(out, q)
	}
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (b *Backend) Weak(_ context.Context) ([]catalog.PublicQuestion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FetchErr != nil {
		return nil, b.FetchErr
	}
	out := []catalog.PublicQuestion{}
	for _, id := range b.WeakIDs {
		for _, q := range b.Questions {
			if q.ID == id {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

func (b *Backend) Question(_ context.Context, id string) (catalog.PublicQuestion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, q := range b.Questions {
		if q.ID == id {
			return q, nil
		}
	}
	return catalog.PublicQuestion{}, catalog.ErrQuestionNotFound
}

func (b *Backend) Categories(_ context.Context) ([]catalog.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FetchErr != nil {
		return nil, b.FetchErr
	}
	out := make([]catalog.Category, 0, len(catalog.CategoryIDs))
	for _, id := range catalog.CategoryIDs {
		out = append(out, catalog.Category{ID: id, Name: id.Label()})
	}
	return out, nil
}

// QuestionList derives each row's status from the recorded submissions.
func (b *Backend) QuestionList(_ context.Context, f catalog.Filter) ([]mastery.ListedQuestion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Filters = append(b.Filters, f)
	if b.FetchErr != nil {
		return nil, b.FetchErr
	}
	out := []mastery.ListedQuestion{}
	for _, q := range b.Questions {
		if f.Category != "" && q.Category != f.Category {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(q.Text), strings.ToLower(f.Search)) {
			continue
		}
		var stat mastery.QuestionStat
		for _, sub := range b.Submissions {
			if sub.QuestionID != q.ID {
				continue
			}
			stat.Attempts++
			if !sub.Answer.IsTimeout() && sub.Answer.Index() == b.Answers[q.ID] {
				stat.CorrectCount++
			}
		}
		out = append(out, mastery.ListedQuestion{
			ID:           q.ID,
			Category:     q.Category,
			CategoryName: q.CategoryName,
			Subcategory:  q.Subcategory,
			Text:         q.Text,
			Difficulty:   q.Difficulty,
			Status:       mastery.StatusOf(stat),
			Attempts:     stat.Attempts,
			CorrectCount: stat.CorrectCount,
		})
	}
	return out, nil
}

func (b *Backend) Submit(_ context.Context, questionID string, ans mastery.Answer) (*mastery.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SubmitErr != nil {
		return nil, b.SubmitErr
	}
	b.Submissions = append(b.Submissions, Submission{QuestionID: questionID, Answer: ans})
	correct := b.Answers[questionID]
	ok := !ans.IsTimeout() && ans.Index() == correct
	stats := mastery.QuestionStat{Attempts: 1}
	if ok {
		stats.CorrectCount = 1
	}
	return &mastery.Result{
		IsCorrect:     ok,
		CorrectAnswer: correct,
		Explanation:   "explanation for " + questionID,
		Stats:         stats,
		RelatedTerms:  []catalog.Term{},
	}, nil
}

func (b *Backend) Progress(_ context.Context) (*mastery.Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FetchErr != nil {
		return nil, b.FetchErr
	}
	s := b.Summary
	return &s, nil
}

func (b *Backend) History(_ context.Context, limit int) ([]mastery.HistoryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Limits = append(b.Limits, limit)
	if b.FetchErr != nil {
		return nil, b.FetchErr
	}
	return b.Items, nil
}

func (b *Backend) Glossary(_ context.Context, category catalog.CategoryID, search string) ([]catalog.Term, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FetchErr != nil {
		return nil, b.FetchErr
	}
	out := []catalog.Term{}
	for _, t := range b.Terms {
		if category != "" && t.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Term), strings.ToLower(search)) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// SetSubmitErr changes the submit failure under the lock.
func (b *Backend) SetSubmitErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SubmitErr = err
}

// SetFetchErr changes the fetch failure under the lock.
func (b *Backend) SetFetchErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.FetchErr = err
}

// Submitted returns a copy of the recorded submissions.
func (b *Backend) Submitted() []Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Submission(nil), b.Submissions...)
}
