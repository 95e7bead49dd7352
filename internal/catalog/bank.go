package catalog

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

// bankFile is the on-disk layout of questions.json.
type bankFile struct {
	Version    string     `json:"version,omitempty"`
	Categories []Category `json:"categories"`
	Questions  []Question `json:"questions"`
}

// Bank is the read-only question bank.
type Bank struct {
	version    string
	categories []Category
	questions  []Question
	byID       map[string]int
}

// LoadBank reads and validates the question dataset at path.
func LoadBank(path string) (*Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	b, err := ParseBank(raw)
	if err != nil {
		var verr *ValidationError
		if asValidation(err, &verr) {
			verr.Source = path
		}
		return nil, err
	}
	return b, nil
}

// ParseBank validates and decodes a question dataset.
func ParseBank(raw []byte) (*Bank, error) {
	if err := validateDocument(questionsSchema, raw); err != nil {
		return nil, &ValidationError{Source: "questions", Err: err}
	}

	var f bankFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &ValidationError{Source: "questions", Err: err}
	}
	if err := checkVersion(f.Version); err != nil {
		return nil, &ValidationError{Source: "questions", Err: err}
	}

	names := make(map[CategoryID]string, len(f.Categories))
	for _, c := range f.Categories {
		names[c.ID] = c.Name
	}

	b := &Bank{
		version:    f.Version,
		categories: f.Categories,
		questions:  f.Questions,
		byID:       make(map[string]int, len(f.Questions)),
	}
	for i := range b.questions {
		q := &b.questions[i]
		if _, dup := b.byID[q.ID]; dup {
			return nil, &ValidationError{Source: "questions", Err: fmt.Errorf("duplicate question id %q", q.ID)}
		}
		if q.CategoryName == "" {
			q.CategoryName = names[q.Category]
		}
		b.byID[q.ID] = i
	}
	return b, nil
}

// Version returns the dataset version, or "" for unversioned datasets.
func (b *Bank) Version() string { return b.version }

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// Categories returns the category list.
func (b *Bank) Categories() []Category {
	out := make([]Category, len(b.categories))
	copy(out, b.categories)
	return out
}

// Question looks up a question by id.
func (b *Bank) Question(id string) (Question, error) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return b.questions[i], nil
}

// All returns every question in dataset order.
func (b *Bank) All() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Filter narrows the bank. Zero-valued fields match everything.
type Filter struct {
	Category    CategoryID
	Subcategory string
	Difficulty  Difficulty
	// Search matches question text or subcategory, case-insensitively.
	Search string
}

// Filter returns the questions matching f in dataset order.
func (b *Bank) Filter(f Filter) []Question {
	search := strings.ToLower(f.Search)
	var out []Question
	for _, q := range b.questions {
		if f.Category != "" && q.Category != f.Category {
			continue
		}
		if f.Subcategory != "" && q.Subcategory != f.Subcategory {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(q.Text), search) &&
			!strings.Contains(strings.ToLower(q.Subcategory), search) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Random returns up to count questions from category (all categories when
// empty) in random order. A count of zero or less returns every match.
func (b *Bank) Random(rng *rand.Rand, category CategoryID, count int) []Question {
	pool := b.Filter(Filter{Category: category})
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if count > 0 && count < len(pool) {
		pool = pool[:count]
	}
	return pool
}

// Subset returns the questions whose ids are in ids, in dataset order.
func (b *Bank) Subset(ids []string) []Question {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Question
	for _, q := range b.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out
}
