package catalog

import "strings"

// CategoryID identifies one of the three exam categories.
type CategoryID string

const (
	CategoryTechnology CategoryID = "technology"
	CategoryManagement CategoryID = "management"
	CategoryStrategy   CategoryID = "strategy"
)

// CategoryIDs lists the fixed category set in display order.
var CategoryIDs = []CategoryID{CategoryTechnology, CategoryManagement, CategoryStrategy}

// Valid reports whether c is one of the fixed categories.
func (c CategoryID) Valid() bool {
	for _, id := range CategoryIDs {
		if c == id {
			return true
		}
	}
	return false
}

// Label returns the id with its first letter upper-cased, for display where
// the dataset's category name is not at hand.
func (c CategoryID) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Difficulty is an optional per-question difficulty label.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// NumChoices is the fixed number of choices per question.
const NumChoices = 4

// PreviewLength is the number of characters kept in a question preview.
const PreviewLength = 50

// Category describes a category and its subcategories.
type Category struct {
	ID            CategoryID `json:"id"`
	Name          string     `json:"name"`
	Subcategories []string   `json:"subcategories"`
}

// Question is an immutable multiple-choice question.
type Question struct {
	ID            string             `json:"id"`
	Category      CategoryID         `json:"category"`
	CategoryName  string             `json:"categoryName"`
	Subcategory   string             `json:"subcategory"`
	Text          string             `json:"question"`
	Choices       [NumChoices]string `json:"choices"`
	CorrectAnswer int                `json:"correctAnswer"`
	Explanation   string             `json:"explanation"`
	RelatedTerms  []string           `json:"relatedTerms"`
	Difficulty    Difficulty         `json:"difficulty,omitempty"`
}

// PublicQuestion is a Question with the answer and explanation removed.
// It is the only shape served before an answer is submitted.
type PublicQuestion struct {
	ID           string             `json:"id"`
	Category     CategoryID         `json:"category"`
	CategoryName string             `json:"categoryName"`
	Subcategory  string             `json:"subcategory"`
	Text         string             `json:"question"`
	Choices      [NumChoices]string `json:"choices"`
	RelatedTerms []string           `json:"relatedTerms"`
	Difficulty   Difficulty         `json:"difficulty,omitempty"`
}

// Public strips the answer and explanation.
func (q Question) Public() PublicQuestion {
	related := q.RelatedTerms
	if related == nil {
		related = []string{}
	}
	return PublicQuestion{
		ID:           q.ID,
		Category:     q.Category,
		CategoryName: q.CategoryName,
		Subcategory:  q.Subcategory,
		Text:         q.Text,
		Choices:      q.Choices,
		RelatedTerms: related,
		Difficulty:   q.Difficulty,
	}
}

// PublicQuestions strips a slice of questions.
func PublicQuestions(qs []Question) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Public())
	}
	return out
}

// QuestionPreview is the short form attached to history entries.
type QuestionPreview struct {
	ID           string     `json:"id"`
	Category     CategoryID `json:"category"`
	CategoryName string     `json:"categoryName"`
	Subcategory  string     `json:"subcategory"`
	QuestionText string     `json:"questionText"`
}

// Preview returns the question's preview with the text cut to
// PreviewLength characters and an ellipsis appended.
func (q Question) Preview() QuestionPreview {
	return QuestionPreview{
		ID:           q.ID,
		Category:     q.Category,
		CategoryName: q.CategoryName,
		Subcategory:  q.Subcategory,
		QuestionText: truncate(q.Text, PreviewLength) + "...",
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Term is a glossary entry.
type Term struct {
	ID           string     `json:"id"`
	Term         string     `json:"term"`
	FullName     string     `json:"fullName,omitempty"`
	Meaning      string     `json:"meaning"`
	Category     CategoryID `json:"category"`
	Subcategory  string     `json:"subcategory"`
	Description  string     `json:"description"`
	Examples     []string   `json:"examples,omitempty"`
	RelatedTerms []string   `json:"relatedTerms,omitempty"`
	Tips         string     `json:"tips,omitempty"`
}
