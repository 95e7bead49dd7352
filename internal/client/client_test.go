package client

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fequiz/internal/api"
	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
	"github.com/abhisek/fequiz/internal/session"
	"github.com/abhisek/fequiz/internal/store"
)

const bankJSON = `{
  "categories": [
    {"id": "technology", "name": "Technology", "subcategories": ["Basic theory"]},
    {"id": "management", "name": "Management", "subcategories": ["Project management"]},
    {"id": "strategy", "name": "Strategy", "subcategories": ["Corporate activity"]}
  ],
  "questions": [
    {"id": "t1", "category": "technology", "subcategory": "Basic theory", "question": "Binary 1010 in decimal?",
     "choices": ["8", "10", "12", "5"], "correctAnswer": 1, "explanation": "8 + 2.", "difficulty": "easy"},
    {"id": "m1", "category": "management", "subcategory": "Project management", "question": "What does the critical path determine?",
     "choices": ["Cost", "Minimum duration", "Staffing", "Quality"], "correctAnswer": 1, "explanation": "Longest chain."}
  ]
}`

func newTestServer(t *testing.T) (*Client, *catalog.Bank) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bank, err := catalog.ParseBank([]byte(bankJSON))
	require.NoError(t, err)
	repo, err := store.OpenFile(filepath.Join(t.TempDir(), "user_progress.json"))
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Bank:    bank,
		Tracker: mastery.NewTracker(repo, bank, nil),
		Rand:    rand.New(rand.NewPCG(1, 1)),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api/"), bank
}

func TestClient_Questions(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	all, err := c.Random(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tech, err := c.Random(ctx, catalog.CategoryTechnology, 5)
	require.NoError(t, err)
	require.Len(t, tech, 1)
	assert.Equal(t, "t1", tech[0].ID)

	q, err := c.Question(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Minimum duration", q.Choices[1])

	_, err = c.Question(ctx, "missing")
	assert.True(t, errors.Is(err, catalog.ErrQuestionNotFound), "got %v", err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_CategoriesAndQuestionList(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, catalog.CategoryTechnology, cats[0].ID)
	assert.Equal(t, "Management", cats[1].Name)

	rows, err := c.QuestionList(ctx, catalog.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, mastery.StatusUnanswered, r.Status, r.ID)
	}

	_, err = c.Submit(ctx, "m1", mastery.Answered(0))
	require.NoError(t, err)
	rows, err = c.QuestionList(ctx, catalog.Filter{Category: catalog.CategoryManagement})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mastery.StatusIncorrect, rows[0].Status)
	assert.Equal(t, 1, rows[0].Attempts)
	assert.Equal(t, "What does the critical path determine?", rows[0].Text)

	rows, err = c.QuestionList(ctx, catalog.Filter{Difficulty: catalog.DifficultyEasy})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "t1", rows[0].ID)

	rows, err = c.QuestionList(ctx, catalog.Filter{Search: "binary"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "t1", rows[0].ID)

	rows, err = c.QuestionList(ctx, catalog.Filter{Search: "kanban"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestClient_SubmitProgressHistoryReset(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	res, err := c.Submit(ctx, "t1", mastery.Answered(1))
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 1, res.Stats.Attempts)

	res, err = c.Submit(ctx, "t1", mastery.TimedOut())
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 1, res.CorrectAnswer)

	p, err := c.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalAttempts)
	assert.Equal(t, 50.0, p.OverallCorrectRate)

	h, err := c.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, -1, h[0].SelectedAnswer)

	weak, err := c.Weak(ctx)
	require.NoError(t, err)
	assert.Empty(t, weak, "1/2 is inside the hysteresis band")

	require.NoError(t, c.Reset(ctx))
	p, err = c.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalAttempts)
}

func TestClient_DrivesSession(t *testing.T) {
	c, bank := newTestServer(t)
	ctx := context.Background()

	s := session.New(session.Config{Mode: session.ModeNormal, Count: 0, Shuffle: true}, c, c,
		session.WithRand(rand.New(rand.NewPCG(5, 6))))
	require.NoError(t, s.Start(ctx))

	for s.Phase() != session.PhaseFinished {
		item := s.Current()
		q, err := bank.Question(item.Question.ID)
		require.NoError(t, err)
		// Always answer correctly through the shuffled display.
		require.NoError(t, s.Select(item.Map.Position(q.CorrectAnswer)))
		fb, err := s.Submit(ctx)
		require.NoError(t, err)
		assert.True(t, fb.Result.IsCorrect, item.Question.ID)
		require.NoError(t, s.Next())
	}

	sum := s.Summary()
	assert.Equal(t, 2, sum.Correct)
	assert.Equal(t, 100, sum.Percentage)
	assert.Equal(t, session.BandExcellent, sum.Band)
}

func TestClient_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(base, WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.Random(context.Background(), "", 5)
	assert.Error(t, err)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	_, err := c.Progress(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "internal server error", apiErr.Message)
}

func TestClient_Glossary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bank, err := catalog.ParseBank([]byte(bankJSON))
	require.NoError(t, err)
	glossary, err := catalog.ParseGlossary([]byte(`{"terms": [
	  {"id": "cpm", "term": "CPM", "meaning": "Critical path method", "category": "management",
	   "subcategory": "Project management", "description": "Finds the longest dependency chain."},
	  {"id": "swot", "term": "SWOT", "meaning": "Strengths, weaknesses, opportunities, threats", "category": "strategy",
	   "subcategory": "Corporate activity", "description": "Situation analysis."}
	]}`))
	require.NoError(t, err)
	repo, err := store.OpenFile(filepath.Join(t.TempDir(), "user_progress.json"))
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Bank:     bank,
		Glossary: glossary,
		Tracker:  mastery.NewTracker(repo, bank, glossary),
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL + "/api")

	terms, err := c.Glossary(context.Background(), "", "Critical path")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "cpm", terms[0].ID)

	terms, err = c.Glossary(context.Background(), catalog.CategoryStrategy, "")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "SWOT", terms[0].Term)
}

func TestClient_GlossaryUnavailable(t *testing.T) {
	c, _ := newTestServer(t)

	_, err := c.Glossary(context.Background(), "", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}
