package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/mastery"
	"github.com/abhisek/fequiz/internal/store"
)

const bankJSON = `{
  "version": "1.0.0",
  "categories": [
    {"id": "technology", "name": "Technology", "subcategories": ["Basic theory"]},
    {"id": "management", "name": "Management", "subcategories": ["Project management"]},
    {"id": "strategy", "name": "Strategy", "subcategories": ["Corporate activity"]}
  ],
  "questions": [
    {"id": "t1", "category": "technology", "subcategory": "Basic theory", "question": "Two's complement of 00000001?",
     "choices": ["11111111", "10000001", "01111111", "11111110"], "correctAnswer": 0, "explanation": "Invert and add one.",
     "relatedTerms": ["twos_complement"], "difficulty": "easy"},
    {"id": "t2", "category": "technology", "subcategory": "Basic theory", "question": "Binary 1010 in decimal?",
     "choices": ["8", "10", "12", "5"], "correctAnswer": 1, "explanation": "8 + 2.", "difficulty": "medium"},
    {"id": "m1", "category": "management", "subcategory": "Project management", "question": "What does the critical path determine?",
     "choices": ["Cost", "Minimum duration", "Staffing", "Quality"], "correctAnswer": 1, "explanation": "Longest chain."},
    {"id": "s1", "category": "strategy", "subcategory": "Corporate activity", "question": "Which framework covers strengths and threats?",
     "choices": ["PPM", "SWOT", "PEST", "3C"], "correctAnswer": 1, "explanation": "SWOT."}
  ]
}`

const glossaryJSON = `{"terms": [
  {"id": "twos_complement", "term": "Two's complement", "meaning": "signed integer encoding", "category": "technology",
   "description": "Invert every bit and add one."},
  {"id": "swot", "term": "SWOT", "meaning": "planning framework", "category": "strategy",
   "description": "Strengths, Weaknesses, Opportunities, Threats."}
]}`

type testEnv struct {
	router  *gin.Engine
	tracker *mastery.Tracker
	repo    store.ProgressRepo
}

func newTestEnv(t *testing.T, withGlossary bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bank, err := catalog.ParseBank([]byte(bankJSON))
	require.NoError(t, err)

	var g *catalog.Glossary
	if withGlossary {
		g, err = catalog.ParseGlossary([]byte(glossaryJSON))
		require.NoError(t, err)
	}

	repo, err := store.OpenFile(filepath.Join(t.TempDir(), "user_progress.json"))
	require.NoError(t, err)
	return newTestEnvWithRepo(t, bank, g, repo)
}

func newTestEnvWithRepo(t *testing.T, bank *catalog.Bank, g *catalog.Glossary, repo store.ProgressRepo) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tr := mastery.NewTracker(repo, bank, g)
	r := NewRouter(RouterConfig{
		Bank:        bank,
		Glossary:    g,
		Tracker:     tr,
		CORSOrigins: []string{"*"},
		Rand:        rand.New(rand.NewPCG(3, 4)),
	})
	return &testEnv{router: r, tracker: tr, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, true)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, true)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, true)
	req := httptest.NewRequest(http.MethodOptions, "/api/answer", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestQuestionEndpointsStripAnswers(t *testing.T) {
	env := newTestEnv(t, true)

	for _, path := range []string{"/api/questions", "/api/questions/random?count=0", "/api/questions/t1"} {
		rec := env.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "correctAnswer", path)
		assert.NotContains(t, rec.Body.String(), "explanation", path)
	}
}

func TestGetQuestion(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodGet, "/api/questions/m1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode[catalog.PublicQuestion](t, rec)
	assert.Equal(t, "m1", q.ID)
	assert.Equal(t, "Management", q.CategoryName)
	assert.Equal(t, []string{}, q.RelatedTerms)

	rec = env.do(t, http.MethodGet, "/api/questions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"question not found"}`, rec.Body.String())
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t, true)
	rec := env.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decode[[]catalog.Category](t, rec)
	assert.Len(t, cats, 3)
}

func TestListQuestionsFilters(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodGet, "/api/questions?category=technology&difficulty=medium", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	qs := decode[[]catalog.PublicQuestion](t, rec)
	require.Len(t, qs, 1)
	assert.Equal(t, "t2", qs[0].ID)
}

func TestRandomQuestions(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		query string
		code  int
		want  int
	}{
		{"", http.StatusOK, 4}, // default 5, bank has 4
		{"?count=2", http.StatusOK, 2},
		{"?count=0", http.StatusOK, 4},
		{"?count=-3", http.StatusOK, 4},
		{"?category=technology&count=10", http.StatusOK, 2},
		{"?count=lots", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		rec := env.do(t, http.MethodGet, "/api/questions/random"+tt.query, nil)
		require.Equal(t, tt.code, rec.Code, tt.query)
		if tt.code == http.StatusOK {
			assert.Len(t, decode[[]catalog.PublicQuestion](t, rec), tt.want, tt.query)
		}
	}
}

func TestSubmitAnswer(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodPost, "/api/answer", map[string]any{"questionId": "t1", "selectedAnswer": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, key := range []string{"isCorrect", "correctAnswer", "explanation", "stats", "relatedTerms"} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, true, body["isCorrect"])
	terms := body["relatedTerms"].([]any)
	require.Len(t, terms, 1)
	assert.Equal(t, "twos_complement", terms[0].(map[string]any)["id"])
}

func TestSubmitAnswer_Timeout(t *testing.T) {
	env := newTestEnv(t, true)

	for _, body := range []any{
		map[string]any{"questionId": "s1", "selectedAnswer": -1},
		map[string]any{"questionId": "s1", "timedOut": true},
	} {
		rec := env.do(t, http.MethodPost, "/api/answer", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[mastery.Result](t, rec)
		assert.False(t, res.IsCorrect)
		assert.Equal(t, 1, res.CorrectAnswer)
	}

	// Two misses put s1 in the weak set.
	rec := env.do(t, http.MethodGet, "/api/questions/weak", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	weak := decode[[]catalog.PublicQuestion](t, rec)
	require.Len(t, weak, 1)
	assert.Equal(t, "s1", weak[0].ID)
}

func TestSubmitAnswer_Invalid(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name string
		body any
		code int
	}{
		{"malformed json", `{"questionId":`, http.StatusBadRequest},
		{"missing question id", map[string]any{"selectedAnswer": 1}, http.StatusBadRequest},
		{"missing answer", map[string]any{"questionId": "t1"}, http.StatusBadRequest},
		{"out of range", map[string]any{"questionId": "t1", "selectedAnswer": 4}, http.StatusBadRequest},
		{"below sentinel", map[string]any{"questionId": "t1", "selectedAnswer": -2}, http.StatusBadRequest},
		{"timeout with answer", map[string]any{"questionId": "t1", "selectedAnswer": 2, "timedOut": true}, http.StatusBadRequest},
		{"unknown question", map[string]any{"questionId": "zzz", "selectedAnswer": 1}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/answer", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}

	rec := env.do(t, http.MethodGet, "/api/progress", nil)
	s := decode[mastery.Summary](t, rec)
	assert.Equal(t, 0, s.TotalAttempts, "rejected submissions must not reach the tracker")
}

func TestProgressAndReset(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodGet, "/api/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"user", "categoryStats", "totalAttempts", "totalCorrect", "overallCorrectRate", "weakQuestionsCount"} {
		assert.Contains(t, raw, key)
	}
	assert.EqualValues(t, 0, raw["overallCorrectRate"])

	env.do(t, http.MethodPost, "/api/answer", map[string]any{"questionId": "t1", "selectedAnswer": 0})
	env.do(t, http.MethodPost, "/api/answer", map[string]any{"questionId": "t2", "selectedAnswer": 0})
	env.do(t, http.MethodPost, "/api/answer", map[string]any{"questionId": "m1", "selectedAnswer": 1})

	s := decode[mastery.Summary](t, env.do(t, http.MethodGet, "/api/progress", nil))
	assert.Equal(t, 3, s.TotalAttempts)
	assert.Equal(t, 2, s.TotalCorrect)
	assert.Equal(t, 66.7, s.OverallCorrectRate)
	assert.Equal(t, 2, s.CategoryStats[catalog.CategoryTechnology].TotalAttempts)

	rec = env.do(t, http.MethodPost, "/api/progress/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"progress reset"}`, rec.Body.String())

	s = decode[mastery.Summary](t, env.do(t, http.MethodGet, "/api/progress", nil))
	assert.Equal(t, 0, s.TotalAttempts)
	assert.Equal(t, mastery.DefaultUserID, s.User.ID)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, true)
	for _, id := range []string{"t1", "t2", "m1"} {
		rec := env.do(t, http.MethodPost, "/api/answer", map[string]any{"questionId": id, "selectedAnswer": 1})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/history?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]mastery.HistoryItem](t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, "m1", items[0].QuestionID)
	assert.Equal(t, "t2", items[1].QuestionID)
	require.NotNil(t, items[0].Question)
	assert.Equal(t, "What does the critical path determine?...", items[0].Question.QuestionText)

	assert.Len(t, decode[[]mastery.HistoryItem](t, env.do(t, http.MethodGet, "/api/history", nil)), 3)
	assert.Len(t, decode[[]mastery.HistoryItem](t, env.do(t, http.MethodGet, "/api/history?limit=0", nil)), 3)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/history?limit=x", nil).Code)
}

func TestQuestionListWithStatus(t *testing.T) {
	env := newTestEnv(t, true)
	env.do(t, http.MethodPost, "/api/answer", map[string]any{"questionId": "t1", "selectedAnswer": 0})
	env.do(t, http.MethodPost, "/api/answer", map[string]any{"questionId": "t2", "selectedAnswer": 3})

	rec := env.do(t, http.MethodGet, "/api/questions/list?category=technology", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]mastery.ListedQuestion](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, mastery.StatusCorrect, rows[0].Status)
	assert.Equal(t, mastery.StatusIncorrect, rows[1].Status)

	rows = decode[[]mastery.ListedQuestion](t, env.do(t, http.MethodGet, "/api/questions/list?search=critical", nil))
	require.Len(t, rows, 1)
	assert.Equal(t, mastery.StatusUnanswered, rows[0].Status)
}

func TestGlossary(t *testing.T) {
	env := newTestEnv(t, true)

	terms := decode[[]catalog.Term](t, env.do(t, http.MethodGet, "/api/glossary?category=strategy", nil))
	require.Len(t, terms, 1)
	assert.Equal(t, "swot", terms[0].ID)

	terms = decode[[]catalog.Term](t, env.do(t, http.MethodGet, "/api/glossary?search=two", nil))
	require.Len(t, terms, 1)

	rec := env.do(t, http.MethodGet, "/api/glossary/swot", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/glossary/none", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGlossaryUnavailable(t *testing.T) {
	env := newTestEnv(t, false)

	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/api/glossary", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/api/glossary/swot", nil).Code)

	// Answers still work; related terms are simply empty.
	rec := env.do(t, http.MethodPost, "/api/answer", map[string]any{"questionId": "t1", "selectedAnswer": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[mastery.Result](t, rec)
	assert.Empty(t, res.RelatedTerms)
}

type failingRepo struct{}

func (failingRepo) Load(context.Context) (*store.ProgressData, error) {
	return nil, &store.StorageError{Op: "load", Err: errors.New("permission denied")}
}
func (failingRepo) Save(context.Context, *store.ProgressData) error {
	return &store.StorageError{Op: "save", Err: errors.New("permission denied")}
}
func (failingRepo) Close() error { return nil }

func TestStorageFailureIsGeneric500(t *testing.T) {
	bank, err := catalog.ParseBank([]byte(bankJSON))
	require.NoError(t, err)
	env := newTestEnvWithRepo(t, bank, nil, failingRepo{})

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/answer", map[string]any{"questionId": "t1", "selectedAnswer": 0}},
		{http.MethodGet, "/api/progress", nil},
		{http.MethodGet, "/api/history", nil},
		{http.MethodPost, "/api/progress/reset", nil},
	} {
		rec := env.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, tc.path)
		assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String(), tc.path)
	}
}

func TestStorageFailureLogsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bank, err := catalog.ParseBank([]byte(bankJSON))
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRouter(RouterConfig{
		Bank:    bank,
		Tracker: mastery.NewTracker(failingRepo{}, bank, nil),
		Log:     &logger.Logger{SugaredLogger: zap.New(core).Sugar()},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var found bool
	for _, e := range logs.FilterLevelExact(zapcore.ErrorLevel).All() {
		if e.Message == "HTTP request" {
			continue
		}
		fields := e.ContextMap()
		assert.Equal(t, "req-42", fields["request_id"], e.Message)
		assert.Contains(t, fields["error"], "permission denied", e.Message)
		found = true
	}
	assert.True(t, found, "expected the handler failure to be logged")
}
