package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/fequiz/internal/api"
	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
)

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Client talks to the quiz HTTP API. It implements session.Source and
// session.Submitter.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at base, e.g.
// "http://localhost:3001/api".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Random fetches up to count random questions; count 0 requests all.
func (c *Client) Random(ctx context.Context, category catalog.CategoryID, count int) ([]catalog.PublicQuestion, error) {
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))
	if category != "" {
		q.Set("category", string(category))
	}
	var out []catalog.PublicQuestion
	if err := c.do(ctx, http.MethodGet, "/questions/random", q, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch random questions: %w", err)
	}
	return out, nil
}

// Categories fetches the category list.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return out, nil
}

// QuestionList fetches the question rows with their answer status. Only the
// category, difficulty and search fields of f are sent.
func (c *Client) QuestionList(ctx context.Context, f catalog.Filter) ([]mastery.ListedQuestion, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", string(f.Category))
	}
	if f.Difficulty != "" {
		q.Set("difficulty", string(f.Difficulty))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	var out []mastery.ListedQuestion
	if err := c.do(ctx, http.MethodGet, "/questions/list", q, nil, &out); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return out, nil
}

// Weak fetches the weak-set questions.
func (c *Client) Weak(ctx context.Context) ([]catalog.PublicQuestion, error) {
	var out []catalog.PublicQuestion
	if err := c.do(ctx, http.MethodGet, "/questions/weak", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch weak questions: %w", err)
	}
	return out, nil
}

// Question fetches one question.
func (c *Client) Question(ctx context.Context, id string) (catalog.PublicQuestion, error) {
	var out catalog.PublicQuestion
	if err := c.do(ctx, http.MethodGet, "/questions/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return catalog.PublicQuestion{}, fmt.Errorf("fetch question %s: %w", id, err)
	}
	return out, nil
}

// Submit records an answer.
func (c *Client) Submit(ctx context.Context, questionID string, ans mastery.Answer) (*mastery.Result, error) {
	var out mastery.Result
	if err := c.do(ctx, http.MethodPost, "/answer", nil, api.NewAnswerRequest(questionID, ans), &out); err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}
	return &out, nil
}

// Progress fetches the progress summary.
func (c *Client) Progress(ctx context.Context) (*mastery.Summary, error) {
	var out mastery.Summary
	if err := c.do(ctx, http.MethodGet, "/progress", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch progress: %w", err)
	}
	return &out, nil
}

// History fetches the newest limit history entries.
func (c *Client) History(ctx context.Context, limit int) ([]mastery.HistoryItem, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var out []mastery.HistoryItem
	if err := c.do(ctx, http.MethodGet, "/history", q, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return out, nil
}

// Glossary searches glossary terms. Empty arguments are not sent.
func (c *Client) Glossary(ctx context.Context, category catalog.CategoryID, search string) ([]catalog.Term, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", string(category))
	}
	if search != "" {
		q.Set("search", search)
	}
	var out []catalog.Term
	if err := c.do(ctx, http.MethodGet, "/glossary", q, nil, &out); err != nil {
		return nil, fmt.Errorf("search glossary: %w", err)
	}
	return out, nil
}

// Reset clears all progress.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/progress/reset", nil, nil, nil); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns an error response into an *APIError, wrapped with the
// matching catalog sentinel for 404s.
func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	apiErr := &APIError{Status: resp.StatusCode, Message: body.Error}
	if resp.StatusCode == http.StatusNotFound {
		switch {
		case strings.Contains(body.Error, "question"):
			return errors.Join(catalog.ErrQuestionNotFound, apiErr)
		case strings.Contains(body.Error, "term"):
			return errors.Join(catalog.ErrTermNotFound, apiErr)
		}
	}
	return apiErr
}
