package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fequiz/internal/router"
	"github.com/abhisek/fequiz/internal/screen"
	"github.com/abhisek/fequiz/internal/screens/summary"
	sess "github.com/abhisek/fequiz/internal/session"
	"github.com/abhisek/fequiz/internal/ui/layout"
)

// requestTimeout bounds each call to the backend.
const requestTimeout = 10 * time.Second

// SessionScreen implements screen.Screen for a running quiz.
type SessionScreen struct {
	backend  screen.Backend
	state    *sess.Session
	fetching bool
	errMsg   string
	notice   string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)

// New creates a SessionScreen for cfg. opts are passed to the session.
func New(backend screen.Backend, cfg sess.Config, opts ...sess.Option) *SessionScreen {
	return &SessionScreen{
		backend: backend,
		state:   sess.New(cfg, backend, backend, opts...),
	}
}

// Session exposes the underlying state machine.
func (s *SessionScreen) Session() *sess.Session {
	return s.state
}

// Init starts fetching the batch. It is a no-op once the batch is loaded, so
// the screen can be re-initialized by the router without refetching.
func (s *SessionScreen) Init() tea.Cmd {
	if s.state.Phase() != sess.PhaseLoading || s.fetching {
		return nil
	}
	return s.fetch()
}

func (s *SessionScreen) fetch() tea.Cmd {
	s.fetching = true
	s.errMsg = ""
	state := s.state
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		batch, err := state.Fetch(ctx)
		return batchLoadedMsg{Batch: batch, Err: err}
	}
}

func (s *SessionScreen) Title() string {
	cfg := s.state.Config()
	switch cfg.Mode {
	case sess.ModeWeak:
		return "Weak questions"
	case sess.ModeSingle:
		return "Question " + cfg.QuestionID
	}
	if cfg.Category != "" {
		return "Quiz: " + cfg.Category.Label()
	}
	return "Quiz: All categories"
}

func (s *SessionScreen) Status() string {
	if s.state.Len() == 0 {
		return ""
	}
	correct, total := s.state.Score()
	return fmt.Sprintf("Q %d/%d   ✓ %d/%d", s.state.Index()+1, s.state.Len(), correct, total)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch s.state.Phase() {
	case sess.PhasePresenting:
		if s.state.Submitting() {
			break
		}
		if s.state.TimeoutPending() {
			return []layout.KeyHint{
				{Key: "Enter", Description: "Retry"},
				{Key: "Esc", Description: "Back"},
			}
		}
		return []layout.KeyHint{
			{Key: "1-4", Description: "Choose"},
			{Key: "↑↓", Description: "Move"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Back"},
		}
	case sess.PhaseSubmitted:
		return []layout.KeyHint{
			{Key: "n", Description: "Next"},
			{Key: "Esc", Description: "Back"},
		}
	case sess.PhaseLoading:
		if s.errMsg != "" {
			return []layout.KeyHint{
				{Key: "r", Description: "Retry"},
				{Key: "Esc", Description: "Back"},
			}
		}
	}
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SessionScreen) View(width, height int) string {
	switch s.state.Phase() {
	case sess.PhaseLoading:
		if s.errMsg != "" {
			return renderError(width, s.errMsg)
		}
		return renderLoading(width)
	case sess.PhaseEmpty:
		return renderEmpty(width, s.state.EmptyMessage())
	case sess.PhaseFinished:
		return renderFinished(width)
	}
	return s.renderQuestionView(width)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case batchLoadedMsg:
		return s.handleBatch(msg)

	case timerTickMsg:
		return s.handleTimerTick(msg)

	case submittedMsg:
		return s.handleSubmitted(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleBatch(msg batchLoadedMsg) (screen.Screen, tea.Cmd) {
	s.fetching = false
	if err := s.state.Load(msg.Batch, msg.Err); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	return s, s.startCountdown()
}

// startCountdown schedules the first tick for the question just presented.
func (s *SessionScreen) startCountdown() tea.Cmd {
	if !s.state.CountdownActive() {
		return nil
	}
	return tickCmd(s.state.CountdownGen())
}

func (s *SessionScreen) handleTimerTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	if p := s.state.Expire(msg.Gen); p != nil {
		return s, s.send(p)
	}
	if s.state.CountdownActive() && msg.Gen == s.state.CountdownGen() {
		return s, tickCmd(msg.Gen)
	}
	return s, nil
}

func (s *SessionScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	_, err := s.state.Complete(msg.Pending, msg.Result, msg.Err)
	switch {
	case errors.Is(err, sess.ErrStaleSubmission):
		return s, nil
	case err != nil:
		s.errMsg = err.Error()
		return s, s.startCountdown()
	}
	s.errMsg = ""
	s.notice = ""
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.state.Phase() {
	case sess.PhaseLoading:
		if key == "r" && s.errMsg != "" && !s.fetching {
			return s, s.fetch()
		}

	case sess.PhasePresenting:
		return s.handlePresentingKey(key)

	case sess.PhaseSubmitted:
		if key == "n" || key == "enter" {
			return s.next()
		}
	}
	return s, nil
}

func (s *SessionScreen) handlePresentingKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "1", "2", "3", "4":
		if err := s.state.Select(int(key[0] - '1')); err == nil {
			s.notice = ""
		}
	case "up", "k":
		if sel := s.state.Selected(); sel > 0 {
			_ = s.state.Select(sel - 1)
		} else {
			_ = s.state.Select(0)
		}
	case "down", "j":
		sel := s.state.Selected()
		if sel < len(s.currentChoices())-1 {
			_ = s.state.Select(sel + 1)
		}
	case "enter":
		return s.submit()
	}
	return s, nil
}

func (s *SessionScreen) submit() (screen.Screen, tea.Cmd) {
	var (
		p   *sess.Pending
		err error
	)
	if s.state.TimeoutPending() {
		p, err = s.state.PrepareRetryTimeout()
	} else {
		p, err = s.state.PrepareSubmit()
	}

	switch {
	case errors.Is(err, sess.ErrNoSelection):
		s.notice = "Select an answer first"
		return s, nil
	case errors.Is(err, sess.ErrSubmitting):
		return s, nil
	case err != nil:
		s.errMsg = err.Error()
		return s, nil
	}
	return s, s.send(p)
}

// send posts p off the update loop and reports back with a submittedMsg.
func (s *SessionScreen) send(p *sess.Pending) tea.Cmd {
	state := s.state
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := state.Send(ctx, p)
		return submittedMsg{Pending: p, Result: res, Err: err}
	}
}

func (s *SessionScreen) next() (screen.Screen, tea.Cmd) {
	if err := s.state.Next(); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	if s.state.Phase() == sess.PhaseFinished {
		result := summary.New(s.state.Summary(), s.restart)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: result} }
	}
	return s, s.startCountdown()
}

// restart resets the session with a fresh id and score and returns this
// screen so the router re-initializes it, which fetches a new batch.
func (s *SessionScreen) restart() screen.Screen {
	if err := s.state.Reset(); err != nil {
		s.errMsg = err.Error()
	}
	s.notice = ""
	return s
}

func (s *SessionScreen) currentChoices() []string {
	item := s.state.Current()
	if item == nil {
		return nil
	}
	return item.Choices[:]
}

func tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{Gen: gen}
	})
}
