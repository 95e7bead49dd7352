package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
)

// Session drives one run through a question batch. It is not safe for
// concurrent use; the UI owns it and calls it from a single goroutine.
type Session struct {
	cfg       Config
	source    Source
	submitter Submitter
	rng       *rand.Rand
	newID     func() string

	id        string
	phase     Phase
	items     []Item
	index     int
	selected  int
	feedback  *Feedback
	correct   int
	total     int
	countdown countdown

	// timeoutPending is set when the countdown expired but recording the
	// timeout failed. The question can no longer be answered.
	timeoutPending bool
	pending        *Pending
	err            error
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used for choice shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

// New creates a session in PhaseLoading. Call Start, or Fetch then Load, to
// present the first question.
func New(cfg Config, source Source, submitter Submitter, opts ...Option) *Session {
	if cfg.Mode == "" {
		cfg.Mode = ModeNormal
	}
	s := &Session{
		cfg:       cfg,
		source:    source,
		submitter: submitter,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		newID:     uuid.NewString,
		selected:  -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.countdown.seconds = cfg.timerSeconds()
	s.id = s.newID()
	return s
}

// Fetch reads the question batch for the session's mode. It does not change
// session state.
func (s *Session) Fetch(ctx context.Context) ([]catalog.PublicQuestion, error) {
	switch s.cfg.Mode {
	case ModeWeak:
		return s.source.Weak(ctx)
	case ModeSingle:
		q, err := s.source.Question(ctx, s.cfg.QuestionID)
		if err != nil {
			return nil, err
		}
		return []catalog.PublicQuestion{q}, nil
	default:
		return s.source.Random(ctx, s.cfg.Category, s.cfg.Count)
	}
}

// Load applies a fetched batch. A fetch error is recorded and leaves the
// session in PhaseLoading; an empty batch moves it to PhaseEmpty.
func (s *Session) Load(batch []catalog.PublicQuestion, fetchErr error) error {
	if s.phase != PhaseLoading {
		return fmt.Errorf("%w: load in %s", ErrInvalidTransition, s.phase)
	}
	if fetchErr != nil {
		s.err = fetchErr
		return fetchErr
	}
	s.err = nil

	if len(batch) == 0 {
		s.phase = PhaseEmpty
		return nil
	}

	s.items = make([]Item, len(batch))
	for i, q := range batch {
		m := Identity()
		if s.cfg.shuffles() {
			m = NewShuffle(s.rng)
		}
		s.items[i] = Item{Question: q, Choices: m.Apply(q.Choices), Map: m}
	}
	s.index = 0
	s.present()
	return nil
}

// Start fetches and loads the batch.
func (s *Session) Start(ctx context.Context) error {
	batch, err := s.Fetch(ctx)
	return s.Load(batch, err)
}

// present enters PhasePresenting for the current index.
func (s *Session) present() {
	s.phase = PhasePresenting
	s.selected = -1
	s.feedback = nil
	s.timeoutPending = false
	s.countdown.arm()
}

// Select marks the choice at display position pos.
func (s *Session) Select(pos int) error {
	if s.phase != PhasePresenting || s.timeoutPending {
		return fmt.Errorf("%w: select in %s", ErrInvalidTransition, s.phase)
	}
	if s.pending != nil {
		return ErrSubmitting
	}
	if pos < 0 || pos >= catalog.NumChoices {
		return fmt.Errorf("%w: %d", ErrInvalidChoice, pos)
	}
	s.selected = pos
	return nil
}

// Pending is an answer taken for sending whose verdict has not arrived yet.
// At most one is in flight per session.
type Pending struct {
	QuestionID string
	Answer     mastery.Answer

	index    int
	selected int
}

// Submitting reports whether an answer is in flight.
func (s *Session) Submitting() bool { return s.pending != nil }

// PrepareSubmit takes the selected choice for sending and disarms the
// countdown. Without a selection it returns ErrNoSelection. The caller sends
// the answer with Send and applies the outcome with Complete; until then
// Select and further submissions are rejected with ErrSubmitting.
func (s *Session) PrepareSubmit() (*Pending, error) {
	if s.phase != PhasePresenting || s.timeoutPending {
		return nil, fmt.Errorf("%w: submit in %s", ErrInvalidTransition, s.phase)
	}
	if s.pending != nil {
		return nil, ErrSubmitting
	}
	if s.selected < 0 {
		return nil, ErrNoSelection
	}
	s.countdown.disarm()
	item := s.items[s.index]
	return s.begin(mastery.Answered(item.Map.Original(s.selected)), s.selected), nil
}

// Expire advances the countdown by one second if gen is the live countdown
// generation. When it runs out, the timeout is taken for sending and
// returned; otherwise Expire returns nil. Stale ticks return nil.
func (s *Session) Expire(gen uint64) *Pending {
	if s.phase != PhasePresenting || s.pending != nil || !s.countdown.tick(gen) {
		return nil
	}
	s.timeoutPending = true
	return s.begin(mastery.TimedOut(), -1)
}

// PrepareRetryTimeout takes a timeout whose first submission failed for
// sending again.
func (s *Session) PrepareRetryTimeout() (*Pending, error) {
	if s.phase != PhasePresenting || !s.timeoutPending {
		return nil, fmt.Errorf("%w: no pending timeout", ErrInvalidTransition)
	}
	if s.pending != nil {
		return nil, ErrSubmitting
	}
	return s.begin(mastery.TimedOut(), -1), nil
}

func (s *Session) begin(ans mastery.Answer, selected int) *Pending {
	s.pending = &Pending{
		QuestionID: s.items[s.index].Question.ID,
		Answer:     ans,
		index:      s.index,
		selected:   selected,
	}
	return s.pending
}

// Send delivers p to the submitter. It does not read or change session
// state, so it may run off the goroutine that owns the session.
func (s *Session) Send(ctx context.Context, p *Pending) (*mastery.Result, error) {
	return s.submitter.Submit(ctx, p.QuestionID, p.Answer)
}

// Complete applies the outcome of sending p. On failure the question stays
// answerable: a manual answer resumes the countdown with the seconds it had
// left and a timeout stays pending for PrepareRetryTimeout. An outcome for
// anything but the answer in flight returns ErrStaleSubmission.
func (s *Session) Complete(p *Pending, res *mastery.Result, err error) (*Feedback, error) {
	if p == nil || p != s.pending {
		return nil, ErrStaleSubmission
	}
	s.pending = nil
	if err == nil && res == nil {
		err = errors.New("empty verdict")
	}
	if err != nil {
		s.err = err
		if !p.Answer.IsTimeout() {
			s.countdown.resume()
		}
		return nil, err
	}
	if p.Answer.IsTimeout() {
		s.timeoutPending = false
	}
	return s.record(s.items[p.index], res, p.selected, p.Answer.IsTimeout()), nil
}

// Submit sends the selected choice and waits for the verdict.
func (s *Session) Submit(ctx context.Context) (*Feedback, error) {
	p, err := s.PrepareSubmit()
	if err != nil {
		return nil, err
	}
	res, err := s.Send(ctx, p)
	return s.Complete(p, res, err)
}

// Tick is Expire followed by sending the timeout. Stale or non-expiring
// ticks return (nil, nil).
func (s *Session) Tick(ctx context.Context, gen uint64) (*Feedback, error) {
	p := s.Expire(gen)
	if p == nil {
		return nil, nil
	}
	res, err := s.Send(ctx, p)
	return s.Complete(p, res, err)
}

// RetryTimeout resends a timeout whose first submission failed.
func (s *Session) RetryTimeout(ctx context.Context) (*Feedback, error) {
	p, err := s.PrepareRetryTimeout()
	if err != nil {
		return nil, err
	}
	res, err := s.Send(ctx, p)
	return s.Complete(p, res, err)
}

func (s *Session) record(item Item, res *mastery.Result, selected int, timedOut bool) *Feedback {
	s.err = nil
	s.total++
	if res.IsCorrect && !timedOut {
		s.correct++
	}
	s.feedback = &Feedback{
		Result:          res,
		Selected:        selected,
		CorrectPosition: item.Map.Position(res.CorrectAnswer),
		TimedOut:        timedOut,
	}
	s.phase = PhaseSubmitted
	return s.feedback
}

// Next moves to the following question, or to PhaseFinished after the last.
func (s *Session) Next() error {
	if s.phase != PhaseSubmitted {
		return fmt.Errorf("%w: next in %s", ErrInvalidTransition, s.phase)
	}
	if s.index+1 < len(s.items) {
		s.index++
		s.present()
		return nil
	}
	s.phase = PhaseFinished
	s.countdown.disarm()
	return nil
}

// Reset returns a finished or empty session to PhaseLoading with a new id
// and a zero score, ready for Fetch and Load.
func (s *Session) Reset() error {
	if s.phase != PhaseFinished && s.phase != PhaseEmpty {
		return fmt.Errorf("%w: restart in %s", ErrInvalidTransition, s.phase)
	}
	s.id = s.newID()
	s.phase = PhaseLoading
	s.items = nil
	s.index = 0
	s.selected = -1
	s.feedback = nil
	s.correct = 0
	s.total = 0
	s.timeoutPending = false
	s.pending = nil
	s.err = nil
	s.countdown.disarm()
	return nil
}

// Restart is Reset followed by Start.
func (s *Session) Restart(ctx context.Context) error {
	if err := s.Reset(); err != nil {
		return err
	}
	return s.Start(ctx)
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Current returns the current item, or nil outside PhasePresenting and
// PhaseSubmitted.
func (s *Session) Current() *Item {
	if s.phase != PhasePresenting && s.phase != PhaseSubmitted {
		return nil
	}
	return &s.items[s.index]
}

// Index returns the zero-based index of the current question.
func (s *Session) Index() int { return s.index }

// Len returns the batch size.
func (s *Session) Len() int { return len(s.items) }

// Selected returns the selected display position, or -1.
func (s *Session) Selected() int { return s.selected }

// Feedback returns the verdict for the current question, or nil.
func (s *Session) Feedback() *Feedback { return s.feedback }

// TimerEnabled reports whether questions have a countdown.
func (s *Session) TimerEnabled() bool { return s.countdown.seconds > 0 }

// Remaining returns the seconds left on the countdown.
func (s *Session) Remaining() int { return s.countdown.remaining }

// CountdownGen returns the generation ticks must carry to count.
func (s *Session) CountdownGen() uint64 { return s.countdown.gen }

// CountdownActive reports whether the countdown is running.
func (s *Session) CountdownActive() bool {
	return s.phase == PhasePresenting && s.countdown.armed
}

// TimeoutPending reports whether an expired countdown still needs to be
// recorded with RetryTimeout.
func (s *Session) TimeoutPending() bool { return s.timeoutPending }

// Err returns the last fetch or submission error, cleared on success.
func (s *Session) Err() error { return s.err }

// Score returns the running score.
func (s *Session) Score() (correct, total int) { return s.correct, s.total }

// Summary scores the session so far.
func (s *Session) Summary() Summary { return BuildSummary(s.correct, s.total) }

// EmptyMessage returns the message shown for an empty batch.
func (s *Session) EmptyMessage() string {
	if s.cfg.Mode == ModeWeak {
		return EmptyWeakMessage
	}
	return EmptyMessage
}
