package session

import (
	"context"
	"errors"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
)

// Phase is the session's position in its lifecycle.
type Phase int

const (
	PhaseLoading    Phase = iota // waiting for the question batch
	PhasePresenting              // a question is shown and can be answered
	PhaseSubmitted               // the verdict for the current question is shown
	PhaseFinished                // every question has been answered
	PhaseEmpty                   // the batch was empty
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePresenting:
		return "presenting"
	case PhaseSubmitted:
		return "submitted"
	case PhaseFinished:
		return "finished"
	case PhaseEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

var (
	// ErrNoSelection is returned by Submit when no choice is selected.
	ErrNoSelection = errors.New("no choice selected")

	// ErrInvalidTransition is returned for an action the current phase does
	// not allow.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidChoice is returned by Select for a position outside 0..3.
	ErrInvalidChoice = errors.New("invalid choice position")

	// ErrSubmitting is returned while an answer is in flight.
	ErrSubmitting = errors.New("answer already being submitted")

	// ErrStaleSubmission is returned by Complete for an outcome that no
	// longer matches the answer in flight.
	ErrStaleSubmission = errors.New("stale submission")
)

// Source provides question batches. Questions never carry answers.
type Source interface {
	Random(ctx context.Context, category catalog.CategoryID, count int) ([]catalog.PublicQuestion, error)
	Weak(ctx context.Context) ([]catalog.PublicQuestion, error)
	Question(ctx context.Context, id string) (catalog.PublicQuestion, error)
}

// Submitter records an answer and returns the verdict. Answers are always in
// original (unshuffled) coordinates.
type Submitter interface {
	Submit(ctx context.Context, questionID string, ans mastery.Answer) (*mastery.Result, error)
}

// Item is one question as presented: Choices are in display order and Map
// translates display positions back to original indexes.
type Item struct {
	Question catalog.PublicQuestion
	Choices  [catalog.NumChoices]string
	Map      Shuffle
}

// Feedback is the verdict for the current question.
type Feedback struct {
	Result *mastery.Result

	// Selected is the display position the user picked, or -1 on timeout.
	Selected int

	// CorrectPosition is the display position of the correct answer.
	CorrectPosition int

	TimedOut bool
}
