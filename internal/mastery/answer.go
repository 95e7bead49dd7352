package mastery

import (
	"errors"
	"fmt"

	"github.com/abhisek/fequiz/internal/catalog"
)

// ErrInvalidAnswer is returned for a selection outside the choice range.
var ErrInvalidAnswer = errors.New("invalid answer")

// TimeoutIndex is the selectedAnswer value recorded for a timed-out question.
const TimeoutIndex = -1

// Answer is either a chosen index (Answered) or the absence of one (TimedOut).
// The zero value is not a valid answer.
type Answer struct {
	index    int
	timedOut bool
	set      bool
}

// Answered returns an answer selecting the choice at original index i.
func Answered(i int) Answer {
	return Answer{index: i, set: true}
}

// TimedOut returns the answer recorded when the countdown expired.
func TimedOut() Answer {
	return Answer{index: TimeoutIndex, timedOut: true, set: true}
}

// AnswerFromIndex maps the wire encoding to an Answer: -1 is a timeout,
// 0..3 a selection.
func AnswerFromIndex(i int) (Answer, error) {
	a := Answered(i)
	if i == TimeoutIndex {
		a = TimedOut()
	}
	if err := a.Validate(); err != nil {
		return Answer{}, err
	}
	return a, nil
}

// IsTimeout reports whether the answer is a timeout.
func (a Answer) IsTimeout() bool { return a.timedOut }

// Index returns the selected original index, or -1 for a timeout.
func (a Answer) Index() int {
	if a.timedOut {
		return TimeoutIndex
	}
	return a.index
}

// Validate rejects the zero Answer and out-of-range selections.
func (a Answer) Validate() error {
	if !a.set {
		return fmt.Errorf("%w: no answer", ErrInvalidAnswer)
	}
	if a.timedOut {
		return nil
	}
	if a.index < 0 || a.index >= catalog.NumChoices {
		return fmt.Errorf("%w: index %d out of range 0..%d", ErrInvalidAnswer, a.index, catalog.NumChoices-1)
	}
	return nil
}

func (a Answer) String() string {
	if a.timedOut {
		return "timed-out"
	}
	return fmt.Sprintf("answered(%d)", a.index)
}
