package mastery

// WeakChange is the effect of one answer on weak-set membership.
type WeakChange string

const (
	WeakKeep   WeakChange = "keep"
	WeakAdd    WeakChange = "add"
	WeakRemove WeakChange = "remove"
)

// WeakPolicy decides weak-set membership from a question's counters. Rates
// between the two thresholds, and questions below the attempt minimums, leave
// membership unchanged so a question does not flap in and out.
type WeakPolicy struct {
	EnterMinAttempts int
	EnterBelowRate   float64
	LeaveMinAttempts int
	LeaveAtRate      float64
}

// DefaultWeakPolicy flags a question at two or more attempts below 50% and
// clears it at three or more attempts at 70% or better.
func DefaultWeakPolicy() WeakPolicy {
	return WeakPolicy{
		EnterMinAttempts: 2,
		EnterBelowRate:   0.5,
		LeaveMinAttempts: 3,
		LeaveAtRate:      0.7,
	}
}

// Evaluate returns the membership change for stat, which must already
// include the latest answer.
func (p WeakPolicy) Evaluate(stat QuestionStat) WeakChange {
	if stat.Attempts == 0 {
		return WeakKeep
	}
	rate := stat.CorrectRate()
	switch {
	case stat.Attempts >= p.EnterMinAttempts && rate < p.EnterBelowRate:
		return WeakAdd
	case rate >= p.LeaveAtRate && stat.Attempts >= p.LeaveMinAttempts:
		return WeakRemove
	default:
		return WeakKeep
	}
}
