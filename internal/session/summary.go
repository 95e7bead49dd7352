package session

import "math"

// Band classifies a session score.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandNeedsWork Band = "needsWork"
)

// Band thresholds in percent; each is an inclusive lower bound.
const (
	ExcellentThreshold = 80
	GoodThreshold      = 60
)

// BandFor returns the band for a percentage.
func BandFor(percentage int) Band {
	switch {
	case percentage >= ExcellentThreshold:
		return BandExcellent
	case percentage >= GoodThreshold:
		return BandGood
	default:
		return BandNeedsWork
	}
}

// Summary is the score of a session.
type Summary struct {
	Correct    int
	Total      int
	Percentage int
	Band       Band
}

// Percentage returns correct/total as a rounded percentage, or 0 when total
// is 0.
func Percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// BuildSummary scores correct out of total.
func BuildSummary(correct, total int) Summary {
	pct := Percentage(correct, total)
	return Summary{
		Correct:    correct,
		Total:      total,
		Percentage: pct,
		Band:       BandFor(pct),
	}
}
