package session

import (
	"math/rand/v2"

	"github.com/abhisek/fequiz/internal/catalog"
)

// Shuffle is a permutation of the choice slots: Shuffle[k] is the original
// index of the choice shown at display position k.
type Shuffle [catalog.NumChoices]int

// Identity is the permutation that leaves choices in place.
func Identity() Shuffle {
	var s Shuffle
	for i := range s {
		s[i] = i
	}
	return s
}

// NewShuffle draws a random permutation from rng.
func NewShuffle(rng *rand.Rand) Shuffle {
	var s Shuffle
	copy(s[:], rng.Perm(catalog.NumChoices))
	return s
}

// Original maps a display position to the original choice index. Positions
// outside the range map to -1.
func (s Shuffle) Original(pos int) int {
	if pos < 0 || pos >= len(s) {
		return -1
	}
	return s[pos]
}

// Position maps an original choice index to its display position, or -1.
func (s Shuffle) Position(original int) int {
	for k, o := range s {
		if o == original {
			return k
		}
	}
	return -1
}

// Apply reorders choices into display order.
func (s Shuffle) Apply(choices [catalog.NumChoices]string) [catalog.NumChoices]string {
	var out [catalog.NumChoices]string
	for k, o := range s {
		out[k] = choices[o]
	}
	return out
}
