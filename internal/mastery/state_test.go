package mastery

import "testing"

func TestWeakPolicy_Evaluate(t *testing.T) {
	p := DefaultWeakPolicy()

	tests := []struct {
		attempts, correct int
		want              WeakChange
	}{
		{0, 0, WeakKeep},
		{1, 0, WeakKeep}, // a single miss never enters
		{2, 0, WeakAdd},
		{3, 1, WeakAdd},
		{2, 1, WeakKeep}, // 50%: band
		{3, 2, WeakKeep}, // 66.7%: band
		{2, 2, WeakKeep}, // 100% but below the leave minimum
		{3, 3, WeakRemove},
		{10, 7, WeakRemove},
	}
	for _, tt := range tests {
		got := p.Evaluate(QuestionStat{Attempts: tt.attempts, CorrectCount: tt.correct})
		if got != tt.want {
			t.Errorf("Evaluate(%d/%d) = %s, want %s", tt.correct, tt.attempts, got, tt.want)
		}
	}
}

func TestProgress_RemoveWeakIsIdempotent(t *testing.T) {
	p := &Progress{Weak: []string{"a", "b"}}
	if !p.removeWeak("a") {
		t.Error("removeWeak(a) = false, want true")
	}
	if p.removeWeak("a") {
		t.Error("second removeWeak(a) = true, want no-op")
	}
	if len(p.Weak) != 1 || p.Weak[0] != "b" {
		t.Errorf("weak = %v, want [b]", p.Weak)
	}
}

func TestAnswerFromIndex(t *testing.T) {
	tests := []struct {
		in          int
		wantTimeout bool
		wantErr     bool
	}{
		{-1, true, false},
		{0, false, false},
		{3, false, false},
		{4, false, true},
		{-2, false, true},
	}
	for _, tt := range tests {
		a, err := AnswerFromIndex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("AnswerFromIndex(%d) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && a.IsTimeout() != tt.wantTimeout {
			t.Errorf("AnswerFromIndex(%d).IsTimeout() = %v", tt.in, a.IsTimeout())
		}
		if err == nil && a.Index() != tt.in {
			t.Errorf("AnswerFromIndex(%d).Index() = %d", tt.in, a.Index())
		}
	}
}
