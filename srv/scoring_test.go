package srv

import "testing"

func TestScoreWord(t *testing.T) {
	cases := []struct {
		word       string
		multiplier float64
		want       int
	}{
		// C=20 A=10 T=10 -> sum 40, len 3 -> 40*(1+0.6)=64
		{"CAT", 1.0, 64},
		{"CAT", 1.2, 77},
		// J=30 E=10 S=10 T=10 I=10 N=10 G=10 -> sum 90, len 7 -> 90*(1+1.4)=216, *1.5=324
		{"JESTING", 1.5, 324},
	}
	for _, c := range cases {
		if got := scoreWord(c.word, c.multiplier); got != c.want {
			t.Errorf("scoreWord(%q, %v) = %d, want %d", c.word, c.multiplier, got, c.want)
		}
	}
}

func TestScoreWordCaseInsensitive(t *testing.T) {
	if scoreWord("cat", 1.0) != scoreWord("CAT", 1.0) {
		t.Error("scoreWord should be case-insensitive")
	}
}

func TestScoreWordIgnoresNonAlpha(t *testing.T) {
	if got, want := scoreWord("C-A-T", 1.0), scoreWord("CAT", 1.0); got != want {
		t.Errorf("non-alpha runes should be ignored: got %d, want %d", got, want)
	}
}

func TestRoundMultiplier(t *testing.T) {
	mults := []float64{1.0, 1.2, 1.5}
	cases := []struct {
		round int
		want  float64
	}{
		{1, 1.0},
		{2, 1.2},
		{3, 1.5},
		{0, 1.0},  // clamped up
		{99, 1.5}, // clamped down
	}
	for _, c := range cases {
		if got := roundMultiplier(mults, c.round); got != c.want {
			t.Errorf("roundMultiplier(round=%d) = %v, want %v", c.round, got, c.want)
		}
	}
}
