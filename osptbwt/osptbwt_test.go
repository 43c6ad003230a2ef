package osptbwt

import (
	"math/rand"
	"testing"
)

func countRuns(o *OsptBWT) int {
	n := 0
	for idx := o.Drle.FirstIdxM(); idx != -1; idx = o.Drle.GetNextIdxM(idx) {
		n++
	}
	return n
}

func countRunsOnline(o *OnlineRlbwt) int {
	n := 0
	for idx := o.Drle.FirstIdxM(); idx != -1; idx = o.Drle.GetNextIdxM(idx) {
		n++
	}
	return n
}

// TestSptExtendProducesFewerOrEqualRunsThanExtend exercises spec.md §8
// scenario 6: feeding the same repeated text (here "AC" twice, each
// terminated) through the run-aware sptExtend must never produce more runs
// than the plain extend rule on the identical input.
func TestSptExtendProducesFewerOrEqualRunsThanExtend(t *testing.T) {
	text := []uint64{'A', 'C', DefaultEndMarker, 'A', 'C', DefaultEndMarker}

	plain := NewOnlineRlbwt()
	for _, c := range text {
		plain.Extend(c)
	}

	opt := NewOsptBWT()
	for _, c := range text {
		opt.SptExtend(c)
	}

	plainRuns, optRuns := countRunsOnline(plain), countRuns(opt)
	if optRuns > plainRuns {
		t.Fatalf("sptExtend produced more runs (%d) than plain extend (%d)", optRuns, plainRuns)
	}
}

// reversed returns text back to front: each extend call prepends, so the
// text Invert rebuilds is the fed characters in reverse order.
func reversed(text []uint64) []uint64 {
	out := make([]uint64, len(text))
	for i, c := range text {
		out[len(text)-1-i] = c
	}
	return out
}

func buildAndInvert(t *testing.T, text []uint64) []uint64 {
	t.Helper()
	o := NewOsptBWT()
	for _, c := range text {
		o.SptExtend(c)
	}
	return o.Invert()
}

func TestInvertRoundTripSimpleText(t *testing.T) {
	text := []uint64{'B', 'A', 'N', 'A', 'N', 'A', DefaultEndMarker}
	got := buildAndInvert(t, text)
	if len(got) != len(text) {
		t.Fatalf("inverted length = %d, want %d", len(got), len(text))
	}
	for i := range text {
		if got[i] != text[len(text)-1-i] {
			t.Fatalf("mismatch at %d: got %v want %v", i, got, text)
		}
	}
}

func TestInvertRoundTripMississippi(t *testing.T) {
	word := "MISSISSIPPI"
	text := make([]uint64, 0, len(word)+1)
	for _, b := range []byte(word) {
		text = append(text, uint64(b))
	}
	text = append(text, DefaultEndMarker)

	o := NewOsptBWT()
	for _, c := range text {
		o.SptExtend(c)
	}
	if !o.CheckDecompress(reversed(text)) {
		t.Fatalf("CheckDecompress failed for %q", word)
	}
}

func TestInvertRoundTripRandomMultiString(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var text []uint64
	for s := 0; s < 5; s++ {
		n := 5 + rng.Intn(20)
		for i := 0; i < n; i++ {
			text = append(text, uint64(2+rng.Intn(4))) // alphabet {2,3,4,5}, 1 reserved as em
		}
		text = append(text, DefaultEndMarker)
	}

	o := NewOsptBWT()
	for _, c := range text {
		o.SptExtend(c)
	}
	if !o.CheckDecompress(reversed(text)) {
		t.Fatalf("CheckDecompress failed for random multi-string input")
	}
}

func TestOnlineRlbwtLenTracksExtensions(t *testing.T) {
	o := NewOnlineRlbwt()
	text := []uint64{'G', 'A', 'T', 'T', 'A', 'C', 'A', DefaultEndMarker}
	for i, c := range text {
		o.Extend(c)
		if got, want := o.Len(), uint64(i+1); got != want {
			t.Fatalf("after %d extends, Len() = %d, want %d", i+1, got, want)
		}
	}
}
