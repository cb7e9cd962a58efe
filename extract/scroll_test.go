package extract

import (
	"context"
	"testing"
)

// fakeScroller returns a scripted item count per round and records
// every scroll position it was sent to.
type fakeScroller struct {
	counts    []int
	round     int
	positions []float64
}

func (f *fakeScroller) ScrollToFraction(fraction float64) {
	f.positions = append(f.positions, fraction)
}

func (f *fakeScroller) Count(string) int {
	i := f.round
	if i >= len(f.counts) {
		i = len(f.counts) - 1
	}
	f.round++
	return f.counts[i]
}

func TestStabilizeScroll_StopsWhenCountStable(t *testing.T) {
	s := &fakeScroller{counts: []int{10, 18, 18}}
	got := StabilizeScroll(context.Background(), s, ".item")
	if got != 18 {
		t.Errorf("count = %d, want 18", got)
	}
	// 3 rounds of 5 staged stops plus the return to top each round.
	if len(s.positions) != 3*6 {
		t.Errorf("scroll positions = %d, want 18", len(s.positions))
	}
	if s.positions[0] != 0.2 || s.positions[4] != 1.0 || s.positions[5] != 0 {
		t.Errorf("staged stops wrong: %v", s.positions[:6])
	}
}

func TestStabilizeScroll_StopsAtCap(t *testing.T) {
	s := &fakeScroller{counts: []int{44}}
	got := StabilizeScroll(context.Background(), s, ".item")
	if got != 44 {
		t.Errorf("count = %d, want 44", got)
	}
	if s.round != 1 {
		t.Errorf("cap reached on round 1, should not keep scrolling (%d rounds)", s.round)
	}
}

func TestStabilizeScroll_RoundBudget(t *testing.T) {
	// Count grows every round and never stabilizes; the round budget
	// has to cut it off.
	s := &fakeScroller{counts: []int{1, 2, 3, 4, 5, 6, 7, 8}}
	got := StabilizeScroll(context.Background(), s, ".item")
	if got != 5 {
		t.Errorf("count = %d, want the round-5 value", got)
	}
	if s.round != 5 {
		t.Errorf("rounds = %d, want exactly 5", s.round)
	}
}
