package challenge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/models"
)

// fakePage scripts a sequence of page observations: each HasVisible
// probe for the watched selector consumes one entry from visible.
type fakePage struct {
	visible []bool
	url     string
	calls   int
}

func (f *fakePage) HasVisible(string) bool {
	if f.calls >= len(f.visible) {
		if len(f.visible) == 0 {
			return false
		}
		return f.visible[len(f.visible)-1]
	}
	v := f.visible[f.calls]
	f.calls++
	return v
}

func (f *fakePage) CurrentURL() string { return f.url }

func testRules() config.ChallengeRules {
	return config.ChallengeRules{
		Selectors:  []string{".nc_iconfont"},
		URLMarkers: []string{"punish"},
	}
}

func TestGuard_NoChallenge(t *testing.T) {
	p := &fakePage{visible: []bool{false}, url: "https://s.example.com/search?q=x"}
	m := NewMonitor(p, testRules(), time.Second)

	state, err := m.Guard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StateNormal {
		t.Errorf("state = %v, want normal", state)
	}
}

func TestGuard_ResolvedByHuman(t *testing.T) {
	// Detected on the first probe, still up on the second, gone on the
	// third. The monitor must report resolution, not timeout.
	p := &fakePage{visible: []bool{true, true, false}}
	m := NewMonitor(p, testRules(), time.Second)
	m.pollInterval = 5 * time.Millisecond

	state, err := m.Guard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StateResolved {
		t.Errorf("state = %v, want resolved", state)
	}
}

func TestGuard_TimesOut(t *testing.T) {
	p := &fakePage{visible: []bool{true}}
	m := NewMonitor(p, testRules(), 30*time.Millisecond)
	m.pollInterval = 5 * time.Millisecond

	state, err := m.Guard(context.Background())
	if state != StateTimedOut {
		t.Fatalf("state = %v, want timed_out", state)
	}
	var me *models.MineError
	if !errors.As(err, &me) {
		t.Fatalf("expected MineError, got %v", err)
	}
	if me.Code != models.ErrCodeChallengeTimeout {
		t.Errorf("code = %s, want %s", me.Code, models.ErrCodeChallengeTimeout)
	}
	if me.Class != models.ClassPolicy {
		t.Errorf("class = %v, want policy", me.Class)
	}
}

func TestDetect_URLMarker(t *testing.T) {
	p := &fakePage{visible: []bool{false}, url: "https://sec.example.com/punish?x=1"}
	m := NewMonitor(p, testRules(), time.Second)

	detected, signal := m.Detect()
	if !detected {
		t.Fatal("expected detection from URL marker")
	}
	if signal != "url:punish" {
		t.Errorf("signal = %q, want url:punish", signal)
	}
}

func TestDetect_DefaultProfileSelectors(t *testing.T) {
	rules := config.DefaultMarketProfile().Challenge
	want := []string{".nc_iconfont", ".baxia-dialog", "#nocaptcha", ".nc-wrapper"}
	have := map[string]bool{}
	for _, s := range rules.Selectors {
		have[s] = true
	}
	for _, w := range want {
		if !have[w] {
			t.Errorf("default challenge selectors missing %q", w)
		}
	}
}
