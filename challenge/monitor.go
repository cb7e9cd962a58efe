// Package challenge watches a page for interactive anti-bot challenges
// (slider captchas, verification dialogs) and waits for a human to
// clear them. The monitor never attempts to solve a challenge itself;
// automated solving is both unreliable and a fingerprint of its own.
package challenge

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/models"
)

// State is the monitor's observation of the page.
type State int

const (
	// StateNormal means no challenge markers are present.
	StateNormal State = iota

	// StateDetected means a challenge marker is visible and the page is
	// unusable until it clears.
	StateDetected

	// StateResolved means a previously detected challenge has cleared.
	StateResolved

	// StateTimedOut means the challenge outlived the resolution window.
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateDetected:
		return "challenge_detected"
	case StateResolved:
		return "resolved"
	default:
		return "timed_out"
	}
}

// Page is the slice of the browser driver the monitor needs.
type Page interface {
	HasVisible(sel string) bool
	CurrentURL() string
}

// Monitor detects and waits out interactive challenges, driven by the
// site profile's challenge rules.
type Monitor struct {
	page  Page
	rules config.ChallengeRules

	pollInterval time.Duration
	deadline     time.Duration
}

// NewMonitor returns a monitor polling every 2s with the configured
// resolution deadline.
func NewMonitor(page Page, rules config.ChallengeRules, deadline time.Duration) *Monitor {
	return &Monitor{
		page:         page,
		rules:        rules,
		pollInterval: 2 * time.Second,
		deadline:     deadline,
	}
}

// Detect reports whether any challenge marker is currently present,
// and which one fired.
func (m *Monitor) Detect() (bool, string) {
	for _, sel := range m.rules.Selectors {
		if m.page.HasVisible(sel) {
			return true, "selector:" + sel
		}
	}
	if len(m.rules.URLMarkers) > 0 {
		u := strings.ToLower(m.page.CurrentURL())
		for _, marker := range m.rules.URLMarkers {
			if marker != "" && strings.Contains(u, strings.ToLower(marker)) {
				return true, "url:" + marker
			}
		}
	}
	return false, ""
}

// Guard checks the page once and, if a challenge is up, blocks until it
// resolves or the deadline passes. Returns the terminal state reached
// and, for StateTimedOut, a classified error.
func (m *Monitor) Guard(ctx context.Context) (State, error) {
	detected, signal := m.Detect()
	if !detected {
		return StateNormal, nil
	}

	slog.Warn("interactive challenge detected, waiting for human resolution",
		"signal", signal, "deadline", m.deadline)

	waitCtx, cancel := context.WithTimeout(ctx, m.deadline)
	defer cancel()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return StateTimedOut, models.Categorize(ctx.Err(), "challenge wait canceled")
			}
			slog.Error("challenge not resolved in time", "signal", signal)
			return StateTimedOut, models.NewMineError(
				models.ErrCodeChallengeTimeout,
				models.ClassPolicy,
				"challenge unresolved after "+m.deadline.String(),
				nil,
			)
		case <-ticker.C:
			if present, _ := m.Detect(); !present {
				slog.Info("challenge resolved", "signal", signal)
				return StateResolved, nil
			}
		}
	}
}
