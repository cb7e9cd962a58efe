// Package miner drives the end-to-end runs: keyword ad-validation
// against a search engine and seed-word product mining against a
// marketplace. One miner owns one browser session; runs are strictly
// sequential within it.
package miner

import (
	"context"
	"log/slog"

	"github.com/sumukeio/niche-miner/browser"
	"github.com/sumukeio/niche-miner/challenge"
	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/session"
	"github.com/sumukeio/niche-miner/store"
)

// Miner coordinates a single browser session across the login gate,
// searches, extraction, filtering, and persistence.
type Miner struct {
	driver *browser.Driver
	cfg    *config.Config

	// market drives product mining, search drives ad validation.
	market *config.SiteProfile
	search *config.SiteProfile

	sessions *session.Store
	checker  *session.Checker
	sink     store.KeywordSink
}

// New wires a miner around an already-launched driver. sink may be nil
// for a dry run; the discard sink counts instead.
func New(d *browser.Driver, cfg *config.Config, market, search *config.SiteProfile, sink store.KeywordSink) *Miner {
	if sink == nil {
		sink = store.Discard{}
	}
	return &Miner{
		driver:   d,
		cfg:      cfg,
		market:   market,
		search:   search,
		sessions: session.NewStore(cfg.Session.AuthFile),
		checker:  session.NewChecker(market.Login),
		sink:     sink,
	}
}

// monitor builds a challenge monitor for the given profile's rules.
func (m *Miner) monitor(p *config.SiteProfile) *challenge.Monitor {
	return challenge.NewMonitor(m.driver, p.Challenge, m.cfg.Miner.ChallengeDeadline)
}

// pace applies the human-speed inter-action delay.
func (m *Miner) pace(ctx context.Context) {
	if err := m.driver.Pace(ctx, m.cfg.Miner.PaceMin, m.cfg.Miner.PaceMax); err != nil {
		slog.Debug("pacing interrupted", "error", err)
	}
}

// snapshot captures the current URL, page HTML, and cookie names for
// the pure session checks. Failures degrade to empty values; the
// checks treat absence as absence.
func (m *Miner) snapshot() (pageURL, html string, cookieNames []string) {
	pageURL = m.driver.CurrentURL()
	html, _ = m.driver.HTML()
	cookieNames, _ = m.driver.CookieNames()
	return pageURL, html, cookieNames
}
