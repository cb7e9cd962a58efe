// Package api exposes the control surface over HTTP: login status,
// keyword validation, and seed-word mining. One browser session exists
// at a time; concurrent run requests are rejected, not queued.
package api

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/sumukeio/niche-miner/browser"
	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/miner"
	"github.com/sumukeio/niche-miner/models"
	"github.com/sumukeio/niche-miner/session"
	"github.com/sumukeio/niche-miner/store"
)

// Runner launches one browser session per run and enforces the
// single-session constraint with a busy flag.
type Runner struct {
	cfg     *config.Config
	market  *config.SiteProfile
	search  *config.SiteProfile
	proxies *session.ProxyRotation

	busy atomic.Bool
}

// NewRunner builds a runner. proxies may be nil.
func NewRunner(cfg *config.Config, market, search *config.SiteProfile, proxies *session.ProxyRotation) *Runner {
	return &Runner{cfg: cfg, market: market, search: search, proxies: proxies}
}

// Busy reports whether a run currently holds the session slot.
func (r *Runner) Busy() bool { return r.busy.Load() }

// WithSession acquires the slot, launches a browser session, runs fn,
// and tears everything down. ErrBusy when the slot is taken.
func (r *Runner) WithSession(ctx context.Context, fn func(ctx context.Context, m *miner.Miner) error) error {
	if !r.busy.CompareAndSwap(false, true) {
		return models.ErrBusy
	}
	defer r.busy.Store(false)

	m, cleanup, err := r.newSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx, m)
}

// newSession launches the browser with a consistent identity and wires
// the miner to its sink. The returned cleanup closes both.
func (r *Runner) newSession(ctx context.Context) (*miner.Miner, func(), error) {
	identity := r.identity()

	proxy := r.cfg.Browser.Proxy
	if proxy == "" && r.proxies != nil {
		proxy = r.proxies.Next()
	}

	driver, err := browser.New(r.cfg.Browser, identity, proxy)
	if err != nil {
		return nil, nil, err
	}

	var sink store.KeywordSink
	closeSink := func() {}
	if dsn := r.cfg.Store.DSN; dsn != "" {
		sq, err := store.OpenSQLite(ctx, dsn)
		if err != nil {
			driver.Close()
			return nil, nil, err
		}
		sink = sq
		closeSink = func() {
			if err := sq.Close(); err != nil {
				slog.Warn("sink close failed", "error", err)
			}
		}
	}

	m := miner.New(driver, r.cfg, r.market, r.search, sink)
	cleanup := func() {
		closeSink()
		driver.Close()
	}
	return m, cleanup, nil
}

// identity picks the fingerprint for this session. When a persisted
// session exists its user agent wins: cookies minted under one UA and
// replayed under another are an easy inconsistency to flag.
func (r *Runner) identity() session.Identity {
	var id session.Identity
	if r.cfg.Browser.Mobile {
		id = session.NewMobileIdentity("zh-CN", "Asia/Shanghai")
	} else {
		id = session.NewDesktopIdentity("zh-CN", "Asia/Shanghai")
	}
	if state, err := session.NewStore(r.cfg.Session.AuthFile).Load(); err == nil && state.UserAgent != "" {
		id = id.WithUserAgent(state.UserAgent)
	}
	return id
}
