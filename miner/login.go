package miner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sumukeio/niche-miner/models"
	"github.com/sumukeio/niche-miner/session"
)

// EmitLoginStatus writes the machine-readable login line to stderr,
// away from the structured logs, so callers can grep one token instead
// of parsing log output.
func EmitLoginStatus(loggedIn bool) {
	fmt.Fprintf(os.Stderr, "LOGIN_STATUS:%t\n", loggedIn)
}

// RestoreSession injects persisted cookies into the browser. A missing
// auth file is not an error, just a cold start.
func (m *Miner) RestoreSession() (bool, error) {
	state, err := m.sessions.Load()
	if err != nil {
		if err == session.ErrNotFound {
			slog.Info("no persisted session, starting cold", "path", m.sessions.Path())
			return false, nil
		}
		return false, err
	}
	if err := m.driver.SetCookies(state.CookieParams()); err != nil {
		return false, err
	}
	slog.Info("session restored",
		"cookies", len(state.Cookies), "savedAt", state.SavedAt)
	return true, nil
}

// CheckLogin visits the marketplace home page and decides whether the
// current session is authenticated, from the landing URL, the page
// content, and the cookie jar.
func (m *Miner) CheckLogin(ctx context.Context) (bool, string, error) {
	if err := m.driver.Goto(ctx, m.market.Search.HomeURL); err != nil {
		return false, "", err
	}
	m.pace(ctx)

	pageURL, html, cookieNames := m.snapshot()
	ok, signal := m.checker.CheckLoggedIn(pageURL, html, cookieNames)
	slog.Info("login check", "loggedIn", ok, "signal", signal)
	return ok, signal, nil
}

// SetupLogin opens the login page in the (visible) browser and polls
// until a human completes the login or the wait budget runs out, then
// persists the fresh session.
func (m *Miner) SetupLogin(ctx context.Context) error {
	loginURL := m.market.Login.LoginURL
	if loginURL == "" {
		loginURL = m.market.Search.HomeURL
	}
	if err := m.driver.Goto(ctx, loginURL); err != nil {
		return err
	}
	slog.Info("waiting for interactive login",
		"url", loginURL, "budget", m.cfg.Session.LoginWait)

	deadline := time.Now().Add(m.cfg.Session.LoginWait)
	ticker := time.NewTicker(m.cfg.Session.LoginPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return models.Categorize(ctx.Err(), "login wait canceled")
		case <-ticker.C:
			if time.Now().After(deadline) {
				return models.NewMineError(
					models.ErrCodeAuthExpired,
					models.ClassAuthentication,
					"interactive login not completed in time",
					nil,
				)
			}
			pageURL, html, cookieNames := m.snapshot()
			if ok, signal := m.checker.CheckLoggedIn(pageURL, html, cookieNames); ok {
				slog.Info("interactive login detected", "signal", signal)
				return m.SaveSession()
			}
		}
	}
}

// SaveSession snapshots the browser's cookie jar to the auth file.
func (m *Miner) SaveSession() error {
	cookies, err := m.driver.Cookies()
	if err != nil {
		return err
	}
	state := &session.State{
		Cookies:   session.FromBrowserCookies(cookies),
		UserAgent: m.driver.Identity().UserAgent,
	}
	if err := m.sessions.Save(state); err != nil {
		return err
	}
	slog.Info("session saved", "cookies", len(state.Cookies), "path", m.sessions.Path())
	return nil
}

// requireLogin is the mining gate: restore, verify, and fail with a
// remediation hint when the session is dead. Mining against a logged
// out session returns junk, so this is checked before any seed word.
func (m *Miner) requireLogin(ctx context.Context) error {
	if _, err := m.RestoreSession(); err != nil {
		return err
	}
	ok, _, err := m.CheckLogin(ctx)
	if err != nil {
		return err
	}
	EmitLoginStatus(ok)
	if !ok {
		return models.NewMineError(
			models.ErrCodeAuthExpired,
			models.ClassAuthentication,
			"session expired; re-run interactive login (login setup) and retry",
			nil,
		)
	}
	return nil
}
