package session

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sumukeio/niche-miner/config"
)

// promptScanLimit bounds how much of the page body is scanned for
// login-prompt phrases. Prompts render above the fold; scanning the
// whole document invites false positives from footers and help text.
const promptScanLimit = 5000

// Checker evaluates login/expiry state from page snapshots. It holds
// only profile rules, so the same checker serves every navigation.
type Checker struct {
	rules config.LoginRules
}

// NewChecker builds a Checker from the site profile's login rules.
func NewChecker(rules config.LoginRules) *Checker {
	return &Checker{rules: rules}
}

// Verdict is the outcome of an expiry or login check, with the signal
// that decided it (for logging).
type Verdict struct {
	Expired bool
	Signal  string
}

// CheckExpired evaluates the three expiry signals in order, short-
// circuiting on the first positive:
//
//  1. the current URL matches a known login-path pattern;
//  2. the page body contains a login-prompt phrase AND a login form is
//     present — the phrase alone is insufficient;
//  3. no cookie name matches a session marker — a weak signal, never
//     standalone proof; the conservative default is "assume valid".
func (c *Checker) CheckExpired(pageURL, html string, cookieNames []string) Verdict {
	for _, pat := range c.rules.URLPatterns {
		if pat != "" && strings.Contains(pageURL, pat) {
			return Verdict{Expired: true, Signal: "login-url:" + pat}
		}
	}

	if phrase := c.promptPhrase(html); phrase != "" {
		if c.hasLoginForm(html) {
			return Verdict{Expired: true, Signal: "prompt+form:" + phrase}
		}
	}

	if len(c.rules.CookieMarkers) > 0 && !c.hasSessionCookie(cookieNames) {
		// Weak signal only. Reported so the caller can log it, but the
		// verdict stays "valid" to avoid re-authentication churn.
		return Verdict{Expired: false, Signal: "no-session-cookie"}
	}

	return Verdict{}
}

// CheckLoggedIn decides whether the page snapshot looks authenticated.
// Order: expiry signals first, then the post-login URL patterns, then
// logged-in page elements, then the session-cookie markers. When every
// signal is inconclusive the permissive default applies: assume logged
// in rather than force a needless interactive login.
func (c *Checker) CheckLoggedIn(pageURL, html string, cookieNames []string) (bool, string) {
	if v := c.CheckExpired(pageURL, html, cookieNames); v.Expired {
		return false, v.Signal
	}

	for _, pat := range c.rules.LoggedInURLPatterns {
		if pat != "" && strings.Contains(pageURL, pat) {
			return true, "landing-url:" + pat
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		for _, sel := range c.rules.LoggedInSelectors {
			found := false
			doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text := strings.TrimSpace(s.Text())
				if text != "" && !containsAny(text, c.rules.PromptPhrases) {
					found = true
					return false
				}
				return true
			})
			if found {
				return true, "element:" + sel
			}
		}
	}

	if c.hasSessionCookie(cookieNames) {
		return true, "session-cookie"
	}

	// Nothing decided either way. Treat as logged in rather than
	// forcing a needless interactive login, but say so.
	slog.Warn("login state undecidable, assuming still logged in", "url", pageURL)
	return true, "undecided-assume-valid"
}

func (c *Checker) promptPhrase(html string) string {
	scan := html
	if len(scan) > promptScanLimit {
		scan = scan[:promptScanLimit]
	}
	for _, phrase := range c.rules.PromptPhrases {
		if phrase != "" && strings.Contains(scan, phrase) {
			return phrase
		}
	}
	return ""
}

func (c *Checker) hasLoginForm(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	for _, sel := range c.rules.FormSelectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

func (c *Checker) hasSessionCookie(cookieNames []string) bool {
	for _, name := range cookieNames {
		lower := strings.ToLower(name)
		for _, marker := range c.rules.CookieMarkers {
			if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
