// Package browser is the thin contract over a controllable Chromium
// page: navigation, waits, element queries, input, screenshots, and
// script evaluation. All Rod usage is confined here so the extraction
// and orchestration layers never touch CDP directly.
package browser

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"golang.org/x/time/rate"

	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/models"
	"github.com/sumukeio/niche-miner/session"
)

// fingerprintJS overrides the automation tells that stealth.JS does not
// cover in the exact shape we need: webdriver, plugins, languages, the
// permissions query, and the chrome runtime object. Injected at
// document-start, before any page script runs.
const fingerprintJS = `() => {
	Object.defineProperty(navigator, 'webdriver', {
		get: () => undefined
	});
	Object.defineProperty(navigator, 'plugins', {
		get: () => [1, 2, 3, 4, 5]
	});
	Object.defineProperty(navigator, 'languages', {
		get: () => ['zh-CN', 'zh', 'en']
	});
	const originalQuery = window.navigator.permissions.query;
	window.navigator.permissions.query = (parameters) => (
		parameters.name === 'notifications' ?
			Promise.resolve({ state: Notification.permission }) :
			originalQuery(parameters)
	);
	window.chrome = { runtime: {} };
}`

// Driver owns one browser process and one page. The design is strictly
// single-page and sequential: overlapping navigations on one page are
// unsafe, and serial human pacing is part of the anti-detection story.
type Driver struct {
	browser  *rod.Browser
	page     *rod.Page
	cfg      config.BrowserConfig
	identity session.Identity

	// limiter is a pacing floor: even with a misconfigured delay range
	// the driver never issues more than one action per interval.
	limiter *rate.Limiter
	rng     *rand.Rand
}

// New launches a Chromium instance with the anti-automation flag set,
// applies the fingerprint identity, and returns a driver bound to a
// fresh page. proxy may be empty.
func New(cfg config.BrowserConfig, id session.Identity, proxy string) (*Driver, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if proxy != "" {
		l = l.Proxy(proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "IsolateOrigins,site-per-process,TranslateUI")
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewMineError(
			models.ErrCodeBrowserCrash,
			models.ClassInternal,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL, "proxy", proxy != "")

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewMineError(
			models.ErrCodeBrowserCrash,
			models.ClassInternal,
			"failed to connect to browser",
			err,
		)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.MustClose()
		return nil, models.NewMineError(
			models.ErrCodeBrowserCrash,
			models.ClassInternal,
			"failed to create page",
			err,
		)
	}

	d := &Driver{
		browser:  b,
		page:     page,
		cfg:      cfg,
		identity: id,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := d.applyIdentity(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// applyIdentity installs the fingerprint before any navigation: UA and
// viewport emulation, locale/timezone overrides, and the document-start
// stealth scripts. Ordering is non-negotiable — init scripts only take
// effect for navigations that happen after they are installed.
func (d *Driver) applyIdentity() error {
	id := d.identity

	if _, err := d.page.EvalOnNewDocument(stealth.JS); err != nil {
		return models.NewMineError(models.ErrCodeBrowserCrash, models.ClassInternal,
			"stealth injection failed", err)
	}
	if _, err := d.page.EvalOnNewDocument(fingerprintJS); err != nil {
		return models.NewMineError(models.ErrCodeBrowserCrash, models.ClassInternal,
			"fingerprint injection failed", err)
	}

	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      id.UserAgent,
		AcceptLanguage: id.Locale,
	}).Call(d.page); err != nil {
		return models.Categorize(err, "user-agent override failed")
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             id.ViewportWidth,
		Height:            id.ViewportHeight,
		DeviceScaleFactor: float64(id.DeviceScaleFactor),
		Mobile:            id.IsMobile,
	}).Call(d.page); err != nil {
		return models.Categorize(err, "viewport override failed")
	}
	if id.IsMobile {
		if err := (proto.EmulationSetTouchEmulationEnabled{
			Enabled: true,
		}).Call(d.page); err != nil {
			slog.Warn("touch emulation failed", "error", err)
		}
	}

	if id.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{
			TimezoneID: id.Timezone,
		}).Call(d.page); err != nil {
			slog.Warn("timezone override failed", "error", err)
		}
	}
	if id.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{
			Locale: id.Locale,
		}).Call(d.page); err != nil {
			slog.Warn("locale override failed", "error", err)
		}
	}

	slog.Debug("identity applied",
		"mobile", id.IsMobile,
		"viewport", fmt.Sprintf("%dx%d", id.ViewportWidth, id.ViewportHeight),
	)
	return nil
}

// Identity returns the fingerprint this driver presents.
func (d *Driver) Identity() session.Identity { return d.identity }

// SetCookies injects persisted session cookies into the browser.
// Re-validation after injection is the caller's job; injection itself
// proves nothing about cookie freshness.
func (d *Driver) SetCookies(cookies []*proto.NetworkCookieParam) error {
	if len(cookies) == 0 {
		return nil
	}
	if err := d.browser.SetCookies(cookies); err != nil {
		return models.Categorize(err, "cookie injection failed")
	}
	return nil
}

// Cookies snapshots all cookies in the browser.
func (d *Driver) Cookies() ([]*proto.NetworkCookie, error) {
	cookies, err := d.browser.GetCookies()
	if err != nil {
		return nil, models.Categorize(err, "cookie read failed")
	}
	return cookies, nil
}

// CookieNames returns just the cookie names, for the weak expiry signal.
func (d *Driver) CookieNames() ([]string, error) {
	cookies, err := d.Cookies()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	return names, nil
}

// Close kills the browser process. Safe to call more than once.
func (d *Driver) Close() {
	slog.Info("browser shutting down")
	d.browser.MustClose()
}
