package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/sumukeio/niche-miner/models"
)

// Goto navigates to rawURL and waits for the DOM to settle. A wait
// failure after a successful navigation is not fatal: slow pages are
// routinely usable before they go quiet.
func (d *Driver) Goto(ctx context.Context, rawURL string) error {
	navCtx, cancel := context.WithTimeout(ctx, d.cfg.NavTimeout)
	defer cancel()

	p := d.page.Context(navCtx)
	if err := p.Navigate(rawURL); err != nil {
		return models.Categorize(err, "navigation to "+rawURL+" failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not stabilise, proceeding with current state",
			"url", rawURL, "error", err)
	}
	return nil
}

// SetReferer sets the Referer header for subsequent navigations, making
// a direct-URL search arrival look like a click-through.
func (d *Driver) SetReferer(referer string) {
	if referer == "" {
		return
	}
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{"Referer": gson.New(referer)},
	}.Call(d.page)
}

// CurrentURL reports the page's current location, best-effort.
func (d *Driver) CurrentURL() string {
	return d.evalStringOrEmpty(`() => window.location.href`)
}

// Title reports the document title, best-effort.
func (d *Driver) Title() string {
	return d.evalStringOrEmpty(`() => document.title`)
}

// HTML returns the full rendered document.
func (d *Driver) HTML() (string, error) {
	html, err := d.page.HTML()
	if err != nil {
		return "", models.Categorize(err, "failed to read page HTML")
	}
	return html, nil
}

// BodyText returns the rendered text of the document body, used for
// policy-block and no-results detection.
func (d *Driver) BodyText() string {
	return d.evalStringOrEmpty(`() => document.body ? document.body.innerText : ""`)
}

// WaitAnyAttached waits, selector by selector, until one of them has at
// least one attached element, and returns the selector that matched.
// Elements may be outside the viewport; attachment is enough.
func (d *Driver) WaitAnyAttached(ctx context.Context, selectors []string, perSelector time.Duration) (string, error) {
	var lastErr error
	for _, sel := range selectors {
		waitCtx, cancel := context.WithTimeout(ctx, perSelector)
		p := d.page.Context(waitCtx)
		err := p.WaitElementsMoreThan(sel, 0)
		cancel()
		if err == nil {
			return sel, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", models.Categorize(ctx.Err(), "element wait canceled")
		}
	}
	return "", models.NewMineError(
		models.ErrCodeStructure,
		models.ClassStructural,
		fmt.Sprintf("none of %d selectors matched", len(selectors)),
		lastErr,
	)
}

// HasVisible reports whether at least one element matching sel exists
// and is visible. Lookup errors count as "not present".
func (d *Driver) HasVisible(sel string) bool {
	has, el, err := d.page.Has(sel)
	if err != nil || !has || el == nil {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

// Has reports whether at least one element matching sel is attached.
func (d *Driver) Has(sel string) bool {
	has, _, err := d.page.Has(sel)
	return err == nil && has
}

// Elements returns all elements matching sel.
func (d *Driver) Elements(sel string) (rod.Elements, error) {
	els, err := d.page.Elements(sel)
	if err != nil {
		return nil, models.Categorize(err, "element query failed: "+sel)
	}
	return els, nil
}

// Count returns how many elements match sel, zero on any failure. Used
// by the scroll-stability poll, which must never abort the scroll.
func (d *Driver) Count(sel string) int {
	els, err := d.page.Elements(sel)
	if err != nil {
		return 0
	}
	return len(els)
}

// Click hovers over the first element matching sel and clicks it, the
// way a pointing device would.
func (d *Driver) Click(sel string) error {
	el, err := d.page.Element(sel)
	if err != nil {
		return models.Categorize(err, "element not found: "+sel)
	}
	if err := el.Hover(); err != nil {
		slog.Debug("hover failed, clicking anyway", "selector", sel, "error", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return models.Categorize(err, "click failed: "+sel)
	}
	return nil
}

// Type focuses the element matching sel and inserts text rune by rune
// with a randomized 50-150ms inter-key delay, mimicking human typing.
func (d *Driver) Type(ctx context.Context, sel, text string) error {
	el, err := d.page.Element(sel)
	if err != nil {
		return models.Categorize(err, "input not found: "+sel)
	}
	if err := el.Focus(); err != nil {
		return models.Categorize(err, "focus failed: "+sel)
	}
	for _, r := range text {
		if ctx.Err() != nil {
			return models.Categorize(ctx.Err(), "typing canceled")
		}
		if err := (proto.InputInsertText{Text: string(r)}).Call(d.page); err != nil {
			return models.Categorize(err, "key insert failed")
		}
		d.sleep(ctx, time.Duration(50+d.rng.Intn(100))*time.Millisecond)
	}
	return nil
}

// PressEnter sends the Enter key to the page.
func (d *Driver) PressEnter() error {
	if err := d.page.Keyboard.Press(input.Enter); err != nil {
		return models.Categorize(err, "enter press failed")
	}
	return nil
}

// ScrollToFraction scrolls to the given fraction of total page height
// (0 is the top, 1 the bottom).
func (d *Driver) ScrollToFraction(fraction float64) {
	js := fmt.Sprintf(`() => window.scrollTo(0, document.body.scrollHeight * %g)`, fraction)
	if _, err := d.page.Eval(js); err != nil {
		slog.Debug("scroll failed", "fraction", fraction, "error", err)
	}
}

// Screenshot captures the viewport to dir/name.png and returns the
// written path. The filename is sanitised for the filesystem.
func (d *Driver) Screenshot(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot dir: %w", err)
	}
	data, err := d.page.Screenshot(false, nil)
	if err != nil {
		return "", models.Categorize(err, "screenshot capture failed")
	}
	path := filepath.Join(dir, sanitizeFilename(name)+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("screenshot write: %w", err)
	}
	return path, nil
}

// PageOrigin returns the scheme://host of the current page, for
// resolving relative links found during extraction.
func (d *Driver) PageOrigin() string {
	u, err := url.Parse(d.CurrentURL())
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func (d *Driver) evalStringOrEmpty(js string) string {
	res, err := d.page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == ' ', r >= 0x4e00 && r <= 0x9fa5:
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
