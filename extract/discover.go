// Package extract turns a rendered results page into product and ad
// records. Discovery and field extraction are pure functions over HTML
// snapshots so the whole package tests without a browser; only the
// scroll stabilizer and the engine touch the live page.
package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/sumukeio/niche-miner/config"
)

// Discovery is the outcome of item discovery on one page: the outer
// HTML of each matched item container and the selector that found them.
// An empty Items with no error is a legitimate "no items" verdict.
type Discovery struct {
	Items    []string
	Selector string
}

// Discover runs the container-selector cascade over a page snapshot:
// first selector with at least one match wins. When the whole cascade
// misses, a broad class-substring query is tried, and after that the
// verdict is simply "no items" — discovery never fails the run, it
// returns an empty set and leaves diagnostics to the caller.
func Discover(pageHTML string, rules config.ExtractRules) (*Discovery, error) {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	for _, selector := range rules.ContainerSelectors {
		items, err := queryOuterHTML(doc, selector)
		if err != nil {
			slog.Debug("container selector rejected", "selector", selector, "error", err)
			continue
		}
		if len(items) > 0 {
			return &Discovery{Items: items, Selector: selector}, nil
		}
	}

	if rules.BroadClassToken != "" {
		broad := fmt.Sprintf(`[class*=%q]`, rules.BroadClassToken)
		items, err := queryOuterHTML(doc, broad)
		if err == nil && len(items) > 0 {
			slog.Warn("container cascade missed, broad class query matched",
				"token", rules.BroadClassToken, "count", len(items))
			return &Discovery{Items: items, Selector: broad}, nil
		}
	}

	return &Discovery{}, nil
}

// queryOuterHTML matches selector against doc and renders each match
// back to its outer HTML.
func queryOuterHTML(doc *html.Node, selector string) ([]string, error) {
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, err
	}

	matches := cascadia.QueryAll(doc, sel)
	out := make([]string, 0, len(matches))
	for _, node := range matches {
		var buf bytes.Buffer
		if err := html.Render(&buf, node); err != nil {
			return nil, err
		}
		out = append(out, buf.String())
	}
	return out, nil
}

// Diagnostics is the post-mortem bundle captured when a page yields
// nothing: enough to tell a dead page from dead selectors.
type Diagnostics struct {
	Title      string
	URL        string
	HTMLHead   string
	Screenshot string
}

const htmlHeadLimit = 2000

// NewDiagnostics truncates the page snapshot for logging.
func NewDiagnostics(title, url, pageHTML, screenshot string) Diagnostics {
	head := pageHTML
	if len(head) > htmlHeadLimit {
		head = head[:htmlHeadLimit]
	}
	return Diagnostics{Title: title, URL: url, HTMLHead: head, Screenshot: screenshot}
}

// Log emits the diagnostics at warn level.
func (d Diagnostics) Log() {
	slog.Warn("no items discovered on page",
		"title", d.Title,
		"url", d.URL,
		"screenshot", d.Screenshot,
		"htmlHead", d.HTMLHead,
	)
}
