package extract

import (
	"context"
	"iter"
	"log/slog"

	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/models"
)

// Page is the slice of the browser driver the engine needs.
type Page interface {
	Scroller
	HTML() (string, error)
	Title() string
	CurrentURL() string
	PageOrigin() string
	Screenshot(dir, name string) (string, error)
}

// Engine extracts product records from a live results page. It scrolls
// the page to stability, snapshots the HTML once, and hands the rest to
// the pure parsing layer.
type Engine struct {
	page          Page
	rules         config.ExtractRules
	maxItems      int
	screenshotDir string
}

// NewEngine wires an engine to a page.
func NewEngine(page Page, rules config.ExtractRules, maxItems int, screenshotDir string) *Engine {
	return &Engine{page: page, rules: rules, maxItems: maxItems, screenshotDir: screenshotDir}
}

// Products yields the records on the current page, one at a time, up to
// the per-page cap. Malformed items are skipped without stopping the
// sequence; a page that yields nothing logs diagnostics and produces an
// empty sequence rather than an error.
func (e *Engine) Products(ctx context.Context) iter.Seq[*models.ProductRecord] {
	return func(yield func(*models.ProductRecord) bool) {
		countSel := ""
		if len(e.rules.ContainerSelectors) > 0 {
			countSel = e.rules.ContainerSelectors[0]
		}
		count := StabilizeScroll(ctx, e.page, countSel)
		slog.Debug("scroll stabilized", "items", count)

		pageHTML, err := e.page.HTML()
		if err != nil {
			slog.Warn("page snapshot failed", "error", err)
			return
		}

		disc, err := Discover(pageHTML, e.rules)
		if err != nil {
			slog.Warn("page parse failed", "error", err)
			return
		}
		if len(disc.Items) == 0 {
			e.captureDiagnostics(pageHTML)
			return
		}
		slog.Info("items discovered",
			"count", len(disc.Items), "selector", disc.Selector)

		origin := e.page.PageOrigin()
		emitted := 0
		dropped := 0
		for _, itemHTML := range disc.Items {
			if ctx.Err() != nil {
				return
			}
			if e.maxItems > 0 && emitted >= e.maxItems {
				break
			}
			rec, ok := ParseItem(itemHTML, e.rules, origin)
			if !ok {
				dropped++
				continue
			}
			emitted++
			if !yield(rec) {
				return
			}
		}
		if dropped > 0 {
			slog.Debug("items without a usable title dropped", "count", dropped)
		}
	}
}

func (e *Engine) captureDiagnostics(pageHTML string) {
	shot := ""
	if e.screenshotDir != "" {
		if path, err := e.page.Screenshot(e.screenshotDir, "no-items"); err == nil {
			shot = path
		}
	}
	NewDiagnostics(e.page.Title(), e.page.CurrentURL(), pageHTML, shot).Log()
}

// AdsOnPage scans the first firstN discovered containers on a page
// snapshot for sponsored results. Used by the ad-validation flow, which
// only cares about above-the-fold results.
func AdsOnPage(pageHTML string, rules config.ExtractRules, origin string, firstN int) ([]models.AdRecord, error) {
	disc, err := Discover(pageHTML, rules)
	if err != nil {
		return nil, err
	}

	items := disc.Items
	if firstN > 0 && len(items) > firstN {
		items = items[:firstN]
	}

	var ads []models.AdRecord
	for _, itemHTML := range items {
		if ad, ok := ParseAd(itemHTML, rules, origin); ok {
			ads = append(ads, *ad)
		}
	}
	return ads, nil
}
