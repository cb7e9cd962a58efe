package miner

import (
	"context"
	"log/slog"

	"github.com/sumukeio/niche-miner/challenge"
	"github.com/sumukeio/niche-miner/extract"
	"github.com/sumukeio/niche-miner/filterx"
	"github.com/sumukeio/niche-miner/models"
	"github.com/sumukeio/niche-miner/retry"
)

const (
	// adScanDepth bounds the ad scan to the first results; sponsored
	// placements below the fold carry no validation signal.
	adScanDepth = 10

	// maxAdsPerKeyword caps the reported ads per keyword.
	maxAdsPerKeyword = 3
)

// ValidateKeywords checks each keyword for sponsored search results.
// Keywords are isolated: one failing keyword records HasAds "Error"
// and the run moves on.
func (m *Miner) ValidateKeywords(ctx context.Context, keywords []string) []models.AdPresence {
	results := make([]models.AdPresence, 0, len(keywords))
	for i, kw := range keywords {
		if ctx.Err() != nil {
			slog.Warn("validation run canceled", "done", i, "total", len(keywords))
			break
		}
		if i > 0 {
			m.pace(ctx)
		}
		results = append(results, m.validateOne(ctx, kw))
	}
	return results
}

func (m *Miner) validateOne(ctx context.Context, keyword string) models.AdPresence {
	presence := models.AdPresence{Keyword: keyword, HasAds: "Error"}

	task := models.SearchTask{Query: keyword, Strategy: models.StrategyFormInteraction}
	exec := retry.New(retry.Validation())
	err := exec.Do(ctx, "search "+keyword, func(ctx context.Context) error {
		return m.searchEscalating(ctx, m.search, &task)
	})
	if err != nil {
		slog.Error("search failed for keyword", "keyword", keyword, "error", err)
		return presence
	}

	if state, err := m.monitor(m.search).Guard(ctx); state == challenge.StateTimedOut {
		slog.Error("challenge blocked keyword", "keyword", keyword, "error", err)
		return presence
	}

	pageHTML, err := m.driver.HTML()
	if err != nil {
		slog.Error("page snapshot failed", "keyword", keyword, "error", err)
		return presence
	}

	ads, err := extract.AdsOnPage(pageHTML, m.search.Extract, m.driver.PageOrigin(), adScanDepth)
	if err != nil {
		slog.Error("ad scan failed", "keyword", keyword, "error", err)
		return presence
	}

	kept, verdict := screenAds(ads, m.search.Blocklist, maxAdsPerKeyword)
	presence.Ads = kept
	presence.HasAds = verdict
	if verdict == "Yes" {
		if path, err := m.driver.Screenshot(m.cfg.Miner.ScreenshotDir, keyword); err == nil {
			slog.Info("ad hit", "keyword", keyword, "ads", len(kept), "screenshot", path)
		}
	}
	return presence
}

// screenAds resolves each ad's landing domain, drops platform self-ads
// via the blocklist, and caps the survivors at limit. The verdict is
// "Yes" when at least one third-party ad survives, "No" otherwise.
func screenAds(ads []models.AdRecord, blocklist []string, limit int) ([]models.AdRecord, string) {
	kept := make([]models.AdRecord, 0, limit)
	for _, ad := range ads {
		ad.ResolvedDomain = filterx.ResolveDomain(ad.Link)
		if filterx.IsBlockedURL(ad.Link, blocklist) {
			slog.Debug("platform ad excluded", "domain", ad.ResolvedDomain)
			continue
		}
		kept = append(kept, ad)
		if len(kept) == limit {
			break
		}
	}
	if len(kept) > 0 {
		return kept, "Yes"
	}
	return kept, "No"
}
