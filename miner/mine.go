package miner

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sumukeio/niche-miner/challenge"
	"github.com/sumukeio/niche-miner/extract"
	"github.com/sumukeio/niche-miner/filterx"
	"github.com/sumukeio/niche-miner/models"
	"github.com/sumukeio/niche-miner/retry"
	"github.com/sumukeio/niche-miner/store"
)

// MineSeeds is the product-mining run: verify the session, walk every
// seed word through search, scroll, extract, and paginate, then filter
// the harvest and hand the survivors to the keyword sink.
//
// Seed words are isolated from each other: a policy block or structural
// failure on one seed logs and moves on. Only authentication failures
// abort the whole run, because every later seed would fail the same way.
func (m *Miner) MineSeeds(ctx context.Context, seeds []string, fcfg filterx.Config, projectID string) (*models.MineStats, error) {
	if err := m.requireLogin(ctx); err != nil {
		return nil, err
	}

	var crawled []*models.ProductRecord
	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			slog.Warn("mining run canceled", "done", i, "total", len(seeds))
			break
		}
		if i > 0 {
			m.pace(ctx)
		}

		records, err := m.mineSeed(ctx, seed)
		crawled = append(crawled, records...)
		if err != nil {
			if models.ClassOf(err) == models.ClassAuthentication {
				return nil, err
			}
			slog.Error("seed word failed, continuing",
				"seed", seed, "collected", len(records), "error", err)
		}
	}

	filtered, counts := filterx.Apply(crawled, fcfg)
	rows := store.FromProducts(filtered, projectID)

	adapter := store.NewAdapter(m.sink, m.cfg.Store.ChunkSize)
	inserted, err := adapter.Submit(ctx, rows)

	stats := &models.MineStats{
		TotalCrawled: len(crawled),
		Stages:       counts,
		Inserted:     inserted,
	}
	slog.Info("mining run complete",
		"seeds", len(seeds), "crawled", len(crawled),
		"filtered", len(filtered), "inserted", inserted)
	return stats, err
}

// mineSeed walks the result pages for one seed word. Records collected
// before a failure are returned alongside the error.
func (m *Miner) mineSeed(ctx context.Context, seed string) ([]*models.ProductRecord, error) {
	exec := retry.New(retry.Mining())
	err := exec.Do(ctx, "search "+seed, func(ctx context.Context) error {
		return m.directSearch(ctx, m.market, seed)
	})
	if err != nil {
		return nil, err
	}

	var records []*models.ProductRecord
	engine := extract.NewEngine(
		m.driver, m.market.Extract,
		m.cfg.Miner.MaxItemsPerPage, m.cfg.Miner.ScreenshotDir,
	)

	for page := 1; page <= m.cfg.Miner.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return records, models.Categorize(err, "mining canceled")
		}
		if err := m.checkPage(ctx); err != nil {
			return records, err
		}

		before := len(records)
		for rec := range engine.Products(ctx) {
			rec.SeedWord = seed
			rec.PageNum = page
			records = append(records, rec)
		}
		slog.Info("page mined",
			"seed", seed, "page", page, "items", len(records)-before)

		if page == m.cfg.Miner.MaxPages {
			break
		}
		ok, err := m.nextPage(ctx, m.market)
		if err != nil {
			return records, err
		}
		if !ok {
			slog.Debug("pagination ended", "seed", seed, "pages", page)
			break
		}
	}
	return records, nil
}

// checkPage runs the per-page gates in order: session expiry first
// (mining logged out yields junk silently, the worst failure mode),
// then the interactive-challenge guard, then explicit block and
// no-result markers in the page text.
func (m *Miner) checkPage(ctx context.Context) error {
	pageURL, html, cookieNames := m.snapshot()

	if v := m.checker.CheckExpired(pageURL, html, cookieNames); v.Expired {
		return models.NewMineError(
			models.ErrCodeAuthExpired,
			models.ClassAuthentication,
			"session expired mid-run ("+v.Signal+"); re-run interactive login",
			nil,
		)
	}

	state, err := m.monitor(m.market).Guard(ctx)
	if state == challenge.StateTimedOut {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return models.Categorize(ctx.Err(), "page check canceled")
	}

	body := m.driver.BodyText()
	for _, token := range m.market.Challenge.BlockTokens {
		if token != "" && strings.Contains(body, token) {
			return models.NewMineError(
				models.ErrCodePolicyBlocked,
				models.ClassPolicy,
				"anti-scraping block page detected ("+token+")",
				nil,
			)
		}
	}
	for _, token := range m.market.Challenge.NoResultTokens {
		if token != "" && strings.Contains(body, token) {
			return models.NewMineError(
				models.ErrCodeNoResults,
				models.ClassPolicy,
				"no results for this keyword ("+token+")",
				nil,
			)
		}
	}
	return nil
}
