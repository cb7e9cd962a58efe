package miner

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/models"
)

// searchEscalating runs a search following the task's current strategy
// and escalates form interaction to a direct URL on failure. The task
// records attempts and the strategy that finally worked, so repeated
// keywords skip the strategy that already failed once.
func (m *Miner) searchEscalating(ctx context.Context, p *config.SiteProfile, task *models.SearchTask) error {
	task.Attempts++

	if task.Strategy == models.StrategyFormInteraction {
		err := m.formSearch(ctx, p, task.Query)
		if err == nil {
			return nil
		}
		slog.Warn("form search failed, escalating to direct URL",
			"query", task.Query, "error", err)
		task.Strategy = models.StrategyDirectURL
	}
	return m.directSearch(ctx, p, task.Query)
}

// formSearch goes through the site's own search box: load the home
// page, type the query at human speed, submit, and wait for results.
func (m *Miner) formSearch(ctx context.Context, p *config.SiteProfile, query string) error {
	home := p.Search.HomeURL
	if m.cfg.Browser.Mobile && p.Search.MobileHomeURL != "" {
		home = p.Search.MobileHomeURL
	}
	if err := m.driver.Goto(ctx, home); err != nil {
		return err
	}
	m.pace(ctx)

	if err := m.driver.Type(ctx, p.Search.InputSelector, query); err != nil {
		return err
	}
	if p.Search.ButtonSelector != "" {
		if err := m.driver.Click(p.Search.ButtonSelector); err != nil {
			// Some layouts hide the button; Enter submits the same form.
			if err := m.driver.PressEnter(); err != nil {
				return err
			}
		}
	} else if err := m.driver.PressEnter(); err != nil {
		return err
	}

	return m.awaitResults(ctx, p)
}

// directSearch navigates straight to the results URL with the home page
// as referer, so the arrival still looks like a click-through.
func (m *Miner) directSearch(ctx context.Context, p *config.SiteProfile, query string) error {
	target := m.buildDirectURL(p, query)
	if target == "" {
		return models.NewMineError(
			models.ErrCodeInvalidInput,
			models.ClassInternal,
			"profile has no direct search URL",
			nil,
		)
	}
	m.driver.SetReferer(p.Search.HomeURL)
	if err := m.driver.Goto(ctx, target); err != nil {
		return err
	}
	return m.awaitResults(ctx, p)
}

func (m *Miner) buildDirectURL(p *config.SiteProfile, query string) string {
	tpl := p.Search.DirectURL
	if m.cfg.Browser.Mobile && p.Search.MobileDirectURL != "" {
		tpl = p.Search.MobileDirectURL
	}
	if tpl == "" {
		return ""
	}
	return fmt.Sprintf(tpl, url.QueryEscape(query))
}

// awaitResults waits for any of the profile's result containers to
// attach, then lets the pacing delay cover late-rendering items.
func (m *Miner) awaitResults(ctx context.Context, p *config.SiteProfile) error {
	if len(p.Search.ResultSelectors) == 0 {
		return nil
	}
	sel, err := m.driver.WaitAnyAttached(ctx, p.Search.ResultSelectors, m.cfg.Browser.WaitTimeout)
	if err != nil {
		return err
	}
	slog.Debug("results rendered", "selector", sel)
	m.pace(ctx)
	return nil
}

// nextPage clicks the first enabled next-page control. Returns false
// when pagination has ended.
func (m *Miner) nextPage(ctx context.Context, p *config.SiteProfile) (bool, error) {
	for _, sel := range p.Pagination.NextSelectors {
		if !m.driver.Has(sel) {
			continue
		}
		m.pace(ctx)
		if err := m.driver.Click(sel); err != nil {
			slog.Debug("next-page control rejected the click", "selector", sel, "error", err)
			continue
		}
		if err := m.awaitResults(ctx, p); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
