package miner

import (
	"testing"

	"github.com/sumukeio/niche-miner/config"
)

func testMiner(mobile bool) *Miner {
	cfg := config.Load()
	cfg.Browser.Mobile = mobile
	return &Miner{
		cfg:    cfg,
		market: config.DefaultMarketProfile(),
		search: config.DefaultSearchProfile(),
	}
}

func TestBuildDirectURL(t *testing.T) {
	m := testMiner(false)

	got := m.buildDirectURL(m.market, "无线 鼠标")
	want := "https://s.taobao.com/search?q=%E6%97%A0%E7%BA%BF+%E9%BC%A0%E6%A0%87"
	if got != want {
		t.Errorf("direct URL = %q, want %q", got, want)
	}
}

func TestBuildDirectURL_MobileHost(t *testing.T) {
	m := testMiner(true)

	got := m.buildDirectURL(m.search, "mouse")
	if got != "https://m.baidu.com/s?wd=mouse" {
		t.Errorf("mobile direct URL = %q", got)
	}

	// The market profile has no mobile template; the desktop one is
	// still used rather than failing.
	if got := m.buildDirectURL(m.market, "mouse"); got != "https://s.taobao.com/search?q=mouse" {
		t.Errorf("fallback direct URL = %q", got)
	}
}

func TestBuildDirectURL_NoTemplate(t *testing.T) {
	m := testMiner(false)
	p := config.DefaultMarketProfile()
	p.Search.DirectURL = ""
	if got := m.buildDirectURL(p, "x"); got != "" {
		t.Errorf("expected empty URL without a template, got %q", got)
	}
}
