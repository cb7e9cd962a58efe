package extract

import (
	"testing"

	"github.com/sumukeio/niche-miner/config"
)

func searchRules() config.ExtractRules {
	return config.DefaultSearchProfile().Extract
}

func TestParseAd_MarkerRequired(t *testing.T) {
	// Identical markup except for the sponsorship label. Only the
	// labeled one is an ad.
	labeled := `<div class="c-container">
		<h3><a href="https://shop.example.com/mouse">无线鼠标专卖</a></h3>
		<span class="tag">广告</span>
	</div>`
	organic := `<div class="c-container">
		<h3><a href="https://shop.example.com/mouse">无线鼠标专卖</a></h3>
	</div>`

	ad, ok := ParseAd(labeled, searchRules(), "https://www.baidu.com")
	if !ok {
		t.Fatal("labeled result should be reported as an ad")
	}
	if ad.Link != "https://shop.example.com/mouse" {
		t.Errorf("link = %q", ad.Link)
	}
	if ad.Title != "无线鼠标专卖" {
		t.Errorf("title = %q", ad.Title)
	}

	if _, ok := ParseAd(organic, searchRules(), "https://www.baidu.com"); ok {
		t.Error("unlabeled result must never be reported as an ad")
	}
}

func TestParseAd_RelativeLinkResolved(t *testing.T) {
	item := `<div><a href="/link?url=abc">promoted result here</a><span>推广</span></div>`
	ad, ok := ParseAd(item, searchRules(), "https://www.baidu.com")
	if !ok {
		t.Fatal("expected ad")
	}
	if ad.Link != "https://www.baidu.com/link?url=abc" {
		t.Errorf("link = %q", ad.Link)
	}
}

func TestAdsOnPage_FirstNOnly(t *testing.T) {
	page := `<html><body><div id="content_left">
		<div class="c-container"><a href="https://a.com/1">result one here</a><span>广告</span></div>
		<div class="c-container"><a href="https://a.com/2">result two here</a></div>
		<div class="c-container"><a href="https://a.com/3">result three here</a><span>广告</span></div>
		<div class="c-container"><a href="https://a.com/4">past the cutoff</a><span>广告</span></div>
	</div></body></html>`

	ads, err := AdsOnPage(page, searchRules(), "https://www.baidu.com", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ads) != 2 {
		t.Fatalf("expected 2 ads within the first 3 results, got %d", len(ads))
	}
	if ads[0].Link != "https://a.com/1" || ads[1].Link != "https://a.com/3" {
		t.Errorf("unexpected ads: %+v", ads)
	}
}
