package miner

import (
	"testing"

	"github.com/sumukeio/niche-miner/models"
)

func TestScreenAds_PlatformAdExcluded(t *testing.T) {
	// Three sponsored results for one keyword; the jd.com placement is
	// the platform advertising itself and must not count as a hit.
	ads := []models.AdRecord{
		{Title: "无线鼠标 京东自营", Link: "https://item.jd.com/100012043978.html"},
		{Title: "wireless mouse pro", Link: "https://mousegear.example.com/p/17"},
		{Title: "静音无线鼠标", Link: "https://www.quietmouse.example.cn/item/3"},
	}
	blocklist := []string{"jd.com", "tmall.com"}

	kept, verdict := screenAds(ads, blocklist, 3)
	if verdict != "Yes" {
		t.Fatalf("verdict = %q, want Yes", verdict)
	}
	if len(kept) != 2 {
		t.Fatalf("kept %d ads, want 2: %+v", len(kept), kept)
	}
	if kept[0].ResolvedDomain != "mousegear.example.com" {
		t.Errorf("kept[0].ResolvedDomain = %q", kept[0].ResolvedDomain)
	}
	if kept[1].ResolvedDomain != "quietmouse.example.cn" {
		t.Errorf("kept[1].ResolvedDomain = %q", kept[1].ResolvedDomain)
	}
}

func TestScreenAds_RedirectWrapperUnwrapped(t *testing.T) {
	// A blocklisted target hiding behind the search engine's redirect
	// wrapper is still excluded.
	ads := []models.AdRecord{
		{Title: "wrapped", Link: "https://www.baidu.com/link?url=https%3A%2F%2Fwww.jd.com%2Fpromo&wd=mouse"},
	}

	kept, verdict := screenAds(ads, []string{"jd.com"}, 3)
	if verdict != "No" || len(kept) != 0 {
		t.Errorf("verdict = %q with %d ads, want No with 0", verdict, len(kept))
	}
}

func TestScreenAds_CappedAtLimit(t *testing.T) {
	ads := []models.AdRecord{
		{Title: "a", Link: "https://a.example.com/1"},
		{Title: "b", Link: "https://b.example.com/2"},
		{Title: "c", Link: "https://c.example.com/3"},
		{Title: "d", Link: "https://d.example.com/4"},
	}

	kept, verdict := screenAds(ads, nil, 3)
	if verdict != "Yes" {
		t.Fatalf("verdict = %q, want Yes", verdict)
	}
	if len(kept) != 3 {
		t.Fatalf("kept %d ads, want the cap of 3", len(kept))
	}
	if kept[2].Title != "c" {
		t.Errorf("cap kept %q last, want the first three in order", kept[2].Title)
	}
}

func TestScreenAds_AllBlocked(t *testing.T) {
	ads := []models.AdRecord{
		{Title: "x", Link: "https://www.tmall.com/item/1"},
		{Title: "y", Link: "https://detail.tmall.hk/item/2"},
	}

	kept, verdict := screenAds(ads, []string{"tmall.com", "tmall.hk"}, 3)
	if verdict != "No" {
		t.Errorf("verdict = %q, want No", verdict)
	}
	if len(kept) != 0 {
		t.Errorf("kept %d ads, want 0", len(kept))
	}
}
