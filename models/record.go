package models

import "strings"

// ShopType classifies the storefront behind a product listing.
type ShopType string

const (
	ShopTypeTmall   ShopType = "tmall"
	ShopTypeCShop   ShopType = "c_shop"
	ShopTypeUnknown ShopType = ""
)

// SearchStrategy selects how a keyword search is performed.
// Form interaction mimics a real user typing into the search box;
// the direct URL strategy is the stable fallback when the page refuses
// to cooperate.
type SearchStrategy int

const (
	StrategyFormInteraction SearchStrategy = iota
	StrategyDirectURL
)

func (s SearchStrategy) String() string {
	if s == StrategyDirectURL {
		return "direct-url"
	}
	return "form-interaction"
}

// SearchTask tracks one keyword through search, retry, and extraction.
// The retry executor bumps Attempts; the extraction path escalates
// Strategy when form interaction fails.
type SearchTask struct {
	Query    string
	Attempts int
	Strategy SearchStrategy
}

// Provenance names the extraction strategy that produced a field value,
// kept per field for post-mortem on selector drift.
const (
	ProvenanceAttribute = "attribute-based"
	ProvenanceLink      = "link-based"
	ProvenanceText      = "text-based"
)

// AdRecord is one sponsored result harvested from a search page.
// ResolvedDomain is derived by unwrapping redirect-wrapper URLs; it is
// what the platform blocklist is matched against.
type AdRecord struct {
	Title          string `json:"title"`
	Link           string `json:"link"`
	ResolvedDomain string `json:"resolved_domain,omitempty"`
}

// AdPresence is the per-keyword outcome of an ad validation run.
type AdPresence struct {
	Keyword string     `json:"keyword"`
	HasAds  string     `json:"has_ads"` // "Yes", "No", or "Error"
	Ads     []AdRecord `json:"ads,omitempty"`
}

// ProductRecord is one mined product listing. Price and Sales are
// pointers because either can legitimately be missing; missing values
// are excluded by range filters rather than defaulted.
type ProductRecord struct {
	Title     string   `json:"title"`
	Price     *float64 `json:"price,omitempty"`
	Sales     *int     `json:"sales,omitempty"`
	ShopName  string   `json:"shop_name,omitempty"`
	ShopType  ShopType `json:"shop_type,omitempty"`
	DetailURL string   `json:"detail_url,omitempty"`
	SeedWord  string   `json:"seed_word"`
	PageNum   int      `json:"page_num"`

	// TitleProvenance names the strategy that recovered the title.
	TitleProvenance string `json:"-"`
}

// TitleContains reports whether the record title contains sub,
// case-insensitively. Shared by the keyword filter stages.
func (p ProductRecord) TitleContains(sub string) bool {
	return strings.Contains(strings.ToLower(p.Title), strings.ToLower(sub))
}

// StageCount records the input and output sizes of one filter stage.
type StageCount struct {
	Stage string `json:"stage"`
	In    int    `json:"in"`
	Out   int    `json:"out"`
}

// MineStats summarises a mining run: how many products survived each
// pipeline stage and how many rows the sink accepted.
type MineStats struct {
	TotalCrawled int          `json:"total_crawled"`
	Stages       []StageCount `json:"stages"`
	Inserted     int          `json:"inserted"`
}
