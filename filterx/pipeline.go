package filterx

import (
	"log/slog"

	"github.com/sumukeio/niche-miner/models"
)

// Config holds the per-run filter bounds. A nil bound (or empty term
// list) makes its stage an identity filter; the stage still runs and
// still reports counts, so stage reports stay comparable across runs.
type Config struct {
	SalesMin *int     `json:"sales_min,omitempty"`
	SalesMax *int     `json:"sales_max,omitempty"`
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`

	// IncludeTerms must all appear in the title (AND, case-insensitive).
	IncludeTerms []string `json:"include_terms,omitempty"`

	// ExcludeTerms each veto a title on their own (OR).
	ExcludeTerms []string `json:"exclude_terms,omitempty"`

	// ShopType keeps only matching storefronts. Filtering for c_shop
	// also keeps unclassified items: losing inventory to a failed
	// classification is worse than a few false positives.
	ShopType models.ShopType `json:"shop_type,omitempty"`
}

// stage is one named pure predicate.
type stage struct {
	name string
	keep func(*models.ProductRecord, Config) bool
}

// stages run in this fixed order, configured or not.
var stages = []stage{
	{"sales", keepSales},
	{"price", keepPrice},
	{"keyword-include", keepInclude},
	{"keyword-exclude", keepExclude},
	{"shop-type", keepShopType},
}

// Apply runs every stage over records in order and returns the
// survivors plus per-stage (in, out) counts. Deterministic for a fixed
// input and config; re-running changes nothing.
func Apply(records []*models.ProductRecord, cfg Config) ([]*models.ProductRecord, []models.StageCount) {
	current := records
	counts := make([]models.StageCount, 0, len(stages))

	for _, st := range stages {
		in := len(current)
		next := current[:0:0]
		for _, rec := range current {
			if st.keep(rec, cfg) {
				next = append(next, rec)
			}
		}
		counts = append(counts, models.StageCount{Stage: st.name, In: in, Out: len(next)})
		current = next
	}

	slog.Info("filter pipeline applied", "in", len(records), "out", len(current))
	return current, counts
}

// keepSales drops records outside [SalesMin, SalesMax]. A record with
// no parsed sales count cannot prove it is in range and is dropped
// whenever a bound is set.
func keepSales(r *models.ProductRecord, cfg Config) bool {
	if cfg.SalesMin == nil && cfg.SalesMax == nil {
		return true
	}
	if r.Sales == nil {
		return false
	}
	if cfg.SalesMin != nil && *r.Sales < *cfg.SalesMin {
		return false
	}
	if cfg.SalesMax != nil && *r.Sales > *cfg.SalesMax {
		return false
	}
	return true
}

func keepPrice(r *models.ProductRecord, cfg Config) bool {
	if cfg.PriceMin == nil && cfg.PriceMax == nil {
		return true
	}
	if r.Price == nil {
		return false
	}
	if cfg.PriceMin != nil && *r.Price < *cfg.PriceMin {
		return false
	}
	if cfg.PriceMax != nil && *r.Price > *cfg.PriceMax {
		return false
	}
	return true
}

func keepInclude(r *models.ProductRecord, cfg Config) bool {
	for _, term := range cfg.IncludeTerms {
		if term != "" && !r.TitleContains(term) {
			return false
		}
	}
	return true
}

func keepExclude(r *models.ProductRecord, cfg Config) bool {
	for _, term := range cfg.ExcludeTerms {
		if term != "" && r.TitleContains(term) {
			return false
		}
	}
	return true
}

func keepShopType(r *models.ProductRecord, cfg Config) bool {
	switch cfg.ShopType {
	case models.ShopTypeUnknown:
		return true
	case models.ShopTypeCShop:
		// Conservative inclusion: unclassified passes as c_shop.
		return r.ShopType == models.ShopTypeCShop || r.ShopType == models.ShopTypeUnknown
	default:
		return r.ShopType == cfg.ShopType
	}
}
