package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/models"
)

// minTitleLen is the acceptance threshold for every title strategy:
// shorter strings are selector debris (badges, icons, "..."), not
// product names.
const minTitleLen = 5

var (
	priceRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	salesRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(万)?`)
)

// Price sanity bounds. A value outside them is a mis-parse (a year, an
// item ID) and is discarded rather than clamped.
const (
	priceMin = 1
	priceMax = 100000
)

// ParseItem extracts a product record from one item container's outer
// HTML. origin resolves relative detail links. The bool reports whether
// the mandatory title was found; an item without a title is silently
// dropped as expected page noise.
func ParseItem(itemHTML string, rules config.ExtractRules, origin string) (*models.ProductRecord, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(itemHTML))
	if err != nil {
		return nil, false
	}

	title, provenance := extractTitle(doc, rules)
	if title == "" {
		return nil, false
	}

	detailURL := extractDetailURL(doc, rules, origin)

	return &models.ProductRecord{
		Title:           title,
		Price:           extractPrice(doc, rules),
		Sales:           extractSales(doc, rules),
		ShopName:        extractShop(doc, rules),
		ShopType:        classifyShop(doc, rules, detailURL),
		DetailURL:       detailURL,
		TitleProvenance: provenance,
	}, true
}

// extractTitle cascades through three strategies in fixed order and
// returns the first acceptable title plus its provenance tag.
func extractTitle(doc *goquery.Document, rules config.ExtractRules) (string, string) {
	// ── 1. Attribute-based: title/alt on any configured selector ────
	for _, sel := range rules.TitleSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, attr := range []string{"title", "alt"} {
				if v, ok := s.Attr(attr); ok {
					if t := cleanTitle(v); acceptableTitle(t) {
						found = t
						return false
					}
				}
			}
			return true
		})
		if found != "" {
			return found, models.ProvenanceAttribute
		}
	}

	// ── 2. Link-based: any anchor pointing at a detail page ─────────
	var linkTitle string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !containsAny(href, rules.DetailURLTokens) {
			return true
		}
		if t := cleanTitle(s.Text()); acceptableTitle(t) {
			linkTitle = t
			return false
		}
		if v, ok := s.Attr("title"); ok {
			if t := cleanTitle(v); acceptableTitle(t) {
				linkTitle = t
				return false
			}
		}
		return true
	})
	if linkTitle != "" {
		return linkTitle, models.ProvenanceLink
	}

	// ── 3. Text-based: longest non-empty line of the rendered text ──
	if t := longestLine(doc.Text()); acceptableTitle(t) {
		return t, models.ProvenanceText
	}

	return "", ""
}

func extractPrice(doc *goquery.Document, rules config.ExtractRules) *float64 {
	for _, sel := range rules.PriceSelectors {
		if v := parsePrice(doc.Find(sel).First().Text()); v != nil {
			return v
		}
	}
	return nil
}

// parsePrice strips currency symbols and thousands separators, then
// takes the first decimal number. Out-of-range values are mis-parses
// and yield nil.
func parsePrice(text string) *float64 {
	text = strings.NewReplacer("￥", "", "¥", "", ",", "").Replace(text)
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < priceMin || v > priceMax {
		return nil
	}
	return &v
}

func extractSales(doc *goquery.Document, rules config.ExtractRules) *int {
	for _, sel := range rules.SalesSelectors {
		if v := parseSales(doc.Find(sel).First().Text()); v != nil {
			return v
		}
	}
	return nil
}

// parseSales reads a sales count out of marketing copy like "月销2万+"
// or "1500人付款". A 万 suffix multiplies by ten thousand.
func parseSales(text string) *int {
	text = strings.NewReplacer("月销", "", "人付款", "", "付款", "", "+", "").Replace(text)
	m := salesRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil || f < 0 {
		return nil
	}
	if m[2] == "万" {
		f *= 10000
	}
	v := int(f)
	return &v
}

func extractShop(doc *goquery.Document, rules config.ExtractRules) string {
	for _, sel := range rules.ShopSelectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// classifyShop decides tmall vs c_shop from the detail URL host first,
// then from badge text. An undecidable item stays unclassified; the
// filter pipeline treats that conservatively.
func classifyShop(doc *goquery.Document, rules config.ExtractRules, detailURL string) models.ShopType {
	if detailURL != "" {
		if containsAny(detailURL, rules.TmallURLTokens) {
			return models.ShopTypeTmall
		}
		if strings.Contains(detailURL, "item.taobao.com") {
			return models.ShopTypeCShop
		}
	}
	for _, sel := range rules.BadgeSelectors {
		badge := strings.ToLower(doc.Find(sel).First().Text())
		if badge == "" {
			continue
		}
		if strings.Contains(badge, "天猫") || strings.Contains(badge, "tmall") {
			return models.ShopTypeTmall
		}
	}
	return models.ShopTypeUnknown
}

// extractDetailURL finds the first anchor pointing at a detail page and
// resolves it against the page origin.
func extractDetailURL(doc *goquery.Document, rules config.ExtractRules, origin string) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if containsAny(href, rules.DetailURLTokens) {
			found = href
			return false
		}
		return true
	})
	return ResolveLink(found, origin)
}

// ResolveLink makes a possibly scheme-relative or path-relative href
// absolute. Unresolvable links come back unchanged; a broken link in a
// record beats a dropped record.
func ResolveLink(href, origin string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if origin == "" {
		return href
	}
	base, err := url.Parse(origin)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func acceptableTitle(s string) bool {
	return utf8.RuneCountInString(s) > minTitleLen
}

// longestLine returns the longest non-empty trimmed line of text.
func longestLine(text string) string {
	best := ""
	bestLen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if n := utf8.RuneCountInString(line); n > bestLen {
			best, bestLen = line, n
		}
	}
	return best
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}
