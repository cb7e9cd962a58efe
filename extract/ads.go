package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/models"
)

// ParseAd inspects one search-result container and, if it carries an
// explicit sponsorship marker, returns it as an ad. The marker is
// mandatory: an unlabeled result is organic no matter how ad-shaped it
// looks, and reporting it would poison the validation signal.
func ParseAd(itemHTML string, rules config.ExtractRules, origin string) (*models.AdRecord, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(itemHTML))
	if err != nil {
		return nil, false
	}

	if !hasAdMarker(doc, rules.AdMarkers) {
		return nil, false
	}

	title := adTitle(doc, rules)
	link := adLink(doc)
	if link == "" {
		return nil, false
	}

	return &models.AdRecord{
		Title: title,
		Link:  ResolveLink(link, origin),
	}, true
}

// hasAdMarker looks for a sponsorship label in the container's text.
func hasAdMarker(doc *goquery.Document, markers []string) bool {
	text := doc.Text()
	lower := strings.ToLower(text)
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(text, m) || strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// adTitle prefers the configured title selectors and falls back to the
// first anchor's text. An untitled ad is still an ad.
func adTitle(doc *goquery.Document, rules config.ExtractRules) string {
	for _, sel := range rules.TitleSelectors {
		if t := cleanTitle(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return cleanTitle(doc.Find("a[href]").First().Text())
}

// adLink takes the first non-trivial href in the container.
func adLink(doc *goquery.Document) string {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return true
		}
		link = href
		return false
	})
	return link
}
