// Package filterx filters mined products through a fixed stage
// pipeline and screens ad destinations against a platform blocklist.
package filterx

import (
	"net/url"
	"strings"
)

// redirectMarker identifies a search-engine redirect wrapper whose true
// destination rides in the url query parameter.
const redirectMarker = "link?url="

// ResolveDomain extracts the registrable-ish host of a URL's true
// destination: redirect wrappers are unwrapped first, then the scheme,
// a leading www., and any port are stripped. Best-effort on malformed
// input; never panics, returns "" when no host can be recovered.
func ResolveDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	rawURL = unwrapRedirect(rawURL)

	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		host = manualHost(rawURL)
	}

	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

// unwrapRedirect pulls the embedded target out of a redirect wrapper.
// The parameter value is percent-decoded when possible and truncated at
// the next & otherwise; anything that does not decode to a URL leaves
// the wrapper untouched.
func unwrapRedirect(rawURL string) string {
	i := strings.Index(rawURL, redirectMarker)
	if i < 0 {
		return rawURL
	}
	embedded := rawURL[i+len(redirectMarker):]
	if j := strings.IndexByte(embedded, '&'); j >= 0 {
		embedded = embedded[:j]
	}
	if dec, err := url.QueryUnescape(embedded); err == nil {
		embedded = dec
	}
	if strings.HasPrefix(embedded, "http://") || strings.HasPrefix(embedded, "https://") {
		return embedded
	}
	return rawURL
}

// manualHost is the fallback for URLs the parser rejects: strip a
// scheme prefix, cut at the first path separator, drop any port.
func manualHost(rawURL string) string {
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	for _, cut := range []string{"/", "?", "#"} {
		if i := strings.Index(s, cut); i >= 0 {
			s = s[:i]
		}
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	if strings.ContainsAny(s, " \t") {
		return ""
	}
	return s
}

// IsBlocked reports whether domain equals a blocklist entry or is a
// subdomain of one. Matching is suffix-with-dot on purpose: item.jd.com
// is blocked by jd.com, xjd.com is not.
func IsBlocked(domain string, blocklist []string) bool {
	if domain == "" {
		return false
	}
	domain = strings.ToLower(domain)
	for _, b := range blocklist {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if domain == b || strings.HasSuffix(domain, "."+b) {
			return true
		}
	}
	return false
}

// IsBlockedURL screens a raw ad destination. When no domain can be
// recovered at all it falls back to a substring scan of the raw URL,
// trading precision for never letting a mangled platform link through.
func IsBlockedURL(rawURL string, blocklist []string) bool {
	if domain := ResolveDomain(rawURL); domain != "" {
		return IsBlocked(domain, blocklist)
	}
	lower := strings.ToLower(rawURL)
	for _, b := range blocklist {
		if b != "" && strings.Contains(lower, strings.ToLower(b)) {
			return true
		}
	}
	return false
}
