package session

import "math/rand"

// Identity is the fingerprint presented for one browser session:
// user agent, viewport, locale, and timezone chosen together so the
// pieces never contradict each other. Immutable once created.
type Identity struct {
	UserAgent         string `json:"user_agent"`
	ViewportWidth     int    `json:"viewport_width"`
	ViewportHeight    int    `json:"viewport_height"`
	DeviceScaleFactor int    `json:"device_scale_factor"`
	Locale            string `json:"locale"`
	Timezone          string `json:"timezone"`
	IsMobile          bool   `json:"is_mobile"`
}

// desktopUserAgents is the rotation pool for desktop sessions. Real,
// current browser signatures only; an invented UA is itself a bot signal.
var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// mobileUserAgent is the single mobile signature (iPhone).
const mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"

// NewDesktopIdentity picks a random user agent from the desktop pool
// with a matching 1920x1080 viewport.
func NewDesktopIdentity(locale, timezone string) Identity {
	return Identity{
		UserAgent:         desktopUserAgents[rand.Intn(len(desktopUserAgents))],
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		DeviceScaleFactor: 1,
		Locale:            locale,
		Timezone:          timezone,
		IsMobile:          false,
	}
}

// NewMobileIdentity returns the iPhone identity (390x844 @3x, touch).
func NewMobileIdentity(locale, timezone string) Identity {
	return Identity{
		UserAgent:         mobileUserAgent,
		ViewportWidth:     390,
		ViewportHeight:    844,
		DeviceScaleFactor: 3,
		Locale:            locale,
		Timezone:          timezone,
		IsMobile:          true,
	}
}

// WithUserAgent returns a copy of the identity with the user agent
// replaced, used when restoring a persisted session so the restored
// cookies and the presented UA stay consistent across runs.
func (id Identity) WithUserAgent(ua string) Identity {
	if ua != "" {
		id.UserAgent = ua
	}
	return id
}
