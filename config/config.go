package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Session   SessionConfig
	Miner     MinerConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the minerd control API.
type ServerConfig struct {
	Host string // default: "127.0.0.1"
	Port int    // default: 8712
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless. Interactive
	// login and human challenge resolution require a visible window.
	Headless bool // default: false

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is a single outbound proxy URL.
	Proxy string

	// ProxyFile is a path to a proxy list (one address per line,
	// '#'-prefixed comments ignored). Addresses rotate round-robin,
	// one per browser launch.
	ProxyFile string

	// Mobile switches the fingerprint to the mobile identity.
	Mobile bool // default: false

	// NavTimeout bounds a single page.Navigate.
	NavTimeout time.Duration // default: 60s

	// WaitTimeout bounds element waits.
	WaitTimeout time.Duration // default: 20s
}

// SessionConfig controls persisted authentication state.
type SessionConfig struct {
	// AuthFile is the JSON file holding cookies + user agent.
	AuthFile string // default: "auth_session.json"

	// LoginWait bounds the non-interactive login poll loop.
	LoginWait time.Duration // default: 5m

	// LoginPollInterval is how often login state is re-checked while
	// waiting for an out-of-band login.
	LoginPollInterval time.Duration // default: 3s
}

// MinerConfig controls run behavior shared by validation and mining.
type MinerConfig struct {
	// MaxPages is how many result pages to walk per seed word.
	MaxPages int // default: 5

	// PaceMin/PaceMax bound the randomized inter-action delay. Serial
	// pacing in this range is part of the anti-detection design.
	PaceMin time.Duration // default: 2s
	PaceMax time.Duration // default: 5s

	// ChallengeDeadline is how long to wait for a human to resolve an
	// interactive challenge before giving up on the page.
	ChallengeDeadline time.Duration // default: 60s

	// ScreenshotDir receives ad-hit screenshots and zero-item
	// diagnostics captures.
	ScreenshotDir string // default: "screenshots"

	// ProfileFile optionally overrides the built-in site profile.
	ProfileFile string

	// MaxItemsPerPage caps extraction per results page.
	MaxItemsPerPage int // default: 48
}

// StoreConfig controls the keyword sink.
type StoreConfig struct {
	// DSN is the sqlite database path. Empty selects the discard sink
	// (dry run: crawl and filter, insert nothing).
	DSN string // default: "keywords.db"

	// ChunkSize is the batch size for sink submission.
	ChunkSize int // default: 100
}

// RateLimitConfig controls per-client rate limiting on the control API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per client.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MINER_HOST", "127.0.0.1"),
			Port: envIntOr("MINER_PORT", 8712),
			Mode: envOr("MINER_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:    envBoolOr("MINER_HEADLESS", false),
			NoSandbox:   envBoolOr("MINER_NO_SANDBOX", false),
			BrowserBin:  os.Getenv("MINER_BROWSER_BIN"),
			Proxy:       os.Getenv("MINER_PROXY"),
			ProxyFile:   os.Getenv("MINER_PROXY_FILE"),
			Mobile:      envBoolOr("MINER_MOBILE", false),
			NavTimeout:  envDurationOr("MINER_NAV_TIMEOUT", 60*time.Second),
			WaitTimeout: envDurationOr("MINER_WAIT_TIMEOUT", 20*time.Second),
		},
		Session: SessionConfig{
			AuthFile:          envOr("MINER_AUTH_FILE", "auth_session.json"),
			LoginWait:         envDurationOr("MINER_LOGIN_WAIT", 5*time.Minute),
			LoginPollInterval: envDurationOr("MINER_LOGIN_POLL", 3*time.Second),
		},
		Miner: MinerConfig{
			MaxPages:          envIntOr("MINER_MAX_PAGES", 5),
			PaceMin:           envDurationOr("MINER_PACE_MIN", 2*time.Second),
			PaceMax:           envDurationOr("MINER_PACE_MAX", 5*time.Second),
			ChallengeDeadline: envDurationOr("MINER_CHALLENGE_DEADLINE", 60*time.Second),
			ScreenshotDir:     envOr("MINER_SCREENSHOT_DIR", "screenshots"),
			ProfileFile:       os.Getenv("MINER_PROFILE_FILE"),
			MaxItemsPerPage:   envIntOr("MINER_MAX_ITEMS", 48),
		},
		Store: StoreConfig{
			DSN:       envOr("MINER_DB", "keywords.db"),
			ChunkSize: envIntOr("MINER_STORE_CHUNK", 100),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MINER_RATE_RPS", 2.0),
			Burst:             envIntOr("MINER_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("MINER_LOG_LEVEL", "info"),
			Format: envOr("MINER_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
