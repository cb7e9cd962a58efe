package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8712 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Browser.Headless {
		t.Error("default must be headed: interactive login needs a window")
	}
	if cfg.Browser.NavTimeout != 60*time.Second || cfg.Browser.WaitTimeout != 20*time.Second {
		t.Errorf("browser timeouts: %+v", cfg.Browser)
	}
	if cfg.Miner.MaxPages != 5 || cfg.Miner.PaceMin != 2*time.Second || cfg.Miner.PaceMax != 5*time.Second {
		t.Errorf("miner defaults: %+v", cfg.Miner)
	}
	if cfg.Miner.ChallengeDeadline != 60*time.Second {
		t.Errorf("challenge deadline = %v", cfg.Miner.ChallengeDeadline)
	}
	if cfg.Store.ChunkSize != 100 || cfg.Store.DSN != "keywords.db" {
		t.Errorf("store defaults: %+v", cfg.Store)
	}
	if cfg.Session.AuthFile != "auth_session.json" {
		t.Errorf("auth file = %q", cfg.Session.AuthFile)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MINER_PORT", "9000")
	t.Setenv("MINER_HEADLESS", "true")
	t.Setenv("MINER_PACE_MIN", "500ms")
	t.Setenv("MINER_RATE_RPS", "0.5")

	cfg := Load()
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if !cfg.Browser.Headless {
		t.Error("MINER_HEADLESS not applied")
	}
	if cfg.Miner.PaceMin != 500*time.Millisecond {
		t.Errorf("pace min = %v", cfg.Miner.PaceMin)
	}
	if cfg.RateLimit.RequestsPerSecond != 0.5 {
		t.Errorf("rps = %v", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoad_BadEnvFallsBack(t *testing.T) {
	t.Setenv("MINER_PORT", "not-a-number")
	t.Setenv("MINER_NAV_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Server.Port != 8712 {
		t.Errorf("bad int must fall back to default, got %d", cfg.Server.Port)
	}
	if cfg.Browser.NavTimeout != 60*time.Second {
		t.Errorf("bad duration must fall back, got %v", cfg.Browser.NavTimeout)
	}
}
