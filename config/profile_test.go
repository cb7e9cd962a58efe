package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProfilesValidate(t *testing.T) {
	if err := DefaultMarketProfile().Validate(); err != nil {
		t.Errorf("market profile: %v", err)
	}
	if err := DefaultSearchProfile().Validate(); err != nil {
		t.Errorf("search profile: %v", err)
	}
}

func TestValidate_RejectsBadSelector(t *testing.T) {
	p := DefaultMarketProfile()
	p.Extract.ContainerSelectors = append(p.Extract.ContainerSelectors, "div[[[")
	if err := p.Validate(); err == nil {
		t.Error("a broken selector must fail validation at load time")
	}
}

func TestLoadProfile_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `
name: custom
search:
  home_url: "https://market.example.com"
  direct_url: "https://market.example.com/search?q=%s"
  input_selector: "#search"
  result_selectors: [".card"]
challenge:
  selectors: [".slider-check"]
blocklist: ["competitor.example"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "custom" || p.Search.HomeURL != "https://market.example.com" {
		t.Errorf("file values not applied: %+v", p.Search)
	}
	if len(p.Challenge.Selectors) != 1 || p.Challenge.Selectors[0] != ".slider-check" {
		t.Errorf("challenge selectors = %v", p.Challenge.Selectors)
	}
	if len(p.Blocklist) != 1 || p.Blocklist[0] != "competitor.example" {
		t.Errorf("blocklist = %v", p.Blocklist)
	}
	// Sections absent from the file keep their defaults.
	if len(p.Extract.TitleSelectors) == 0 {
		t.Error("unset sections must keep profile defaults")
	}
}

func TestLoadProfile_EmptyPathUsesDefaults(t *testing.T) {
	p, err := LoadProfile("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "market" {
		t.Errorf("name = %q", p.Name)
	}
}

func TestLoadProfile_BlocklistEnvOverride(t *testing.T) {
	t.Setenv("MINER_BLOCKLIST", "a.com, b.com")
	p, err := LoadProfile("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.Blocklist) != 2 || p.Blocklist[0] != "a.com" || p.Blocklist[1] != "b.com" {
		t.Errorf("blocklist = %v", p.Blocklist)
	}
}

func TestDefaultBlocklist(t *testing.T) {
	bl := DefaultMarketProfile().Blocklist
	for _, want := range []string{"jd.com", "1688.com", "tmall.com", "zhihu.com"} {
		found := false
		for _, b := range bl {
			if b == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("default blocklist missing %s", want)
		}
	}
}
