package extract

import (
	"strings"
	"testing"

	"github.com/sumukeio/niche-miner/config"
)

const resultsPage = `<html><body>
	<div class="m-itemlist"><div class="items">
		<div class="item"><a title="item one long enough" href="//item.taobao.com/1"></a></div>
		<div class="item"><a title="item two long enough" href="//item.taobao.com/2"></a></div>
	</div></div>
</body></html>`

func TestDiscover_ContainerCascade(t *testing.T) {
	disc, err := Discover(resultsPage, marketRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(disc.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(disc.Items))
	}
	if disc.Selector != ".items .item" {
		t.Errorf("selector = %q, want first cascade entry", disc.Selector)
	}
	if !strings.Contains(disc.Items[0], "item one long enough") {
		t.Errorf("first item fragment wrong: %s", disc.Items[0])
	}
}

func TestDiscover_BroadClassFallback(t *testing.T) {
	// Containers carry a drifted class name: the cascade misses but the
	// class-substring query still finds them.
	page := `<html><body>
		<div class="new-item-card"><a title="still discoverable product"></a></div>
	</body></html>`

	rules := config.ExtractRules{
		ContainerSelectors: []string{".items .item"},
		BroadClassToken:    "item",
	}
	disc, err := Discover(page, rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(disc.Items) != 1 {
		t.Fatalf("expected broad fallback to find 1 item, got %d", len(disc.Items))
	}
}

func TestDiscover_EmptyVerdictIsNotAnError(t *testing.T) {
	disc, err := Discover(`<html><body><p>nothing here</p></body></html>`, marketRules())
	if err != nil {
		t.Fatalf("empty page must not error: %v", err)
	}
	if len(disc.Items) != 0 {
		t.Errorf("expected no items, got %d", len(disc.Items))
	}
}

func TestDiscover_MalformedHTMLNeverPanics(t *testing.T) {
	disc, err := Discover(`<div class="item"><a href=`, config.ExtractRules{
		ContainerSelectors: []string{".item"},
	})
	if err != nil {
		t.Fatalf("html parser is lenient, expected no error: %v", err)
	}
	_ = disc
}
