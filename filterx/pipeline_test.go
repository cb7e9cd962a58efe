package filterx

import (
	"reflect"
	"testing"

	"github.com/sumukeio/niche-miner/models"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func product(title string, sales *int, price *float64, st models.ShopType) *models.ProductRecord {
	return &models.ProductRecord{Title: title, Sales: sales, Price: price, ShopType: st}
}

func titles(recs []*models.ProductRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Title)
	}
	return out
}

func TestApply_SalesRange(t *testing.T) {
	records := []*models.ProductRecord{
		product("a", intp(10), nil, models.ShopTypeUnknown),
		product("b", intp(200), nil, models.ShopTypeUnknown),
		product("c", intp(9000), nil, models.ShopTypeUnknown),
		product("d", nil, nil, models.ShopTypeUnknown),
	}
	cfg := Config{SalesMin: intp(50), SalesMax: intp(5000)}

	out, counts := Apply(records, cfg)

	if got := titles(out); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("survivors = %v, want [b]", got)
	}
	if counts[0].Stage != "sales" || counts[0].In != 4 || counts[0].Out != 1 {
		t.Errorf("sales stage count = %+v", counts[0])
	}
}

func TestApply_StageOrderAndCounts(t *testing.T) {
	records := []*models.ProductRecord{
		product("无线鼠标 静音", intp(100), floatp(29.9), models.ShopTypeCShop),
		product("无线鼠标 二手", intp(100), floatp(19.9), models.ShopTypeCShop),
		product("有线键盘", intp(100), floatp(59.0), models.ShopTypeCShop),
		product("无线鼠标 旗舰", intp(100), floatp(299.0), models.ShopTypeTmall),
	}
	cfg := Config{
		IncludeTerms: []string{"无线鼠标"},
		ExcludeTerms: []string{"二手"},
		ShopType:     models.ShopTypeCShop,
	}

	out, counts := Apply(records, cfg)

	if got := titles(out); !reflect.DeepEqual(got, []string{"无线鼠标 静音"}) {
		t.Errorf("survivors = %v", got)
	}

	wantStages := []string{"sales", "price", "keyword-include", "keyword-exclude", "shop-type"}
	if len(counts) != len(wantStages) {
		t.Fatalf("expected %d stage counts even with identity stages, got %d",
			len(wantStages), len(counts))
	}
	for i, name := range wantStages {
		if counts[i].Stage != name {
			t.Errorf("stage %d = %q, want %q", i, counts[i].Stage, name)
		}
	}
	// Unconfigured stages are identity: in == out.
	if counts[0].In != counts[0].Out || counts[1].In != counts[1].Out {
		t.Errorf("identity stages must not drop records: %+v", counts[:2])
	}
	if counts[2].Out != 3 { // keyword-include drops 有线键盘
		t.Errorf("include stage out = %d, want 3", counts[2].Out)
	}
	if counts[3].Out != 2 { // keyword-exclude drops 二手
		t.Errorf("exclude stage out = %d, want 2", counts[3].Out)
	}
	if counts[4].Out != 1 { // shop-type drops the tmall listing
		t.Errorf("shop-type stage out = %d, want 1", counts[4].Out)
	}
}

func TestApply_KeywordMatchCaseInsensitive(t *testing.T) {
	records := []*models.ProductRecord{
		product("Bluetooth Mouse PRO", nil, nil, models.ShopTypeUnknown),
		product("bluetooth mouse USED", nil, nil, models.ShopTypeUnknown),
		product("trackball", nil, nil, models.ShopTypeUnknown),
	}
	cfg := Config{
		IncludeTerms: []string{"MOUSE"},
		ExcludeTerms: []string{"used"},
	}

	out, _ := Apply(records, cfg)
	if got := titles(out); !reflect.DeepEqual(got, []string{"Bluetooth Mouse PRO"}) {
		t.Errorf("survivors = %v, want case-folded match on both stages", got)
	}
}

func TestApply_CShopKeepsUnclassified(t *testing.T) {
	records := []*models.ProductRecord{
		product("classified", intp(1), nil, models.ShopTypeCShop),
		product("unclassified", intp(1), nil, models.ShopTypeUnknown),
		product("storefront", intp(1), nil, models.ShopTypeTmall),
	}

	out, _ := Apply(records, Config{ShopType: models.ShopTypeCShop})
	if got := titles(out); !reflect.DeepEqual(got, []string{"classified", "unclassified"}) {
		t.Errorf("survivors = %v, want classified + unclassified", got)
	}
}

func TestApply_Idempotent(t *testing.T) {
	records := []*models.ProductRecord{
		product("keep one", intp(100), floatp(10), models.ShopTypeUnknown),
		product("drop", intp(1), floatp(10), models.ShopTypeUnknown),
		product("keep two", intp(500), floatp(10), models.ShopTypeUnknown),
	}
	cfg := Config{SalesMin: intp(50)}

	first, firstCounts := Apply(records, cfg)
	second, secondCounts := Apply(records, cfg)

	if !reflect.DeepEqual(titles(first), titles(second)) {
		t.Errorf("re-run changed survivors: %v vs %v", titles(first), titles(second))
	}
	if !reflect.DeepEqual(firstCounts, secondCounts) {
		t.Errorf("re-run changed stage counts: %+v vs %+v", firstCounts, secondCounts)
	}
}

func TestApply_EmptyConfigKeepsAll(t *testing.T) {
	records := []*models.ProductRecord{
		product("anything", nil, nil, models.ShopTypeUnknown),
	}
	out, counts := Apply(records, Config{})
	if len(out) != 1 {
		t.Errorf("empty config must keep everything, got %d", len(out))
	}
	for _, c := range counts {
		if c.In != c.Out {
			t.Errorf("stage %s dropped records under empty config: %+v", c.Stage, c)
		}
	}
}
