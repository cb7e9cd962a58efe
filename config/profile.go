package config

import (
	"fmt"
	"os"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// SiteProfile holds every site-specific detection rule as data: selector
// lists, URL patterns, and marker phrases. Markup drift on a target site
// is handled by editing a profile, not code.
type SiteProfile struct {
	Name string `yaml:"name"`

	Search     SearchRules     `yaml:"search"`
	Login      LoginRules      `yaml:"login"`
	Challenge  ChallengeRules  `yaml:"challenge"`
	Extract    ExtractRules    `yaml:"extract"`
	Pagination PaginationRules `yaml:"pagination"`

	// Blocklist is the platform-domain blocklist applied to ad
	// destinations. Entries are bare registrable domains; subdomains
	// match by suffix.
	Blocklist []string `yaml:"blocklist"`
}

// SearchRules describes how to reach a results page for a query.
type SearchRules struct {
	HomeURL       string `yaml:"home_url"`
	MobileHomeURL string `yaml:"mobile_home_url"`

	// DirectURL is a printf template with one %s for the escaped query.
	DirectURL       string `yaml:"direct_url"`
	MobileDirectURL string `yaml:"mobile_direct_url"`

	InputSelector  string `yaml:"input_selector"`
	ButtonSelector string `yaml:"button_selector"`

	// ResultSelectors are waited on, in order, to confirm the results
	// page rendered.
	ResultSelectors []string `yaml:"result_selectors"`
}

// LoginRules drives session expiry detection and login-state checks.
type LoginRules struct {
	LoginURL string `yaml:"login_url"`

	// URLPatterns are substrings of known login-page URLs.
	URLPatterns []string `yaml:"url_patterns"`

	// PromptPhrases are login-prompt phrases; a phrase alone is not
	// proof of expiry, it must co-occur with a form element.
	PromptPhrases []string `yaml:"prompt_phrases"`

	// FormSelectors locate a login form in the page.
	FormSelectors []string `yaml:"form_selectors"`

	// LoggedInSelectors locate elements only present when logged in.
	LoggedInSelectors []string `yaml:"logged_in_selectors"`

	// LoggedInURLPatterns are substrings of post-login landing URLs.
	LoggedInURLPatterns []string `yaml:"logged_in_url_patterns"`

	// CookieMarkers are substrings of session-cookie names, used only
	// as a weak signal.
	CookieMarkers []string `yaml:"cookie_markers"`
}

// ChallengeRules drives the interactive-challenge monitor.
type ChallengeRules struct {
	Selectors   []string `yaml:"selectors"`
	URLMarkers  []string `yaml:"url_markers"`
	BlockTokens []string `yaml:"block_tokens"`

	// NoResultTokens mark a legitimate empty result page.
	NoResultTokens []string `yaml:"no_result_tokens"`
}

// ExtractRules drives item discovery and per-field extraction.
type ExtractRules struct {
	ContainerSelectors []string `yaml:"container_selectors"`

	// BroadClassToken is the class substring used by the last-ditch
	// discovery query when every container selector fails.
	BroadClassToken string `yaml:"broad_class_token"`

	TitleSelectors []string `yaml:"title_selectors"`
	PriceSelectors []string `yaml:"price_selectors"`
	SalesSelectors []string `yaml:"sales_selectors"`
	ShopSelectors  []string `yaml:"shop_selectors"`
	BadgeSelectors []string `yaml:"badge_selectors"`

	// DetailURLTokens identify anchors that point at a product detail
	// page (the link-based title strategy).
	DetailURLTokens []string `yaml:"detail_url_tokens"`

	// TmallURLTokens classify a detail URL as a tmall storefront.
	TmallURLTokens []string `yaml:"tmall_url_tokens"`

	// AdMarkers are sponsorship labels; an item without one is organic
	// and never reported as an ad.
	AdMarkers []string `yaml:"ad_markers"`
}

// PaginationRules locate the next-page control.
type PaginationRules struct {
	NextSelectors []string `yaml:"next_selectors"`
}

// LoadProfile reads a SiteProfile from a YAML file, validates its
// selectors, and applies env overrides. An empty path returns the
// built-in marketplace profile.
func LoadProfile(path string) (*SiteProfile, error) {
	p := DefaultMarketProfile()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		if err := yaml.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("parse profile: %w", err)
		}
	}
	if bl := envSliceOr("MINER_BLOCKLIST", nil); bl != nil {
		p.Blocklist = bl
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate parses every CSS selector in the profile so a typo in a
// profile file fails at load time, not halfway through a run.
func (p *SiteProfile) Validate() error {
	groups := map[string][]string{
		"search.result_selectors":     p.Search.ResultSelectors,
		"login.form_selectors":        p.Login.FormSelectors,
		"login.logged_in_selectors":   p.Login.LoggedInSelectors,
		"challenge.selectors":         p.Challenge.Selectors,
		"extract.container_selectors": p.Extract.ContainerSelectors,
		"extract.title_selectors":     p.Extract.TitleSelectors,
		"extract.price_selectors":     p.Extract.PriceSelectors,
		"extract.sales_selectors":     p.Extract.SalesSelectors,
		"extract.shop_selectors":      p.Extract.ShopSelectors,
		"extract.badge_selectors":     p.Extract.BadgeSelectors,
		"pagination.next_selectors":   p.Pagination.NextSelectors,
	}
	for group, sels := range groups {
		for _, s := range sels {
			if _, err := cascadia.ParseGroup(s); err != nil {
				return fmt.Errorf("profile %s: bad selector %q: %w", group, s, err)
			}
		}
	}
	return nil
}

// DefaultMarketProfile is the built-in profile for the marketplace
// keyword-mining target.
func DefaultMarketProfile() *SiteProfile {
	return &SiteProfile{
		Name: "market",
		Search: SearchRules{
			HomeURL:         "https://www.taobao.com",
			DirectURL:       "https://s.taobao.com/search?q=%s",
			InputSelector:   "#q",
			ButtonSelector:  ".btn-search",
			ResultSelectors: []string{".items .item", "[data-category=\"auctions\"]", ".item"},
		},
		Login: LoginRules{
			LoginURL:    "https://login.taobao.com/member/login.jhtml",
			URLPatterns: []string{"login.taobao.com", "passport.taobao.com", "/member/login"},
			PromptPhrases: []string{
				"请登录", "登录后", "扫码登录", "账号登录",
			},
			FormSelectors: []string{
				`form[action*="login"]`, ".login-form", "#login-form",
			},
			LoggedInSelectors: []string{
				`.site-nav-user a[href*="member"]`,
				".site-nav-user .username",
				".h-member-name",
				".site-nav-login .h",
			},
			LoggedInURLPatterns: []string{"i.taobao.com"},
			CookieMarkers:       []string{"lgc", "cna", "_tb_token_"},
		},
		Challenge: ChallengeRules{
			Selectors: []string{
				".nc_iconfont", ".baxia-dialog", "#nocaptcha", ".nc-wrapper",
				".slider", `[class*="captcha"]`, `[class*="verify"]`,
			},
			URLMarkers:     []string{"verify", "captcha"},
			BlockTokens:    []string{"访问异常", "安全验证"},
			NoResultTokens: []string{"没有找到", "暂无商品", "搜索结果为空", "未找到相关"},
		},
		Extract: ExtractRules{
			ContainerSelectors: []string{
				".items .item",
				`.items .item[data-category="auctions"]`,
				`.item[data-category="auctions"]`,
				`[data-category="auctions"]`,
				".m-itemlist .items .item",
			},
			BroadClassToken: "item",
			TitleSelectors: []string{
				".title a", ".title", "a[title]", "a.J_ClickStat",
				".item-title a", ".item-title", `[class*="title"] a`,
				`a[href*="item"]`, "a.pic-link",
			},
			PriceSelectors: []string{
				".price strong", ".price .price-num", ".price",
				".item-price", `[class*="price"]`, ".g-price", ".price-box",
			},
			SalesSelectors: []string{
				".deal-cnt", ".sales", `[class*="deal"]`,
				".item-sales", `[class*="sales"]`,
			},
			ShopSelectors: []string{".shop a", ".shop", ".nick"},
			BadgeSelectors: []string{
				".shop-badge", ".shop-type", `[class*="tmall"]`,
			},
			DetailURLTokens: []string{"item.taobao.com", "detail.tmall.com", "/item/"},
			TmallURLTokens:  []string{"tmall.com", "detail.tmall"},
			AdMarkers:       []string{"广告", "推广"},
		},
		Pagination: PaginationRules{
			NextSelectors: []string{
				".next:not(.disabled)",
				`a[aria-label="下一页"]`,
				".pagination .next",
				".page-next:not(.disabled)",
			},
		},
		Blocklist: defaultBlocklist(),
	}
}

// DefaultSearchProfile is the built-in profile for the search-engine
// ad-validation target.
func DefaultSearchProfile() *SiteProfile {
	return &SiteProfile{
		Name: "search",
		Search: SearchRules{
			HomeURL:         "https://www.baidu.com",
			MobileHomeURL:   "https://m.baidu.com",
			DirectURL:       "https://www.baidu.com/s?wd=%s",
			MobileDirectURL: "https://m.baidu.com/s?wd=%s",
			InputSelector:   "#kw",
			ButtonSelector:  "#su",
			ResultSelectors: []string{"#content_left", ".s_main", ".result"},
		},
		Login: LoginRules{
			URLPatterns:   []string{"passport.baidu.com"},
			PromptPhrases: []string{"请登录"},
			FormSelectors: []string{`form[action*="login"]`},
		},
		Challenge: ChallengeRules{
			Selectors:  []string{`[class*="captcha"]`, `[class*="verify"]`, ".slider"},
			URLMarkers: []string{"verify", "captcha", "wappass"},
		},
		Extract: ExtractRules{
			ContainerSelectors: []string{
				"#content_left .c-container",
				"#content_left .result",
				".c-container",
			},
			BroadClassToken: "result",
			TitleSelectors:  []string{"h3 a", ".t a", "a[href]"},
			AdMarkers:       []string{"广告", "推广"},
		},
		Blocklist: defaultBlocklist(),
	}
}

// defaultBlocklist names the e-commerce platforms whose ads carry no
// signal for keyword validation. Bare registrable domains; subdomains
// match automatically.
func defaultBlocklist() []string {
	return []string{
		"jd.com", "jd.hk",
		"1688.com", "alibaba.com", "alibaba.com.cn",
		"b2b.baidu.com", "aicaigou.com",
		"zhihu.com",
		"tmall.com", "tmall.hk",
	}
}
