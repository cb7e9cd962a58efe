package session

import (
	"strings"
	"testing"

	"github.com/sumukeio/niche-miner/config"
)

func testLoginRules() config.LoginRules {
	return config.LoginRules{
		URLPatterns:         []string{"login.taobao.com"},
		PromptPhrases:       []string{"请登录"},
		FormSelectors:       []string{`form[action*="login"]`},
		LoggedInSelectors:   []string{".site-nav-user .username"},
		LoggedInURLPatterns: []string{"i.taobao.com"},
		CookieMarkers:       []string{"lgc", "_tb_token_"},
	}
}

func TestCheckExpired_LoginURL(t *testing.T) {
	c := NewChecker(testLoginRules())
	v := c.CheckExpired("https://login.taobao.com/member/login.jhtml", "<html></html>", nil)
	if !v.Expired {
		t.Fatal("login URL must mean expired")
	}
	if !strings.HasPrefix(v.Signal, "login-url:") {
		t.Errorf("signal = %q", v.Signal)
	}
}

func TestCheckExpired_PromptNeedsForm(t *testing.T) {
	c := NewChecker(testLoginRules())

	promptOnly := `<html><body><p>请登录查看更多优惠</p></body></html>`
	if v := c.CheckExpired("https://www.taobao.com", promptOnly, []string{"lgc"}); v.Expired {
		t.Error("a prompt phrase without a form is marketing copy, not expiry")
	}

	promptAndForm := `<html><body>
		<p>请登录</p>
		<form action="/member/login.do"><input name="user"></form>
	</body></html>`
	v := c.CheckExpired("https://www.taobao.com", promptAndForm, []string{"lgc"})
	if !v.Expired {
		t.Fatal("prompt phrase plus login form must mean expired")
	}
	if !strings.HasPrefix(v.Signal, "prompt+form:") {
		t.Errorf("signal = %q", v.Signal)
	}
}

func TestCheckExpired_MissingCookieIsWeak(t *testing.T) {
	c := NewChecker(testLoginRules())
	v := c.CheckExpired("https://www.taobao.com", "<html></html>", []string{"unrelated"})
	if v.Expired {
		t.Error("cookie absence alone must not flip the verdict")
	}
	if v.Signal != "no-session-cookie" {
		t.Errorf("signal = %q, want the weak-signal report", v.Signal)
	}
}

func TestCheckLoggedIn(t *testing.T) {
	c := NewChecker(testLoginRules())

	tests := []struct {
		name    string
		url     string
		html    string
		cookies []string
		want    bool
		signal  string
	}{
		{
			name:   "landing url",
			url:    "https://i.taobao.com/my_taobao.htm",
			html:   "<html></html>",
			want:   true,
			signal: "landing-url:i.taobao.com",
		},
		{
			name: "logged-in element with username",
			url:  "https://www.taobao.com",
			html: `<div class="site-nav-user"><span class="username">买家小王</span></div>`,
			want: true,
		},
		{
			name: "logged-in element showing a prompt is not proof",
			url:  "https://www.taobao.com",
			html: `<div class="site-nav-user"><span class="username">请登录</span></div>`,
			// Falls through to the permissive default.
			want:   true,
			signal: "undecided-assume-valid",
		},
		{
			name:    "session cookie",
			url:     "https://www.taobao.com",
			html:    "<html></html>",
			cookies: []string{"_tb_token_"},
			want:    true,
			signal:  "session-cookie",
		},
		{
			name:   "expired page wins over everything",
			url:    "https://login.taobao.com/member/login.jhtml",
			html:   "<html></html>",
			want:   false,
			signal: "login-url:login.taobao.com",
		},
		{
			name:   "nothing decidable assumes valid",
			url:    "https://www.taobao.com",
			html:   "<html></html>",
			want:   true,
			signal: "undecided-assume-valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, signal := c.CheckLoggedIn(tt.url, tt.html, tt.cookies)
			if got != tt.want {
				t.Errorf("loggedIn = %v (signal %q), want %v", got, signal, tt.want)
			}
			if tt.signal != "" && signal != tt.signal {
				t.Errorf("signal = %q, want %q", signal, tt.signal)
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	id := NewDesktopIdentity("zh-CN", "Asia/Shanghai")
	if id.UserAgent == "" || id.IsMobile || id.ViewportWidth != 1920 {
		t.Errorf("unexpected desktop identity: %+v", id)
	}

	mob := NewMobileIdentity("zh-CN", "Asia/Shanghai")
	if !mob.IsMobile || mob.UserAgent == id.UserAgent {
		t.Errorf("unexpected mobile identity: %+v", mob)
	}

	pinned := id.WithUserAgent("custom-ua")
	if pinned.UserAgent != "custom-ua" || pinned.ViewportWidth != id.ViewportWidth {
		t.Errorf("WithUserAgent must only swap the UA: %+v", pinned)
	}
}
