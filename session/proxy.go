package session

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ProxyRotation hands out proxy addresses round-robin. Advancement only
// ever happens from the single session loop, so no locking is needed.
type ProxyRotation struct {
	proxies []string
	idx     int
}

// NewProxyRotation wraps a fixed proxy list. An empty list yields a
// rotation that always returns "".
func NewProxyRotation(proxies []string) *ProxyRotation {
	return &ProxyRotation{proxies: proxies}
}

// LoadProxyList reads one proxy address per line, skipping blanks and
// '#'-prefixed comments.
func LoadProxyList(path string) (*ProxyRotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("proxy list: %w", err)
	}
	defer f.Close()

	var proxies []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("proxy list: %w", err)
	}
	return &ProxyRotation{proxies: proxies}, nil
}

// Len reports how many proxies are in the rotation.
func (r *ProxyRotation) Len() int { return len(r.proxies) }

// Next returns the next proxy address, normalised to carry a scheme,
// and advances the rotation. Returns "" when the list is empty.
func (r *ProxyRotation) Next() string {
	if len(r.proxies) == 0 {
		return ""
	}
	p := r.proxies[r.idx%len(r.proxies)]
	r.idx++
	return normalizeProxy(p)
}

func normalizeProxy(p string) string {
	if strings.HasPrefix(p, "http://") ||
		strings.HasPrefix(p, "https://") ||
		strings.HasPrefix(p, "socks5://") {
		return p
	}
	return "http://" + p
}
