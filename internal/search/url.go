package search

import (
	"net/url"
	"strings"
)

var (
	redirectHosts  = []string{"bing.com/aclick", "duckduckgo.com/l/"}
	redirectParams = []string{"u", "uddg", "r"}
)

// CleanURL unwraps known search-engine redirect links to their destination.
// Any other URL is returned unchanged apart from a scheme for protocol-relative links.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	wrapped := false
	for _, host := range redirectHosts {
		if strings.Contains(raw, host) {
			wrapped = true
			break
		}
	}
	if !wrapped {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	for _, key := range redirectParams {
		if target := query.Get(key); target != "" {
			return target
		}
	}
	return raw
}
