package finder

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/octobees/icp-finder/internal/entity"
)

const (
	companyMarker  = "linkedin.com/company/"
	profileMarker  = "linkedin.com/in/"
	fallbackMarker = "linkedin.com/search/results/"

	companySite = "linkedin.com/company"
	profileSite = "linkedin.com/in"
)

var (
	companySlug     = regexp.MustCompile(`(?i)linkedin\.com/company/([^/?#]+)`)
	titleSeparators = []string{"|", "·", "—", "-"}
)

// IsCompany reports whether rawURL points at a LinkedIn company page.
func IsCompany(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), companyMarker)
}

// IsProfile reports whether rawURL points at a LinkedIn member profile.
func IsProfile(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), profileMarker)
}

// IsFallbackLink reports whether rawURL is a generic LinkedIn keyword-search page.
func IsFallbackLink(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), fallbackMarker)
}

// CanonicalKey strips the query string and trailing slashes from rawURL.
func CanonicalKey(rawURL string) string {
	key := rawURL
	if idx := strings.IndexByte(key, '?'); idx >= 0 {
		key = key[:idx]
	}
	return strings.TrimRight(key, "/")
}

// Dedupe keeps the first result for each canonical key, preserving order.
// The input slice is not modified.
func Dedupe(results []entity.SearchResult) []entity.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]entity.SearchResult, 0, len(results))
	for _, r := range results {
		key := CanonicalKey(r.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// CompanyFromURL derives a display name from a company page slug,
// e.g. ".../company/bright-labs/" becomes "Bright Labs".
func CompanyFromURL(rawURL string) string {
	match := companySlug.FindStringSubmatch(rawURL)
	if match == nil {
		return ""
	}
	slug := match[1]
	if unescaped, err := url.PathUnescape(slug); err == nil {
		slug = unescaped
	}
	return titleCase(strings.ReplaceAll(slug, "-", " "))
}

// ParseCompanyName takes the part of a result title before the first separator,
// checking separators in priority order.
func ParseCompanyName(title string) string {
	trimmed := strings.TrimSpace(title)
	for _, sep := range titleSeparators {
		idx := strings.Index(title, sep)
		if idx < 0 {
			continue
		}
		if left := strings.TrimSpace(title[:idx]); left != "" {
			return left
		}
		return trimmed
	}
	return trimmed
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		lower := []rune(strings.ToLower(w))
		lower[0] = []rune(strings.ToUpper(string(lower[0])))[0]
		words[i] = string(lower)
	}
	return strings.Join(words, " ")
}
