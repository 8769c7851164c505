package entity

import "strings"

// SearchType controls which result kinds a run looks for.
type SearchType string

const (
	SearchTypeAgencies SearchType = "agencies"
	SearchTypePeople   SearchType = "people"
	SearchTypeBoth     SearchType = "both"
)

// ParseSearchType normalizes a user or classifier supplied value.
func ParseSearchType(value string) (SearchType, bool) {
	switch SearchType(strings.ToLower(strings.TrimSpace(value))) {
	case SearchTypeAgencies:
		return SearchTypeAgencies, true
	case SearchTypePeople:
		return SearchTypePeople, true
	case SearchTypeBoth, "":
		return SearchTypeBoth, true
	}
	return "", false
}

// ParsedIntent is the structured form of a free-text lead request.
// ICP, Industry and Region are never empty once parsing finished.
type ParsedIntent struct {
	ICP           string     `json:"icp"`
	Industry      string     `json:"industry"`
	Region        string     `json:"region"`
	SearchType    SearchType `json:"search_type"`
	RawPrompt     string     `json:"raw_prompt"`
	ExtraKeywords []string   `json:"extra_keywords"`
}

// WantsCompanies reports whether the company branch should run.
func (p ParsedIntent) WantsCompanies() bool {
	return p.SearchType != SearchTypePeople
}

// WantsPeople reports whether the person branch should run.
func (p ParsedIntent) WantsPeople() bool {
	return p.SearchType != SearchTypeAgencies
}
