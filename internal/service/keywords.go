package service

import "regexp"

// synonymGroup maps a canonical value to the phrases that select it.
// Tables of groups are scanned in declaration order; the first hit wins.
type synonymGroup struct {
	canonical string
	synonyms  []string
}

var roleKeywords = []string{
	"ceo", "cto", "cfo", "coo", "cmo", "vp", "svp", "evp",
	"director", "head", "manager", "lead", "founder", "co-founder",
	"partner", "principal", "strategist", "consultant", "analyst",
	"coordinator", "specialist", "executive",
	"marketing", "sales", "growth", "product", "engineering",
	"finance", "hr", "operations", "design", "data",
	"business development", "account executive", "sdr", "bdr",
}

var industryTable = []synonymGroup{
	{"healthcare", []string{"healthcare", "health", "medical", "pharma", "biotech", "healthtech"}},
	{"fintech", []string{"fintech", "finance", "banking", "payments", "defi", "neobank"}},
	{"saas", []string{"saas", "software", "b2b", "enterprise software"}},
	{"ecommerce", []string{"ecommerce", "e-commerce", "retail", "dtc", "shopify"}},
	{"ai", []string{"ai", "artificial intelligence", "machine learning", "ml", "deep learning", "llm"}},
	{"crypto", []string{"crypto", "blockchain", "web3", "nft"}},
	{"edtech", []string{"edtech", "education", "learning"}},
	{"real estate", []string{"real estate", "proptech", "property"}},
	{"cybersecurity", []string{"cybersecurity", "security", "infosec"}},
	{"cleantech", []string{"cleantech", "climate", "sustainability", "green"}},
	{"martech", []string{"martech", "adtech", "advertising"}},
	{"logistics", []string{"logistics", "supply chain", "shipping", "freight"}},
}

var regionTable = []synonymGroup{
	{"United States", []string{"us", "usa", "united states", "america"}},
	{"California", []string{"california", "ca", "sf", "san francisco", "bay area", "la", "los angeles", "silicon valley"}},
	{"New York", []string{"new york", "ny", "nyc", "manhattan"}},
	{"Texas", []string{"texas", "tx", "austin", "dallas", "houston"}},
	{"Europe", []string{"europe", "eu", "european"}},
	{"United Kingdom", []string{"uk", "united kingdom", "london", "england", "britain"}},
	{"Canada", []string{"canada", "toronto", "vancouver"}},
	{"Australia", []string{"australia", "sydney", "melbourne"}},
	{"India", []string{"india", "bangalore", "mumbai", "delhi"}},
	{"Germany", []string{"germany", "berlin", "munich"}},
	{"Remote", []string{"remote", "worldwide", "global", "anywhere"}},
}

var (
	agencyWords = map[string]struct{}{
		"agency": {}, "agencies": {}, "company": {}, "companies": {},
		"firm": {}, "firms": {}, "startup": {}, "startups": {},
	}
	peopleWords = map[string]struct{}{
		"people": {}, "person": {}, "profile": {}, "profiles": {}, "employee": {}, "employees": {},
		"leader": {}, "leaders": {}, "founder": {}, "founders": {}, "who": {}, "someone": {},
	}
)

type keywordMatcher struct {
	keyword string
	pattern *regexp.Regexp
}

type groupMatcher struct {
	canonical string
	patterns  []*regexp.Regexp
}

var (
	roleMatchers     = compileKeywords(roleKeywords)
	industryMatchers = compileGroups(industryTable)
	regionMatchers   = compileGroups(regionTable)
)

// wordPattern matches kw as a whole word or phrase, so "us" does not hit "business".
func wordPattern(kw string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
}

func compileKeywords(keywords []string) []keywordMatcher {
	out := make([]keywordMatcher, len(keywords))
	for i, kw := range keywords {
		out[i] = keywordMatcher{keyword: kw, pattern: wordPattern(kw)}
	}
	return out
}

func compileGroups(groups []synonymGroup) []groupMatcher {
	out := make([]groupMatcher, len(groups))
	for i, g := range groups {
		patterns := make([]*regexp.Regexp, len(g.synonyms))
		for j, syn := range g.synonyms {
			patterns[j] = wordPattern(syn)
		}
		out[i] = groupMatcher{canonical: g.canonical, patterns: patterns}
	}
	return out
}

func firstGroup(matchers []groupMatcher, lower string) string {
	for _, g := range matchers {
		for _, p := range g.patterns {
			if p.MatchString(lower) {
				return g.canonical
			}
		}
	}
	return ""
}
