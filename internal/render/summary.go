package render

import (
	"fmt"
	"strings"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/finder"
	"github.com/octobees/icp-finder/internal/search"
)

// NoMatches is shown when a run produced no results at all.
const NoMatches = "No matching companies or profiles found. Try a broader role, industry or region."

const DefaultSummaryLimit = 5

// Summary renders a run as markdown: the parsed intent, then a count and up
// to limit links per category.
func Summary(res finder.Result, limit int) string {
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}

	var b strings.Builder
	intent := res.Intent
	fmt.Fprintf(&b, "**Looking for:** %s · %s · %s (%s)\n", intent.ICP, intent.Industry, intent.Region, intent.SearchType)
	if len(intent.ExtraKeywords) > 0 {
		fmt.Fprintf(&b, "**Refined by:** %s\n", strings.Join(intent.ExtraKeywords, ", "))
	}

	if res.Empty() {
		b.WriteString("\n")
		b.WriteString(NoMatches)
		b.WriteString("\n\nSearch LinkedIn directly:\n")
		for _, link := range search.PlaceholderResults(strings.Join([]string{intent.ICP, intent.Industry, intent.Region}, " ")) {
			fmt.Fprintf(&b, "- [%s](%s)\n", escapeLinkText(link.Title), link.URL)
		}
		return b.String()
	}

	section(&b, "Companies", res.Agencies, limit)
	section(&b, "People", res.People, limit)
	section(&b, "People at those companies", res.CompanyPeople, limit)
	return b.String()
}

func section(b *strings.Builder, heading string, results []entity.SearchResult, limit int) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s (%d)\n", heading, len(results))
	for i, r := range results {
		if i == limit {
			fmt.Fprintf(b, "- ...and %d more\n", len(results)-limit)
			break
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = r.URL
		}
		line := fmt.Sprintf("- [%s](%s)", escapeLinkText(title), r.URL)
		if r.Company != "" && !strings.Contains(title, r.Company) {
			line += " at " + r.Company
		}
		b.WriteString(line + "\n")
	}
}

func escapeLinkText(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
