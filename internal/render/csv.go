package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/octobees/icp-finder/internal/entity"
)

var csvHeader = []string{"title", "url", "snippet", "company"}

// WriteCSV writes results with the header title,url,snippet,company.
func WriteCSV(w io.Writer, results []entity.SearchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write([]string{r.Title, r.URL, r.Snippet, r.Company}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
