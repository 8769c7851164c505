package dto

import (
	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/finder"
)

// SearchRequest is the payload accepted by POST /search.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse is the consolidated result of one search run.
type SearchResponse struct {
	Agencies      []entity.SearchResult `json:"agencies"`
	People        []entity.SearchResult `json:"people"`
	CompanyPeople []entity.SearchResult `json:"company_people"`
	ParsedIntent  entity.ParsedIntent   `json:"parsed_intent"`
}

// DetailResponse carries the failure message of the search contract.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// NewSearchResponse converts a finder result, encoding absent lists as empty arrays.
func NewSearchResponse(res finder.Result) SearchResponse {
	intent := res.Intent
	if intent.ExtraKeywords == nil {
		intent.ExtraKeywords = []string{}
	}
	return SearchResponse{
		Agencies:      nonNil(res.Agencies),
		People:        nonNil(res.People),
		CompanyPeople: nonNil(res.CompanyPeople),
		ParsedIntent:  intent,
	}
}

func nonNil(results []entity.SearchResult) []entity.SearchResult {
	if results == nil {
		return []entity.SearchResult{}
	}
	return results
}
