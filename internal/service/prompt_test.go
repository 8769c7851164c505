package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/octobees/icp-finder/internal/entity"
)

type stubClassifier struct {
	output string
	err    error
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.output, s.err
}

func TestParseHeuristic(t *testing.T) {
	intent := ParseHeuristic("Find the head of growth at fintech startups in New York")
	if intent.ICP != "head growth" {
		t.Fatalf("unexpected icp: %q", intent.ICP)
	}
	if intent.Industry != "fintech" || intent.Region != "New York" {
		t.Fatalf("unexpected industry/region: %+v", intent)
	}
	if intent.SearchType != entity.SearchTypeAgencies {
		t.Fatalf("expected agencies, got %s", intent.SearchType)
	}
	if intent.RawPrompt != "Find the head of growth at fintech startups in New York" {
		t.Fatalf("raw prompt not retained: %q", intent.RawPrompt)
	}
}

func TestParseHeuristicDefaults(t *testing.T) {
	for _, prompt := range []string{"", "   ", "something vague"} {
		intent := ParseHeuristic(prompt)
		if intent.ICP != DefaultICP || intent.Industry != "technology" || intent.Region != "United States" {
			t.Fatalf("unexpected defaults for %q: %+v", prompt, intent)
		}
		if intent.SearchType != entity.SearchTypeBoth {
			t.Fatalf("expected both for %q, got %s", prompt, intent.SearchType)
		}
	}
}

func TestParseHeuristicWordBoundaries(t *testing.T) {
	intent := ParseHeuristic("business leaders with a datadog background")
	if intent.Region != DefaultRegion {
		t.Fatalf("\"us\" inside business must not select a region, got %q", intent.Region)
	}
	if intent.ICP != DefaultICP {
		t.Fatalf("\"data\" inside datadog must not match, got %q", intent.ICP)
	}
	if intent.SearchType != entity.SearchTypePeople {
		t.Fatalf("expected people, got %s", intent.SearchType)
	}
}

func TestParseHeuristicIndustryPhrase(t *testing.T) {
	intent := ParseHeuristic("marketing director at dental clinic companies in Texas")
	if intent.Industry != "dental clinic" {
		t.Fatalf("expected captured industry, got %q", intent.Industry)
	}
	if intent.ICP != "director marketing" {
		t.Fatalf("roles must follow vocabulary order, got %q", intent.ICP)
	}
	if intent.Region != "Texas" {
		t.Fatalf("expected Texas, got %q", intent.Region)
	}
}

func TestParseHeuristicRoleLimit(t *testing.T) {
	intent := ParseHeuristic("ceo cto cfo coo cmo")
	if intent.ICP != "ceo cto cfo coo" {
		t.Fatalf("expected four roles, got %q", intent.ICP)
	}
}

func TestDetectSearchType(t *testing.T) {
	cases := map[string]entity.SearchType{
		"agencies, please":      entity.SearchTypeAgencies,
		"people who run growth": entity.SearchTypePeople,
		"founders at agencies":  entity.SearchTypeBoth,
		"saas in california":    entity.SearchTypeBoth,
	}
	for prompt, want := range cases {
		if got := detectSearchType(prompt); got != want {
			t.Fatalf("%q: expected %s, got %s", prompt, want, got)
		}
	}
}

func TestQuotedKeywords(t *testing.T) {
	intent := ParseHeuristic(`saas founders "series a" and "remote  first" or "Series A"`)
	want := []string{"series a", "remote first"}
	if !reflect.DeepEqual(intent.ExtraKeywords, want) {
		t.Fatalf("expected %v, got %v", want, intent.ExtraKeywords)
	}
}

func TestPromptServiceClassifier(t *testing.T) {
	stub := &stubClassifier{output: "```json\n{\"icp\":\"vp sales\",\"region\":\"\",\"search_type\":\"People\",\"extra_keywords\":[\"series b\",\"\"]}\n```"}
	svc := NewPromptService(WithClassifier(stub, time.Second))

	intent := svc.Parse(context.Background(), "vp of sales")
	if stub.calls != 1 {
		t.Fatalf("expected classifier to be called once")
	}
	if intent.ICP != "vp sales" || intent.Industry != DefaultIndustry || intent.Region != DefaultRegion {
		t.Fatalf("unexpected classified intent: %+v", intent)
	}
	if intent.SearchType != entity.SearchTypePeople {
		t.Fatalf("expected people, got %s", intent.SearchType)
	}
	if !reflect.DeepEqual(intent.ExtraKeywords, []string{"series b"}) {
		t.Fatalf("unexpected extras: %v", intent.ExtraKeywords)
	}
}

func TestPromptServiceClassifierFallback(t *testing.T) {
	prompt := "cto at fintech startups in texas"
	heuristic := ParseHeuristic(prompt)

	cases := map[string]*stubClassifier{
		"error":       {err: errors.New("timeout")},
		"not json":    {output: "I think they want CTOs"},
		"schema":      {output: `{"icp": 42}`},
		"array":       {output: `["cto"]`},
		"search type": {output: `{"icp":"cto","search_type":"everything"}`},
	}
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			intent := NewPromptService(WithClassifier(stub, time.Second)).Parse(context.Background(), prompt)
			if !reflect.DeepEqual(intent, heuristic) {
				t.Fatalf("expected heuristic result %+v, got %+v", heuristic, intent)
			}
		})
	}
}

func TestPromptServiceWithoutClassifier(t *testing.T) {
	intent := NewPromptService().Parse(context.Background(), "cto")
	if intent.ICP != "cto" {
		t.Fatalf("unexpected icp: %q", intent.ICP)
	}
}
