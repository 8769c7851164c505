package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/octobees/icp-finder/internal/classifier"
	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/logger"
)

const (
	DefaultICP      = "founder"
	DefaultIndustry = "technology"
	DefaultRegion   = "United States"

	maxRoles                 = 4
	defaultClassifierTimeout = 20 * time.Second
)

var (
	industryPhrase = regexp.MustCompile(`\b(?:at|in|for)\s+(\w+(?:\s+\w+)?)\s+(?:companies|startups|agencies|firms)`)
	quotedPhrase   = regexp.MustCompile(`"([^"]+)"`)
	tokenTrim      = ".,;:!?()[]{}'\""

	intentSchema = gojsonschema.NewStringLoader(`{
		"type": "object",
		"properties": {
			"icp": {"type": ["string", "null"]},
			"industry": {"type": ["string", "null"]},
			"region": {"type": ["string", "null"]},
			"search_type": {"type": ["string", "null"]},
			"extra_keywords": {"type": ["array", "null"], "items": {"type": "string"}}
		}
	}`)
)

// PromptOption configures a PromptService.
type PromptOption func(*PromptService)

// WithClassifier routes parsing through an external classifier first.
func WithClassifier(c classifier.Classifier, timeout time.Duration) PromptOption {
	return func(s *PromptService) {
		s.classifier = c
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithPromptLogger(log *zap.Logger) PromptOption {
	return func(s *PromptService) {
		s.logger = logger.OrNop(log)
	}
}

// PromptService interprets free-form lead requests.
type PromptService struct {
	classifier classifier.Classifier
	timeout    time.Duration
	logger     *zap.Logger
}

// NewPromptService creates a parser. Without a classifier it is purely heuristic.
func NewPromptService(opts ...PromptOption) *PromptService {
	s := &PromptService{
		timeout: defaultClassifierTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse never fails. Any classifier problem falls back to the heuristic
// result in full.
func (s *PromptService) Parse(ctx context.Context, prompt string) entity.ParsedIntent {
	if s.classifier != nil {
		intent, err := s.classify(ctx, prompt)
		if err == nil {
			return intent
		}
		s.logger.Warn("classifier failed, using keyword heuristics", zap.Error(err))
	}
	return ParseHeuristic(prompt)
}

type classifiedIntent struct {
	ICP           string   `json:"icp"`
	Industry      string   `json:"industry"`
	Region        string   `json:"region"`
	SearchType    string   `json:"search_type"`
	ExtraKeywords []string `json:"extra_keywords"`
}

func (s *PromptService) classify(ctx context.Context, prompt string) (entity.ParsedIntent, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.classifier.Classify(callCtx, prompt)
	if err != nil {
		return entity.ParsedIntent{}, err
	}
	return decodeClassified(classifier.StripCodeFence(raw), prompt)
}

func decodeClassified(raw, prompt string) (entity.ParsedIntent, error) {
	result, err := gojsonschema.Validate(intentSchema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return entity.ParsedIntent{}, fmt.Errorf("classifier output is not json: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return entity.ParsedIntent{}, fmt.Errorf("classifier output rejected: %s", strings.Join(msgs, "; "))
	}

	var out classifiedIntent
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return entity.ParsedIntent{}, fmt.Errorf("decode classifier output: %w", err)
	}

	searchType, ok := entity.ParseSearchType(out.SearchType)
	if !ok {
		return entity.ParsedIntent{}, errors.New("classifier returned unknown search_type " + out.SearchType)
	}

	return entity.ParsedIntent{
		ICP:           orDefault(out.ICP, DefaultICP),
		Industry:      orDefault(out.Industry, DefaultIndustry),
		Region:        orDefault(out.Region, DefaultRegion),
		SearchType:    searchType,
		RawPrompt:     prompt,
		ExtraKeywords: cleanKeywords(out.ExtraKeywords),
	}, nil
}

// ParseHeuristic derives an intent from keyword tables alone.
func ParseHeuristic(prompt string) entity.ParsedIntent {
	lower := strings.ToLower(prompt)

	return entity.ParsedIntent{
		ICP:           orDefault(detectRoles(lower), DefaultICP),
		Industry:      orDefault(detectIndustry(lower), DefaultIndustry),
		Region:        orDefault(firstGroup(regionMatchers, lower), DefaultRegion),
		SearchType:    detectSearchType(lower),
		RawPrompt:     prompt,
		ExtraKeywords: quotedKeywords(prompt),
	}
}

func detectRoles(lower string) string {
	found := make([]string, 0, maxRoles)
	for _, m := range roleMatchers {
		if m.pattern.MatchString(lower) {
			found = append(found, m.keyword)
			if len(found) == maxRoles {
				break
			}
		}
	}
	return strings.Join(found, " ")
}

func detectIndustry(lower string) string {
	if industry := firstGroup(industryMatchers, lower); industry != "" {
		return industry
	}
	if match := industryPhrase.FindStringSubmatch(lower); match != nil {
		return match[1]
	}
	return ""
}

func detectSearchType(lower string) entity.SearchType {
	var agency, people bool
	for _, tok := range strings.Fields(lower) {
		tok = strings.Trim(tok, tokenTrim)
		if _, ok := agencyWords[tok]; ok {
			agency = true
		}
		if _, ok := peopleWords[tok]; ok {
			people = true
		}
	}

	switch {
	case agency && !people:
		return entity.SearchTypeAgencies
	case people && !agency:
		return entity.SearchTypePeople
	default:
		return entity.SearchTypeBoth
	}
}

func quotedKeywords(prompt string) []string {
	matches := quotedPhrase.FindAllStringSubmatch(prompt, -1)
	phrases := make([]string, 0, len(matches))
	for _, m := range matches {
		phrases = append(phrases, m[1])
	}
	return cleanKeywords(phrases)
}

// cleanKeywords trims, drops empties and removes case-insensitive duplicates.
func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.Join(strings.Fields(kw), " ")
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
