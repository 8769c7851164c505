package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Instruction is the system prompt sent with every classification request.
const Instruction = `You turn a sales prospecting request into a search intent.
Reply with exactly one JSON object and nothing else, using these keys:
  "icp": the target role or person type, e.g. "head of growth"
  "industry": the target industry, e.g. "fintech"
  "region": the target country, state or city, e.g. "United States"
  "search_type": "agencies" when only companies are wanted, "people" when only individuals are wanted, otherwise "both"
  "extra_keywords": a short list of extra terms that narrow the search, may be empty
Use an empty string for anything the request does not mention.`

var ErrEmptyResponse = errors.New("classifier: empty response")

// Classifier returns the raw model output for a prompt.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// LLM classifies prompts with a chat model.
type LLM struct {
	model llms.Model
}

// NewLLM connects to an OpenAI-compatible endpoint. An empty baseURL uses the
// OpenAI default; an empty token is replaced because local servers ignore it.
func NewLLM(baseURL, token, model string) (*LLM, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("classifier: model is required")
	}
	if token == "" {
		token = "none"
	}

	opts := []openai.Option{openai.WithModel(model), openai.WithToken(token)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("classifier: create client: %w", err)
	}
	return NewLLMWithModel(client), nil
}

func NewLLMWithModel(model llms.Model) *LLM {
	return &LLM{model: model}
}

func (l *LLM) Classify(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, Instruction),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := l.model.GenerateContent(ctx, messages, llms.WithTemperature(0), llms.WithJSONMode())
	if err != nil {
		return "", fmt.Errorf("classifier: generate: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrEmptyResponse
	}
	return StripCodeFence(resp.Choices[0].Content), nil
}

// StripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "json")
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
