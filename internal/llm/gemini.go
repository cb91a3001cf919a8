package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// requestsPerMinute bounds outbound Gemini traffic across all jobs in the
// process. Hitting the provider limit anyway surfaces as a retryable 429.
const requestsPerMinute = 30

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type streamFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

// Gemini implements Client against the Gemini API backend.
type Gemini struct {
	model   string
	limiter *rate.Limiter
	logger  *zap.Logger

	generate generateFunc
	stream   streamFunc
}

// NewGemini creates a Gemini-backed Client.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Gemini{
		model:    model,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerMinute)/60, 1),
		logger:   logger,
		generate: client.Models.GenerateContent,
		stream:   client.Models.GenerateContentStream,
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := g.generate(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

func (g *Gemini) GenerateStream(ctx context.Context, prompt string, fn func(chunk string) error) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	for resp, err := range g.stream(ctx, g.model, genai.Text(prompt), nil) {
		if err != nil {
			return fmt.Errorf("generate content stream: %w", err)
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}
