package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", genai.APIError{Code: http.StatusInternalServerError}, true},
		{"bad gateway", genai.APIError{Code: http.StatusBadGateway}, true},
		{"rate limit", genai.APIError{Code: http.StatusTooManyRequests}, true},
		{"bad request", genai.APIError{Code: http.StatusBadRequest}, false},
		{"unauthorized", genai.APIError{Code: http.StatusUnauthorized}, false},
		{"wrapped rate limit", fmt.Errorf("generate: %w", genai.APIError{Code: 429}), true},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
		{"stray backticks", "`{\"a\":1}`", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func newTestGemini() *Gemini {
	return &Gemini{
		model:   "gemini-test",
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  zap.NewNop(),
	}
}

func TestGeminiGenerate(t *testing.T) {
	g := newTestGemini()

	var gotPrompt string
	g.generate = func(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		assert.Equal(t, "gemini-test", model)
		require.NotEmpty(t, contents)
		gotPrompt = contents[0].Parts[0].Text
		return textResponse("analysis"), nil
	}

	out, err := g.Generate(context.Background(), "review this resume")
	require.NoError(t, err)
	assert.Equal(t, "analysis", out)
	assert.Equal(t, "review this resume", gotPrompt)
}

func TestGeminiGenerateEmptyResponse(t *testing.T) {
	g := newTestGemini()
	g.generate = func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	}

	_, err := g.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestGeminiGenerateStreamDeliversChunks(t *testing.T) {
	g := newTestGemini()
	g.stream = func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
		return func(yield func(*genai.GenerateContentResponse, error) bool) {
			for _, chunk := range []string{"The resume ", "scores ", "72/100."} {
				if !yield(textResponse(chunk), nil) {
					return
				}
			}
		}
	}

	var sb strings.Builder
	err := g.GenerateStream(context.Background(), "prompt", func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "The resume scores 72/100.", sb.String())
}

func TestGeminiGenerateStreamPropagatesMidStreamError(t *testing.T) {
	g := newTestGemini()
	streamErr := genai.APIError{Code: http.StatusServiceUnavailable}
	g.stream = func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
		return func(yield func(*genai.GenerateContentResponse, error) bool) {
			if !yield(textResponse("partial"), nil) {
				return
			}
			yield(nil, streamErr)
		}
	}

	var chunks []string
	err := g.GenerateStream(context.Background(), "prompt", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})

	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, []string{"partial"}, chunks)
}

func TestGeminiGenerateStreamStopsWhenCallbackFails(t *testing.T) {
	g := newTestGemini()
	yielded := 0
	g.stream = func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
		return func(yield func(*genai.GenerateContentResponse, error) bool) {
			for {
				yielded++
				if !yield(textResponse("x"), nil) {
					return
				}
			}
		}
	}

	sinkErr := errors.New("consumer gone")
	err := g.GenerateStream(context.Background(), "prompt", func(string) error { return sinkErr })

	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 1, yielded)
}

func TestPromptTemplatesSubstitute(t *testing.T) {
	extract := ExtractResumePrompt("Senior Engineer with 5 years Go experience")
	assert.Contains(t, extract, "Senior Engineer with 5 years Go experience")
	assert.NotContains(t, extract, "{{RESUME_TEXT}}")

	analyze := AnalyzeResumePrompt("resume text", `{"title":"Backend Engineer"}`)
	assert.Contains(t, analyze, "resume text")
	assert.Contains(t, analyze, `{"title":"Backend Engineer"}`)
	assert.NotContains(t, analyze, "{{JOB_JSON}}")
}
