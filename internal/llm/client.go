package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Client is the interface for LLM providers.
type Client interface {
	// Generate sends the prompt and returns the full textual response.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream sends the prompt and invokes fn for every text chunk
	// as it arrives.
	GenerateStream(ctx context.Context, prompt string, fn func(chunk string) error) error
}

// IsRetryable classifies an upstream failure: server-side errors and
// rate limits are worth another attempt, any other client error is
// terminal.
func IsRetryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}

// CleanJSON strips markdown fences a model sometimes wraps around JSON
// output despite instructions.
func CleanJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
	}
	cleaned = strings.Trim(cleaned, "`")
	return strings.TrimSpace(cleaned)
}
