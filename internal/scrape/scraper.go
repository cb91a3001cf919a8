// Define an interface for all job-posting scrapers
// Ensure consistency

package scrape

import (
	"context"

	"github.com/playwright-community/playwright-go"
)

// JobData is the structured job posting pulled from a rendered page. It is
// handed straight to the LLM prompt; nothing is persisted here.
type JobData struct {
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	Details  []string `json:"details"`
}

// Scraper extracts JobData from a page already navigated to the posting
// URL. Implementations are site-specific selector sets; a missing element
// is an error, never retried at this layer.
type Scraper interface {
	Extract(ctx context.Context, page playwright.Page) (*JobData, error)

	// Name is the site name (Seek, LinkedIn, ...)
	Name() string
}
