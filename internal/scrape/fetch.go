// Retry-wrapped navigation and extraction of a single job posting.

package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"go-resume-insight/internal/browser"
	"go-resume-insight/internal/retry"
)

// ErrNavigationTimeout marks a page navigation that ran past its deadline.
// Only this class of failure is retried; selector errors propagate as-is.
var ErrNavigationTimeout = errors.New("navigation timeout")

// PageProvider is the slice of the browser pool the scrape step needs.
type PageProvider interface {
	Page(ctx context.Context) (playwright.Page, func(), error)
}

// fetchBackoff is shared across attempts; tests shrink the delays.
var fetchBackoff = retry.Policy{
	MaxAttempts:  3,
	InitialDelay: 2 * time.Second,
	MaxDelay:     10 * time.Second,
	Multiplier:   2,
}

// Fetch acquires a fresh page per attempt, navigates to the posting URL
// waiting only for DOM content, and delegates to the scraper. Navigation
// timeouts retry with exponential backoff; everything else is terminal.
func Fetch(ctx context.Context, provider PageProvider, jobURL string, scraper Scraper, logger *zap.Logger) (*JobData, error) {
	policy := fetchBackoff
	policy.Retryable = func(err error) bool {
		return errors.Is(err, ErrNavigationTimeout)
	}
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warn("retrying job page navigation",
			zap.String("job_url", jobURL),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
	}

	return retry.Do(ctx, policy, func(ctx context.Context) (*JobData, error) {
		return fetchOnce(ctx, provider, jobURL, scraper)
	})
}

func fetchOnce(ctx context.Context, provider PageProvider, jobURL string, scraper Scraper) (*JobData, error) {
	page, release, err := provider.Page(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := browser.BlockHeavyAssets(page); err != nil {
		return nil, fmt.Errorf("install request blocking: %w", err)
	}

	if _, err := page.Goto(jobURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return nil, fmt.Errorf("%w: goto %s: %w", ErrNavigationTimeout, jobURL, err)
		}
		return nil, fmt.Errorf("goto %s: %w", jobURL, err)
	}

	return scraper.Extract(ctx, page)
}
