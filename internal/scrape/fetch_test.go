package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func shrinkBackoff(t *testing.T) {
	t.Helper()
	original := fetchBackoff
	fetchBackoff.InitialDelay = time.Millisecond
	fetchBackoff.MaxDelay = time.Millisecond
	t.Cleanup(func() { fetchBackoff = original })
}

type fetchPage struct {
	playwright.Page
	gotoErr func() error
}

func (p *fetchPage) Route(url interface{}, handler func(playwright.Route), times ...int) error {
	return nil
}

func (p *fetchPage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	if err := p.gotoErr(); err != nil {
		return nil, err
	}
	return nil, nil
}

type fetchProvider struct {
	page     *fetchPage
	acquired int
	released int
}

func (f *fetchProvider) Page(context.Context) (playwright.Page, func(), error) {
	f.acquired++
	return f.page, func() { f.released++ }, nil
}

type stubScraper struct {
	data     *JobData
	err      error
	extracts int
}

func (s *stubScraper) Name() string { return "stub" }

func (s *stubScraper) Extract(context.Context, playwright.Page) (*JobData, error) {
	s.extracts++
	return s.data, s.err
}

func TestFetchRetriesNavigationTimeouts(t *testing.T) {
	shrinkBackoff(t)

	timeouts := 2
	provider := &fetchProvider{page: &fetchPage{gotoErr: func() error {
		if timeouts > 0 {
			timeouts--
			return playwright.ErrTimeout
		}
		return nil
	}}}
	scraper := &stubScraper{data: &JobData{Title: "Backend Engineer"}}

	data, err := Fetch(context.Background(), provider, "https://www.seek.com.au/job/1", scraper, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", data.Title)
	assert.Equal(t, 3, provider.acquired, "a fresh page per attempt")
	assert.Equal(t, 3, provider.released, "every attempt releases its page")
	assert.Equal(t, 1, scraper.extracts)
}

func TestFetchExhaustsOnPersistentTimeout(t *testing.T) {
	shrinkBackoff(t)

	provider := &fetchProvider{page: &fetchPage{gotoErr: func() error {
		return playwright.ErrTimeout
	}}}

	_, err := Fetch(context.Background(), provider, "https://www.seek.com.au/job/1", &stubScraper{}, zap.NewNop())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigationTimeout)
	assert.Equal(t, 3, provider.acquired)
	assert.Equal(t, 3, provider.released)
}

func TestFetchDoesNotRetryNonTimeoutNavigation(t *testing.T) {
	shrinkBackoff(t)

	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	provider := &fetchProvider{page: &fetchPage{gotoErr: func() error { return navErr }}}

	_, err := Fetch(context.Background(), provider, "https://www.seek.com.au/job/1", &stubScraper{}, zap.NewNop())

	assert.ErrorIs(t, err, navErr)
	assert.Equal(t, 1, provider.acquired)
}

func TestFetchDoesNotRetrySelectorErrors(t *testing.T) {
	shrinkBackoff(t)

	provider := &fetchProvider{page: &fetchPage{gotoErr: func() error { return nil }}}
	scraper := &stubScraper{err: errors.New("seek: job title: element not found")}

	_, err := Fetch(context.Background(), provider, "https://www.seek.com.au/job/1", scraper, zap.NewNop())

	require.Error(t, err)
	assert.Equal(t, 1, scraper.extracts, "extraction failures are terminal")
	assert.Equal(t, 1, provider.released)
}
