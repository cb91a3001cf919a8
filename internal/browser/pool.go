// Bounded pool of remote browser connections with semaphore-limited page
// sessions.

package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrNotStarted is returned when a page is requested before Startup.
	ErrNotStarted = errors.New("browser pool not started")
)

// Pool owns the playwright driver, a lazily-grown set of upstream browser
// connections (bounded by maxBrowsers) and a weighted semaphore bounding
// concurrently checked-out pages (maxPages).
type Pool struct {
	endpoint    string
	maxBrowsers int
	pages       *semaphore.Weighted
	logger      *zap.Logger

	mu       sync.Mutex
	pw       *playwright.Playwright
	browsers []playwright.Browser
	connect  func() (playwright.Browser, error)
	started  bool
}

func NewPool(endpoint string, maxBrowsers, maxPages int, logger *zap.Logger) *Pool {
	if maxBrowsers < 1 {
		maxBrowsers = 1
	}
	if maxPages < 1 {
		maxPages = 1
	}
	return &Pool{
		endpoint:    endpoint,
		maxBrowsers: maxBrowsers,
		pages:       semaphore.NewWeighted(int64(maxPages)),
		logger:      logger,
	}
}

// Startup launches the playwright driver. Must be called exactly once
// before any Page acquisition.
func (p *Pool) Startup() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("browser pool already started")
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright driver: %w", err)
	}
	p.pw = pw

	if p.connect == nil {
		p.connect = func() (playwright.Browser, error) {
			return pw.Firefox.Connect(p.endpoint)
		}
	}

	p.started = true
	p.logger.Info("browser pool started", zap.String("endpoint", p.endpoint))
	return nil
}

// Page blocks until a page slot is free, then hands out a page inside a
// fresh isolated context on one of the pooled browsers. The returned
// release func must be called on every exit path; it tears down the
// context and frees the slot while the browser connection stays pooled.
func (p *Pool) Page(ctx context.Context) (playwright.Page, func(), error) {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return nil, nil, ErrNotStarted
	}

	if err := p.pages.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}

	b, err := p.pickBrowser()
	if err != nil {
		p.pages.Release(1)
		return nil, nil, err
	}

	browserCtx, err := b.NewContext()
	if err != nil {
		p.pages.Release(1)
		return nil, nil, fmt.Errorf("create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		p.pages.Release(1)
		return nil, nil, fmt.Errorf("create page: %w", err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := browserCtx.Close(); err != nil {
				p.logger.Warn("closing browser context", zap.Error(err))
			}
			p.pages.Release(1)
		})
	}
	return page, release, nil
}

// pickBrowser connects a new upstream browser while under the cap, then
// spreads load by uniform random choice among existing connections.
func (p *Pool) pickBrowser() (playwright.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.browsers) < p.maxBrowsers {
		b, err := p.connect()
		if err != nil {
			return nil, fmt.Errorf("connect browser: %w", err)
		}
		p.browsers = append(p.browsers, b)
		p.logger.Info("connected upstream browser", zap.Int("browsers", len(p.browsers)))
		return b, nil
	}

	return p.browsers[rand.Intn(len(p.browsers))], nil
}

// Shutdown closes all tracked browsers and stops the driver. The caller is
// expected to have quiesced acquisitions first.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}

	var errs []error
	for _, b := range p.browsers {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.browsers = nil

	if p.pw != nil {
		if err := p.pw.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	p.started = false

	return errors.Join(errs...)
}
