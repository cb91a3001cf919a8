package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Fakes satisfy the playwright interfaces by embedding them and overriding
// only what the pool touches.

type fakeBrowser struct {
	playwright.Browser
	closed atomic.Bool
}

func (b *fakeBrowser) NewContext(...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	return &fakeContext{}, nil
}

func (b *fakeBrowser) Close(...playwright.BrowserCloseOptions) error {
	b.closed.Store(true)
	return nil
}

type fakeContext struct {
	playwright.BrowserContext
	closed atomic.Bool
}

func (c *fakeContext) NewPage() (playwright.Page, error) {
	return &fakePage{}, nil
}

func (c *fakeContext) Close(...playwright.BrowserContextCloseOptions) error {
	c.closed.Store(true)
	return nil
}

type fakePage struct {
	playwright.Page
}

// newTestPool wires a started pool around a stub connector, skipping the
// playwright driver entirely.
func newTestPool(t *testing.T, maxBrowsers, maxPages int, connect func() (playwright.Browser, error)) *Pool {
	t.Helper()
	p := NewPool("ws://test", maxBrowsers, maxPages, zap.NewNop())
	p.connect = connect
	p.started = true
	return p
}

func TestPoolRequiresStartup(t *testing.T) {
	p := NewPool("ws://test", 1, 1, zap.NewNop())

	_, _, err := p.Page(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestPoolBoundsConcurrentPages(t *testing.T) {
	p := newTestPool(t, 1, 2, func() (playwright.Browser, error) {
		return &fakeBrowser{}, nil
	})

	var current, peak atomic.Int32
	var wg sync.WaitGroup

	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, release, err := p.Page(context.Background())
			require.NoError(t, err)

			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}

			time.Sleep(20 * time.Millisecond)
			current.Add(-1)
			release()
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(2), peak.Load(), "no more than max_pages sessions may be live at once")
}

func TestPoolNeverExceedsMaxBrowsers(t *testing.T) {
	var connects atomic.Int32
	p := newTestPool(t, 2, 4, func() (playwright.Browser, error) {
		connects.Add(1)
		return &fakeBrowser{}, nil
	})

	for range 8 {
		_, release, err := p.Page(context.Background())
		require.NoError(t, err)
		release()
	}

	assert.Equal(t, int32(2), connects.Load())
}

func TestPoolReleasesContextAndSlot(t *testing.T) {
	b := &fakeBrowser{}
	p := newTestPool(t, 1, 1, func() (playwright.Browser, error) { return b, nil })

	page, release, err := p.Page(context.Background())
	require.NoError(t, err)
	require.NotNil(t, page)

	// Double release must be safe and free the slot exactly once.
	release()
	release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, release2, err := p.Page(ctx)
	require.NoError(t, err, "slot should be free after release")
	release2()
}

func TestPoolConnectFailurePropagatesAndFreesSlot(t *testing.T) {
	connectErr := errors.New("upstream unreachable")
	failing := true
	p := newTestPool(t, 1, 1, func() (playwright.Browser, error) {
		if failing {
			return nil, connectErr
		}
		return &fakeBrowser{}, nil
	})

	_, _, err := p.Page(context.Background())
	assert.ErrorIs(t, err, connectErr)

	// The failed acquisition must not leak its page slot.
	failing = false
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, release, err := p.Page(ctx)
	require.NoError(t, err)
	release()
}

func TestPoolAcquireRespectsContext(t *testing.T) {
	p := newTestPool(t, 1, 1, func() (playwright.Browser, error) {
		return &fakeBrowser{}, nil
	})

	_, release, err := p.Page(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err = p.Page(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPoolShutdownClosesBrowsers(t *testing.T) {
	b := &fakeBrowser{}
	p := newTestPool(t, 1, 1, func() (playwright.Browser, error) { return b, nil })

	_, release, err := p.Page(context.Background())
	require.NoError(t, err)
	release()

	require.NoError(t, p.Shutdown())
	assert.True(t, b.closed.Load())
}
