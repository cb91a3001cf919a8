package scrape

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidURL = errors.New("job url has no hostname")
	ErrNoScraper  = errors.New("no scraper registered for domain")
)

// Factory builds a fresh Scraper per resolution.
type Factory func() Scraper

type registryEntry struct {
	key     string
	factory Factory
}

// Registry maps hostname substrings to scraper factories. It is populated
// once at startup and read-only afterwards, so resolution takes no lock.
type Registry struct {
	entries []registryEntry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register associates a hostname key with a factory. Re-registering a key
// overwrites it in place, keeping its original precedence.
func (r *Registry) Register(hostnameKey string, factory Factory) {
	for i, e := range r.entries {
		if e.key == hostnameKey {
			r.entries[i].factory = factory
			return
		}
	}
	r.entries = append(r.entries, registryEntry{key: hostnameKey, factory: factory})
}

// Resolve picks the first registered scraper, in registration order, whose
// key is a substring of the URL's hostname. Substring matching tolerates
// regional subdomains ("seek.com.au" matches "www.seek.com.au").
func (r *Registry) Resolve(rawURL string) (Scraper, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	for _, e := range r.entries {
		if strings.Contains(host, e.key) {
			return e.factory(), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoScraper, host)
}
