// Package webfetch fetches website content for downstream extraction.
package webfetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client fetches the content of a single URL.
type Client interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Option configures the fetcher.
type Option func(*fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *fetcher) {
		f.hc = hc
	}
}

// WithMaxBodyBytes caps the response size read per fetch.
func WithMaxBodyBytes(n int64) Option {
	return func(f *fetcher) {
		f.maxBody = n
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *fetcher) {
		f.userAgent = ua
	}
}

type fetcher struct {
	hc        *http.Client
	maxBody   int64
	userAgent string
}

// NewClient creates a fetcher with the given options.
func NewClient(opts ...Option) Client {
	f := &fetcher{
		hc:        &http.Client{Timeout: 30 * time.Second},
		maxBody:   2 << 20,
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrapf(err, "webfetch: build request %s", url)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.5")

	resp, err := f.hc.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "webfetch: fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", eris.Errorf("webfetch: %s returned HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return "", eris.Wrapf(err, "webfetch: read %s", url)
	}
	return string(body), nil
}
