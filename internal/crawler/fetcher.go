package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher issues the single HTTP GET a crawl task needs, applying a fixed
// timeout and user agent. Carries bounded-redirect handling but no
// redirect-chain tracking, since nothing downstream consumes a redirect
// chain here.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// FetchResult is the outcome of one fetch attempt.
type FetchResult struct {
	StatusCode int
	Body       []byte
}

// NewFetcher builds a Fetcher with a bounded redirect chain and a fixed
// per-request timeout.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Fetch retrieves url and reads its body fully. A non-2xx status is not an
// error: callers decide whether to treat it as a dead end.
func (f *Fetcher) Fetch(ctx context.Context, url string) (FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch: build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch: %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch: read body for %s: %w", url, err)
	}

	return FetchResult{StatusCode: resp.StatusCode, Body: body}, nil
}
