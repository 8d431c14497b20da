package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const maxResponseBytes = 10 << 20 // cap page bodies at 10MB

// FetchResult is the outcome of a successful GET, including non-2xx
// responses. HTTP error statuses are data, not errors.
type FetchResult struct {
	StatusCode  int
	Body        []byte
	ContentType string
	FinalURL    string // after redirects
}

// Fetcher retrieves URLs with per-request timeouts and bounded retries.
// Transient network failures are retried with exponential backoff;
// 4xx/5xx responses are returned as-is without retrying.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxRetries  int
	backoffBase time.Duration
	metrics     *Metrics
}

// NewFetcher creates a fetcher with a dedicated HTTP client.
func NewFetcher(userAgent string, timeout time.Duration, metrics *Metrics) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("too many redirects")
			}
			return nil
		},
	}

	return NewFetcherWithClient(client, userAgent, metrics)
}

// NewFetcherWithClient creates a fetcher around an existing client.
// Tests use this to install a mocked transport.
func NewFetcherWithClient(client *http.Client, userAgent string, metrics *Metrics) *Fetcher {
	return &Fetcher{
		client:      client,
		userAgent:   userAgent,
		maxRetries:  3,
		backoffBase: 500 * time.Millisecond,
		metrics:     metrics,
	}
}

// Client exposes the underlying HTTP client for transport interception in tests.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Get retrieves a URL. The returned error is always a *FetchError and means
// the URL was unreachable after retries; HTTP statuses never produce errors.
func (f *Fetcher) Get(ctx context.Context, url string) (*FetchResult, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			f.metrics.IncRetries()
			if err := sleepContext(ctx, f.backoff(attempt)); err != nil {
				break
			}
		}

		result, err := f.doGet(ctx, url)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	f.metrics.IncFetchError("network_error")
	return nil, &FetchError{URL: url, Err: lastErr}
}

// Head issues a lightweight existence check and returns the status code and
// Content-Length. A zero status means the URL was unreachable.
func (f *Fetcher) Head(ctx context.Context, url string) (status int, contentLength int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, 0, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, 0, &FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	length := resp.ContentLength
	if length < 0 {
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			if parsed, perr := strconv.ParseInt(cl, 10, 64); perr == nil {
				length = parsed
			}
		}
	}
	if length < 0 {
		length = 0
	}

	return resp.StatusCode, length, nil
}

// Close releases idle connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

func (f *Fetcher) doGet(ctx context.Context, url string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	// Mocked transports may leave resp.Request unset
	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &FetchResult{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
	}, nil
}

// backoff doubles the base delay per attempt: 500ms, 1s, 2s.
func (f *Fetcher) backoff(attempt int) time.Duration {
	return f.backoffBase << (attempt - 1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
