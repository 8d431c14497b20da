package scan

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

const auditCacheSize = 4096

// checkResult is a memoized HEAD outcome for one target URL.
type checkResult struct {
	statusCode int
	sizeKB     int
}

// Auditor classifies links as broken and flags oversized or alt-less
// images. Existence checks are memoized per URL within a scan: a target
// referenced from many pages is checked once, while every occurrence still
// gets its own row.
type Auditor struct {
	fetcher *Fetcher
	cache   *lru.Cache[string, checkResult]
	metrics *Metrics
}

// NewAuditor creates an auditor sharing the scan's fetcher.
func NewAuditor(fetcher *Fetcher, metrics *Metrics) (*Auditor, error) {
	cache, err := lru.New[string, checkResult](auditCacheSize)
	if err != nil {
		return nil, err
	}

	return &Auditor{
		fetcher: fetcher,
		cache:   cache,
		metrics: metrics,
	}, nil
}

// CheckLink returns the target's HEAD status and whether the link is
// broken: unreachable (status 0) or status >= 400.
func (a *Auditor) CheckLink(ctx context.Context, targetURL string) (statusCode int, broken bool) {
	result := a.check(ctx, targetURL)
	return result.statusCode, result.statusCode == 0 || result.statusCode >= 400
}

// CheckImage returns the image's size in KB from its Content-Length.
// Unreachable images report zero.
func (a *Auditor) CheckImage(ctx context.Context, imageURL string) (sizeKB int) {
	return a.check(ctx, imageURL).sizeKB
}

func (a *Auditor) check(ctx context.Context, url string) checkResult {
	if cached, ok := a.cache.Get(url); ok {
		return cached
	}

	a.metrics.IncLinkChecks()

	result := checkResult{}
	status, contentLength, err := a.fetcher.Head(ctx, url)
	if err == nil {
		result.statusCode = status
		result.sizeKB = int(contentLength / 1024)
	}

	a.cache.Add(url, result)
	return result
}
