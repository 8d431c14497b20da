package scan

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker caches robots.txt rules per host and answers allow/deny
// queries for the configured user agent. Unreachable or missing robots.txt
// means everything is allowed.
type RobotsChecker struct {
	fetcher   *Fetcher
	userAgent string
	ignore    bool

	mu     sync.RWMutex
	groups map[string]*robotstxt.Group
}

// NewRobotsChecker creates a robots.txt checker.
func NewRobotsChecker(fetcher *Fetcher, userAgent string, ignore bool) *RobotsChecker {
	return &RobotsChecker{
		fetcher:   fetcher,
		userAgent: userAgent,
		ignore:    ignore,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// IsAllowed reports whether the URL may be crawled.
func (r *RobotsChecker) IsAllowed(ctx context.Context, urlStr string) bool {
	if r.ignore {
		return true
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	group := r.getGroup(ctx, parsed.Scheme, parsed.Host)
	if group == nil {
		return true
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

func (r *RobotsChecker) getGroup(ctx context.Context, scheme, host string) *robotstxt.Group {
	r.mu.RLock()
	group, exists := r.groups[host]
	r.mu.RUnlock()

	if exists {
		return group
	}

	group = r.fetchGroup(ctx, scheme, host)

	r.mu.Lock()
	r.groups[host] = group
	r.mu.Unlock()

	return group
}

// fetchGroup retrieves and parses robots.txt for a host. A nil group means
// no restrictions apply.
func (r *RobotsChecker) fetchGroup(ctx context.Context, scheme, host string) *robotstxt.Group {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	resp, err := r.fetcher.Get(ctx, robotsURL)
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
	if err != nil {
		return nil
	}

	return data.FindGroup(r.userAgent)
}
