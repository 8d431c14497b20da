package scan

import (
	"net/url"
	"strings"
	"sync"
)

// FrontierEntry is one unit of crawl work.
type FrontierEntry struct {
	URL   string // normalized
	Depth int    // link distance from the start URL
}

// Frontier is the deduplicated FIFO work queue for one scan. A URL is
// enqueued at most once per scan, keyed by its normalized form, so shallow
// pages are crawled first and the page cap bounds total work.
type Frontier struct {
	mu       sync.Mutex
	queue    []FrontierEntry
	seen     map[string]struct{}
	inflight int
	maxPages int
	maxDepth int // 0 = unlimited
}

// NewFrontier creates a frontier with a page cap and optional depth cap.
func NewFrontier(maxPages, maxDepth int) *Frontier {
	return &Frontier{
		seen:     make(map[string]struct{}),
		maxPages: maxPages,
		maxDepth: maxDepth,
	}
}

// Enqueue adds a URL at the queue tail. It is a no-op if the normalized URL
// was seen before, the page cap is reached, or the depth cap is exceeded.
// It reports whether the URL was accepted.
func (f *Frontier) Enqueue(rawURL string, depth int) bool {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	if f.maxDepth > 0 && depth > f.maxDepth {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.seen[normalized]; dup {
		return false
	}
	if f.maxPages > 0 && len(f.seen) >= f.maxPages {
		return false
	}

	f.seen[normalized] = struct{}{}
	f.queue = append(f.queue, FrontierEntry{URL: normalized, Depth: depth})
	return true
}

// Dequeue removes and returns the oldest entry, marking it in-flight.
// Callers must invoke Done once processing finishes so Idle can detect the
// crawl join point without racing against workers that are still producing
// new URLs.
func (f *Frontier) Dequeue() (FrontierEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return FrontierEntry{}, false
	}

	entry := f.queue[0]
	f.queue = f.queue[1:]
	f.inflight++
	return entry, true
}

// Done marks one dequeued entry as fully processed.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inflight > 0 {
		f.inflight--
	}
}

// Idle reports whether the queue is empty and nothing is in flight.
func (f *Frontier) Idle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) == 0 && f.inflight == 0
}

// Seen reports whether the normalized URL was ever enqueued for this scan.
func (f *Frontier) Seen(rawURL string) bool {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[normalized]
	return ok
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// SeenCount returns the number of distinct URLs accepted so far.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// Drain discards all queued entries. Used when a scan is aborted so no
// further work is dispatched.
func (f *Frontier) Drain() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = nil
}

// NormalizeURL standardizes a URL so duplicates compare equal: scheme and
// host are lowercased, the trailing slash is stripped from the path, and the
// fragment is dropped.
func NormalizeURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.Fragment = ""

	return parsed.String(), nil
}
