// Package scan implements the scan orchestration pipeline: a state machine
// that drives one scan through pending -> crawling -> crawled -> analyzing
// -> completed|failed, fanning crawl work out to a bounded worker pool and
// aggregating results into the persistence sink.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seoscanhq/seoscan/internal/analyze"
	"github.com/seoscanhq/seoscan/internal/config"
	"github.com/seoscanhq/seoscan/internal/extract"
)

// idleWait is how long a worker sleeps when the frontier is momentarily
// empty but other workers are still in flight.
const idleWait = 25 * time.Millisecond

// Coordinator owns one scan at a time. It is the single writer of the
// scan's status; every phase transition is a sequential checkpoint even
// though the crawling and analyzing phases fan out internally.
type Coordinator struct {
	cfg      *config.ScanConfig
	store    Storage
	settings Settings // optional overrides, may be nil
	metrics  *Metrics

	statsMu sync.RWMutex
	stats   Stats

	scanID int64
	cancel context.CancelFunc
	done   chan struct{}
	runErr error
}

// NewCoordinator creates a coordinator.
func NewCoordinator(cfg *config.ScanConfig, store Storage, settings Settings, metrics *Metrics) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		store:    store,
		settings: settings,
		metrics:  metrics,
	}
}

// Start creates the scan row (status pending), returns its id synchronously
// and runs the scan in the background. Wait joins the run; Stop aborts it.
// The start URL is stored in normalized form so rescans of equivalent
// spellings (trailing slash, host casing) match prior scans.
func (c *Coordinator) Start(ctx context.Context, startURL string) (int64, error) {
	if normalized, err := NormalizeURL(startURL); err == nil {
		startURL = normalized
	}

	scanID, err := c.store.CreateScan(startURL)
	if err != nil {
		return 0, &StorageError{Op: "create scan", Err: err}
	}
	c.scanID = scanID

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.stats = Stats{StartTime: time.Now()}

	go func() {
		defer close(c.done)
		defer cancel()
		c.runErr = c.run(runCtx, scanID, startURL)
	}()

	return scanID, nil
}

// Wait blocks until the running scan reaches a terminal state and returns
// the run error, if any.
func (c *Coordinator) Wait() error {
	<-c.done
	return c.runErr
}

// Run is the blocking convenience wrapper: Start followed by Wait.
func (c *Coordinator) Run(ctx context.Context, startURL string) (int64, error) {
	scanID, err := c.Start(ctx, startURL)
	if err != nil {
		return 0, err
	}
	return scanID, c.Wait()
}

// Stop aborts the running scan: dispatch halts immediately, in-flight
// fetches finish or time out, and the scan is marked failed with partial
// data retained.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// GetStats returns current scan progress.
func (c *Coordinator) GetStats() Stats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()

	stats := c.stats
	stats.Duration = time.Since(stats.StartTime)
	return stats
}

// run drives the full state machine for one scan.
func (c *Coordinator) run(ctx context.Context, scanID int64, startURL string) error {
	started := time.Now()

	// Resolve settings before any transition: a ConfigError leaves the
	// scan pending.
	cfg := *c.cfg
	if err := applySettings(&cfg, c.settings); err != nil {
		slog.Error("Scan settings invalid", "scan_id", scanID, "error", err)
		return err
	}

	normalizedStart, err := NormalizeURL(startURL)
	if err != nil {
		ferr := &FetchError{URL: startURL, Err: err}
		c.fail(scanID, ferr)
		return ferr
	}
	parsedStart, err := url.Parse(normalizedStart)
	if err != nil || parsedStart.Host == "" {
		ferr := &FetchError{URL: startURL, Err: errors.New("invalid start URL")}
		c.fail(scanID, ferr)
		return ferr
	}

	fetcher := NewFetcher(cfg.UserAgent, cfg.RequestTimeout, c.metrics)
	defer fetcher.Close()

	auditor, err := NewAuditor(fetcher, c.metrics)
	if err != nil {
		c.fail(scanID, err)
		return err
	}

	run := &scanRun{
		coordinator:   c,
		cfg:           &cfg,
		store:         c.store,
		scanID:        scanID,
		startURL:      normalizedStart,
		startHost:     strings.ToLower(parsedStart.Host),
		isSitemapScan: extract.IsSitemapURL(startURL),
		fetcher:       fetcher,
		auditor:       auditor,
		robots:        NewRobotsChecker(fetcher, cfg.UserAgent, cfg.IgnoreRobots),
		limiter:       NewRateLimiter(cfg.RequestDelay),
		analyzer:      analyze.New(cfg.SnippetLimit),
		frontier:      NewFrontier(cfg.MaxPages, cfg.MaxDepth),
		sitemapURLs:   make(map[string]struct{}),
		crawledURLs:   make(map[string]struct{}),
	}

	if err := c.transition(scanID, StatusCrawling); err != nil {
		return err
	}
	slog.Info("Scan started", "scan_id", scanID, "start_url", normalizedStart, "sitemap_scan", run.isSitemapScan)

	if err := run.crawl(ctx); err != nil {
		c.fail(scanID, err)
		return err
	}
	if err := c.transition(scanID, StatusCrawled); err != nil {
		return err
	}

	if err := run.rollupLinkGraph(ctx); err != nil {
		c.fail(scanID, err)
		return err
	}

	if err := c.transition(scanID, StatusAnalyzing); err != nil {
		return err
	}
	if err := run.analyze(ctx); err != nil {
		c.fail(scanID, err)
		return err
	}

	if err := run.finalize(); err != nil {
		c.fail(scanID, err)
		return err
	}

	c.metrics.ObserveScanDuration(time.Since(started))
	slog.Info("Scan completed", "scan_id", scanID, "duration", time.Since(started))
	return nil
}

// transition is the single status-write path. Storage failures here are
// fatal.
func (c *Coordinator) transition(scanID int64, status ScanStatus) error {
	if err := c.store.UpdateScanStatus(scanID, status); err != nil {
		serr := &StorageError{Op: fmt.Sprintf("transition to %s", status), Err: err}
		c.fail(scanID, serr)
		return serr
	}
	slog.Info("Scan phase transition", "scan_id", scanID, "status", status)
	return nil
}

// fail marks the scan failed, keeping whatever partial rows were already
// committed. ConfigErrors never get here; those leave the scan pending.
func (c *Coordinator) fail(scanID int64, cause error) {
	slog.Error("Scan failed", "scan_id", scanID, "error", cause)
	if err := c.store.UpdateScanStatus(scanID, StatusFailed); err != nil {
		slog.Error("Failed to mark scan as failed", "scan_id", scanID, "error", err)
	}
}

func (c *Coordinator) incCrawled() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats.PagesCrawled++
}

func (c *Coordinator) incAnalyzed() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats.PagesAnalyzed++
}

func (c *Coordinator) incErrors() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats.ErrorCount++
}

// scanRun holds the per-scan mutable state shared by the crawl workers.
// No ambient globals: everything a worker touches hangs off this object.
type scanRun struct {
	coordinator   *Coordinator
	cfg           *config.ScanConfig
	store         Storage
	scanID        int64
	startURL      string // normalized
	startHost     string
	isSitemapScan bool

	fetcher  *Fetcher
	auditor  *Auditor
	robots   *RobotsChecker
	limiter  *RateLimiter
	analyzer *analyze.Analyzer
	frontier *Frontier

	mu          sync.Mutex
	sitemapURLs map[string]struct{} // normalized URLs listed in the sitemap
	crawledURLs map[string]struct{} // normalized URLs actually fetched
	fatalErr    error
}

// crawl runs the parallel crawling phase and blocks until all in-flight
// fetches have resolved (the join point). A scan-timeout expiry abandons
// the remaining frontier and returns nil so the scan proceeds to crawled
// with partial coverage; an external abort returns the context error.
func (s *scanRun) crawl(ctx context.Context) error {
	crawlCtx := ctx
	cancelTimeout := func() {}
	if s.cfg.ScanTimeout > 0 {
		crawlCtx, cancelTimeout = context.WithTimeout(ctx, s.cfg.ScanTimeout)
	}
	defer cancelTimeout()

	if err := s.seed(crawlCtx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.WorkerCount; i++ {
		wg.Add(1)
		go s.worker(crawlCtx, i, &wg)
	}
	wg.Wait()

	if err := s.fatal(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		// External abort, not the per-scan deadline
		return ctx.Err()
	}
	if crawlCtx.Err() != nil {
		slog.Warn("Scan timeout reached, proceeding with partial coverage",
			"scan_id", s.scanID, "abandoned", s.frontier.Len())
		s.frontier.Drain()
	}
	return nil
}

// seed populates the frontier. A sitemap scan seeds every <loc> entry and
// disables link following; a recursive scan seeds the start URL and reads
// the site's /sitemap.xml, when present, for orphan detection.
func (s *scanRun) seed(ctx context.Context) error {
	if s.isSitemapScan {
		resp, err := s.fetcher.Get(ctx, s.startURL)
		if err != nil {
			return err
		}
		if resp.StatusCode != 200 {
			return &FetchError{URL: s.startURL, Err: fmt.Errorf("sitemap returned status %d", resp.StatusCode)}
		}
		for _, loc := range extract.ParseSitemap(resp.Body) {
			normalized, err := NormalizeURL(loc)
			if err != nil {
				continue
			}
			s.mu.Lock()
			s.sitemapURLs[normalized] = struct{}{}
			s.mu.Unlock()
			s.frontier.Enqueue(normalized, 0)
		}
		if s.frontier.Len() == 0 {
			return &FetchError{URL: s.startURL, Err: errors.New("sitemap contains no URLs")}
		}
		return nil
	}

	if !s.frontier.Enqueue(s.startURL, 0) {
		return &FetchError{URL: s.startURL, Err: errors.New("start URL rejected by frontier")}
	}

	// Best-effort sitemap read; absence is not an error.
	sitemapURL := fmt.Sprintf("https://%s/sitemap.xml", s.startHost)
	if strings.HasPrefix(s.startURL, "http://") {
		sitemapURL = fmt.Sprintf("http://%s/sitemap.xml", s.startHost)
	}
	resp, err := s.fetcher.Get(ctx, sitemapURL)
	if err != nil || resp.StatusCode != 200 {
		return nil
	}
	for _, loc := range extract.ParseSitemap(resp.Body) {
		if normalized, err := NormalizeURL(loc); err == nil {
			s.mu.Lock()
			s.sitemapURLs[normalized] = struct{}{}
			s.mu.Unlock()
		}
	}
	return nil
}

// worker pulls from the frontier until the queue drains with nothing in
// flight, the context is cancelled, or a fatal storage error occurs.
func (s *scanRun) worker(ctx context.Context, id int, wg *sync.WaitGroup) {
	defer wg.Done()
	slog.Debug("Worker started", "scan_id", s.scanID, "worker_id", id)

	for {
		if ctx.Err() != nil || s.fatal() != nil {
			return
		}

		entry, ok := s.frontier.Dequeue()
		if !ok {
			if s.frontier.Idle() {
				slog.Debug("Worker exiting, frontier drained", "scan_id", s.scanID, "worker_id", id)
				return
			}
			time.Sleep(idleWait)
			continue
		}

		s.processEntry(ctx, id, entry)
		s.frontier.Done()
	}
}

// processEntry fetches, extracts, audits and persists a single page.
func (s *scanRun) processEntry(ctx context.Context, workerID int, entry FrontierEntry) {
	if !s.robots.IsAllowed(ctx, entry.URL) {
		slog.Info("URL disallowed by robots.txt", "scan_id", s.scanID, "worker_id", workerID, "url", entry.URL)
		return
	}
	if err := s.limiter.Wait(ctx, entry.URL); err != nil {
		return
	}

	page := &Page{
		ScanID:    s.scanID,
		URL:       entry.URL,
		CrawledAt: time.Now().UTC(),
	}
	var links []*Link
	var images []*Image

	resp, err := s.fetcher.Get(ctx, entry.URL)
	if err != nil {
		// FetchError: recorded, never fatal
		slog.Warn("Fetch failed", "scan_id", s.scanID, "worker_id", workerID, "url", entry.URL, "error", err)
		s.coordinator.incErrors()
	} else {
		page.StatusCode = resp.StatusCode
		if isHTML(resp.ContentType) && resp.StatusCode < 400 {
			links, images = s.extractPage(ctx, page, resp, entry.Depth)
		}
	}

	priorHash, hasPrior, err := s.store.PriorContentHash(s.scanID, s.startURL, entry.URL)
	if err != nil {
		s.abort(&StorageError{Op: "query prior page", Err: err})
		return
	}
	page.CrawlStatus = ClassifyCrawlStatus(priorHash, hasPrior, page.ContentHash)

	if err := s.store.SavePage(page); err != nil {
		s.abort(&StorageError{Op: "save page", Err: err})
		return
	}
	if err := s.store.SaveLinks(links); err != nil {
		s.abort(&StorageError{Op: "save links", Err: err})
		return
	}
	if err := s.store.SaveImages(images); err != nil {
		s.abort(&StorageError{Op: "save images", Err: err})
		return
	}

	s.mu.Lock()
	s.crawledURLs[entry.URL] = struct{}{}
	s.mu.Unlock()

	s.coordinator.incCrawled()
	s.coordinator.metrics.IncPagesCrawled()
	slog.Info("Worker processed URL", "scan_id", s.scanID, "worker_id", workerID,
		"url", entry.URL, "status", page.StatusCode, "links", len(links), "crawl_status", page.CrawlStatus)
}

// extractPage parses the fetched HTML, audits its links and images, and
// feeds newly discovered internal URLs back into the frontier.
func (s *scanRun) extractPage(ctx context.Context, page *Page, resp *FetchResult, depth int) ([]*Link, []*Image) {
	facts, err := extract.Extract(resp.Body, resp.FinalURL, s.startHost)
	if err != nil {
		// ParseError: keep whatever facts were recovered
		slog.Debug("Partial HTML parse", "scan_id", s.scanID, "url", page.URL, "error", err)
	}

	page.Title = facts.Title
	page.MetaDescription = facts.MetaDescription
	page.ContentHash = facts.ContentHash
	page.HTMLContent = string(resp.Body)
	page.WordCount = facts.WordCount
	page.ReadingTimeMin = facts.ReadingTimeMin
	page.H1Count = facts.H1Count

	var links []*Link
	for _, link := range facts.Links {
		target, err := NormalizeURL(link.URL)
		if err != nil {
			continue
		}

		if link.Internal {
			page.InternalLinks++
		} else {
			page.ExternalLinks++
		}

		status, broken := s.auditor.CheckLink(ctx, target)
		links = append(links, &Link{
			ScanID:     s.scanID,
			SourceURL:  page.URL,
			TargetURL:  target,
			AnchorText: link.AnchorText,
			StatusCode: status,
			IsBroken:   broken,
			IsInternal: link.Internal,
		})

		if link.Internal && !s.isSitemapScan && !extract.IsSitemapURL(target) {
			s.frontier.Enqueue(target, depth+1)
		}
	}

	var images []*Image
	for _, img := range facts.Images {
		sizeKB := s.auditor.CheckImage(ctx, img.URL)
		images = append(images, &Image{
			ScanID:     s.scanID,
			PageURL:    page.URL,
			ImageURL:   img.URL,
			AltText:    img.Alt,
			FileSizeKB: sizeKB,
			IsLarge:    sizeKB > s.cfg.MaxImageSizeKB,
			MissingAlt: !img.HasAlt || img.Alt == "",
		})
	}

	return links, images
}

// rollupLinkGraph computes incoming internal link counts and flags orphan
// pages once all crawl workers have joined.
func (s *scanRun) rollupLinkGraph(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	incoming, err := s.store.IncomingInternalLinks(s.scanID)
	if err != nil {
		return &StorageError{Op: "incoming links rollup", Err: err}
	}

	pages, err := s.store.ListPages(s.scanID)
	if err != nil {
		return &StorageError{Op: "list pages", Err: err}
	}

	for _, page := range pages {
		count := incoming[page.URL]
		orphan := count == 0 && page.URL != s.startURL && !s.isSitemapScan
		if err := s.store.UpdatePageLinkGraph(s.scanID, page.URL, count, orphan); err != nil {
			return &StorageError{Op: "update link graph", Err: err}
		}
	}
	return nil
}

// analyze runs the content analyzer over every eligible page. The phase is
// read-only across pages, so it fans out with a bounded errgroup.
func (s *scanRun) analyze(ctx context.Context) error {
	pages, err := s.store.ListPages(s.scanID)
	if err != nil {
		return &StorageError{Op: "list pages", Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.WorkerCount)

	for _, page := range pages {
		if page.HTMLContent == "" {
			continue
		}
		if page.CrawlStatus == CrawlStatusExisting && !s.cfg.AnalyzeUnchanged {
			continue
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			result := s.analyzer.Analyze(extract.TextOf([]byte(page.HTMLContent)))
			page.FleschScore = result.FleschScore
			page.TopKeywords = result.TopKeywords
			page.SpellingIssues = result.SpellingIssues
			page.GrammarIssues = result.GrammarIssues
			page.SpellingExamples = result.SpellingExamples
			page.GrammarExamples = result.GrammarExamples

			if err := s.store.UpdatePageAnalysis(page); err != nil {
				return &StorageError{Op: "update page analysis", Err: err}
			}

			s.coordinator.incAnalyzed()
			s.coordinator.metrics.IncPagesAnalyzed()
			return nil
		})
	}

	return g.Wait()
}

// finalize computes the scan aggregates and writes them together with the
// terminal completed status in one atomic update.
func (s *scanRun) finalize() error {
	pages, err := s.store.ListPages(s.scanID)
	if err != nil {
		return &StorageError{Op: "list pages", Err: err}
	}

	brokenLinks, err := s.store.CountBrokenLinks(s.scanID)
	if err != nil {
		return &StorageError{Op: "count broken links", Err: err}
	}
	missingAlt, err := s.store.CountMissingAltImages(s.scanID)
	if err != nil {
		return &StorageError{Op: "count missing alt", Err: err}
	}

	agg := &Aggregates{}
	spelling, grammar := 0, 0
	for _, page := range pages {
		spelling += page.SpellingIssues
		grammar += page.GrammarIssues
		switch page.CrawlStatus {
		case CrawlStatusNew:
			agg.NewCount++
		case CrawlStatusUpdated:
			agg.UpdatedCount++
		case CrawlStatusExisting:
			agg.ExistingCount++
		}
	}
	agg.TotalIssues = brokenLinks + missingAlt + spelling + grammar

	summary := buildSummary(pages, s.cfg, brokenLinks, missingAlt, s.sitemapOnly())
	agg.AnalysisJSON, err = summary.marshal()
	if err != nil {
		return &StorageError{Op: "marshal summary", Err: err}
	}

	if err := s.store.FinalizeScan(s.scanID, agg); err != nil {
		return &StorageError{Op: "finalize scan", Err: err}
	}
	return nil
}

// sitemapOnly lists sitemap URLs that were never fetched during the crawl.
func (s *scanRun) sitemapOnly() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var urls []string
	for u := range s.sitemapURLs {
		if _, crawled := s.crawledURLs[u]; !crawled {
			urls = append(urls, u)
		}
	}
	sort.Strings(urls)
	return urls
}

// abort records the first fatal error; workers observe it and stop.
func (s *scanRun) abort(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fatalErr == nil {
		s.fatalErr = err
	}
}

func (s *scanRun) fatal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatalErr
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(contentType, "text/html") ||
		strings.HasPrefix(contentType, "application/xhtml+xml")
}
