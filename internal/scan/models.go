package scan

import "time"

// ScanStatus is the lifecycle state of a scan.
type ScanStatus string

// Scan lifecycle states. A scan moves strictly forward:
// pending -> crawling -> crawled -> analyzing -> completed, with failed
// reachable from any non-terminal state.
const (
	StatusPending   ScanStatus = "pending"
	StatusCrawling  ScanStatus = "crawling"
	StatusCrawled   ScanStatus = "crawled"
	StatusAnalyzing ScanStatus = "analyzing"
	StatusCompleted ScanStatus = "completed"
	StatusFailed    ScanStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s ScanStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CrawlStatus classifies a page relative to a prior scan of the same start URL.
type CrawlStatus string

const (
	CrawlStatusNew      CrawlStatus = "new"      // no prior page for this URL
	CrawlStatusUpdated  CrawlStatus = "updated"  // prior content hash differs
	CrawlStatusExisting CrawlStatus = "existing" // prior content hash matches
)

// ClassifyCrawlStatus applies the exhaustive new/updated/existing rule.
func ClassifyCrawlStatus(priorHash string, hasPrior bool, currentHash string) CrawlStatus {
	switch {
	case !hasPrior:
		return CrawlStatusNew
	case priorHash == currentHash:
		return CrawlStatusExisting
	default:
		return CrawlStatusUpdated
	}
}

// Scan is one crawl-and-analyze run starting from a single URL.
type Scan struct {
	ID            int64
	StartURL      string
	Status        ScanStatus
	CreatedAt     time.Time
	TotalIssues   int
	NewCount      int
	UpdatedCount  int
	ExistingCount int
	AnalysisJSON  string // aggregate summary, free-form JSON
}

// Page holds everything recorded about one crawled URL within a scan.
// A page row is written once by the crawl worker and updated once by the
// analysis pass; it is immutable afterwards.
type Page struct {
	ScanID          int64
	URL             string
	StatusCode      int
	Title           string
	MetaDescription string
	ContentHash     string
	IsOrphan        bool
	IncomingLinks   int
	CrawlStatus     CrawlStatus
	HTMLContent     string
	WordCount       int
	ReadingTimeMin  float64
	H1Count         int
	InternalLinks   int
	ExternalLinks   int
	CrawledAt       time.Time

	// Analysis results, populated during the analyzing phase
	FleschScore      float64
	TopKeywords      []string
	SpellingIssues   int
	GrammarIssues    int
	SpellingExamples []string
	GrammarExamples  []string
}

// Link records one anchor occurrence on one page. Every occurrence is
// recorded; there is no uniqueness constraint.
type Link struct {
	ScanID     int64
	SourceURL  string
	TargetURL  string
	AnchorText string
	StatusCode int
	IsBroken   bool
	IsInternal bool
}

// Image records one img tag occurrence on one page.
type Image struct {
	ScanID     int64
	PageURL    string
	ImageURL   string
	AltText    string
	FileSizeKB int
	IsLarge    bool
	MissingAlt bool
}

// Aggregates is the scan-level rollup written as a single atomic update
// after all workers have joined.
type Aggregates struct {
	TotalIssues   int
	NewCount      int
	UpdatedCount  int
	ExistingCount int
	AnalysisJSON  string
}

// Stats reports scan progress.
type Stats struct {
	PagesCrawled  int
	PagesAnalyzed int
	ErrorCount    int
	StartTime     time.Time
	Duration      time.Duration
}
