package scan

// Storage is the persistence sink consumed by the coordinator. Each row
// write is independent; only FinalizeScan must be atomic.
type Storage interface {
	// Scan lifecycle
	CreateScan(startURL string) (int64, error)
	UpdateScanStatus(scanID int64, status ScanStatus) error
	GetScan(scanID int64) (*Scan, error)
	// FinalizeScan writes the aggregates and the terminal completed status
	// in a single statement.
	FinalizeScan(scanID int64, agg *Aggregates) error

	// Page rows: SavePage inserts the crawl facts, UpdatePageAnalysis adds
	// the content-analysis columns, UpdatePageLinkGraph the incoming-link
	// rollup.
	SavePage(p *Page) error
	UpdatePageAnalysis(p *Page) error
	UpdatePageLinkGraph(scanID int64, url string, incomingLinks int, isOrphan bool) error
	ListPages(scanID int64) ([]*Page, error)

	// Link/Image rows, append-only per scan
	SaveLinks(links []*Link) error
	SaveImages(images []*Image) error
	CountBrokenLinks(scanID int64) (int, error)
	CountMissingAltImages(scanID int64) (int, error)
	IncomingInternalLinks(scanID int64) (map[string]int, error)

	// PriorContentHash returns the content hash recorded for url by the most
	// recent completed scan of the same start URL, if any.
	PriorContentHash(scanID int64, startURL, url string) (hash string, ok bool, err error)

	Close() error
}

// Settings provides process-wide key/value configuration read at scan start.
type Settings interface {
	Get(key string) (value string, ok bool)
}
