// Package storage provides SQLite persistence for scans, pages, links,
// images, and settings.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seoscanhq/seoscan/internal/scan"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements scan.Storage and scan.Settings using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at dbPath and applies
// the schema.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection prevents lock conflicts
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	storage := &SQLiteStorage{db: db}

	if err := storage.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// InitSchema creates the database schema.
func (s *SQLiteStorage) InitSchema() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000", // 30 second timeout for locks
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// CreateScan inserts a new scan row in the pending state.
func (s *SQLiteStorage) CreateScan(startURL string) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO scans (start_url, status, created_at)
		VALUES (?, 'pending', ?)
	`, startURL, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to create scan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan ID: %w", err)
	}
	return id, nil
}

// UpdateScanStatus moves a scan to the given lifecycle state.
func (s *SQLiteStorage) UpdateScanStatus(scanID int64, status scan.ScanStatus) error {
	result, err := s.db.Exec(`
		UPDATE scans SET status = ? WHERE id = ?
	`, string(status), scanID)
	if err != nil {
		return fmt.Errorf("failed to update scan status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check scan update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scan %d not found", scanID)
	}
	return nil
}

// GetScan loads one scan row.
func (s *SQLiteStorage) GetScan(scanID int64) (*scan.Scan, error) {
	var sc scan.Scan
	var analysisJSON sql.NullString

	err := s.db.QueryRow(`
		SELECT id, start_url, status, created_at,
		       total_issues, new_count, updated_count, existing_count, analysis_json
		FROM scans WHERE id = ?
	`, scanID).Scan(
		&sc.ID, &sc.StartURL, &sc.Status, &sc.CreatedAt,
		&sc.TotalIssues, &sc.NewCount, &sc.UpdatedCount, &sc.ExistingCount, &analysisJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scan %d not found", scanID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	sc.AnalysisJSON = analysisJSON.String
	return &sc, nil
}

// FinalizeScan writes the aggregates and the terminal completed status in
// a single statement.
func (s *SQLiteStorage) FinalizeScan(scanID int64, agg *scan.Aggregates) error {
	result, err := s.db.Exec(`
		UPDATE scans SET
			status = 'completed',
			total_issues = ?,
			new_count = ?,
			updated_count = ?,
			existing_count = ?,
			analysis_json = ?
		WHERE id = ?
	`, agg.TotalIssues, agg.NewCount, agg.UpdatedCount, agg.ExistingCount, agg.AnalysisJSON, scanID)
	if err != nil {
		return fmt.Errorf("failed to finalize scan: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check scan finalization: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scan %d not found", scanID)
	}
	return nil
}

// SavePage inserts the crawl facts for one page.
func (s *SQLiteStorage) SavePage(p *scan.Page) error {
	_, err := s.db.Exec(`
		INSERT INTO pages (
			scan_id, url, status_code, title, meta_description, content_hash,
			crawl_status, html_content, word_count, reading_time_min, h1_count,
			internal_links, external_links, crawled_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ScanID, p.URL, p.StatusCode, p.Title, p.MetaDescription, p.ContentHash,
		string(p.CrawlStatus), p.HTMLContent, p.WordCount, p.ReadingTimeMin, p.H1Count,
		p.InternalLinks, p.ExternalLinks, p.CrawledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save page %s: %w", p.URL, err)
	}
	return nil
}

// UpdatePageAnalysis writes the content-analysis columns for one page.
func (s *SQLiteStorage) UpdatePageAnalysis(p *scan.Page) error {
	keywords, err := json.Marshal(p.TopKeywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	spellingExamples, err := json.Marshal(p.SpellingExamples)
	if err != nil {
		return fmt.Errorf("failed to marshal spelling examples: %w", err)
	}
	grammarExamples, err := json.Marshal(p.GrammarExamples)
	if err != nil {
		return fmt.Errorf("failed to marshal grammar examples: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE pages SET
			flesch_score = ?,
			top_keywords = ?,
			spelling_issues = ?,
			grammar_issues = ?,
			spelling_examples = ?,
			grammar_examples = ?
		WHERE scan_id = ? AND url = ?
	`,
		p.FleschScore, string(keywords), p.SpellingIssues, p.GrammarIssues,
		string(spellingExamples), string(grammarExamples),
		p.ScanID, p.URL,
	)
	if err != nil {
		return fmt.Errorf("failed to update page analysis for %s: %w", p.URL, err)
	}
	return nil
}

// UpdatePageLinkGraph writes the incoming-link rollup for one page.
func (s *SQLiteStorage) UpdatePageLinkGraph(scanID int64, url string, incomingLinks int, isOrphan bool) error {
	_, err := s.db.Exec(`
		UPDATE pages SET incoming_links = ?, is_orphan = ?
		WHERE scan_id = ? AND url = ?
	`, incomingLinks, boolToInt(isOrphan), scanID, url)
	if err != nil {
		return fmt.Errorf("failed to update link graph for %s: %w", url, err)
	}
	return nil
}

// ListPages returns all page rows for a scan, ordered by URL for
// deterministic iteration.
func (s *SQLiteStorage) ListPages(scanID int64) ([]*scan.Page, error) {
	rows, err := s.db.Query(`
		SELECT scan_id, url, status_code, title, meta_description, content_hash,
		       is_orphan, incoming_links, crawl_status, html_content,
		       word_count, reading_time_min, h1_count, internal_links, external_links,
		       crawled_at, flesch_score, top_keywords, spelling_issues, grammar_issues,
		       spelling_examples, grammar_examples
		FROM pages WHERE scan_id = ? ORDER BY url
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pages []*scan.Page
	for rows.Next() {
		var p scan.Page
		var title, metaDesc, contentHash, htmlContent sql.NullString
		var keywords, spellingExamples, grammarExamples sql.NullString
		var isOrphan int
		var crawledAt sql.NullTime

		if err := rows.Scan(
			&p.ScanID, &p.URL, &p.StatusCode, &title, &metaDesc, &contentHash,
			&isOrphan, &p.IncomingLinks, &p.CrawlStatus, &htmlContent,
			&p.WordCount, &p.ReadingTimeMin, &p.H1Count, &p.InternalLinks, &p.ExternalLinks,
			&crawledAt, &p.FleschScore, &keywords, &p.SpellingIssues, &p.GrammarIssues,
			&spellingExamples, &grammarExamples,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}

		p.Title = title.String
		p.MetaDescription = metaDesc.String
		p.ContentHash = contentHash.String
		p.HTMLContent = htmlContent.String
		p.IsOrphan = isOrphan != 0
		p.CrawledAt = crawledAt.Time
		p.TopKeywords = unmarshalStrings(keywords)
		p.SpellingExamples = unmarshalStrings(spellingExamples)
		p.GrammarExamples = unmarshalStrings(grammarExamples)

		pages = append(pages, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}

	return pages, nil
}

// SaveLinks inserts link rows in a single transaction.
func (s *SQLiteStorage) SaveLinks(links []*scan.Link) error {
	if len(links) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO links (
			scan_id, source_url, target_url, anchor_text,
			status_code, is_broken, is_internal
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, link := range links {
		if _, err := stmt.Exec(
			link.ScanID, link.SourceURL, link.TargetURL, link.AnchorText,
			link.StatusCode, boolToInt(link.IsBroken), boolToInt(link.IsInternal),
		); err != nil {
			return fmt.Errorf("failed to insert link %s -> %s: %w", link.SourceURL, link.TargetURL, err)
		}
	}

	return tx.Commit()
}

// SaveImages inserts image rows in a single transaction.
func (s *SQLiteStorage) SaveImages(images []*scan.Image) error {
	if len(images) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO images (
			scan_id, page_url, image_url, alt_text,
			file_size_kb, is_large, missing_alt
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, img := range images {
		if _, err := stmt.Exec(
			img.ScanID, img.PageURL, img.ImageURL, img.AltText,
			img.FileSizeKB, boolToInt(img.IsLarge), boolToInt(img.MissingAlt),
		); err != nil {
			return fmt.Errorf("failed to insert image %s: %w", img.ImageURL, err)
		}
	}

	return tx.Commit()
}

// CountBrokenLinks returns the number of broken link rows for a scan.
func (s *SQLiteStorage) CountBrokenLinks(scanID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM links WHERE scan_id = ? AND is_broken = 1
	`, scanID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count broken links: %w", err)
	}
	return count, nil
}

// CountMissingAltImages returns the number of images without alt text.
func (s *SQLiteStorage) CountMissingAltImages(scanID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM images WHERE scan_id = ? AND missing_alt = 1
	`, scanID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count missing alt images: %w", err)
	}
	return count, nil
}

// IncomingInternalLinks returns, for each target URL, how many distinct
// pages in this scan link to it internally.
func (s *SQLiteStorage) IncomingInternalLinks(scanID int64) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT target_url, COUNT(DISTINCT source_url)
		FROM links
		WHERE scan_id = ? AND is_internal = 1 AND source_url != target_url
		GROUP BY target_url
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query incoming links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	incoming := make(map[string]int)
	for rows.Next() {
		var target string
		var count int
		if err := rows.Scan(&target, &count); err != nil {
			return nil, fmt.Errorf("failed to scan incoming link row: %w", err)
		}
		incoming[target] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incoming links: %w", err)
	}

	return incoming, nil
}

// PriorContentHash returns the content hash recorded for url by the most
// recent completed scan of the same start URL, excluding the scan in
// progress.
func (s *SQLiteStorage) PriorContentHash(scanID int64, startURL, url string) (string, bool, error) {
	var hash sql.NullString
	err := s.db.QueryRow(`
		SELECT p.content_hash
		FROM pages p
		JOIN scans sc ON sc.id = p.scan_id
		WHERE sc.start_url = ? AND sc.status = 'completed' AND sc.id != ? AND p.url = ?
		ORDER BY sc.id DESC
		LIMIT 1
	`, startURL, scanID, url).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query prior content hash: %w", err)
	}
	return hash.String, true, nil
}

// Get implements scan.Settings against the settings table. Lookup errors
// are treated as absent keys so a transient read failure cannot corrupt a
// scan's configuration.
func (s *SQLiteStorage) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// SetSetting stores a settings override.
func (s *SQLiteStorage) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unmarshalStrings(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil
	}
	return values
}
