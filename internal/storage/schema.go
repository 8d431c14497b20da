package storage

const schemaSQL = `
-- One row per scan run. status tracks the lifecycle:
-- pending -> crawling -> crawled -> analyzing -> completed|failed
CREATE TABLE IF NOT EXISTS scans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    start_url TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'crawling', 'crawled', 'analyzing', 'completed', 'failed')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,

    -- Aggregates, written once at finalization
    total_issues INTEGER DEFAULT 0,
    new_count INTEGER DEFAULT 0,
    updated_count INTEGER DEFAULT 0,
    existing_count INTEGER DEFAULT 0,
    analysis_json TEXT
);

CREATE INDEX IF NOT EXISTS idx_scans_start_url ON scans(start_url, id);
CREATE INDEX IF NOT EXISTS idx_scans_status ON scans(status);

-- One row per crawled URL per scan. Crawl fields are written by the
-- worker, analysis fields by the analyzing phase.
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
    url TEXT NOT NULL,
    status_code INTEGER DEFAULT 0,
    title TEXT,
    meta_description TEXT,
    content_hash TEXT,
    is_orphan INTEGER DEFAULT 0,
    incoming_links INTEGER DEFAULT 0,
    crawl_status TEXT NOT NULL DEFAULT 'new' CHECK (crawl_status IN ('new', 'updated', 'existing')),
    html_content TEXT,
    word_count INTEGER DEFAULT 0,
    reading_time_min REAL DEFAULT 0,
    h1_count INTEGER DEFAULT 0,
    internal_links INTEGER DEFAULT 0,
    external_links INTEGER DEFAULT 0,
    crawled_at DATETIME,

    -- Analysis result fields (NULL until analyzed)
    flesch_score REAL DEFAULT 0,
    top_keywords TEXT,
    spelling_issues INTEGER DEFAULT 0,
    grammar_issues INTEGER DEFAULT 0,
    spelling_examples TEXT,
    grammar_examples TEXT,

    UNIQUE(scan_id, url)
);

CREATE INDEX IF NOT EXISTS idx_pages_scan ON pages(scan_id);
CREATE INDEX IF NOT EXISTS idx_pages_scan_url ON pages(scan_id, url);
CREATE INDEX IF NOT EXISTS idx_pages_content_hash ON pages(content_hash) WHERE content_hash IS NOT NULL;

-- One row per anchor occurrence. No uniqueness: the same target may be
-- linked many times from one page.
CREATE TABLE IF NOT EXISTS links (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
    source_url TEXT NOT NULL,
    target_url TEXT NOT NULL,
    anchor_text TEXT,
    status_code INTEGER DEFAULT 0,
    is_broken INTEGER DEFAULT 0,
    is_internal INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_links_scan ON links(scan_id);
CREATE INDEX IF NOT EXISTS idx_links_scan_target ON links(scan_id, target_url);
CREATE INDEX IF NOT EXISTS idx_links_broken ON links(scan_id, is_broken);

-- One row per img tag occurrence.
CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
    page_url TEXT NOT NULL,
    image_url TEXT NOT NULL,
    alt_text TEXT,
    file_size_kb INTEGER DEFAULT 0,
    is_large INTEGER DEFAULT 0,
    missing_alt INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_images_scan ON images(scan_id);
CREATE INDEX IF NOT EXISTS idx_images_missing_alt ON images(scan_id, missing_alt);

-- Process-wide key/value overrides read at scan start.
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY NOT NULL,
    value TEXT NOT NULL
);
`
