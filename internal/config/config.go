// Package config provides configuration management for the scanner.
// It defines configuration structures and default values for scan parameters.
package config

import (
	"net/url"
	"time"
)

// ScanConfig holds scanner configuration
type ScanConfig struct {
	// Basic scan parameters
	StartURL       string        `mapstructure:"start_url" yaml:"start_url"`             // URL the scan starts from
	WorkerCount    int           `mapstructure:"worker_count" yaml:"worker_count"`       // Number of concurrent crawl workers
	RequestDelay   time.Duration `mapstructure:"request_delay" yaml:"request_delay"`     // Delay between requests per host
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // Per-fetch HTTP timeout
	ScanTimeout    time.Duration `mapstructure:"scan_timeout" yaml:"scan_timeout"`       // Wall-clock cap for a whole scan (0=unlimited)
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`           // HTTP User-Agent header
	IgnoreRobots   bool          `mapstructure:"ignore_robots" yaml:"ignore_robots"`     // Whether to skip robots.txt checks

	// Crawl limits
	MaxPages int `mapstructure:"max_pages" yaml:"max_pages"` // Stop enqueueing after N pages
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"` // Maximum link depth from the start URL (0=unlimited)

	// Audit thresholds
	MaxImageSizeKB int `mapstructure:"max_image_size_kb" yaml:"max_image_size_kb"` // Images above this are flagged as large

	// Content analysis
	SnippetLimit     int  `mapstructure:"snippet_limit" yaml:"snippet_limit"`         // Max example snippets stored per issue kind
	AnalyzeUnchanged bool `mapstructure:"analyze_unchanged" yaml:"analyze_unchanged"` // Re-analyze pages whose content hash matched a prior scan
	MinTitleLength   int  `mapstructure:"min_title_length" yaml:"min_title_length"`
	MaxTitleLength   int  `mapstructure:"max_title_length" yaml:"max_title_length"`
	MinDescLength    int  `mapstructure:"min_desc_length" yaml:"min_desc_length"`
	MaxDescLength    int  `mapstructure:"max_desc_length" yaml:"max_desc_length"`

	// Database configuration
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"` // Path to SQLite database file
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *ScanConfig {
	return &ScanConfig{
		WorkerCount:    4,
		RequestDelay:   100 * time.Millisecond,
		RequestTimeout: 10 * time.Second,
		ScanTimeout:    30 * time.Minute,
		UserAgent:      "SEOScan/1.0",
		MaxPages:       200,
		MaxDepth:       0,
		MaxImageSizeKB: 150,
		SnippetLimit:   5,
		MinTitleLength: 10,
		MaxTitleLength: 60,
		MinDescLength:  70,
		MaxDescLength:  160,
		DatabasePath:   "./seoscan.db",
	}
}

// Validate checks if the configuration is valid
func (c *ScanConfig) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}

	parsed, err := url.Parse(c.StartURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return ErrInvalidStartURL
	}

	if c.WorkerCount <= 0 {
		return ErrInvalidWorkerCount
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// Enforce minimum delay of 50ms so workers cannot hammer a single host
	if c.RequestDelay < 50*time.Millisecond {
		c.RequestDelay = 50 * time.Millisecond
	}

	if c.DatabasePath == "" {
		return ErrEmptyDatabasePath
	}

	if c.SnippetLimit < 0 {
		c.SnippetLimit = 0
	}

	return nil
}
