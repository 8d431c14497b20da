package config

import "errors"

var (
	// ErrNoStartURL is returned when no start URL is provided
	ErrNoStartURL = errors.New("no start URL provided")
	// ErrInvalidStartURL is returned when the start URL is not an absolute http(s) URL
	ErrInvalidStartURL = errors.New("start URL must be an absolute http or https URL")
	// ErrInvalidWorkerCount is returned when worker_count is not greater than 0
	ErrInvalidWorkerCount = errors.New("worker_count must be greater than 0")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrInvalidMaxPages is returned when the page cap is not greater than 0
	ErrInvalidMaxPages = errors.New("max_pages must be greater than 0")
	// ErrEmptyDatabasePath is returned when database path is empty
	ErrEmptyDatabasePath = errors.New("database_path cannot be empty")
)
