// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. SEC EDGAR
	// rejects requests without a declared contact identity, e.g.
	// "Sample Company admin@example.com".
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the filing retrieval stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// RequestDelay is the delay between consecutive EDGAR requests
	// (default 1s; SEC allows at most 10 requests/second).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MinYear limits retrieval to filings from this year onward (default 2020).
	MinYear int `json:"min_year" yaml:"min_year"`

	// FilingsDir is the base directory for downloaded filings
	// (one subdirectory per ticker).
	FilingsDir string `json:"filings_dir" yaml:"filings_dir"`
}

// ExtractConfig holds settings for the extraction stage.
type ExtractConfig struct {
	// FilingsDir is the base directory for downloaded filings.
	FilingsDir string `json:"filings_dir" yaml:"filings_dir"`

	// SkipEmptyRows suppresses structural placeholder rows that carry no
	// value in any period column.
	SkipEmptyRows bool `json:"skip_empty_rows" yaml:"skip_empty_rows"`

	// Workers is the number of filings processed concurrently (default 1).
	Workers int `json:"workers" yaml:"workers"`
}

// StoreConfig holds settings for the report database.
type StoreConfig struct {
	// DBDir is the directory containing the SQLite database file.
	DBDir string `json:"db_dir" yaml:"db_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Extract ExtractConfig `json:"extract" yaml:"extract"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}
