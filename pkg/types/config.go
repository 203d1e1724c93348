package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bmfulltext/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FullTextConfig holds settings for the tiered full-text service.
type FullTextConfig struct {
	HTTPConfig `yaml:",inline"`

	// ContactEmail is sent to the open-access lookup as required by its
	// polite-use policy.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`

	// MaxAttempts bounds retries of a transient failure within one tier
	// (default 3). Permanent absence (404, empty lookup) is never retried.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RequestsPerSecond throttles outbound calls across all tiers
	// (default 2). A negative value disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// CacheConfig holds settings for the PDF cache.
type CacheConfig struct {
	// Dir is the directory holding cached PDFs.
	Dir string `json:"dir" yaml:"dir"`
}

// StoreConfig holds settings for the paper store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`
}
