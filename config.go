package countersign

import "time"

// Config holds configuration for the countersign engine.
type Config struct {
	// DecodeCacheTTL is the time-to-live for cached decoded permission
	// sets. Zero means no caching.
	DecodeCacheTTL time.Duration `json:"decode_cache_ttl,omitempty"`

	// DefaultPageSize is the page size used by listing operations when the
	// caller does not specify one. Defaults to 50.
	DefaultPageSize int `json:"default_page_size,omitempty"`

	// MaxPageSize caps caller-supplied page sizes. Defaults to 1000.
	MaxPageSize int `json:"max_page_size,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize: 50,
		MaxPageSize:     1000,
	}
}

// PageSize clamps a caller-supplied page size to the configured bounds.
func (c Config) PageSize(requested int) int {
	if requested <= 0 {
		return c.DefaultPageSize
	}
	if c.MaxPageSize > 0 && requested > c.MaxPageSize {
		return c.MaxPageSize
	}
	return requested
}
