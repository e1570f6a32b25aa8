package captions

import (
	"net/http"
	"time"
)

// Config holds all pipeline configuration, injected from main.
type Config struct {
	PreferredLanguages []string      // ordered, best first
	TranslateTo        string        // translation target for the translated-track pass
	CacheTTL           time.Duration // transcripts older than this are refetched
	CacheMaxEntries    int           // L1 entry bound (0 = unbounded)
	MaxAttempts        int           // retry budget per source tier
	BaseDelay          time.Duration // first retry delay, doubles per attempt
	CapDelay           time.Duration // backoff ceiling
	JitterMax          time.Duration // additive jitter, uniform in [0, JitterMax)
	AdmissionCapacity  int           // max simultaneous upstream fetches
	ScrapeEnabled      bool          // allow the yt-dlp fallback tier
	ScrapeRateLimit    string        // yt-dlp transfer cap, e.g. "200K" (empty = none)
	RequestTimeout     time.Duration // overall deadline per AcquireTranscript (0 = caller's ctx only)
	HTTPClient         *http.Client
}

// DefaultConfig mirrors the production defaults; main overrides from env.
var DefaultConfig = Config{
	PreferredLanguages: []string{"en", "en-US", "en-GB"},
	TranslateTo:        "en",
	CacheTTL:           7 * 24 * time.Hour,
	CacheMaxEntries:    1000,
	MaxAttempts:        5,
	BaseDelay:          800 * time.Millisecond,
	CapDelay:           8 * time.Second,
	JitterMax:          500 * time.Millisecond,
	AdmissionCapacity:  1,
	ScrapeEnabled:      true,
	RequestTimeout:     90 * time.Second,
}

// retryConfig derives the backoff settings for the retry executor.
func (c Config) retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: c.MaxAttempts,
		BaseDelay:   c.BaseDelay,
		CapDelay:    c.CapDelay,
		JitterMax:   c.JitterMax,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig
	if len(c.PreferredLanguages) == 0 {
		c.PreferredLanguages = d.PreferredLanguages
	}
	if c.TranslateTo == "" {
		c.TranslateTo = d.TranslateTo
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.CapDelay <= 0 {
		c.CapDelay = d.CapDelay
	}
	if c.AdmissionCapacity <= 0 {
		c.AdmissionCapacity = d.AdmissionCapacity
	}
	return c
}
