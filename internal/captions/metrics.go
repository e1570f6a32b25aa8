package captions

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// metrics tracks operational counters across the pipeline.
var metrics struct {
	CacheHits         atomic.Int64
	CacheMisses       atomic.Int64
	PrimaryRequests   atomic.Int64
	SecondaryRequests atomic.Int64
	RateLimitHits     atomic.Int64
	Acquisitions      atomic.Int64
	Failures          atomic.Int64
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"cache_hits":         metrics.CacheHits.Load(),
		"cache_misses":       metrics.CacheMisses.Load(),
		"primary_requests":   metrics.PrimaryRequests.Load(),
		"secondary_requests": metrics.SecondaryRequests.Load(),
		"rate_limit_hits":    metrics.RateLimitHits.Load(),
		"acquisitions":       metrics.Acquisitions.Load(),
		"failures":           metrics.Failures.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"acquisitions", "failures",
		"cache_hits", "cache_misses",
		"primary_requests", "secondary_requests",
		"rate_limit_hits",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
