package captions

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores fetched transcripts keyed by video ID. It is a best-effort
// optimization: implementations log storage errors and report a miss rather
// than propagating them.
type Cache interface {
	Get(ctx context.Context, videoID string) (string, bool)
	Set(ctx context.Context, videoID, text string)
}

// TieredCache is a 2-tier transcript cache: L1 in-memory + optional L2 Redis.
// L1 is fast but lost on restart; L2 survives restarts and is shared across
// replicas. Expired entries are purged lazily on read.
type TieredCache struct {
	l1         sync.Map // key → *cacheEntry
	rdb        *redis.Client
	ttl        time.Duration
	maxEntries int
}

type cacheEntry struct {
	text      string
	fetchedAt time.Time
}

// NewTieredCache sets up the transcript cache. redisURL can be empty to
// disable L2.
func NewTieredCache(redisURL string, ttl time.Duration, maxEntries int) *TieredCache {
	c := &TieredCache{ttl: ttl, maxEntries: maxEntries}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	slog.Info("cache: initialized",
		slog.Duration("ttl", ttl),
		slog.Bool("redis", c.rdb != nil),
		slog.Int("max_entries", maxEntries))
	return c
}

// cacheKey builds a deterministic content-addressed key. Hashing keeps the
// key safe for backends with key or filename constraints.
func cacheKey(videoID string) string {
	hash := sha256.Sum256([]byte(videoID))
	return fmt.Sprintf("tr:%x", hash[:12])
}

// Get tries L1, then L2. On L2 hit, populates L1.
func (c *TieredCache) Get(ctx context.Context, videoID string) (string, bool) {
	key := cacheKey(videoID)

	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Since(entry.fetchedAt) < c.ttl {
			metrics.CacheHits.Add(1)
			return entry.text, true
		}
		c.l1.Delete(key) // expired
	}

	if c.rdb != nil {
		text, err := c.rdb.Get(ctx, key).Result()
		if err == nil && text != "" {
			metrics.CacheHits.Add(1)
			c.l1.Store(key, &cacheEntry{text: text, fetchedAt: time.Now()})
			return text, true
		}
		if err != nil && err != redis.Nil {
			slog.Debug("cache: L2 get failed", slog.Any("error", err))
		}
	}

	metrics.CacheMisses.Add(1)
	return "", false
}

// Set stores the transcript in both tiers. Whole-record replacement only;
// L2 expiry is delegated to Redis.
func (c *TieredCache) Set(ctx context.Context, videoID, text string) {
	if text == "" {
		return
	}
	key := cacheKey(videoID)

	c.evictIfNeeded()
	c.l1.Store(key, &cacheEntry{text: text, fetchedAt: time.Now()})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, text, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// evictIfNeeded removes entries when L1 exceeds maxEntries: expired entries
// first, then oldest entries until under the limit.
func (c *TieredCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.Sub(entry.fetchedAt) >= c.ttl {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})
	if count < c.maxEntries {
		return
	}

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(time.Hour)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && entry.fetchedAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.fetchedAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.l1.Delete(oldestKey)
		count--
	}
}
