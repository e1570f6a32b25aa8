// go_captions — YouTube transcript acquisition MCP server.
//
// Exposes two MCP tools: get_transcript and transcript_history.
// Transcripts come from a resilient cascade: cache, the captions API with
// retries and language fallback, then a yt-dlp scrape as last resort.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_captions/internal/captions"
	"github.com/anatolykoptev/go_captions/internal/captions/sources"
	"github.com/anatolykoptev/go_captions/internal/captionserver"
	"github.com/anatolykoptev/go_captions/internal/store"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	cfg := loadConfig()

	slog.Info("starting go_captions",
		slog.String("port", mcpPort),
		slog.Bool("scrape_fallback", cfg.ScrapeEnabled),
	)

	cache := captions.NewTieredCache(env.Str("REDIS_URL", ""), cfg.CacheTTL, cfg.CacheMaxEntries)
	gate := captions.NewGate(cfg.AdmissionCapacity)
	primary := sources.NewYouTubeClient(cfg.HTTPClient)

	var secondary captions.SecondarySource
	if cfg.ScrapeEnabled {
		secondary = sources.NewYtdlpSource(
			env.Str("YTDLP_PATH", ""),
			cfg.ScrapeRateLimit,
			cfg.PreferredLanguages,
		)
	}

	pipeline := captions.NewPipeline(cfg, cache, gate, primary, secondary)

	var history *store.Store
	dbPath := env.Str("HISTORY_DB", filepath.Join(os.Getenv("HOME"), ".go_captions", "history.db"))
	if dbPath != "" {
		h, err := store.Open(dbPath)
		if err != nil {
			slog.Warn("history store init failed, running without history", slog.Any("error", err))
		} else {
			defer h.Close()
			history = h
			pipeline.SetHistory(h)
			slog.Info("history store initialized", slog.String("path", dbPath))
		}
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_captions",
		Version: version,
	}, nil)

	captionserver.RegisterTools(server, pipeline, history)
	slog.Info("tools registered", slog.Int("count", 2))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_captions",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      captions.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() captions.Config {
	cfg := captions.DefaultConfig
	cfg.PreferredLanguages = env.List("PREFERRED_LANGUAGES", "en,en-US,en-GB")
	cfg.TranslateTo = env.Str("TRANSLATE_TO", "en")
	cfg.CacheTTL = env.Duration("CACHE_TTL", 7*24*time.Hour)
	cfg.CacheMaxEntries = env.Int("CACHE_MAX_ENTRIES", 1000)
	cfg.MaxAttempts = env.Int("FETCH_MAX_ATTEMPTS", 5)
	cfg.BaseDelay = env.Duration("FETCH_BASE_DELAY", 800*time.Millisecond)
	cfg.CapDelay = env.Duration("FETCH_CAP_DELAY", 8*time.Second)
	cfg.JitterMax = env.Duration("FETCH_JITTER_MAX", 500*time.Millisecond)
	cfg.AdmissionCapacity = env.Int("ADMISSION_CAPACITY", 1)
	cfg.ScrapeEnabled = env.Str("ENABLE_YTDLP_FALLBACK", "1") == "1"
	cfg.ScrapeRateLimit = env.Str("YTDLP_RATE_LIMIT", "")
	cfg.RequestTimeout = env.Duration("REQUEST_TIMEOUT", 90*time.Second)
	cfg.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
	return cfg
}
