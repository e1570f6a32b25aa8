package captions

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// TranscriptRequest is passed to the primary source: which video and which
// languages the caller wants, in preference order.
type TranscriptRequest struct {
	VideoID     string
	Languages   []string
	TranslateTo string
}

// FetchResult is a successful primary fetch plus provenance for diagnostics.
type FetchResult struct {
	Text           string
	Path           string // direct / list / translated / any
	Language       string
	Generated      bool
	Translated     bool
	TranslatedFrom string
	LangsFound     []string
}

// PrimarySource is the structured captions API tier.
type PrimarySource interface {
	Fetch(ctx context.Context, req TranscriptRequest) (*FetchResult, error)
}

// SecondarySource is the scrape fallback tier. It returns plain transcript
// text with timing and markup already stripped.
type SecondarySource interface {
	Scrape(ctx context.Context, videoID string) (string, error)
}

// History records acquisition outcomes for later inspection. Best-effort;
// implementations must not fail the request.
type History interface {
	Record(ctx context.Context, videoID, path, reason string, chars int)
}

// Pipeline is the transcript acquisition cascade: cache, then the admission
// gate, then the retry-wrapped primary source, then the scrape fallback.
// Every outcome carries Diagnostics describing which path produced the text
// or why every path failed.
type Pipeline struct {
	cfg       Config
	cache     Cache
	gate      *Gate
	primary   PrimarySource
	secondary SecondarySource
	history   History
}

// NewPipeline wires the tiers together. cache and secondary may be nil to
// disable those tiers.
func NewPipeline(cfg Config, cache Cache, gate *Gate, primary PrimarySource, secondary SecondarySource) *Pipeline {
	cfg = cfg.withDefaults()
	if gate == nil {
		gate = NewGate(cfg.AdmissionCapacity)
	}
	return &Pipeline{
		cfg:       cfg,
		cache:     cache,
		gate:      gate,
		primary:   primary,
		secondary: secondary,
	}
}

// SetHistory attaches an acquisition history recorder.
func (p *Pipeline) SetHistory(h History) { p.history = h }

// AcquireTranscript resolves raw (URL or bare ID) to transcript text. On
// failure the text is empty and Diagnostics.Reason is set; Diagnostics is
// never nil.
func (p *Pipeline) AcquireTranscript(ctx context.Context, raw string) (string, *Diagnostics) {
	diag := &Diagnostics{}

	videoID, ok := ExtractVideoID(raw)
	if !ok {
		diag.Reason = ReasonNoVideoID
		metrics.Failures.Add(1)
		p.record(ctx, diag, 0)
		return "", diag
	}
	diag.VideoID = videoID

	if p.cache != nil {
		if text, ok := p.cache.Get(ctx, videoID); ok {
			diag.Path = PathCache
			metrics.Acquisitions.Add(1)
			p.record(ctx, diag, len(text))
			return text, diag
		}
	}

	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}

	slot, err := p.gate.Acquire(ctx)
	if err != nil {
		diag.Reason = ReasonTimeout
		diag.addAttempt("admission", err)
		metrics.Failures.Add(1)
		p.record(ctx, diag, 0)
		return "", diag
	}
	defer slot.Release()

	// A queued duplicate may have populated the cache while we waited.
	if p.cache != nil {
		if text, ok := p.cache.Get(ctx, videoID); ok {
			diag.Path = PathCache
			metrics.Acquisitions.Add(1)
			p.record(ctx, diag, len(text))
			return text, diag
		}
	}

	text, done := p.fetchPrimary(ctx, videoID, diag)
	if done {
		p.record(ctx, diag, len(text))
		return text, diag
	}

	text = p.fetchSecondary(ctx, videoID, diag)
	p.record(ctx, diag, len(text))
	return text, diag
}

// fetchPrimary runs the retry-wrapped primary tier. done is true when the
// outcome is final (success or a permanent failure the scrape tier cannot
// fix); false means fall through to the secondary tier.
func (p *Pipeline) fetchPrimary(ctx context.Context, videoID string, diag *Diagnostics) (string, bool) {
	req := TranscriptRequest{
		VideoID:     videoID,
		Languages:   p.cfg.PreferredLanguages,
		TranslateTo: p.cfg.TranslateTo,
	}

	metrics.PrimaryRequests.Add(1)
	result, err := Retry(ctx, p.cfg.retryConfig(), ClassifyPrimary, func() (*FetchResult, error) {
		return p.primary.Fetch(ctx, req)
	})
	if err == nil {
		diag.Path = result.Path
		diag.Language = result.Language
		diag.Generated = result.Generated
		diag.Translated = result.Translated
		diag.TranslatedFrom = result.TranslatedFrom
		diag.LangsFound = result.LangsFound
		metrics.Acquisitions.Add(1)
		if p.cache != nil {
			p.cache.Set(ctx, videoID, result.Text)
		}
		slog.Info("transcript acquired",
			slog.String("video_id", videoID),
			slog.String("path", result.Path),
			slog.String("language", result.Language),
			slog.Int("chars", len(result.Text)))
		return result.Text, true
	}

	diag.addAttempt("primary", err)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		diag.Reason = ReasonTimeout
	case errors.Is(err, ErrCaptionsDisabled):
		diag.Reason = ReasonCaptionsDisabled
	case errors.Is(err, ErrVideoUnavailable):
		diag.Reason = ReasonUnavailable
	case errors.Is(err, ErrNoTranscript), errors.Is(err, ErrNoWorkingTrack):
		diag.Reason = ReasonNoWorkingTrack
	default:
		// Retry budget exhausted on a transient failure. The scrape tier
		// may still get through.
		var rle *RateLimitedError
		if errors.As(err, &rle) {
			metrics.RateLimitHits.Add(1)
		}
		diag.Reason = ReasonRateLimited
		return "", false
	}

	metrics.Failures.Add(1)
	return "", true
}

// fetchSecondary runs the retry-wrapped scrape tier. Called only after the
// primary tier exhausted its budget on transient failures.
func (p *Pipeline) fetchSecondary(ctx context.Context, videoID string, diag *Diagnostics) string {
	if !p.cfg.ScrapeEnabled || p.secondary == nil {
		metrics.Failures.Add(1)
		return ""
	}

	metrics.SecondaryRequests.Add(1)
	text, err := Retry(ctx, p.cfg.retryConfig(), ClassifySecondary, func() (string, error) {
		return p.secondary.Scrape(ctx, videoID)
	})
	if err != nil {
		diag.addAttempt("scrape", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			diag.Reason = ReasonTimeout
		}
		metrics.Failures.Add(1)
		slog.Warn("all acquisition paths failed",
			slog.String("video_id", videoID),
			slog.String("reason", diag.Reason))
		return ""
	}

	diag.Path = PathScrape
	diag.Reason = ""
	metrics.Acquisitions.Add(1)
	if p.cache != nil {
		p.cache.Set(ctx, videoID, text)
	}
	slog.Info("transcript acquired via scrape",
		slog.String("video_id", videoID),
		slog.Int("chars", len(text)))
	return text
}

// record writes the outcome to history, if attached. Uses a short detached
// context so a canceled request still gets recorded.
func (p *Pipeline) record(ctx context.Context, diag *Diagnostics, chars int) {
	if p.history == nil {
		return
	}
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
	}
	p.history.Record(ctx, diag.VideoID, diag.Path, diag.Reason, chars)
}
