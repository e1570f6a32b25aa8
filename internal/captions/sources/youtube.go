package sources

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_captions/internal/captions"
)

// YouTubeClient fetches transcripts from the structured captions API. One
// Fetch call is a single retry attempt: it lists the video's caption tracks
// and walks the fallback cascade, skipping tracks that fail individually.
//
// Cascade order:
//  1. direct:     best track already in a preferred language
//  2. list:       remaining preferred-language tracks, ranked
//  3. translated: translatable tracks translated into the target language
//  4. any:        any remaining track, manual before auto-generated
type YouTubeClient struct {
	httpClient *http.Client

	// Injection points for tests.
	listTracks func(ctx context.Context, videoID string) ([]Track, error)
	fetchTrack func(ctx context.Context, trackURL string) (string, error)
}

// NewYouTubeClient builds the primary source. client may be nil.
func NewYouTubeClient(client *http.Client) *YouTubeClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	c := &YouTubeClient{httpClient: client}
	c.listTracks = c.listTracksHTTP
	c.fetchTrack = func(ctx context.Context, trackURL string) (string, error) {
		return fetchTimedText(ctx, c.httpClient, trackURL)
	}
	return c
}

// listTracksHTTP lists the video's caption tracks via the ANDROID player
// endpoint and maps playability into typed errors.
func (c *YouTubeClient) listTracksHTTP(ctx context.Context, videoID string) ([]Track, error) {
	resp, err := postPlayer(ctx, c.httpClient, videoID)
	if err != nil {
		return nil, err
	}

	if ps := resp.PlayabilityStatus; ps != nil {
		switch ps.Status {
		case "ERROR", "UNPLAYABLE", "LOGIN_REQUIRED":
			slog.Debug("player: video not playable",
				slog.String("video_id", videoID),
				slog.String("status", ps.Status),
				slog.String("reason", ps.Reason))
			return nil, captions.ErrVideoUnavailable
		}
	}
	if resp.Captions == nil {
		return nil, captions.ErrCaptionsDisabled
	}

	raw := resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]Track, 0, len(raw))
	for _, t := range raw {
		if needsPoToken(t.BaseURL) {
			continue
		}
		tracks = append(tracks, Track{
			BaseURL:        t.BaseURL,
			LanguageCode:   t.LanguageCode,
			Name:           t.displayName(),
			Kind:           t.Kind,
			IsTranslatable: t.IsTranslatable,
		})
	}
	if len(tracks) == 0 {
		return nil, captions.ErrNoTranscript
	}
	return tracks, nil
}

// Fetch implements captions.PrimarySource.
func (c *YouTubeClient) Fetch(ctx context.Context, req captions.TranscriptRequest) (*captions.FetchResult, error) {
	tracks, err := c.listTracks(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	ranked := rankTracks(tracks, req.Languages)
	preferred := preferredOnly(ranked, req.Languages)
	langsFound := trackLanguages(tracks)

	// Pass 1+2: preferred-language tracks, best first. The top pick is the
	// "direct" path; anything after it means the best track was broken and
	// the ranked list stepped in.
	for i, t := range preferred {
		text, err := c.tryTrack(ctx, req.VideoID, t, t.BaseURL)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		path := captions.PathDirect
		if i > 0 {
			path = captions.PathList
		}
		return &captions.FetchResult{
			Text:       text,
			Path:       path,
			Language:   t.LanguageCode,
			Generated:  t.Generated(),
			LangsFound: langsFound,
		}, nil
	}

	// Pass 3: translate what YouTube offers to translate.
	if req.TranslateTo != "" {
		for _, t := range translatable(ranked, req.TranslateTo) {
			text, err := c.tryTrack(ctx, req.VideoID, t, t.translatedURL(req.TranslateTo))
			if err != nil {
				return nil, err
			}
			if text == "" {
				continue
			}
			return &captions.FetchResult{
				Text:           text,
				Path:           captions.PathTranslated,
				Language:       req.TranslateTo,
				Generated:      t.Generated(),
				Translated:     true,
				TranslatedFrom: t.LanguageCode,
				LangsFound:     langsFound,
			}, nil
		}
	}

	// Pass 4: anything left, manual before auto-generated.
	for _, t := range ranked {
		if langIndex(t.LanguageCode, req.Languages) < len(req.Languages) {
			continue // already tried above
		}
		text, err := c.tryTrack(ctx, req.VideoID, t, t.BaseURL)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		return &captions.FetchResult{
			Text:       text,
			Path:       captions.PathAny,
			Language:   t.LanguageCode,
			Generated:  t.Generated(),
			LangsFound: langsFound,
		}, nil
	}

	return nil, captions.ErrNoWorkingTrack
}

// tryTrack fetches one track URL. Rate limiting and context errors abort the
// whole attempt; any other per-track failure is logged and skipped so the
// cascade can move on.
func (c *YouTubeClient) tryTrack(ctx context.Context, videoID string, t Track, trackURL string) (string, error) {
	text, err := c.fetchTrack(ctx, trackURL)
	if err == nil {
		return text, nil
	}

	var rle *captions.RateLimitedError
	if errors.As(err, &rle) {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	slog.Debug("track fetch failed, trying next",
		slog.String("video_id", videoID),
		slog.String("lang", t.LanguageCode),
		slog.String("kind", t.Kind),
		slog.Any("error", err))
	return "", nil
}
