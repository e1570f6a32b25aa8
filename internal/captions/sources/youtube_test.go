package sources

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_captions/internal/captions"
)

func testClient(tracks []Track, listErr error, fetch func(trackURL string) (string, error)) *YouTubeClient {
	c := NewYouTubeClient(nil)
	c.listTracks = func(ctx context.Context, videoID string) ([]Track, error) {
		return tracks, listErr
	}
	c.fetchTrack = func(ctx context.Context, trackURL string) (string, error) {
		return fetch(trackURL)
	}
	return c
}

func testRequest() captions.TranscriptRequest {
	return captions.TranscriptRequest{
		VideoID:     "dQw4w9WgXcQ",
		Languages:   []string{"en"},
		TranslateTo: "en",
	}
}

func TestFetchDirectPath(t *testing.T) {
	tracks := []Track{
		{BaseURL: "u-en-manual", LanguageCode: "en"},
		{BaseURL: "u-en-asr", LanguageCode: "en", Kind: "asr"},
	}
	c := testClient(tracks, nil, func(trackURL string) (string, error) {
		if trackURL != "u-en-manual" {
			t.Errorf("fetched %q, want the manual preferred track first", trackURL)
		}
		return "manual text", nil
	})

	res, err := c.Fetch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Path != captions.PathDirect {
		t.Errorf("path = %q, want %q", res.Path, captions.PathDirect)
	}
	if res.Generated {
		t.Error("manual track reported as generated")
	}
	if res.Language != "en" {
		t.Errorf("language = %q, want en", res.Language)
	}
}

func TestFetchListPathAfterBrokenBestTrack(t *testing.T) {
	tracks := []Track{
		{BaseURL: "u-broken", LanguageCode: "en"},
		{BaseURL: "u-works", LanguageCode: "en", Kind: "asr"},
	}
	c := testClient(tracks, nil, func(trackURL string) (string, error) {
		if trackURL == "u-broken" {
			return "", &captions.RetrievalError{Op: "timedtext", Err: errors.New("HTTP 404")}
		}
		return "generated text", nil
	})

	res, err := c.Fetch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Path != captions.PathList {
		t.Errorf("path = %q, want %q", res.Path, captions.PathList)
	}
	if !res.Generated {
		t.Error("expected the generated track")
	}
}

func TestFetchTranslatedPath(t *testing.T) {
	tracks := []Track{
		{BaseURL: "u-de?lang=de", LanguageCode: "de", IsTranslatable: true},
	}
	c := testClient(tracks, nil, func(trackURL string) (string, error) {
		if !strings.Contains(trackURL, "tlang=en") {
			t.Errorf("expected a tlang=en URL, got %q", trackURL)
		}
		return "translated text", nil
	})

	res, err := c.Fetch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Path != captions.PathTranslated {
		t.Errorf("path = %q, want %q", res.Path, captions.PathTranslated)
	}
	if !res.Translated || res.TranslatedFrom != "de" {
		t.Errorf("translation provenance missing: %+v", res)
	}
	if res.Language != "en" {
		t.Errorf("language = %q, want translation target en", res.Language)
	}
}

func TestFetchAnyPath(t *testing.T) {
	tracks := []Track{
		{BaseURL: "u-ja-asr", LanguageCode: "ja", Kind: "asr"},
		{BaseURL: "u-ja-manual", LanguageCode: "ja"},
	}
	c := testClient(tracks, nil, func(trackURL string) (string, error) {
		if trackURL != "u-ja-manual" {
			t.Errorf("fetched %q, want the manual track first in the any pass", trackURL)
		}
		return "japanese text", nil
	})

	res, err := c.Fetch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Path != captions.PathAny {
		t.Errorf("path = %q, want %q", res.Path, captions.PathAny)
	}
	if res.Language != "ja" {
		t.Errorf("language = %q, want ja", res.Language)
	}
}

func TestFetchNoWorkingTrack(t *testing.T) {
	tracks := []Track{
		{BaseURL: "u1", LanguageCode: "en"},
		{BaseURL: "u2", LanguageCode: "de", IsTranslatable: true},
	}
	c := testClient(tracks, nil, func(trackURL string) (string, error) {
		return "", &captions.RetrievalError{Op: "timedtext", Err: errors.New("HTTP 404")}
	})

	_, err := c.Fetch(context.Background(), testRequest())
	if !errors.Is(err, captions.ErrNoWorkingTrack) {
		t.Errorf("expected ErrNoWorkingTrack, got %v", err)
	}
}

func TestFetchRateLimitAborts(t *testing.T) {
	tracks := []Track{
		{BaseURL: "u1", LanguageCode: "en"},
		{BaseURL: "u2", LanguageCode: "en", Kind: "asr"},
	}
	calls := 0
	c := testClient(tracks, nil, func(trackURL string) (string, error) {
		calls++
		return "", &captions.RateLimitedError{StatusCode: 429}
	})

	_, err := c.Fetch(context.Background(), testRequest())
	var rle *captions.RateLimitedError
	if !errors.As(err, &rle) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (rate limit must not cascade)", calls)
	}
}

func TestFetchListError(t *testing.T) {
	c := testClient(nil, captions.ErrCaptionsDisabled, func(string) (string, error) {
		t.Error("no track fetch expected when listing fails")
		return "", nil
	})

	_, err := c.Fetch(context.Background(), testRequest())
	if !errors.Is(err, captions.ErrCaptionsDisabled) {
		t.Errorf("expected ErrCaptionsDisabled, got %v", err)
	}
}
