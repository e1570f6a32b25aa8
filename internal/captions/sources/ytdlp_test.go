package sources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_captions/internal/captions"
)

const sampleSRT = `1
00:00:00,000 --> 00:00:02,500
hello there

2
00:00:02,500 --> 00:00:05,000
general transcript
`

// outputDir extracts the -P argument from a yt-dlp invocation.
func outputDir(t *testing.T, args []string) string {
	t.Helper()
	for i, a := range args {
		if a == "-P" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatal("no -P argument in yt-dlp args")
	return ""
}

func fastYtdlp() *YtdlpSource {
	s := NewYtdlpSource("yt-dlp", "", []string{"en"})
	s.limiter.SetLimit(1e9) // no spacing in tests
	return s
}

func TestScrapeFirstProfileSucceeds(t *testing.T) {
	s := fastYtdlp()
	var invocations int
	s.runner = func(ctx context.Context, name string, args ...string) error {
		invocations++
		dir := outputDir(t, args)
		return os.WriteFile(filepath.Join(dir, "dQw4w9WgXcQ.en.srt"), []byte(sampleSRT), 0600)
	}

	text, err := s.Scrape(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "hello there\ngeneral transcript", text)
	assert.Equal(t, 1, invocations)
}

func TestScrapeFallsThroughProfiles(t *testing.T) {
	s := fastYtdlp()
	var invocations int
	s.runner = func(ctx context.Context, name string, args ...string) error {
		invocations++
		if invocations < 3 {
			return errors.New("exit status 1")
		}
		dir := outputDir(t, args)
		return os.WriteFile(filepath.Join(dir, "dQw4w9WgXcQ.en.srt"), []byte(sampleSRT), 0600)
	}

	text, err := s.Scrape(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Equal(t, 3, invocations, "first two profiles failed, third should succeed")
}

func TestScrapeNoOutput(t *testing.T) {
	s := fastYtdlp()
	s.runner = func(ctx context.Context, name string, args ...string) error {
		return nil // "succeeds" but writes nothing
	}

	_, err := s.Scrape(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, captions.ErrNoSubtitleOutput)
}

func TestScrapeProfileArgs(t *testing.T) {
	s := NewYtdlpSource("", "200K", []string{"en", "en-US"})
	s.limiter.SetLimit(1e9)

	var captured [][]string
	s.runner = func(ctx context.Context, name string, args ...string) error {
		captured = append(captured, args)
		return errors.New("exit status 1")
	}

	_, err := s.Scrape(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	require.Len(t, captured, len(scrapeProfiles))

	first := captured[0]
	assert.Contains(t, first, "--skip-download")
	assert.Contains(t, first, "--write-auto-subs")
	assert.Contains(t, first, "--limit-rate")
	assert.Contains(t, first, "200K")
	assert.Contains(t, first, "en,en-US")
	assert.Contains(t, first, "--user-agent")
	assert.Contains(t, first, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	// The minimal profile carries no browser identity.
	last := captured[len(captured)-1]
	assert.NotContains(t, last, "--user-agent")
	assert.NotContains(t, last, "--add-header")
}

func TestStripSubtitleMarkup(t *testing.T) {
	raw := "WEBVTT\nKind: captions\nLanguage: en\n\n1\n00:00:00,000 --> 00:00:01,000\n<i>styled</i> words\n\n2\n00:00:01,000 --> 00:00:02,000\nplain words\n"
	got := stripSubtitleMarkup(raw)
	assert.Equal(t, "styled words\nplain words", got)
}
