package sources

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_captions/internal/captions"
)

// YtdlpSource is the scrape fallback: it shells out to yt-dlp to download
// subtitle files and strips them down to plain text. Invocations are spaced
// out by a rate limiter so the fallback does not worsen the blocking that
// got us here.
type YtdlpSource struct {
	binPath   string
	rateLimit string // yt-dlp --limit-rate value, empty = unlimited
	subLangs  string
	limiter   *rate.Limiter

	// runner executes the external command; injected in tests.
	runner func(ctx context.Context, name string, args ...string) error
}

// scrapeProfile is one yt-dlp invocation shape. Profiles are tried in order;
// later ones look less like automation.
type scrapeProfile struct {
	name    string
	ua      string
	headers []string
	timeout time.Duration
}

var scrapeProfiles = []scrapeProfile{
	{
		name: "desktop",
		ua:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		headers: []string{
			"Accept-Language: en-US,en;q=0.9",
		},
		timeout: 60 * time.Second,
	},
	{
		name:    "mobile",
		ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
		timeout: 60 * time.Second,
	},
	{
		name:    "minimal",
		timeout: 90 * time.Second,
	},
}

// NewYtdlpSource builds the scrape tier. binPath empty means "yt-dlp" on
// PATH. languages become the --sub-langs preference list.
func NewYtdlpSource(binPath, rateLimit string, languages []string) *YtdlpSource {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	subLangs := strings.Join(languages, ",")
	if subLangs == "" {
		subLangs = "en"
	}
	s := &YtdlpSource{
		binPath:   binPath,
		rateLimit: rateLimit,
		subLangs:  subLangs,
		limiter:   rate.NewLimiter(rate.Every(1500*time.Millisecond), 1),
	}
	s.runner = func(ctx context.Context, name string, args ...string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = nil
		cmd.Stderr = nil
		return cmd.Run()
	}
	return s
}

// Scrape implements captions.SecondarySource. It walks the request profiles
// until one produces a subtitle file with usable text.
func (s *YtdlpSource) Scrape(ctx context.Context, videoID string) (string, error) {
	videoURL := "https://www.youtube.com/watch?v=" + videoID

	for _, profile := range scrapeProfiles {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		text, err := s.scrapeWith(ctx, profile, videoID, videoURL)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			slog.Debug("yt-dlp profile failed",
				slog.String("video_id", videoID),
				slog.String("profile", profile.name),
				slog.Any("error", err))
			continue
		}
		if text != "" {
			slog.Info("yt-dlp scrape succeeded",
				slog.String("video_id", videoID),
				slog.String("profile", profile.name),
				slog.Int("chars", len(text)))
			return text, nil
		}
	}
	return "", captions.ErrNoSubtitleOutput
}

// scrapeWith runs one yt-dlp invocation into a fresh temp dir and reads back
// whatever subtitle file it wrote.
func (s *YtdlpSource) scrapeWith(ctx context.Context, profile scrapeProfile, videoID, videoURL string) (string, error) {
	dir, err := os.MkdirTemp("", "captions-scrape-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-format", "srt",
		"--sub-langs", s.subLangs,
		"-P", dir,
		"-o", "%(id)s.%(ext)s",
		"--quiet",
		"--no-warnings",
		"--no-playlist",
	}
	if s.rateLimit != "" {
		args = append(args, "--limit-rate", s.rateLimit)
	}
	if profile.ua != "" {
		args = append(args, "--user-agent", profile.ua)
	}
	for _, h := range profile.headers {
		args = append(args, "--add-header", h)
	}
	args = append(args, videoURL)

	runCtx, cancel := context.WithTimeout(ctx, profile.timeout)
	defer cancel()
	if err := s.runner(runCtx, s.binPath, args...); err != nil {
		return "", fmt.Errorf("yt-dlp (%s): %w", profile.name, err)
	}

	return readSubtitleDir(dir)
}

// readSubtitleDir finds the first subtitle file yt-dlp wrote and strips it
// down to plain text.
func readSubtitleDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".srt") && !strings.HasSuffix(name, ".vtt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		if text := stripSubtitleMarkup(string(data)); text != "" {
			return text, nil
		}
	}
	return "", nil
}

// stripSubtitleMarkup reduces SRT/VTT content to transcript text: drops
// blank lines, cue indexes, timing lines, and VTT headers.
func stripSubtitleMarkup(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "-->") {
			continue
		}
		if _, err := strconv.Atoi(line); err == nil {
			continue
		}
		if line == "WEBVTT" || strings.HasPrefix(line, "Kind:") || strings.HasPrefix(line, "Language:") {
			continue
		}
		lines = append(lines, cleanCueText(line))
	}
	return strings.Join(lines, "\n")
}
