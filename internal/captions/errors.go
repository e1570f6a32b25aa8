package captions

import (
	"errors"
	"fmt"
	"net"
)

// Typed source errors. Classification happens once at the source boundary;
// callers branch with errors.Is / errors.As instead of matching message text.
var (
	// ErrCaptionsDisabled means the uploader turned captions off. Final:
	// the scrape tier cannot succeed either.
	ErrCaptionsDisabled = errors.New("captions are disabled for this video")

	// ErrVideoUnavailable covers deleted, private, and region-locked videos.
	ErrVideoUnavailable = errors.New("video is unavailable or private")

	// ErrNoTranscript means the source exposes no caption tracks at all.
	ErrNoTranscript = errors.New("no transcript found")

	// ErrNoWorkingTrack means every listed track was tried and none yielded text.
	ErrNoWorkingTrack = errors.New("no working caption track")

	// ErrNoSubtitleOutput means the scrape tier produced no usable subtitles
	// across all request profiles.
	ErrNoSubtitleOutput = errors.New("no subtitle output")
)

// RateLimitedError signals upstream throttling (HTTP 429 or equivalent).
type RateLimitedError struct {
	StatusCode int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited by upstream (HTTP %d)", e.StatusCode)
}

// RetrievalError wraps a transient retrieval failure (5xx, truncated body,
// malformed payload) that may succeed on retry.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ErrorClass is the retry executor's verdict on a failure.
type ErrorClass int

const (
	// Retryable failures may succeed on a later attempt.
	Retryable ErrorClass = iota
	// Permanent failures cannot; no retry budget is spent on them.
	Permanent
)

// ClassifyPrimary classifies failures from the structured captions API.
func ClassifyPrimary(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrCaptionsDisabled),
		errors.Is(err, ErrVideoUnavailable),
		errors.Is(err, ErrNoTranscript),
		errors.Is(err, ErrNoWorkingTrack):
		return Permanent
	}
	var rle *RateLimitedError
	if errors.As(err, &rle) {
		return Retryable
	}
	var re *RetrievalError
	if errors.As(err, &re) {
		return Retryable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable
	}
	// Unknown failures are treated as generic retrieval trouble.
	return Retryable
}

// ClassifySecondary classifies failures from the scrape tier.
func ClassifySecondary(err error) ErrorClass {
	if errors.Is(err, ErrNoSubtitleOutput) {
		return Permanent
	}
	return Retryable
}
