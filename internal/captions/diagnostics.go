package captions

import "fmt"

// Acquisition paths — which tier produced the transcript.
const (
	PathCache      = "cache"
	PathDirect     = "direct"
	PathList       = "list"
	PathTranslated = "translated"
	PathAny        = "any"
	PathScrape     = "scrape"
)

// Failure reasons — fixed vocabulary, directly renderable to users.
const (
	ReasonNoVideoID        = "no_video_id"
	ReasonUnavailable      = "unavailable"
	ReasonCaptionsDisabled = "captions_disabled"
	ReasonRateLimited      = "rate_limited_or_blocked"
	ReasonNoWorkingTrack   = "no_working_track"
	ReasonTimeout          = "timeout"
)

// Diagnostics describes which path produced a result, or why every path
// failed. Built incrementally as the cascade proceeds and always returned to
// the caller, success or not. Never shared across concurrent requests.
type Diagnostics struct {
	VideoID        string   `json:"video_id,omitempty"`
	Path           string   `json:"path,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Language       string   `json:"language,omitempty"`
	Generated      bool     `json:"generated,omitempty"`
	Translated     bool     `json:"translated,omitempty"`
	TranslatedFrom string   `json:"translated_from,omitempty"`
	LangsFound     []string `json:"langs_found,omitempty"`
	Attempts       []string `json:"attempts,omitempty"`
}

// addAttempt records a per-attempt error for later rendering.
func (d *Diagnostics) addAttempt(step string, err error) {
	d.Attempts = append(d.Attempts, fmt.Sprintf("%s: %v", step, err))
}

// Message renders an actionable user-facing message for the outcome.
func (d *Diagnostics) Message() string {
	switch d.Reason {
	case "":
		return ""
	case ReasonNoVideoID:
		return "Could not find a video ID in that URL. Paste a full YouTube link or an 11-character video ID."
	case ReasonUnavailable:
		return "This video is unavailable, private, or has been removed."
	case ReasonCaptionsDisabled:
		return "Captions are disabled for this video by the creator."
	case ReasonRateLimited:
		return "The caption service is temporarily rate-limiting requests. Try again in a few minutes, or supply the transcript manually."
	case ReasonNoWorkingTrack:
		return "This video lists caption tracks, but none of them could be fetched."
	case ReasonTimeout:
		return "Fetching the transcript took too long and was aborted. Try again shortly."
	default:
		return "Unable to fetch a transcript for this video."
	}
}
