package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"

	"github.com/anatolykoptev/go_captions/internal/captions"
)

// YouTube Innertube API — low-level constants, types, and HTTP primitives.
// Cascade logic lives in youtube.go; track ranking in youtube_tracks.go.

const (
	ytPlayerURL      = "https://www.youtube.com/youtubei/v1/player"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type innertubePlayerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL        string `json:"baseUrl"`
	LanguageCode   string `json:"languageCode"`
	Kind           string `json:"kind"` // "asr" = auto-generated
	IsTranslatable bool   `json:"isTranslatable"`
	Name           struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
}

func (t captionTrack) displayName() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Name.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// --- Timedtext XML types ---

type timedText struct {
	Cues []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Text  string  `xml:",chardata"`
}

// classifyStatus maps an HTTP status to a typed source error. Called once at
// the transport boundary; everything above branches on error identity.
func classifyStatus(op string, code int, body []byte) error {
	if code == http.StatusTooManyRequests {
		return &captions.RateLimitedError{StatusCode: code}
	}
	if stealth.IsRetryableStatus(code) {
		return &captions.RetrievalError{Op: op, Err: fmt.Errorf("HTTP %d", code)}
	}
	snippet := body
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	return &captions.RetrievalError{Op: op, Err: fmt.Errorf("HTTP %d: %s", code, snippet)}
}

// postPlayer issues a single ANDROID Innertube /player request. Retries are
// the caller's concern; this only classifies failures.
func postPlayer(ctx context.Context, client *http.Client, videoID string) (*innertubePlayerResp, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytPlayerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ytAndroidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &captions.RetrievalError{Op: "player", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, classifyStatus("player", resp.StatusCode, body)
	}

	var playerResp innertubePlayerResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, 3*1024*1024)).Decode(&playerResp); err != nil {
		return nil, &captions.RetrievalError{Op: "player decode", Err: err}
	}
	return &playerResp, nil
}

// fetchTimedText fetches a timedtext caption URL and returns the cleaned
// transcript, one cue per line.
func fetchTimedText(ctx context.Context, client *http.Client, trackURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", stealth.RandomUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return "", &captions.RetrievalError{Op: "timedtext", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", classifyStatus("timedtext", resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", &captions.RetrievalError{Op: "timedtext read", Err: err}
	}

	text, err := parseTimedText(body)
	if err != nil {
		return "", &captions.RetrievalError{Op: "timedtext parse", Err: err}
	}
	if text == "" {
		return "", &captions.RetrievalError{Op: "timedtext", Err: errors.New("empty transcript body")}
	}
	return text, nil
}
