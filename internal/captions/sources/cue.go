package sources

import (
	"encoding/xml"
	"strings"

	"golang.org/x/net/html"
)

// parseTimedText turns a timedtext XML body into plain transcript text, one
// cue per line. Cues that are empty after markup stripping are dropped.
func parseTimedText(body []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", err
	}

	lines := make([]string, 0, len(tt.Cues))
	for _, cue := range tt.Cues {
		if text := cleanCueText(cue.Text); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// cleanCueText strips inline markup (<b>, <i>, <font>) and decodes character
// entities left in cue text, then collapses whitespace.
func cleanCueText(s string) string {
	if strings.ContainsAny(s, "<&") {
		tok := html.NewTokenizer(strings.NewReader(s))
		var sb strings.Builder
		for {
			tt := tok.Next()
			if tt == html.ErrorToken {
				break
			}
			if tt == html.TextToken {
				sb.Write(tok.Text())
			}
		}
		s = sb.String()
	}
	return strings.Join(strings.Fields(s), " ")
}
