package captions

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	bareIDRe  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	pathIDRe  = regexp.MustCompile(`/(?:embed|v|shorts)/([0-9A-Za-z_-]{11})`)
	queryIDRe = regexp.MustCompile(`[?&]v=([0-9A-Za-z_-]{11})`)
)

// ExtractVideoID pulls the 11-character video ID out of raw input: a bare ID,
// a watch URL, a youtu.be short link, or an embed/shorts path. Returns false
// when no plausible ID is present.
func ExtractVideoID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if bareIDRe.MatchString(raw) {
		return raw, true
	}

	if m := queryIDRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if m := pathIDRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}

	// youtu.be/<id> short links carry the ID as the first path segment.
	u, err := url.Parse(raw)
	if err == nil && strings.HasSuffix(strings.ToLower(u.Host), "youtu.be") {
		seg := strings.TrimPrefix(u.Path, "/")
		if i := strings.IndexByte(seg, '/'); i >= 0 {
			seg = seg[:i]
		}
		if bareIDRe.MatchString(seg) {
			return seg, true
		}
	}

	return "", false
}
