package sources

import (
	"net/url"
	"sort"
	"strings"
)

// Track is one caption track from the player response.
type Track struct {
	BaseURL        string
	LanguageCode   string
	Name           string
	Kind           string // "asr" = auto-generated
	IsTranslatable bool
}

// Generated reports whether the track is auto-generated speech recognition.
func (t Track) Generated() bool { return t.Kind == "asr" }

// translatedURL derives the fetch URL for an on-the-fly translation of the
// track into lang.
func (t Track) translatedURL(lang string) string {
	return t.BaseURL + "&tlang=" + url.QueryEscape(lang)
}

// needsPoToken reports whether a track URL requires a browser-issued PoToken.
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// langIndex returns the position of the track's language in prefs, or
// len(prefs) when not preferred. Matching ignores region subtags on the track
// side ("en-US" matches pref "en" but not the reverse).
func langIndex(lang string, prefs []string) int {
	for i, p := range prefs {
		if lang == p {
			return i
		}
	}
	for i, p := range prefs {
		if base, _, ok := strings.Cut(lang, "-"); ok && base == p {
			return i
		}
	}
	return len(prefs)
}

// rankTracks orders tracks best-first: by preferred-language position, then
// manual before auto-generated. The sort is stable so the upstream track
// order breaks remaining ties.
func rankTracks(tracks []Track, prefs []string) []Track {
	ranked := make([]Track, len(tracks))
	copy(ranked, tracks)
	sort.SliceStable(ranked, func(i, j int) bool {
		li, lj := langIndex(ranked[i].LanguageCode, prefs), langIndex(ranked[j].LanguageCode, prefs)
		if li != lj {
			return li < lj
		}
		return !ranked[i].Generated() && ranked[j].Generated()
	})
	return ranked
}

// preferredOnly filters ranked tracks down to those in a preferred language.
func preferredOnly(ranked []Track, prefs []string) []Track {
	out := ranked[:0:0]
	for _, t := range ranked {
		if langIndex(t.LanguageCode, prefs) < len(prefs) {
			out = append(out, t)
		}
	}
	return out
}

// trackLanguages returns the distinct language codes present, in track order.
func trackLanguages(tracks []Track) []string {
	seen := make(map[string]bool, len(tracks))
	var langs []string
	for _, t := range tracks {
		if !seen[t.LanguageCode] {
			seen[t.LanguageCode] = true
			langs = append(langs, t.LanguageCode)
		}
	}
	return langs
}

// translatable filters ranked tracks down to those YouTube can translate,
// excluding tracks already in the target language.
func translatable(ranked []Track, target string) []Track {
	out := ranked[:0:0]
	for _, t := range ranked {
		if t.IsTranslatable && t.LanguageCode != target {
			out = append(out, t)
		}
	}
	return out
}
