package sources

import "testing"

func TestRankTracks(t *testing.T) {
	tracks := []Track{
		{LanguageCode: "de", Kind: ""},
		{LanguageCode: "en", Kind: "asr"},
		{LanguageCode: "fr", Kind: "asr"},
		{LanguageCode: "en", Kind: ""},
		{LanguageCode: "en-GB", Kind: ""},
	}
	prefs := []string{"en", "en-GB"}

	ranked := rankTracks(tracks, prefs)

	want := []struct {
		lang string
		kind string
	}{
		{"en", ""},      // preferred language, manual
		{"en", "asr"},   // preferred language, generated
		{"en-GB", ""},   // second preference
		{"de", ""},      // non-preferred, manual before generated
		{"fr", "asr"},
	}
	for i, w := range want {
		if ranked[i].LanguageCode != w.lang || ranked[i].Kind != w.kind {
			t.Errorf("ranked[%d] = %s/%q, want %s/%q",
				i, ranked[i].LanguageCode, ranked[i].Kind, w.lang, w.kind)
		}
	}
}

func TestRankTracksStable(t *testing.T) {
	tracks := []Track{
		{LanguageCode: "es", Kind: "", Name: "first"},
		{LanguageCode: "pt", Kind: "", Name: "second"},
	}
	ranked := rankTracks(tracks, []string{"en"})
	if ranked[0].Name != "first" || ranked[1].Name != "second" {
		t.Error("equal-rank tracks must keep upstream order")
	}
}

func TestLangIndexRegionSubtag(t *testing.T) {
	prefs := []string{"en", "fr"}
	if got := langIndex("en-US", prefs); got != 0 {
		t.Errorf("en-US against pref en: index = %d, want 0", got)
	}
	if got := langIndex("fr", prefs); got != 1 {
		t.Errorf("fr: index = %d, want 1", got)
	}
	if got := langIndex("de", prefs); got != len(prefs) {
		t.Errorf("de: index = %d, want %d", got, len(prefs))
	}
}

func TestPreferredOnly(t *testing.T) {
	ranked := rankTracks([]Track{
		{LanguageCode: "en"},
		{LanguageCode: "de"},
		{LanguageCode: "en-US", Kind: "asr"},
	}, []string{"en"})

	got := preferredOnly(ranked, []string{"en"})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, tr := range got {
		if tr.LanguageCode == "de" {
			t.Error("non-preferred track leaked into preferred set")
		}
	}
}

func TestTranslatable(t *testing.T) {
	ranked := []Track{
		{LanguageCode: "de", IsTranslatable: true},
		{LanguageCode: "en", IsTranslatable: true}, // already target language
		{LanguageCode: "fr", IsTranslatable: false},
	}
	got := translatable(ranked, "en")
	if len(got) != 1 || got[0].LanguageCode != "de" {
		t.Errorf("translatable = %+v, want only de", got)
	}
}

func TestTranslatedURL(t *testing.T) {
	tr := Track{BaseURL: "https://example.com/api/timedtext?v=x&lang=de"}
	got := tr.translatedURL("en")
	want := "https://example.com/api/timedtext?v=x&lang=de&tlang=en"
	if got != want {
		t.Errorf("translatedURL = %q, want %q", got, want)
	}
}

func TestNeedsPoToken(t *testing.T) {
	if !needsPoToken("https://example.com/timedtext?v=x&exp=xpe") {
		t.Error("exp=xpe track should require PoToken")
	}
	if needsPoToken("https://example.com/timedtext?v=x") {
		t.Error("plain track should not require PoToken")
	}
}
