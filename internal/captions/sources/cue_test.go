package sources

import "testing"

func TestParseTimedText(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.5">hello &amp; welcome</text>
  <text start="2.5" dur="3.0">to the &lt;b&gt;show&lt;/b&gt;</text>
  <text start="5.5" dur="1.0">   </text>
  <text start="6.5" dur="2.0">second   line</text>
</transcript>`)

	got, err := parseTimedText(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "hello & welcome\nto the show\nsecond line"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseTimedTextInvalidXML(t *testing.T) {
	if _, err := parseTimedText([]byte("<transcript><text>oops")); err == nil {
		t.Error("expected error for truncated XML")
	}
}

func TestCleanCueText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"entities", "fish &amp; chips &#39;now&#39;", "fish & chips 'now'"},
		{"inline tags", "<i>whispered</i> loudly", "whispered loudly"},
		{"font tag", `<font color="#CCCCCC">styled</font> text`, "styled text"},
		{"whitespace collapse", "  too \n many   spaces ", "too many spaces"},
		{"empty after strip", "<b></b>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanCueText(tt.input); got != tt.want {
				t.Errorf("cleanCueText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
