// Package captionserver exposes the acquisition pipeline over MCP.
package captionserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go-kit/strutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_captions/internal/captions"
	"github.com/anatolykoptev/go_captions/internal/store"
)

// GetTranscriptInput is the input for get_transcript.
type GetTranscriptInput struct {
	URL      string `json:"url"`
	MaxChars int    `json:"max_chars,omitempty"`
}

// GetTranscriptOutput is the output for get_transcript. Diagnostics are
// populated on success and failure alike.
type GetTranscriptOutput struct {
	VideoID     string                `json:"video_id,omitempty"`
	Text        string                `json:"text,omitempty"`
	Message     string                `json:"message,omitempty"`
	Diagnostics *captions.Diagnostics `json:"diagnostics"`
}

// HistoryInput is the input for transcript_history.
type HistoryInput struct {
	Limit int `json:"limit,omitempty"`
}

// HistoryOutput is the output for transcript_history.
type HistoryOutput struct {
	Entries []store.Acquisition `json:"entries"`
	Total   int                 `json:"total"`
}

// RegisterTools registers the transcript tools on the given MCP server:
// get_transcript and transcript_history.
func RegisterTools(server *mcp.Server, pipeline *captions.Pipeline, history *store.Store) {
	registerGetTranscript(server, pipeline)
	if history != nil {
		registerHistory(server, history)
	}
}

func registerGetTranscript(server *mcp.Server, pipeline *captions.Pipeline) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transcript",
		Description: "Fetch the transcript for a YouTube video. Accepts a watch URL, a youtu.be short link, or a bare 11-character video ID. Tries cached transcripts first, then the captions API with retries and language fallback, then a yt-dlp scrape. Always returns diagnostics describing which path produced the text or why every path failed.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input GetTranscriptInput) (*mcp.CallToolResult, GetTranscriptOutput, error) {
		if input.URL == "" {
			return nil, GetTranscriptOutput{}, fmt.Errorf("url is required")
		}

		text, diag := pipeline.AcquireTranscript(ctx, input.URL)
		if input.MaxChars > 0 {
			text = strutil.TruncateAtWord(text, input.MaxChars)
		}

		return nil, GetTranscriptOutput{
			VideoID:     diag.VideoID,
			Text:        text,
			Message:     diag.Message(),
			Diagnostics: diag,
		}, nil
	})
}

func registerHistory(server *mcp.Server, history *store.Store) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_history",
		Description: "List recent transcript acquisition attempts with their outcome: which path produced the text (cache, direct, list, translated, any, scrape) or the failure reason.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
		entries, err := history.Recent(ctx, input.Limit)
		if err != nil {
			return nil, HistoryOutput{}, err
		}
		return nil, HistoryOutput{Entries: entries, Total: len(entries)}, nil
	})
}
