// ABOUTME: MCP tool implementations for per-post display operations.
// ABOUTME: Registers list_threads, annotate_post, repair_spacing, like_post, and apply_like_overlay.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/threadlink/internal/annotate"
	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/storage"
)

func (s *Server) registerThreadTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_threads",
		Description: "List stored thread snapshots.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "description": "Maximum number of threads to list (default 20)"},
				"offset": {"type": "number", "description": "Number of threads to skip (default 0)"}
			}
		}`),
	}, s.handleListThreads)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "annotate_post",
		Description: "Show a post's spacing-repaired text and its clickable tokens (post refs, quotes, poster IDs, URLs, filenames, like markers).",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"thread": {"type": "string", "description": "Thread snapshot name", "minLength": 1},
				"item_id": {"type": "string", "description": "ID of the text item to annotate", "minLength": 1}
			},
			"required": ["thread", "item_id"]
		}`),
	}, s.handleAnnotatePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "repair_spacing",
		Description: "Insert the whitespace a renderer dropped between header tokens of arbitrary post text.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"text": {"type": "string", "description": "Plain post text", "minLength": 1}
			},
			"required": ["text"]
		}`),
	}, s.handleRepairSpacing)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "like_post",
		Description: "Record an optimistic like for a post number in a thread.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"thread": {"type": "string", "description": "Thread snapshot name", "minLength": 1},
				"post_number": {"type": "string", "description": "Post number, e.g. 100 or No.100", "minLength": 1}
			},
			"required": ["thread", "post_number"]
		}`),
	}, s.handleLikePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "apply_like_overlay",
		Description: "Render a post with the thread's stored like counts merged into its like markers.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"thread": {"type": "string", "description": "Thread snapshot name", "minLength": 1},
				"item_id": {"type": "string", "description": "ID of the text item to render", "minLength": 1}
			},
			"required": ["thread", "item_id"]
		}`),
	}, s.handleApplyLikeOverlay)
}

func (s *Server) handleListThreads(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}

	infos, err := s.snapshots.List(storage.ListThreadsOptions{Limit: args.Limit, Offset: args.Offset})
	if err != nil {
		return toolError("failed to list threads: %v", err), nil
	}
	if len(infos) == 0 {
		return textResult("No threads found."), nil
	}

	var sb strings.Builder
	for _, info := range infos {
		sb.WriteString(fmt.Sprintf("%s (%d items)", info.Name, info.Items))
		if info.Title != "" {
			sb.WriteString(" - " + info.Title)
		}
		sb.WriteString("\n")
	}
	return textResult(sb.String()), nil
}

func (s *Server) handleAnnotatePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Thread string `json:"thread"`
		ItemID string `json:"item_id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Thread == "" || args.ItemID == "" {
		return toolError("thread and item_id are required"), nil
	}

	ss, err := s.open(args.Thread)
	if err != nil {
		return toolError("failed to load thread: %v", err), nil
	}
	it, err := ss.item(args.ItemID)
	if err != nil {
		return toolError("%v", err), nil
	}

	repaired, tokens := annotate.AnnotateText(ss.text(it))

	var sb strings.Builder
	sb.WriteString(repaired)
	sb.WriteString("\n---\n")
	if len(tokens) == 0 {
		sb.WriteString("No tokens.\n")
	}
	for _, tok := range tokens {
		sb.WriteString(formatToken(tok))
		sb.WriteString("\n")
	}
	return textResult(sb.String()), nil
}

func (s *Server) handleRepairSpacing(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Text == "" {
		return toolError("text is required"), nil
	}
	return textResult(annotate.RepairSpacing(args.Text)), nil
}

func (s *Server) handleLikePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Thread     string `json:"thread"`
		PostNumber string `json:"post_number"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Thread == "" || args.PostNumber == "" {
		return toolError("thread and post_number are required"), nil
	}

	count, err := s.likes.Increment(args.Thread, args.PostNumber)
	if err != nil {
		return toolError("failed to record like: %v", err), nil
	}
	return textResult(fmt.Sprintf("Liked %s in %s (now %d)", args.PostNumber, args.Thread, count)), nil
}

func (s *Server) handleApplyLikeOverlay(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Thread string `json:"thread"`
		ItemID string `json:"item_id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Thread == "" || args.ItemID == "" {
		return toolError("thread and item_id are required"), nil
	}

	ss, err := s.open(args.Thread)
	if err != nil {
		return toolError("failed to load thread: %v", err), nil
	}
	it, err := ss.item(args.ItemID)
	if err != nil {
		return toolError("%v", err), nil
	}
	counts, err := s.likes.Counts(args.Thread)
	if err != nil {
		return toolError("failed to read likes: %v", err), nil
	}

	repaired := annotate.RepairSpacing(ss.text(it))
	return textResult(annotate.ApplyLikeOverlay(repaired, counts, ownPostNumber(it, repaired))), nil
}

// ownPostNumber is the item's PostNumber, else the first No.<digits> in text.
func ownPostNumber(it models.Item, text string) string {
	if it.PostNumber != "" {
		return it.PostNumber
	}
	n, _ := annotate.FirstPostNumber(text)
	return n
}

func formatToken(tok models.Token) string {
	return fmt.Sprintf("%s %q line %d [%d,%d)", tok.Kind, tok.Value, tok.Line, tok.Start, tok.End)
}

func textResult(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
