// ABOUTME: MCP tool implementations for reference resolution.
// ABOUTME: Registers resolve_references and resolve_batch over stored thread snapshots.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/render"
	"github.com/2389-research/threadlink/internal/thread"
)

// summaryWidth bounds each listed item line.
const summaryWidth = 120

func (s *Server) registerResolveTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "resolve_references",
		Description: "Find the posts a reference points at: a post number, quote, poster ID, filename, or free text. Leave kind empty to infer it from the query.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"thread": {"type": "string", "description": "Thread snapshot name", "minLength": 1},
				"query": {"type": "string", "description": "Reference text, e.g. >>100, >quoted line, ID:abcd, 123.jpg", "minLength": 1},
				"kind": {"type": "string", "enum": ["", "post_number", "quote", "quote_backrefs", "poster_id", "file_name", "free_text"], "description": "Resolver to use (optional)"},
				"title": {"type": "string", "description": "Thread title for the title-as-quote rule (defaults to the stored title)"}
			},
			"required": ["thread", "query"]
		}`),
	}, s.handleResolveReferences)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "resolve_batch",
		Description: "Resolve several references against one thread concurrently.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"thread": {"type": "string", "description": "Thread snapshot name", "minLength": 1},
				"queries": {
					"type": "array",
					"minItems": 1,
					"items": {
						"type": "object",
						"properties": {
							"query": {"type": "string", "minLength": 1},
							"kind": {"type": "string"}
						},
						"required": ["query"]
					}
				}
			},
			"required": ["thread", "queries"]
		}`),
	}, s.handleResolveBatch)
}

type queryArgs struct {
	Query string `json:"query"`
	Kind  string `json:"kind"`
}

// buildQuery turns tool arguments into a Query, inferring the kind when it
// is not given.
func buildQuery(a queryArgs, title string) (thread.Query, error) {
	if strings.TrimSpace(a.Query) == "" {
		return thread.Query{}, fmt.Errorf("query is required")
	}
	if a.Kind == "" {
		q, ok := thread.ParseQuery(a.Query, title)
		if !ok {
			return thread.Query{}, fmt.Errorf("could not interpret query %q", a.Query)
		}
		return q, nil
	}
	kind, err := thread.ParseQueryKind(a.Kind)
	if err != nil {
		return thread.Query{}, err
	}
	return thread.Query{Kind: kind, Value: a.Query, Title: title}, nil
}

func (s *Server) handleResolveReferences(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Thread string `json:"thread"`
		Query  string `json:"query"`
		Kind   string `json:"kind"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Thread == "" {
		return toolError("thread is required"), nil
	}

	ss, err := s.open(args.Thread)
	if err != nil {
		return toolError("failed to load thread: %v", err), nil
	}
	title := args.Title
	if title == "" {
		title = ss.snapshot.Title
	}
	q, err := buildQuery(queryArgs{Query: args.Query, Kind: args.Kind}, title)
	if err != nil {
		return toolError("%v", err), nil
	}

	items := ss.resolver.Resolve(q)
	s.log.WithFields(logrus.Fields{"thread": args.Thread, "kind": q.Kind, "items": len(items)}).Info("resolved reference")
	return textResult(ss.formatResult(q, items)), nil
}

func (s *Server) handleResolveBatch(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Thread  string      `json:"thread"`
		Queries []queryArgs `json:"queries"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Thread == "" {
		return toolError("thread is required"), nil
	}
	if len(args.Queries) == 0 {
		return toolError("at least one query is required"), nil
	}

	ss, err := s.open(args.Thread)
	if err != nil {
		return toolError("failed to load thread: %v", err), nil
	}

	queries := make([]thread.Query, len(args.Queries))
	for i, a := range args.Queries {
		q, err := buildQuery(a, ss.snapshot.Title)
		if err != nil {
			return toolError("query %d: %v", i+1, err), nil
		}
		queries[i] = q
	}

	results, err := ss.resolver.ResolveAll(ctx, queries)
	if err != nil {
		return toolError("failed to resolve: %v", err), nil
	}

	var sb strings.Builder
	for i, q := range queries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(ss.formatResult(q, results[i]))
	}
	return textResult(sb.String()), nil
}

func (ss *session) formatResult(q thread.Query, items []models.Item) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %q: %d items\n", q.Kind, q.Value, len(items)))
	if len(items) == 0 {
		sb.WriteString("No matching posts.\n")
		return sb.String()
	}
	for _, it := range items {
		text := ""
		if it.IsText() {
			text = ss.text(it)
		}
		sb.WriteString(render.Summary(it, text, summaryWidth))
		sb.WriteString("\n")
	}
	return sb.String()
}
