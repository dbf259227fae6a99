// ABOUTME: MCP server initialization and configuration for threadlink.
// ABOUTME: Sets up the server with thread annotation, resolution, and like tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/render"
	"github.com/2389-research/threadlink/internal/storage"
	"github.com/2389-research/threadlink/internal/thread"
)

// Server wraps the MCP server with snapshot and like storage.
type Server struct {
	mcp       *gomcp.Server
	snapshots storage.SnapshotStore
	likes     storage.LikeStore
	render    thread.PlainTextRenderer
	log       *logrus.Entry
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithRenderer replaces the default goquery-based markup renderer.
func WithRenderer(r thread.PlainTextRenderer) ServerOption {
	return func(s *Server) {
		if r != nil {
			s.render = r
		}
	}
}

// WithLogger sets the entry used for request logging.
func WithLogger(entry *logrus.Entry) ServerOption {
	return func(s *Server) {
		if entry != nil {
			s.log = entry
		}
	}
}

// NewServer creates an MCP server over the given stores.
func NewServer(snapshots storage.SnapshotStore, likes storage.LikeStore, opts ...ServerOption) (*Server, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}
	if likes == nil {
		return nil, fmt.Errorf("like store is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "threadlink",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:       mcpServer,
		snapshots: snapshots,
		likes:     likes,
		log:       logrus.NewEntry(logrus.StandardLogger()),
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.render == nil {
		s.render = render.Renderer(s.log)
	}

	s.registerThreadTools()
	s.registerResolveTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}

// session is one loaded snapshot with a resolver over its rendered text.
type session struct {
	name     string
	snapshot *models.Thread
	resolver *thread.Resolver
}

func (s *Server) open(name string) (*session, error) {
	t, err := s.snapshots.Load(name)
	if err != nil {
		return nil, err
	}
	return &session{
		name:     name,
		snapshot: t,
		resolver: render.NewCachedResolver(t.Items, s.render, s.log.WithField("thread", name)),
	}, nil
}

// item returns the text item with the given id.
func (ss *session) item(id string) (models.Item, error) {
	for _, it := range ss.snapshot.Items {
		if it.ID == id {
			if !it.IsText() {
				return models.Item{}, fmt.Errorf("item %q is a %s item, not text", id, it.Kind)
			}
			return it, nil
		}
	}
	return models.Item{}, fmt.Errorf("item %q not found in thread %q", id, ss.name)
}

func (ss *session) text(it models.Item) string {
	return ss.resolver.PlainText(it)
}
