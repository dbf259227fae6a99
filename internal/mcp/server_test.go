// ABOUTME: Tests for MCP server creation and validation.
// ABOUTME: Verifies the server requires both snapshot and like stores.
package mcp

import (
	"testing"

	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/storage"
)

func TestNewServerRequiresSnapshotStore(t *testing.T) {
	likes, _ := storage.NewYAMLLikeStore(t.TempDir(), nil)

	_, err := NewServer(nil, likes)
	if err == nil {
		t.Error("expected error when snapshot store is nil")
	}
}

func TestNewServerRequiresLikeStore(t *testing.T) {
	snapshots, _ := storage.NewYAMLSnapshotStore(t.TempDir(), nil)

	_, err := NewServer(snapshots, nil)
	if err == nil {
		t.Error("expected error when like store is nil")
	}
}

func TestNewServerSuccess(t *testing.T) {
	tmpDir := t.TempDir()
	snapshots, _ := storage.NewYAMLSnapshotStore(tmpDir, nil)
	likes, _ := storage.NewYAMLLikeStore(tmpDir, nil)

	server, err := NewServer(snapshots, likes)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	if server == nil {
		t.Fatal("expected non-nil server")
	}
	if server.render == nil {
		t.Error("expected default renderer to be set")
	}
}

func TestNewServerWithRenderer(t *testing.T) {
	tmpDir := t.TempDir()
	snapshots, _ := storage.NewYAMLSnapshotStore(tmpDir, nil)
	likes, _ := storage.NewYAMLLikeStore(tmpDir, nil)

	called := false
	custom := func(it models.Item) string {
		called = true
		return it.RawMarkup
	}
	server, err := NewServer(snapshots, likes, WithRenderer(custom))
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	server.render(models.NewText("t", "x", ""))
	if !called {
		t.Error("expected custom renderer to be used")
	}
}
