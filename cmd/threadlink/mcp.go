// ABOUTME: MCP server command implementation for threadlink.
// ABOUTME: Starts the MCP server in stdio mode for AI agent integration.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcppkg "github.com/2389-research/threadlink/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, allowing AI agents to list
threads, annotate posts, resolve references, and record likes.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := globalLog.WithField("component", "mcp")
	server, err := mcppkg.NewServer(globalSnapshots, globalLikes, mcppkg.WithLogger(log))
	if err != nil {
		return err
	}

	log.Info("serving on stdio")
	if err := server.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	log.Info("shut down")
	return nil
}
