// ABOUTME: Interactive thread browser command.
// ABOUTME: Runs the bubbletea browser over a stored snapshot with its like counts.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/threadlink/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view <thread>",
	Short: "Browse a thread interactively",
	Long:  "Browse a stored thread with highlighted references. Press / to resolve a query.",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	s, err := openThread(args[0])
	if err != nil {
		return err
	}
	counts, err := globalLikes.Counts(s.name)
	if err != nil {
		return fmt.Errorf("failed to read likes: %w", err)
	}

	model := tui.NewBrowserModel(s.snapshot, s.resolver, counts, globalConfig.GetWidth())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
