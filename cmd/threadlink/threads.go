// ABOUTME: CLI commands for stored thread snapshots.
// ABOUTME: Provides threads listing and importing a snapshot file into the store.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/storage"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List stored thread snapshots",
	RunE:  runThreads,
}

var importCmd = &cobra.Command{
	Use:   "import <name> <file>",
	Short: "Import a thread snapshot",
	Long: `Store a snapshot file under a name, replacing any existing one.

The file is YAML or JSON with a title and an items list. Use - to read
stdin. Items without an id are assigned one.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

// Flags
var (
	threadsLimit  int
	threadsOffset int
)

func init() {
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(importCmd)

	threadsCmd.Flags().IntVar(&threadsLimit, "limit", 0, "Maximum number of threads to show (0 for all)")
	threadsCmd.Flags().IntVar(&threadsOffset, "offset", 0, "Number of threads to skip")
}

func runThreads(cmd *cobra.Command, args []string) error {
	infos, err := globalSnapshots.List(storage.ListThreadsOptions{Limit: threadsLimit, Offset: threadsOffset})
	if err != nil {
		return fmt.Errorf("failed to list threads: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No threads found.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s (%d items)", info.Name, info.Items)
		if info.Title != "" {
			fmt.Printf(" - %s", info.Title)
		}
		fmt.Printf("  %s\n", info.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}

	// JSON documents parse as YAML flow style.
	var t models.Thread
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if err := globalSnapshots.Save(name, &t); err != nil {
		return err
	}
	fmt.Printf("Imported %s (%d items)\n", name, len(t.Items))
	return nil
}
