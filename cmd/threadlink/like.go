// ABOUTME: CLI commands for local like counts.
// ABOUTME: Provides like, likes listing, and merging server-confirmed counts.
package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var likeCmd = &cobra.Command{
	Use:   "like <thread> <post-number>",
	Short: "Add one like to a post",
	Long:  "Optimistically increment the local like count of a post. Accepts 100 or No.100.",
	Args:  cobra.ExactArgs(2),
	RunE:  runLike,
}

var likesCmd = &cobra.Command{
	Use:   "likes <thread>",
	Short: "Show local like counts",
	Long: `Show the local like counts of a thread.

With --set, replace local counts with server-confirmed ones first.
A count of zero removes the entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runLikes,
}

// Flags
var likesSet []string

func init() {
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(likesCmd)

	likesCmd.Flags().StringSliceVar(&likesSet, "set", nil, "Confirmed counts as <post>=<count>, repeatable")
}

func runLike(cmd *cobra.Command, args []string) error {
	if err := ensureThread(args[0]); err != nil {
		return err
	}
	count, err := globalLikes.Increment(args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to like post: %w", err)
	}
	fmt.Printf("Liked %s in %s (now %d)\n", args[1], args[0], count)
	return nil
}

func runLikes(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := ensureThread(name); err != nil {
		return err
	}

	if len(likesSet) > 0 {
		confirmed, err := parseCounts(likesSet)
		if err != nil {
			return err
		}
		if err := globalLikes.Merge(name, confirmed); err != nil {
			return fmt.Errorf("failed to merge likes: %w", err)
		}
	}

	counts, err := globalLikes.Counts(name)
	if err != nil {
		return fmt.Errorf("failed to read likes: %w", err)
	}
	if len(counts) == 0 {
		fmt.Println("No likes.")
		return nil
	}

	posts := make([]string, 0, len(counts))
	for p := range counts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		a, _ := strconv.Atoi(posts[i])
		b, _ := strconv.Atoi(posts[j])
		return a < b
	})
	for _, p := range posts {
		fmt.Printf("No.%s  そうだねx%d\n", p, counts[p])
	}
	return nil
}

// ensureThread fails when no snapshot is stored under name.
func ensureThread(name string) error {
	if _, err := globalSnapshots.Load(name); err != nil {
		return fmt.Errorf("failed to load thread: %w", err)
	}
	return nil
}

// parseCounts parses <post>=<count> pairs.
func parseCounts(pairs []string) (map[string]int, error) {
	counts := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		post, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid count %q: want <post>=<count>", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid count %q: %w", pair, err)
		}
		counts[strings.TrimSpace(post)] = n
	}
	return counts, nil
}
