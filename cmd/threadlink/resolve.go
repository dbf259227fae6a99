// ABOUTME: CLI commands for reference resolution within a stored thread.
// ABOUTME: Infers the query kind by default; one subcommand per kind forces it.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/render"
	"github.com/2389-research/threadlink/internal/thread"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <thread> <query>",
	Short: "Resolve a reference to the posts it points at",
	Long: `Resolve a post number, quote, poster ID, file name, or free text to
the matching posts of a thread, each with its attached media.

The query kind is inferred: >>100 and No.100 are post numbers, >text
is a quote, ID:xxxx is a poster ID, name.jpg is a file name, and
anything else is free text. Use a subcommand to force a kind.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd, args, "")
	},
}

// resolveAliases are the short subcommand names for each query kind.
var resolveAliases = map[thread.QueryKind][]string{
	thread.QueryPostNumber:    {"post"},
	thread.QueryQuote:         {"q"},
	thread.QueryQuoteBackrefs: {"backrefs"},
	thread.QueryPosterID:      {"id"},
	thread.QueryFileName:      {"file"},
	thread.QueryFreeText:      {"text"},
}

// Flags
var (
	resolveTitle string
	resolveExtra []string
	resolveJSON  bool
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	for _, kind := range thread.QueryKinds {
		kind := kind
		resolveCmd.AddCommand(&cobra.Command{
			Use:     string(kind) + " <thread> <value>",
			Aliases: resolveAliases[kind],
			Short:   fmt.Sprintf("Resolve as %s", kind),
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runResolve(cmd, args, kind)
			},
		})
	}

	resolveCmd.PersistentFlags().StringVar(&resolveTitle, "title", "", "Thread title used for quote matching (defaults to the stored title)")
	resolveCmd.PersistentFlags().StringSliceVar(&resolveExtra, "extra", nil, "Additional candidate quote lines")
	resolveCmd.PersistentFlags().BoolVar(&resolveJSON, "json", false, "Print matching items as JSON")
}

func runResolve(cmd *cobra.Command, args []string, kind thread.QueryKind) error {
	s, err := openThread(args[0])
	if err != nil {
		return err
	}

	title := resolveTitle
	if title == "" {
		title = s.snapshot.Title
	}

	var q thread.Query
	if kind == "" {
		var ok bool
		q, ok = thread.ParseQuery(args[1], title)
		if !ok {
			return fmt.Errorf("query is empty")
		}
	} else {
		if strings.TrimSpace(args[1]) == "" {
			return fmt.Errorf("query is empty")
		}
		q = thread.Query{Kind: kind, Value: args[1], Title: title}
	}
	q.Extra = resolveExtra

	results, err := s.resolver.ResolveAll(cmd.Context(), []thread.Query{q})
	if err != nil {
		return err
	}
	items := results[0]

	if resolveJSON {
		if items == nil {
			items = []models.Item{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No matching posts.")
		return nil
	}
	fmt.Fprintf(out, "%s %q: %d items\n", q.Kind, q.Value, len(items))
	width := globalConfig.GetWidth()
	for _, it := range items {
		text := ""
		if it.IsText() {
			text = s.resolver.PlainText(it)
		}
		fmt.Fprintln(out, render.Summary(it, text, width))
	}
	return nil
}
