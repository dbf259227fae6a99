// ABOUTME: CLI commands for post text: annotation, spacing repair, and like overlay.
// ABOUTME: Prints repaired text with its token spans as a table or JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/2389-research/threadlink/internal/annotate"
	"github.com/2389-research/threadlink/internal/models"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <thread> <item-id>",
	Short: "Annotate a post with clickable spans",
	Long:  "Repair header spacing in a post and list its post refs, quote lines, IDs, URLs, file names, and like markers.",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnnotate,
}

var repairCmd = &cobra.Command{
	Use:   "repair [text]",
	Short: "Repair header spacing",
	Long:  "Insert missing separators around post header fields. Reads stdin when no text is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRepair,
}

var overlayCmd = &cobra.Command{
	Use:   "overlay <thread> <item-id>",
	Short: "Show a post with local like counts applied",
	Args:  cobra.ExactArgs(2),
	RunE:  runOverlay,
}

// Flags
var annotateJSON bool

func init() {
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(overlayCmd)

	annotateCmd.Flags().BoolVar(&annotateJSON, "json", false, "Print tokens as JSON")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	s, err := openThread(args[0])
	if err != nil {
		return err
	}
	it, err := s.textItem(args[1])
	if err != nil {
		return err
	}

	repaired, tokens := annotate.AnnotateText(s.resolver.PlainText(it))

	if annotateJSON {
		out := struct {
			Text   string         `json:"text"`
			Tokens []models.Token `json:"tokens"`
		}{repaired, tokens}
		if out.Tokens == nil {
			out.Tokens = []models.Token{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintln(cmd.OutOrStdout(), repaired)
	fmt.Fprintln(cmd.OutOrStdout())
	if len(tokens) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tokens.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), tokenTable(tokens))
	return nil
}

func tokenTable(tokens []models.Token) string {
	rows := make([][]string, 0, len(tokens))
	for _, tok := range tokens {
		rows = append(rows, []string{
			string(tok.Kind),
			tok.Value,
			strconv.Itoa(tok.Line),
			fmt.Sprintf("[%d,%d)", tok.Start, tok.End),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KIND", "VALUE", "LINE", "SPAN").
		Rows(rows...).
		String()
}

func runRepair(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}
	fmt.Fprintln(cmd.OutOrStdout(), annotate.RepairSpacing(text))
	return nil
}

func runOverlay(cmd *cobra.Command, args []string) error {
	s, err := openThread(args[0])
	if err != nil {
		return err
	}
	it, err := s.textItem(args[1])
	if err != nil {
		return err
	}
	counts, err := globalLikes.Counts(s.name)
	if err != nil {
		return fmt.Errorf("failed to read likes: %w", err)
	}

	repaired := annotate.RepairSpacing(s.resolver.PlainText(it))
	fmt.Fprintln(cmd.OutOrStdout(), annotate.ApplyLikeOverlay(repaired, counts, postNumber(it, repaired)))
	return nil
}
