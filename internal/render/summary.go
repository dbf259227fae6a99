// ABOUTME: One-line item summaries for listings in the CLI, MCP tools, and TUI.
// ABOUTME: Truncates by display width so full-width text lines up in terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/2389-research/threadlink/internal/models"
)

// Summary describes an item on one line of at most width display cells.
// text is the item's plain text and is only used for text items. A width of
// zero or less disables truncation.
func Summary(it models.Item, text string, width int) string {
	var line string
	switch it.Kind {
	case models.KindText:
		line = fmt.Sprintf("[%s] %s", it.ID, firstLine(text))
	case models.KindImage, models.KindVideo:
		name := it.FileName
		if name == "" {
			name = it.MediaURL
		}
		line = fmt.Sprintf("[%s] %s %s", it.ID, it.Kind, name)
	case models.KindEnd:
		line = fmt.Sprintf("[%s] end %s", it.ID, it.Label)
	default:
		line = fmt.Sprintf("[%s] %s", it.ID, it.Kind)
	}
	line = strings.TrimRight(line, " ")
	if width > 0 {
		line = runewidth.Truncate(line, width, "…")
	}
	return line
}

func firstLine(text string) string {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}
