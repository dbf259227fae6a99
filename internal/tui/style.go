// ABOUTME: Lipgloss styles and token highlighting for the thread browser.
// ABOUTME: Renders items as styled blocks with clickable spans colored by token kind.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/threadlink/internal/annotate"
	"github.com/2389-research/threadlink/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	mediaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	endStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	postBoxStyle = lipgloss.NewStyle().PaddingLeft(1).BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(lipgloss.Color("238"))
)

// tokenStyles colors each clickable token kind.
var tokenStyles = map[models.TokenKind]lipgloss.Style{
	models.TokenPostRef:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Underline(true),
	models.TokenQuoteLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("107")),
	models.TokenPosterID:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	models.TokenURL:        lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
	models.TokenFileName:   lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	models.TokenLikeMarker: lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
}

// highlight styles each token span of text. Tokens nested inside an
// already styled span (e.g. a post ref inside a quote line) are skipped.
func highlight(text string, tokens []models.Token) string {
	var b strings.Builder
	pos := 0
	for _, tok := range tokens {
		if tok.Start < pos || tok.End > len(text) || tok.Start >= tok.End {
			continue
		}
		b.WriteString(text[pos:tok.Start])
		span := text[tok.Start:tok.End]
		if style, ok := tokenStyles[tok.Kind]; ok {
			span = style.Render(span)
		}
		b.WriteString(span)
		pos = tok.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

// renderText prepares a post body for display: spacing repair, like
// overlay, then token highlighting.
func renderText(plain string, likes map[string]int, postNumber string) string {
	text := annotate.RepairSpacing(plain)
	if postNumber == "" {
		postNumber, _ = annotate.FirstPostNumber(text)
	}
	text = annotate.ApplyLikeOverlay(text, likes, postNumber)
	return highlight(text, annotate.Annotate(text, annotate.HeaderLines(text)))
}

// renderItem renders one item as a display block of the given width.
func renderItem(it models.Item, plain string, likes map[string]int, width int) string {
	switch it.Kind {
	case models.KindText:
		return postBoxStyle.Width(width).Render(renderText(plain, likes, it.PostNumber))
	case models.KindImage, models.KindVideo:
		name := it.FileName
		if name == "" {
			name = it.MediaURL
		}
		line := fmt.Sprintf("  [%s] %s", it.Kind, name)
		if it.Caption != "" {
			line += " - " + it.Caption
		}
		return mediaStyle.Render(line)
	case models.KindEnd:
		label := it.Label
		if label == "" {
			label = "end of thread"
		}
		return endStyle.Render("--- " + label + " ---")
	}
	return ""
}
