// ABOUTME: Unit tests for browser token highlighting and item rendering.
// ABOUTME: Styles are stripped so assertions check text content only.
package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/2389-research/threadlink/internal/models"
)

func TestHighlightPreservesText(t *testing.T) {
	text := "1 無念 25/01/01(水)12:00:00 No.100 そうだね ID:abcd\n>>99 quoted\nsee https://x.com/a.jpg"
	span := func(kind models.TokenKind, sub string) models.Token {
		start := strings.Index(text, sub)
		return models.Token{Kind: kind, Value: sub, Start: start, End: start + len(sub)}
	}
	quote := span(models.TokenQuoteLine, ">>99 quoted")
	inner := span(models.TokenPostRef, "99")
	tokens := []models.Token{
		span(models.TokenPostRef, "No.100"),
		quote,
		inner,
		span(models.TokenURL, "https://x.com/a.jpg"),
		{Kind: models.TokenLikeMarker, Value: "bad", Start: 5, End: 500},
	}
	if inner.Start < quote.Start {
		t.Fatal("fixture offsets out of order")
	}
	got := ansi.Strip(highlight(text, tokens))
	if got != text {
		t.Errorf("highlight changed text:\n got %q\nwant %q", got, text)
	}
}

func TestRenderTextAppliesOverlay(t *testing.T) {
	plain := "5 無念 25/01/01(水)12:00:00 No.105 そうだね"

	got := ansi.Strip(renderText(plain, map[string]int{"105": 3}, ""))
	if !strings.Contains(got, "そうだねx3") {
		t.Errorf("expected overlay count, got %q", got)
	}

	got = ansi.Strip(renderText(plain, nil, ""))
	if strings.Contains(got, "そうだねx") {
		t.Errorf("expected no overlay without counts, got %q", got)
	}
}

func TestRenderItemKinds(t *testing.T) {
	tests := []struct {
		item models.Item
		want string
	}{
		{models.NewImage("i1", "http://x/a.jpg", "a.jpg", "cap"), "[image] a.jpg - cap"},
		{models.NewVideo("v1", "http://x/b.mp4", "", "", ""), "[video] http://x/b.mp4"},
		{models.NewEndMarker("e1", ""), "--- end of thread ---"},
		{models.NewEndMarker("e2", "closed"), "--- closed ---"},
	}
	for _, tt := range tests {
		t.Run(tt.item.ID, func(t *testing.T) {
			got := ansi.Strip(renderItem(tt.item, "", nil, 80))
			if !strings.Contains(got, tt.want) {
				t.Errorf("renderItem = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
