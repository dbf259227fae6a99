// ABOUTME: Unit tests for the thread browser bubbletea model.
// ABOUTME: Uses synthetic tea.Msg values to test mode transitions and rendering.
package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/thread"
)

func testThread() *models.Thread {
	return &models.Thread{
		Title: "hello world",
		Items: []models.Item{
			models.NewText("t1", "1 無念 25/01/01(水)12:00:00 No.100\nhello world", "100"),
			models.NewImage("i1", "http://x/a.jpg", "a.jpg", "cap"),
			models.NewText("t2", "2 無念 25/01/01(水)12:01:00 No.101\n>>100", ""),
			models.NewEndMarker("e1", ""),
		},
	}
}

func newTestBrowser(t *testing.T) BrowserModel {
	t.Helper()
	th := testThread()
	r := thread.NewResolver(th.Items, nil)
	return NewBrowserModel(th, r, map[string]int{"100": 3}, 80)
}

func typeString(m BrowserModel, s string) BrowserModel {
	for _, r := range s {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(BrowserModel)
	}
	return m
}

func TestNewBrowserModel(t *testing.T) {
	m := newTestBrowser(t)
	if m.Mode() != ModeThread {
		t.Errorf("expected ModeThread, got %d", m.Mode())
	}
	view := m.View()
	if !strings.Contains(view, "hello world") {
		t.Errorf("expected title in view, got: %s", view)
	}
	if !strings.Contains(view, "4 items") {
		t.Errorf("expected item count in view, got: %s", view)
	}
}

func TestBrowserQueryFlow(t *testing.T) {
	m := newTestBrowser(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = updated.(BrowserModel)
	if m.Mode() != ModeQuery {
		t.Fatalf("expected ModeQuery after '/', got %d", m.Mode())
	}

	m = typeString(m, ">>100")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(BrowserModel)
	if m.Mode() != ModeResolving {
		t.Fatalf("expected ModeResolving after Enter, got %d", m.Mode())
	}
	if cmd == nil {
		t.Fatal("expected resolve + spinner cmd")
	}
	if m.query.Kind != thread.QueryPostNumber || m.query.Value != "100" {
		t.Errorf("unexpected query %+v", m.query)
	}

	msg := m.startResolve(m.query)()
	updated, _ = m.Update(msg)
	m = updated.(BrowserModel)
	if m.Mode() != ModeResults {
		t.Fatalf("expected ModeResults, got %d", m.Mode())
	}
	got := models.ItemIDs(m.Results())
	want := []string{"t1", "i1", "t2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("results = %v, want %v", got, want)
	}
	if !strings.Contains(m.View(), "3 items") {
		t.Errorf("expected result count in view, got: %s", m.View())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = updated.(BrowserModel)
	if m.Mode() != ModeThread {
		t.Errorf("expected ModeThread after Escape, got %d", m.Mode())
	}
	if m.Results() != nil {
		t.Error("expected results cleared")
	}
}

func TestBrowserEmptyQueryIgnored(t *testing.T) {
	m := newTestBrowser(t)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = updated.(BrowserModel)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(BrowserModel)
	if m.Mode() != ModeQuery {
		t.Errorf("expected to stay in ModeQuery, got %d", m.Mode())
	}
	if cmd != nil {
		t.Error("expected no cmd for empty query")
	}
}

func TestBrowserResolveError(t *testing.T) {
	m := newTestBrowser(t)
	m.mode = ModeResolving

	updated, _ := m.Update(resolvedMsg{query: thread.Query{Kind: thread.QueryFreeText, Value: "x"}, err: fmt.Errorf("boom")})
	m = updated.(BrowserModel)
	if m.Mode() != ModeResults {
		t.Fatalf("expected ModeResults, got %d", m.Mode())
	}
	if !strings.Contains(m.View(), "boom") {
		t.Errorf("expected error in view, got: %s", m.View())
	}
}

func TestBrowserCancelResolving(t *testing.T) {
	m := newTestBrowser(t)
	started := make(chan struct{})
	m.resolveFn = func(ctx context.Context, q thread.Query) ([]models.Item, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	m.mode = ModeResolving
	cmd := m.startResolve(thread.Query{Kind: thread.QueryFreeText, Value: "x"})

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	<-started

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = updated.(BrowserModel)
	if m.Mode() != ModeThread {
		t.Errorf("expected ModeThread after cancel, got %d", m.Mode())
	}

	select {
	case msg := <-done:
		// A late result after cancelling must not switch modes.
		updated, _ = m.Update(msg)
		if updated.(BrowserModel).Mode() != ModeThread {
			t.Error("late result changed the mode")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("resolve was not cancelled")
	}
}

func TestBrowserIgnoresSupersededResult(t *testing.T) {
	m := newTestBrowser(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = typeString(updated.(BrowserModel), "100")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(BrowserModel)
	first := m.query
	firstSeq := m.cancelCtx.seq

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = updated.(BrowserModel)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = typeString(updated.(BrowserModel), "hello")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(BrowserModel)
	if m.Mode() != ModeResolving {
		t.Fatalf("expected ModeResolving for second query, got %d", m.Mode())
	}
	second := m.query

	// The cancelled first resolution reports back after the second started.
	updated, _ = m.Update(resolvedMsg{seq: firstSeq, query: first, err: context.Canceled})
	m = updated.(BrowserModel)
	if m.Mode() != ModeResolving {
		t.Fatalf("stale result changed the mode to %d", m.Mode())
	}
	if m.cancelCtx.cancel == nil {
		t.Fatal("stale result dropped the cancel func of the running query")
	}

	want := []models.Item{models.NewText("t1", "hello world", "")}
	updated, _ = m.Update(resolvedMsg{seq: m.cancelCtx.seq, query: second, items: want})
	m = updated.(BrowserModel)
	if m.Mode() != ModeResults {
		t.Fatalf("expected ModeResults, got %d", m.Mode())
	}
	if m.query.Kind != second.Kind || m.query.Value != second.Value || m.err != nil {
		t.Errorf("results belong to %+v (err %v), want %+v", m.query, m.err, second)
	}
	if got := models.ItemIDs(m.Results()); len(got) != 1 || got[0] != "t1" {
		t.Errorf("results = %v, want [t1]", got)
	}
}

func TestBrowserQuit(t *testing.T) {
	m := newTestBrowser(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = updated.(BrowserModel)
	if !m.quitting {
		t.Error("expected quitting after 'q'")
	}
	if cmd == nil {
		t.Error("expected tea.Quit cmd")
	}
	if m.View() != "" {
		t.Error("expected empty view when quitting")
	}
}

func TestBrowserWindowResize(t *testing.T) {
	m := newTestBrowser(t)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(BrowserModel)
	if m.viewport.Width != 120 || m.viewport.Height != 40-headerHeight-1 {
		t.Errorf("viewport = %dx%d", m.viewport.Width, m.viewport.Height)
	}
}
