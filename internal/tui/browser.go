// ABOUTME: Interactive bubbletea browser for a thread snapshot and its references.
// ABOUTME: Typed queries resolve asynchronously with a spinner and show results in a viewport.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/thread"
)

// Mode represents what the browser is currently showing.
type Mode int

const (
	ModeThread Mode = iota
	ModeQuery
	ModeResolving
	ModeResults
)

// headerHeight is the number of lines above the viewport.
const headerHeight = 3

// resolvedMsg carries the result of an async resolution. seq identifies
// the startResolve call that produced it.
type resolvedMsg struct {
	seq   int
	query thread.Query
	items []models.Item
	err   error
}

// ResolveFn resolves one query. It must honor ctx cancellation.
type ResolveFn func(ctx context.Context, q thread.Query) ([]models.Item, error)

// cancelHolder shares the in-flight resolution across bubbletea model
// copies. It must be a pointer field so value-receiver methods can store
// the cancel func and sequence number and have them visible to all copies.
type cancelHolder struct {
	cancel context.CancelFunc
	seq    int
}

// BrowserModel is the bubbletea model for the thread browser.
type BrowserModel struct {
	mode      Mode
	title     string
	items     []models.Item
	plainText thread.PlainTextRenderer
	likes     map[string]int
	width     int

	input     textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	resolveFn ResolveFn
	cancelCtx *cancelHolder

	query    thread.Query
	results  []models.Item
	err      error
	quitting bool
}

// NewBrowserModel creates a browser over a snapshot. likes is read only;
// width is the wrap width for post bodies.
func NewBrowserModel(t *models.Thread, r *thread.Resolver, likes map[string]int, width int) BrowserModel {
	input := textinput.New()
	input.Placeholder = ">>100, >quoted text, ID:abcd, 123.jpg, or words"
	input.Prompt = "/ "
	input.Width = width - 4

	s := spinner.New()
	s.Spinner = spinner.Dot

	vp := viewport.New(width, 20)

	m := BrowserModel{
		mode:      ModeThread,
		title:     t.Title,
		items:     t.Items,
		plainText: r.PlainText,
		likes:     likes,
		width:     width,
		input:     input,
		spinner:   s,
		viewport:  vp,
		resolveFn: resolverFn(r),
		cancelCtx: &cancelHolder{},
	}
	m.viewport.SetContent(m.renderItems(m.items))
	return m
}

// resolverFn adapts a Resolver to ResolveFn via its cancellable batch API.
func resolverFn(r *thread.Resolver) ResolveFn {
	return func(ctx context.Context, q thread.Query) ([]models.Item, error) {
		results, err := r.ResolveAll(ctx, []thread.Query{q})
		if err != nil {
			return nil, err
		}
		return results[0], nil
	}
}

// Init implements tea.Model.
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-1, 1)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}
		switch m.mode {
		case ModeQuery:
			return m.updateQuery(msg)
		case ModeResolving:
			if msg.Type == tea.KeyEscape {
				m.cancel()
				m.mode = ModeThread
				m.viewport.SetContent(m.renderItems(m.items))
			}
			return m, nil
		default:
			return m.updateBrowse(msg)
		}

	case resolvedMsg:
		// Results of cancelled or superseded resolutions are dropped.
		if msg.seq != m.cancelCtx.seq || m.mode != ModeResolving {
			return m, nil
		}
		m.cancelCtx.cancel = nil
		m.query = msg.query
		m.results = msg.items
		m.err = msg.err
		m.mode = ModeResults
		if msg.err != nil {
			m.viewport.SetContent(errorStyle.Render("✗ " + msg.err.Error()))
		} else {
			m.viewport.SetContent(m.renderItems(msg.items))
		}
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeResolving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m BrowserModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		if m.mode == ModeResults {
			m.mode = ModeThread
			m.results = nil
			m.err = nil
			m.viewport.SetContent(m.renderItems(m.items))
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case tea.KeyRunes:
		switch msg.Runes[0] {
		case '/':
			m.mode = ModeQuery
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m BrowserModel) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.input.Blur()
		m.mode = ModeThread
		return m, nil
	case tea.KeyEnter:
		q, ok := thread.ParseQuery(m.input.Value(), m.title)
		if !ok {
			return m, nil
		}
		m.input.Blur()
		m.query = q
		m.mode = ModeResolving
		return m, tea.Batch(m.startResolve(q), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m BrowserModel) startResolve(q thread.Query) tea.Cmd {
	m.cancel()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	m.cancelCtx.seq++
	seq := m.cancelCtx.seq
	fn := m.resolveFn
	return func() tea.Msg {
		items, err := fn(ctx, q)
		return resolvedMsg{seq: seq, query: q, items: items, err: err}
	}
}

func (m BrowserModel) cancel() {
	if m.cancelCtx.cancel != nil {
		m.cancelCtx.cancel()
		m.cancelCtx.cancel = nil
	}
}

func (m BrowserModel) renderItems(items []models.Item) string {
	if len(items) == 0 {
		return statusStyle.Render("No matching posts.")
	}
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		plain := ""
		if it.IsText() {
			plain = m.plainText(it)
		}
		blocks = append(blocks, renderItem(it, plain, m.likes, m.width))
	}
	return strings.Join(blocks, "\n")
}

// View implements tea.Model.
func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(brandStyle.Render("threadlink"))
	if m.title != "" {
		b.WriteString(titleStyle.Render(" - " + m.title))
	}
	b.WriteString("\n")

	switch m.mode {
	case ModeThread:
		b.WriteString(statusStyle.Render(fmt.Sprintf("%d items", len(m.items))))
	case ModeQuery:
		b.WriteString(m.input.View())
	case ModeResolving:
		b.WriteString(m.spinner.View())
		b.WriteString(fmt.Sprintf(" Resolving %s %q...", m.query.Kind, m.query.Value))
	case ModeResults:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("%s %q failed", m.query.Kind, m.query.Value)))
		} else {
			b.WriteString(statusStyle.Render(fmt.Sprintf("%s %q: %d items", m.query.Kind, m.query.Value, len(m.results))))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(promptStyle.Render(m.help()))
	return b.String()
}

func (m BrowserModel) help() string {
	switch m.mode {
	case ModeQuery:
		return "[enter] resolve  [esc] cancel"
	case ModeResolving:
		return "[esc] cancel"
	case ModeResults:
		return "[/] search  [esc] back to thread  [q] quit"
	default:
		return "[/] search  [↑/↓] scroll  [q] quit"
	}
}

// Mode returns the current browser mode.
func (m BrowserModel) Mode() Mode {
	return m.mode
}

// Results returns the items of the last resolution.
func (m BrowserModel) Results() []models.Item {
	return m.results
}
