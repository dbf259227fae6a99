// ABOUTME: Converts post markup to the plain body text every other package works on.
// ABOUTME: Uses goquery to flatten HTML; line breaks and block elements become newlines.
package render

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/thread"
)

// blockSelector lists elements whose end starts a new line.
const blockSelector = "p, div, li, tr, h1, h2, h3, h4, h5, h6, pre"

// PlainText flattens markup into plain text. <br> and the end of block
// elements become '\n', entities are decoded, and script and style content
// is dropped. Markup without tags is returned with only entities decoded.
func PlainText(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	body := doc.Find("body")
	body.Find("script, style").Remove()
	body.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(newline())
	})
	body.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendNodes(newline())
	})

	lines := strings.Split(body.Text(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n"), nil
}

func newline() *html.Node {
	return &html.Node{Type: html.TextNode, Data: "\n"}
}

// Renderer returns a PlainTextRenderer backed by PlainText. Markup that
// fails to parse is logged and used verbatim.
func Renderer(log *logrus.Entry) thread.PlainTextRenderer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return func(it models.Item) string {
		text, err := PlainText(it.RawMarkup)
		if err != nil {
			log.WithError(err).WithField("item", it.ID).Warn("falling back to raw markup")
			return it.RawMarkup
		}
		return text
	}
}

// BuildCache renders every text item once and returns an id -> plain text
// map suitable for thread.WithCache. Later items with a duplicate id do not
// overwrite earlier ones.
func BuildCache(items []models.Item, render thread.PlainTextRenderer) map[string]string {
	cache := make(map[string]string)
	for _, it := range items {
		if !it.IsText() {
			continue
		}
		if _, ok := cache[it.ID]; ok {
			continue
		}
		cache[it.ID] = render(it)
	}
	return cache
}

// NewCachedResolver builds a resolver over items whose plain text is
// rendered once up front. A nil render uses Renderer(log).
func NewCachedResolver(items []models.Item, render thread.PlainTextRenderer, log *logrus.Entry) *thread.Resolver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if render == nil {
		render = Renderer(log)
	}
	return thread.NewResolver(items, render,
		thread.WithCache(BuildCache(items, render)),
		thread.WithLogger(log))
}
