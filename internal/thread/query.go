// ABOUTME: Query values that select a resolver, built from clicks or typed input.
// ABOUTME: Provides single and concurrent batch resolution over one snapshot.
package thread

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/2389-research/threadlink/internal/annotate"
	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/textnorm"
)

// QueryKind selects which resolver answers a query.
type QueryKind string

const (
	QueryPostNumber    QueryKind = "post_number"
	QueryQuote         QueryKind = "quote"
	QueryQuoteBackrefs QueryKind = "quote_backrefs"
	QueryPosterID      QueryKind = "poster_id"
	QueryFileName      QueryKind = "file_name"
	QueryFreeText      QueryKind = "free_text"
)

// QueryKinds lists every kind in display order.
var QueryKinds = []QueryKind{
	QueryPostNumber,
	QueryQuote,
	QueryQuoteBackrefs,
	QueryPosterID,
	QueryFileName,
	QueryFreeText,
}

// ParseQueryKind converts a string to a QueryKind.
func ParseQueryKind(s string) (QueryKind, error) {
	for _, k := range QueryKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown query kind %q", s)
}

// Query is one reference lookup. Value is the post number, quote text,
// poster id, filename, or free text depending on Kind. For QueryQuote, Value
// is the source post body and Extra holds additional candidate lines. Title
// is the thread title used by QueryQuoteBackrefs.
type Query struct {
	Kind  QueryKind `json:"kind" yaml:"kind"`
	Value string    `json:"value" yaml:"value"`
	Title string    `json:"title,omitempty" yaml:"title,omitempty"`
	Extra []string  `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Resolve dispatches q to its resolver. Unknown kinds resolve to nothing.
func (r *Resolver) Resolve(q Query) []models.Item {
	switch q.Kind {
	case QueryPostNumber:
		return r.ByPostNumber(q.Value)
	case QueryQuote:
		return r.ByQuotedContent(q.Value, q.Extra)
	case QueryQuoteBackrefs:
		return r.QuoteAndBackrefs(q.Value, q.Title)
	case QueryPosterID:
		return r.ByPosterID(q.Value)
	case QueryFileName:
		return r.ByFileName(q.Value)
	case QueryFreeText:
		return r.ByFreeText(q.Value)
	default:
		r.log.WithField("kind", q.Kind).Debug("ignoring query of unknown kind")
		return nil
	}
}

// ResolveAll resolves queries concurrently. results[i] answers queries[i].
// It stops early and returns ctx's error when ctx is cancelled.
func (r *Resolver) ResolveAll(ctx context.Context, queries []Query) ([][]models.Item, error) {
	results := make([][]models.Item, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.Resolve(q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolving %d queries: %w", len(queries), err)
	}
	return results, nil
}

var (
	bareNumberRe    = regexp.MustCompile(`^(?:No[.．]?\s*)?(\d+)$`)
	typedPostRe     = regexp.MustCompile(`^(?i)>*\s*No[.．]?\s*(\d+)$`)
	typedQuoteNumRe = regexp.MustCompile(`^>+\s*(\d+)$`)
	typedPosterRe   = regexp.MustCompile(`^ID[:：](\S+)$`)
)

// QueryFromToken turns a clicked token into the query it should run. A
// quote line whose content is just a post number (">>100", ">No.100") is
// resolved as a post-number reference. Like markers are not queries.
func QueryFromToken(tok models.Token, title string) (Query, bool) {
	switch tok.Kind {
	case models.TokenPostRef:
		return Query{Kind: QueryPostNumber, Value: tok.Value}, true
	case models.TokenQuoteLine:
		if m := bareNumberRe.FindStringSubmatch(textnorm.Line(tok.Value)); m != nil {
			return Query{Kind: QueryPostNumber, Value: m[1]}, true
		}
		return Query{Kind: QueryQuoteBackrefs, Value: tok.Value, Title: title}, true
	case models.TokenPosterID:
		return Query{Kind: QueryPosterID, Value: tok.Value}, true
	case models.TokenFileName:
		return Query{Kind: QueryFileName, Value: tok.Value}, true
	case models.TokenURL:
		return Query{Kind: QueryFreeText, Value: tok.Value}, true
	default:
		return Query{}, false
	}
}

// ParseQuery guesses the query a user meant from typed input: post numbers
// ("100", "No.100", ">>100"), quotes (">text"), poster ids ("ID:abc"),
// filenames ("123.jpg"), and anything else as free text.
func ParseQuery(input, title string) (Query, bool) {
	s := strings.TrimSpace(textnorm.Fold(input))
	if s == "" {
		return Query{}, false
	}
	if m := typedPostRe.FindStringSubmatch(s); m != nil {
		return Query{Kind: QueryPostNumber, Value: m[1]}, true
	}
	if m := typedQuoteNumRe.FindStringSubmatch(s); m != nil {
		return Query{Kind: QueryPostNumber, Value: m[1]}, true
	}
	if m := bareNumberRe.FindStringSubmatch(s); m != nil {
		return Query{Kind: QueryPostNumber, Value: m[1]}, true
	}
	if textnorm.IsQuoteLine(s) {
		return Query{Kind: QueryQuoteBackrefs, Value: s, Title: title}, true
	}
	if m := typedPosterRe.FindStringSubmatch(s); m != nil {
		return Query{Kind: QueryPosterID, Value: m[1]}, true
	}
	if annotate.IsFileName(s) {
		return Query{Kind: QueryFileName, Value: s}, true
	}
	return Query{Kind: QueryFreeText, Value: s}, true
}
