// ABOUTME: Tests for query construction and dispatch.
// ABOUTME: Covers token-to-query mapping, typed input parsing, and batch resolution.
package thread

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/2389-research/threadlink/internal/models"
)

func TestQueryFromToken(t *testing.T) {
	tests := []struct {
		name   string
		tok    models.Token
		want   Query
		wantOK bool
	}{
		{"post ref", models.Token{Kind: models.TokenPostRef, Value: "100"}, Query{Kind: QueryPostNumber, Value: "100"}, true},
		{"numeric quote", models.Token{Kind: models.TokenQuoteLine, Value: "99"}, Query{Kind: QueryPostNumber, Value: "99"}, true},
		{"numeric quote with No", models.Token{Kind: models.TokenQuoteLine, Value: "No.99"}, Query{Kind: QueryPostNumber, Value: "99"}, true},
		{"text quote", models.Token{Kind: models.TokenQuoteLine, Value: "hello"}, Query{Kind: QueryQuoteBackrefs, Value: "hello", Title: "title"}, true},
		{"poster id", models.Token{Kind: models.TokenPosterID, Value: "abcd"}, Query{Kind: QueryPosterID, Value: "abcd"}, true},
		{"file name", models.Token{Kind: models.TokenFileName, Value: "a.jpg"}, Query{Kind: QueryFileName, Value: "a.jpg"}, true},
		{"url", models.Token{Kind: models.TokenURL, Value: "https://x"}, Query{Kind: QueryFreeText, Value: "https://x"}, true},
		{"like marker", models.Token{Kind: models.TokenLikeMarker, Value: "そうだね"}, Query{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := QueryFromToken(tt.tok, "title")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		input     string
		wantKind  QueryKind
		wantValue string
	}{
		{"100", QueryPostNumber, "100"},
		{"No.100", QueryPostNumber, "100"},
		{"no100", QueryPostNumber, "100"},
		{">>100", QueryPostNumber, "100"},
		{">>No.100", QueryPostNumber, "100"},
		{"１００", QueryPostNumber, "100"},
		{">hello", QueryQuoteBackrefs, ">hello"},
		{"ID:abcd", QueryPosterID, "abcd"},
		{"ID：abcd", QueryPosterID, "abcd"},
		{"123.jpg", QueryFileName, "123.jpg"},
		{"some words", QueryFreeText, "some words"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseQuery(tt.input, "title")
			if !ok {
				t.Fatal("expected ok")
			}
			if got.Kind != tt.wantKind || got.Value != tt.wantValue {
				t.Errorf("got %s %q, want %s %q", got.Kind, got.Value, tt.wantKind, tt.wantValue)
			}
		})
	}

	if _, ok := ParseQuery("   ", ""); ok {
		t.Error("blank input should not parse")
	}
}

func TestParseQueryKind(t *testing.T) {
	for _, k := range QueryKinds {
		got, err := ParseQueryKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseQueryKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseQueryKind("bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func resolveFixture() []models.Item {
	return []models.Item{
		models.NewText("t1", "1 無念 25/01/01(水)12:00:00 ID:abcd No.100\nhello world", ""),
		models.NewImage("i1", "http://x/a.jpg?v=2", "", ""),
		models.NewText("t2", "2 無念 25/01/01(水)12:01:00 ID:efgh No.101\n>hello world\n>>100", ""),
		models.NewText("t3", "3 無念 25/01/01(水)12:02:00 ID:abcd No.102\nunrelated", ""),
	}
}

func TestResolveDispatch(t *testing.T) {
	r := NewResolver(resolveFixture(), nil)

	tests := []struct {
		q    Query
		want []string
	}{
		{Query{Kind: QueryPostNumber, Value: "100"}, []string{"t1", "i1", "t2"}},
		{Query{Kind: QueryQuote, Value: "hello world"}, []string{"t2"}},
		{Query{Kind: QueryQuoteBackrefs, Value: ">hello world"}, []string{"t1", "i1", "t2"}},
		{Query{Kind: QueryPosterID, Value: "abcd"}, []string{"t1", "i1", "t3"}},
		{Query{Kind: QueryFileName, Value: "a.jpg"}, []string{"t1", "i1"}},
		{Query{Kind: QueryFreeText, Value: "UNRELATED"}, []string{"t3"}},
		{Query{Kind: "bogus", Value: "x"}, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.q.Kind), func(t *testing.T) {
			got := r.Resolve(tt.q)
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Resolve(%+v) = %v, want %v", tt.q, ids(got), tt.want)
			}
		})
	}
}

func TestResolveAll(t *testing.T) {
	r := NewResolver(resolveFixture(), nil)
	queries := []Query{
		{Kind: QueryPostNumber, Value: "100"},
		{Kind: QueryPosterID, Value: "efgh"},
		{Kind: QueryFreeText, Value: "nothing"},
	}

	results, err := r.ResolveAll(context.Background(), queries)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(results) != len(queries) {
		t.Fatalf("got %d results, want %d", len(results), len(queries))
	}
	want := [][]string{{"t1", "i1", "t2"}, {"t2"}, nil}
	for i := range want {
		if !reflect.DeepEqual(ids(results[i]), want[i]) {
			t.Errorf("result %d = %v, want %v", i, ids(results[i]), want[i])
		}
	}
}

func TestResolveAllCancelled(t *testing.T) {
	r := NewResolver(resolveFixture(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveAll(ctx, []Query{{Kind: QueryFreeText, Value: "hello"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
