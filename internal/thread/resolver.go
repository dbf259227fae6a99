// ABOUTME: Resolves clicked references into ordered, de-duplicated post blocks.
// ABOUTME: Implements lookup by post number, quoted content, poster ID, filename, and free text.
package thread

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/2389-research/threadlink/internal/annotate"
	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/textnorm"
)

// PlainTextRenderer turns a text item into its canonical plain body text.
type PlainTextRenderer func(models.Item) string

// RawMarkup is the fallback renderer: it returns the item's markup as-is.
func RawMarkup(it models.Item) string { return it.RawMarkup }

// Resolver answers reference queries against one immutable snapshot. It
// never mutates the snapshot, the renderer's inputs, or the cache, so a
// Resolver is safe for concurrent use.
type Resolver struct {
	items  []models.Item
	render PlainTextRenderer
	cache  map[string]string
	log    *logrus.Entry
}

// Option configures optional Resolver dependencies.
type Option func(*Resolver)

// WithCache supplies a caller-owned id -> plain text cache. Missing entries
// fall back to the renderer. The map is only read.
func WithCache(cache map[string]string) Option {
	return func(r *Resolver) {
		r.cache = cache
	}
}

// WithLogger sets the entry used for debug logging.
func WithLogger(entry *logrus.Entry) Option {
	return func(r *Resolver) {
		if entry != nil {
			r.log = entry
		}
	}
}

// NewResolver creates a resolver over items. A nil render uses RawMarkup.
func NewResolver(items []models.Item, render PlainTextRenderer, opts ...Option) *Resolver {
	if render == nil {
		render = RawMarkup
	}
	r := &Resolver{
		items:  items,
		render: render,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Items returns the snapshot the resolver was built over.
func (r *Resolver) Items() []models.Item {
	return r.items
}

// PlainText returns the rendered body of a text item, preferring the cache.
func (r *Resolver) PlainText(it models.Item) string {
	if s, ok := r.cache[it.ID]; ok {
		return s
	}
	return r.render(it)
}

// ByPostNumber returns the block of post n (when present) followed by every
// block that cites n, by No.n, a quoted >n, or the bare number.
func (r *Resolver) ByPostNumber(n string) []models.Item {
	v := r.newView()
	number, ok := queryNumber(n)
	if !ok {
		return nil
	}
	indices, origin := v.matchPostNumber(number)
	out := v.finalize(indices, origin)
	r.log.WithFields(logrus.Fields{"post_number": number, "blocks": len(indices), "items": len(out)}).Debug("resolved post number")
	return out
}

// ByQuotedContent returns every block with a quote line equal to one of the
// lines of body or one of extra. When extra is non-empty, plain lines that
// equal a candidate match too.
func (r *Resolver) ByQuotedContent(body string, extra []string) []models.Item {
	v := r.newView()
	indices := v.matchQuoted(body, extra)
	out := v.finalize(indices, -1)
	r.log.WithFields(logrus.Fields{"extra": len(extra), "blocks": len(indices), "items": len(out)}).Debug("resolved quoted content")
	return out
}

// ByPosterID returns every block whose text carries ID:<id>.
func (r *Resolver) ByPosterID(id string) []models.Item {
	v := r.newView()
	id = strings.TrimSpace(textnorm.Normalize(id))
	id = strings.TrimPrefix(id, "ID:")
	if id == "" {
		return nil
	}
	needle := "ID:" + id

	var indices []int
	for i := range r.items {
		if r.items[i].IsText() && strings.Contains(v.text(i), needle) {
			indices = append(indices, i)
		}
	}
	out := v.finalize(indices, -1)
	r.log.WithFields(logrus.Fields{"poster_id": id, "blocks": len(indices), "items": len(out)}).Debug("resolved poster id")
	return out
}

// ByFileName returns blocks whose attached media is named name, or whose
// text mentions it. Comparison ignores case; media URLs are compared by
// their last path segment without query or fragment.
func (r *Resolver) ByFileName(name string) []models.Item {
	v := r.newView()
	name = textnorm.StripQuoteMarkers(textnorm.Normalize(name))
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)

	var indices []int
	for i := range r.items {
		if !r.items[i].IsText() {
			continue
		}
		if blockHasMedia(BlockAt(r.items, i), name) {
			indices = append(indices, i)
			continue
		}
		// Quote-line content is part of the normalized body, so a quote
		// equal to or containing the name is caught here as well.
		if strings.Contains(strings.ToLower(v.text(i)), lower) {
			indices = append(indices, i)
		}
	}
	out := v.finalize(indices, -1)
	r.log.WithFields(logrus.Fields{"file_name": name, "blocks": len(indices), "items": len(out)}).Debug("resolved file name")
	return out
}

// ByFreeText returns blocks whose normalized text contains query, ignoring case.
func (r *Resolver) ByFreeText(query string) []models.Item {
	v := r.newView()
	q := strings.ToLower(strings.TrimSpace(textnorm.Normalize(query)))
	if q == "" {
		return nil
	}

	var indices []int
	for i := range r.items {
		if r.items[i].IsText() && strings.Contains(strings.ToLower(v.text(i)), q) {
			indices = append(indices, i)
		}
	}
	out := v.finalize(indices, -1)
	r.log.WithFields(logrus.Fields{"query": q, "blocks": len(indices), "items": len(out)}).Debug("resolved free text")
	return out
}

// QuoteAndBackrefs resolves a clicked quote: it finds the posts that
// contain the quoted line verbatim (the thread's first post stands in when
// the title equals the quote) and unions everything that quotes or cites
// each of them.
func (r *Resolver) QuoteAndBackrefs(token, title string) []models.Item {
	v := r.newView()
	core := textnorm.StripQuoteMarkers(textnorm.Normalize(token))
	if core == "" {
		return nil
	}
	titleMatches := title != "" && textnorm.Line(title) == core

	first := -1
	var sources []int
	for i := range r.items {
		if !r.items[i].IsText() {
			continue
		}
		if first < 0 {
			first = i
		}
		for _, line := range textnorm.Lines(v.text(i)) {
			if strings.TrimSpace(line) == core {
				sources = append(sources, i)
				break
			}
		}
	}
	if titleMatches && first >= 0 && (len(sources) == 0 || sources[0] != first) {
		sources = append([]int{first}, sources...)
	}

	var indices []int
	for _, s := range sources {
		var extra []string
		if titleMatches && s == first {
			extra = []string{title}
		}
		indices = append(indices, v.matchQuoted(r.PlainText(r.items[s]), extra)...)
		if number, ok := v.ownNumber(s); ok {
			more, _ := v.matchPostNumber(number)
			indices = append(indices, more...)
		}
	}
	out := v.finalize(indices, -1)
	r.log.WithFields(logrus.Fields{"sources": len(sources), "title_match": titleMatches, "items": len(out)}).Debug("resolved quote and backrefs")
	return out
}

// view memoizes normalized text for the duration of one query.
type view struct {
	r    *Resolver
	norm map[int]string
}

func (r *Resolver) newView() *view {
	return &view{r: r, norm: make(map[int]string)}
}

func (v *view) text(i int) string {
	if s, ok := v.norm[i]; ok {
		return s
	}
	s := textnorm.Normalize(v.r.PlainText(v.r.items[i]))
	v.norm[i] = s
	return s
}

// sortKey parses the first No.<digits> of the item's own text.
func (v *view) sortKey(i int) (uint64, bool) {
	digits, ok := annotate.FirstPostNumber(v.text(i))
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ownNumber is the post's number: the item's PostNumber field when set,
// otherwise the first No.<digits> of its text.
func (v *view) ownNumber(i int) (string, bool) {
	if n, ok := queryNumber(v.r.items[i].PostNumber); ok {
		return n, true
	}
	return annotate.FirstPostNumber(v.text(i))
}

func (v *view) matchPostNumber(number string) (indices []int, origin int) {
	origin = -1
	patterns := postNumberPatterns(number)
	if patterns == nil {
		return nil, origin
	}
	for i := range v.r.items {
		if !v.r.items[i].IsText() {
			continue
		}
		if origin < 0 {
			if own, ok := v.ownNumber(i); ok && sameNumber(own, number) {
				origin = i
				indices = append(indices, i)
				continue
			}
		}
		text := v.text(i)
		for _, re := range patterns {
			if re.MatchString(text) {
				indices = append(indices, i)
				break
			}
		}
	}
	return indices, origin
}

func (v *view) matchQuoted(body string, extra []string) []int {
	candidates := quoteCandidates(body, extra)
	if len(candidates) == 0 {
		return nil
	}
	loose := len(extra) > 0

	var indices []int
	for i := range v.r.items {
		if !v.r.items[i].IsText() {
			continue
		}
		for _, line := range textnorm.Lines(v.text(i)) {
			var key string
			if textnorm.IsQuoteLine(line) {
				key = textnorm.StripQuoteMarkers(line)
			} else if loose {
				key = strings.TrimSpace(line)
			} else {
				continue
			}
			if candidates[key] {
				indices = append(indices, i)
				break
			}
		}
	}
	return indices
}

// finalize turns matched text indices into the flattened result: blocks
// de-duplicated by head id, sorted by post number (unparseable last, stable),
// the origin block (if any) moved to the front, then items de-duplicated.
func (v *view) finalize(indices []int, origin int) []models.Item {
	type entry struct {
		index  int
		block  models.Block
		key    uint64
		parsed bool
	}

	seenHead := make(map[string]bool)
	var entries []entry
	for _, idx := range indices {
		block := BlockAt(v.r.items, idx)
		if block == nil || seenHead[block.Head().ID] {
			continue
		}
		seenHead[block.Head().ID] = true
		key, parsed := v.sortKey(idx)
		entries = append(entries, entry{index: idx, block: block, key: key, parsed: parsed})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		ea, eb := entries[a], entries[b]
		if ea.parsed != eb.parsed {
			return ea.parsed
		}
		return ea.parsed && ea.key < eb.key
	})

	if origin >= 0 {
		for i, e := range entries {
			if e.index == origin {
				copy(entries[1:i+1], entries[:i])
				entries[0] = e
				break
			}
		}
	}

	seen := make(map[string]bool)
	var out []models.Item
	for _, e := range entries {
		for _, it := range e.block {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			out = append(out, it)
		}
	}
	return out
}

var digitsRe = regexp.MustCompile(`\d+`)

// queryNumber extracts the digits of a post-number query such as "100",
// "No.100" or ">>No.100".
func queryNumber(s string) (string, bool) {
	s = strings.TrimSpace(textnorm.Normalize(s))
	if s == "" {
		return "", false
	}
	if n, ok := annotate.FirstPostNumber(s); ok {
		return n, true
	}
	d := digitsRe.FindString(s)
	return d, d != ""
}

func sameNumber(a, b string) bool {
	return strings.TrimLeft(a, "0") == strings.TrimLeft(b, "0")
}

// postNumberPatterns builds the citation patterns for number. The last,
// bare-number pattern also matches unrelated figures in prose; it is kept
// because readers rely on it to find loosely written references.
func postNumberPatterns(number string) []*regexp.Regexp {
	esc := regexp.QuoteMeta(number)
	sources := []string{
		`No\.\s*` + esc + `\b`,
		`(?m)^>*\s*No\.?\s*` + esc + `(?:\D|$)`,
		`>+\s*(?:No\.?\s*)?` + esc + `(?:\D|$)`,
		`(?:^|\D)` + esc + `(?:\D|$)`,
	}
	patterns := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil
		}
		patterns = append(patterns, re)
	}
	return patterns
}

// quoteCandidates collects the normalized body lines of a source post that
// another post could quote, plus the extra strings.
func quoteCandidates(body string, extra []string) map[string]bool {
	candidates := make(map[string]bool)
	add := func(s string) {
		if utf8.RuneCountInString(s) < 2 || annotate.LooksLikeHeaderFragment(s) {
			return
		}
		candidates[s] = true
	}
	for i, line := range textnorm.Lines(body) {
		if annotate.IsHeaderLine(line, i) || textnorm.IsQuoteLine(line) {
			continue
		}
		add(textnorm.Line(line))
	}
	for _, e := range extra {
		add(textnorm.StripQuoteMarkers(textnorm.Normalize(e)))
	}
	return candidates
}

func blockHasMedia(block models.Block, name string) bool {
	if len(block) < 2 {
		return false
	}
	for _, it := range block[1:] {
		if strings.EqualFold(it.FileName, name) || strings.EqualFold(lastPathSegment(it.MediaURL), name) {
			return true
		}
	}
	return false
}

// lastPathSegment returns the final path element of a URL, ignoring its
// query and fragment.
func lastPathSegment(raw string) string {
	if raw == "" {
		return ""
	}
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
