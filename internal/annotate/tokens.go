// ABOUTME: Scans spacing-repaired post text and emits typed, positioned tokens.
// ABOUTME: One pass defines every clickable span consumed by the UI and the resolvers.
package annotate

import (
	"sort"
	"strings"

	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/textnorm"
)

// AnnotateText repairs spacing, classifies header lines, and annotates the
// result. It returns the repaired text the token offsets refer to.
func AnnotateText(text string) (string, []models.Token) {
	repaired := RepairSpacing(text)
	return repaired, Annotate(repaired, HeaderLines(repaired))
}

// Annotate scans text, which must already be spacing-repaired, and returns
// its tokens ordered by start offset. headerLines[i] marks line i as a
// header line; missing entries count as false.
func Annotate(text string, headerLines []bool) []models.Token {
	if text == "" {
		return nil
	}

	lines := textnorm.Lines(text)
	starts := lineStarts(text)
	quote := make([]bool, len(lines))
	for i, l := range lines {
		quote[i] = textnorm.IsQuoteLine(l)
	}
	isHeader := func(i int) bool { return i < len(headerLines) && headerLines[i] }

	var tokens []models.Token

	for i, l := range lines {
		if !quote[i] {
			continue
		}
		value := strings.ReplaceAll(textnorm.StripQuoteMarkers(l), "＞", ">")
		if value == "" {
			continue
		}
		tokens = append(tokens, models.Token{
			Kind:  models.TokenQuoteLine,
			Value: value,
			Start: starts[i],
			End:   starts[i] + len(l),
			Line:  i,
		})
	}

	for _, m := range postRefRe.FindAllStringSubmatchIndex(text, -1) {
		line := lineOf(starts, m[0])
		if !isHeader(line) && !quote[line] {
			continue
		}
		tokens = append(tokens, models.Token{
			Kind:  models.TokenPostRef,
			Value: text[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
			Line:  line,
		})
	}

	for _, m := range posterIDRe.FindAllStringSubmatchIndex(text, -1) {
		tokens = append(tokens, models.Token{
			Kind:  models.TokenPosterID,
			Value: text[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
			Line:  lineOf(starts, m[0]),
		})
	}

	urls := urlRe.FindAllStringIndex(text, -1)
	for _, m := range urls {
		tokens = append(tokens, models.Token{
			Kind:  models.TokenURL,
			Value: text[m[0]:m[1]],
			Start: m[0],
			End:   m[1],
			Line:  lineOf(starts, m[0]),
		})
	}

	for _, m := range fileNameRe.FindAllStringIndex(text, -1) {
		if insideAny(urls, m) {
			continue
		}
		tokens = append(tokens, models.Token{
			Kind:  models.TokenFileName,
			Value: text[m[0]:m[1]],
			Start: m[0],
			End:   m[1],
			Line:  lineOf(starts, m[0]),
		})
	}

	for i, l := range lines {
		if !isHeader(i) || quote[i] {
			continue
		}
		s, e, number, ok := likeMarkerSpan(l)
		if !ok || number == "" {
			continue
		}
		tokens = append(tokens, models.Token{
			Kind:  models.TokenLikeMarker,
			Value: l[s:e],
			Start: starts[i] + s,
			End:   starts[i] + e,
			Line:  i,
		})
	}

	sort.SliceStable(tokens, func(a, b int) bool {
		if tokens[a].Start != tokens[b].Start {
			return tokens[a].Start < tokens[b].Start
		}
		return tokens[a].End > tokens[b].End
	})
	return tokens
}

// likeMarkerSpan finds the first like-marker on a header line between the
// line's first No.<digits> and the next ID: label. postNumber is empty
// when the line carries no No.<digits>; the whole line (up to ID:) is
// searched in that case.
func likeMarkerSpan(line string) (start, end int, postNumber string, ok bool) {
	from := 0
	if m := PostNumberRe.FindStringSubmatchIndex(line); m != nil {
		from = m[1]
		postNumber = line[m[2]:m[3]]
	}
	seg := line[from:]
	if loc := idLabelRe.FindStringIndex(seg); loc != nil {
		seg = seg[:loc[0]]
	}
	loc := likeMarkerRe.FindStringIndex(seg)
	if loc == nil {
		return 0, 0, postNumber, false
	}
	return from + loc[0], from + loc[1], postNumber, true
}

// lineStarts returns the byte offset at which each line of text begins.
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineOf(starts []int, pos int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > pos }) - 1
}

func insideAny(spans [][]int, m []int) bool {
	for _, s := range spans {
		if m[0] >= s[0] && m[1] <= s[1] {
			return true
		}
	}
	return false
}
