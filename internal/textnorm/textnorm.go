// ABOUTME: Canonicalizes board text before comparisons and pattern matching.
// ABOUTME: Applies NFKC, strips invisible characters, and unifies quote glyphs.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// invisibles are removed outright.
var invisibles = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
)

var (
	quoteGlyphs = strings.NewReplacer("\uff1e", ">", "\u226b", ">", "\u3000", " ")
	quoteRun    = regexp.MustCompile(`>{2,}`)
	leadQuotes  = regexp.MustCompile(`^[\t \x{3000}]*[>\x{FF1E}\x{226B}]+`)
)

// maxPasses bounds the fixed-point loop in Normalize. Two passes settle every
// input seen in practice; the extra ones cover recomposition after glyph rewrites.
const maxPasses = 4

// Normalize returns the canonical form of s: invisible characters removed,
// NFKC applied, ideographic space turned into an ASCII space, and every
// quote glyph (including runs of '>') collapsed to a single '>'.
// Normalize(Normalize(s)) == Normalize(s) for all s.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	for i := 0; i < maxPasses; i++ {
		next := pass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func pass(s string) string {
	s = invisibles.Replace(s)
	s = norm.NFKC.String(s)
	s = quoteGlyphs.Replace(s)
	s = quoteRun.ReplaceAllString(s, ">")
	return norm.NFKC.String(s)
}

// Fold applies the width-insensitive part of Normalize (invisibles, NFKC,
// ideographic space) without touching quote markers, so display offsets of
// '>' runs are preserved.
func Fold(s string) string {
	s = invisibles.Replace(s)
	s = norm.NFKC.String(s)
	return strings.ReplaceAll(s, "\u3000", " ")
}

// StripQuoteMarkers removes leading whitespace and the leading run of quote
// glyphs from line, then trims the remainder.
func StripQuoteMarkers(line string) string {
	return strings.TrimSpace(leadQuotes.ReplaceAllString(line, ""))
}

// IsQuoteLine reports whether line, after width folding, starts with '>'.
func IsQuoteLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(Fold(line)), ">") || leadQuotes.MatchString(line)
}

// QuoteContent returns the normalized content of a quote line with its
// markers stripped. ok is false when line is not a quote line.
func QuoteContent(line string) (content string, ok bool) {
	if !IsQuoteLine(line) {
		return "", false
	}
	return Normalize(StripQuoteMarkers(Normalize(line))), true
}

// Line returns the normalized, whitespace-trimmed form of a single line.
func Line(line string) string {
	return strings.TrimSpace(Normalize(line))
}

// Lines splits s on '\n' and strips a trailing '\r' from each line.
func Lines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
