// ABOUTME: Inserts whitespace a naive renderer dropped between adjacent header tokens.
// ABOUTME: Pure string transform; also synthesizes the like marker on own-post header lines.
package annotate

import (
	"regexp"
	"strings"

	"github.com/2389-research/threadlink/internal/textnorm"
)

// SynthesizedMarker is appended after No.<digits> on header lines that lack
// a like marker.
const SynthesizedMarker = " そうだね"

var (
	// A bare "no" after a digit only counts when a dot or a number follows,
	// so words such as "3nothing" stay intact.
	digitThenNoRe = regexp.MustCompile(`([0-9)])((?i:no)(?:[.．]|\s*\d))`)
	// Quote markers stay glued: ">No.100" is a citation, not a header.
	glueBeforeNoRe = regexp.MustCompile(`([^\s>])(No[.．]\d+)`)
	idThenNoRe     = regexp.MustCompile(`(ID:[A-Za-z0-9./+_\-]+?)(No[.．]\d+)`)
	noThenIDRe     = regexp.MustCompile(`(No[.．]\s*\d+)(ID:)`)
	noThenMarkerRe = regexp.MustCompile(`(No[.．]\s*\d+)(そうだね|\+)`)
	spaceRunRe     = regexp.MustCompile(` {2,}`)
)

// RepairSpacing rewrites s so that header tokens are separated by single
// spaces and every own-post header line exposes a like marker. The result
// depends only on s, so callers may memoize it by input.
func RepairSpacing(s string) string {
	if s == "" {
		return s
	}
	s = textnorm.Fold(s)
	s = digitThenNoRe.ReplaceAllString(s, "${1} ${2}")
	s = glueBeforeNoRe.ReplaceAllString(s, "${1} ${2}")
	s = idThenNoRe.ReplaceAllString(s, "${1} ${2}")
	s = noThenIDRe.ReplaceAllString(s, "${1} ${2}")
	s = noThenMarkerRe.ReplaceAllString(s, "${1} ${2}")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return synthesizeMarkers(s)
}

func synthesizeMarkers(s string) string {
	lines := strings.Split(s, "\n")
	changed := false
	for i, l := range lines {
		if !IsHeaderLine(l, i) || textnorm.IsQuoteLine(l) {
			continue
		}
		loc := PostNumberRe.FindStringIndex(l)
		if loc == nil || likeMarkerRe.MatchString(l[loc[1]:]) {
			continue
		}
		lines[i] = l[:loc[1]] + SynthesizedMarker + l[loc[1]:]
		changed = true
	}
	if !changed {
		return s
	}
	return strings.Join(lines, "\n")
}
