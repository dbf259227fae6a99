// ABOUTME: Classifies the lines of a post into header lines and body or quote lines.
// ABOUTME: Only header lines carry the No./ID/like-marker metadata of the post itself.
package annotate

import (
	"github.com/2389-research/threadlink/internal/textnorm"
)

// IsHeaderLine reports whether line (0-based index within its post) is a
// header line. A timestamped line is a header anywhere; otherwise only the
// first line qualifies, and only when it has a leading numeral, a poster
// name marker, and a No.<digits>.
func IsHeaderLine(line string, index int) bool {
	folded := textnorm.Fold(line)
	if dateTimeRe.MatchString(folded) {
		return true
	}
	if index != 0 {
		return false
	}
	return leadingNumeralRe.MatchString(folded) &&
		hasPosterNameMarker(folded) &&
		PostNumberRe.MatchString(folded)
}

// HeaderLines classifies every line of text.
func HeaderLines(text string) []bool {
	lines := textnorm.Lines(text)
	out := make([]bool, len(lines))
	for i, l := range lines {
		out[i] = IsHeaderLine(l, i)
	}
	return out
}
