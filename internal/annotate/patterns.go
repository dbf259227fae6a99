// ABOUTME: Shared regular expressions for header, reference, and marker detection.
// ABOUTME: Every matching rule used by annotation, repair, overlay, and resolution lives here.
package annotate

import (
	"regexp"
	"strings"
)

var (
	// dateTimeRe matches the timestamp that only appears on header lines,
	// e.g. 25/01/01(水)12:00:00.
	dateTimeRe = regexp.MustCompile(`\d{2}/\d{2}/\d{2}\([^)\s]{1,4}\)\d{2}:\d{2}:\d{2}`)

	leadingNumeralRe = regexp.MustCompile(`^\s*\d+`)

	// PostNumberRe is the No.<digits> pattern with a mandatory dot. The
	// capture group holds the digits.
	PostNumberRe = regexp.MustCompile(`No[.．]\s*(\d+)`)

	// postRefRe is the looser, clickable form: case-insensitive, optional dot,
	// digits may sit on the next line.
	postRefRe = regexp.MustCompile(`(?i)No[.．٭]?\s*(\d+)`)

	posterIDRe = regexp.MustCompile(`ID[:：]([A-Za-z0-9./+_\-]+)`)
	idLabelRe  = regexp.MustCompile(`ID[:：]`)

	urlRe = regexp.MustCompile(`h?ttps?://[^\s<>"]+`)

	fileNameRe = regexp.MustCompile(`(?i)[A-Za-z0-9._\-]+\.(?:jpg|jpeg|png|gif|webp|bmp|mp4|webm|avi|mov|mkv)\b`)

	// likeMarkerRe prefers the counted form so a rewritten marker is
	// matched whole.
	likeMarkerRe = regexp.MustCompile(`そうだね(?:[x×]\d+)?|[+＋]`)
)

// posterNameMarkers is the vocabulary of default poster names that appear
// on a post's own header line.
var posterNameMarkers = []string{"無念", "名無し", "としあき", "Name"}

func hasPosterNameMarker(line string) bool {
	for _, m := range posterNameMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// FirstPostNumber returns the digits of the first No.<digits> in s.
func FirstPostNumber(s string) (string, bool) {
	m := PostNumberRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LooksLikeHeaderFragment reports whether s carries a No.<digits> or ID:
// fragment, i.e. it came from header metadata rather than body text.
func LooksLikeHeaderFragment(s string) bool {
	return PostNumberRe.MatchString(s) || idLabelRe.MatchString(s)
}

// IsFileName reports whether s, as a whole, is a media filename such as
// 123.jpg.
func IsFileName(s string) bool {
	loc := fileNameRe.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
