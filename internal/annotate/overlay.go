// ABOUTME: Merges optimistic like counts into rendered header lines for display.
// ABOUTME: Never mutates the counts map; rewriting is stable for an unchanged map.
package annotate

import (
	"fmt"
	"strings"

	"github.com/2389-research/threadlink/internal/textnorm"
)

// ApplyLikeOverlay rewrites the like marker of each header line to
// "そうだねx<count>" when counts holds a positive count for that line's post
// number. Lines without their own No.<digits> use fallbackPostNumber.
// text should already be spacing-repaired.
func ApplyLikeOverlay(text string, counts map[string]int, fallbackPostNumber string) string {
	if text == "" || len(counts) == 0 {
		return text
	}
	fallback := strings.TrimSpace(fallbackPostNumber)
	if n, ok := FirstPostNumber(fallback); ok {
		fallback = n
	}

	lines := strings.Split(text, "\n")
	changed := false
	for i, l := range lines {
		if !IsHeaderLine(l, i) || textnorm.IsQuoteLine(l) {
			continue
		}
		s, e, number, ok := likeMarkerSpan(l)
		if !ok {
			continue
		}
		if number == "" {
			number = fallback
		}
		count := counts[number]
		if count <= 0 {
			continue
		}
		lines[i] = l[:s] + fmt.Sprintf("そうだねx%d", count) + l[e:]
		changed = true
	}
	if !changed {
		return text
	}
	return strings.Join(lines, "\n")
}
