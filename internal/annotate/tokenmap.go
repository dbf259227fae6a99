// ABOUTME: Maps byte positions in annotated text back to the token under them.
// ABOUTME: Used by click handling to find the innermost token at a position.
package annotate

import "github.com/2389-research/threadlink/internal/models"

// TokenMap answers position lookups over a token list.
type TokenMap struct {
	tokens []models.Token
}

// NewTokenMap creates a TokenMap over tokens.
func NewTokenMap(tokens []models.Token) *TokenMap {
	return &TokenMap{tokens: tokens}
}

// TokenAt returns the innermost token whose span contains pos.
// The range is [start, end) - start is inclusive, end is exclusive.
func (tm *TokenMap) TokenAt(pos int) (models.Token, bool) {
	var best models.Token
	found := false
	for _, t := range tm.tokens {
		if pos < t.Start || pos >= t.End {
			continue
		}
		if !found || t.Len() < best.Len() {
			best = t
			found = true
		}
	}
	return best, found
}

// OfKind returns the tokens of the given kind in order.
func (tm *TokenMap) OfKind(kind models.TokenKind) []models.Token {
	var out []models.Token
	for _, t := range tm.tokens {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// Tokens returns every token in the map.
func (tm *TokenMap) Tokens() []models.Token {
	return tm.tokens
}
