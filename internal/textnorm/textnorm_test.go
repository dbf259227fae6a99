// ABOUTME: Tests for text normalization, quote detection, and quote content extraction.
// ABOUTME: Covers width folding, invisible stripping, quote glyph unification, and idempotence.
package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"ascii untouched", "hello world", "hello world"},
		{"full-width digits", "Ｎｏ．１２３", "No.123"},
		{"zero-width space", "he\u200bllo", "hello"},
		{"bom", "\ufeffhello", "hello"},
		{"ideographic space", "a　b", "a b"},
		{"full-width quote", "＞quoted", ">quoted"},
		{"much-greater-than", "≫100", ">100"},
		{"quote run", ">>>100", ">100"},
		{"mixed run", "＞≫>100", ">100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Ｎｏ．１２３　そうだね",
		"≫≯ tricky",
		">>>>",
		"ｶﾀｶﾅ ﾊﾝｶｸ",
		"\u200b\u200c\u200d",
		"ID：ａｂｃ１２３",
		"①②③ ㍻",
		"é̸>",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestFoldKeepsQuoteRuns(t *testing.T) {
	got := Fold(">>１００　ok")
	if got != ">>100 ok" {
		t.Errorf("Fold() = %q, want %q", got, ">>100 ok")
	}
}

func TestIsQuoteLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{">quote", true},
		{"  >quote", true},
		{"　＞quote", true},
		{"≫100", true},
		{"not > a quote", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		if got := IsQuoteLine(tt.line); got != tt.want {
			t.Errorf("IsQuoteLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestQuoteContent(t *testing.T) {
	got, ok := QuoteContent("  ＞＞ ｈｅｌｌｏ world ")
	if !ok {
		t.Fatal("expected quote line")
	}
	if got != "hello world" {
		t.Errorf("QuoteContent() = %q, want %q", got, "hello world")
	}

	if _, ok := QuoteContent("plain"); ok {
		t.Error("expected plain line to not be a quote")
	}
}

func TestLines(t *testing.T) {
	lines := Lines("a\r\nb\nc")
	if len(lines) != 3 || lines[0] != "a" || lines[1] != "b" || lines[2] != "c" {
		t.Errorf("Lines() = %q", lines)
	}
}
