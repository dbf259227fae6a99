// ABOUTME: Tests for header line classification.
// ABOUTME: Covers timestamp headers, first-line metadata headers, and quoted headers.
package annotate

import "testing"

func TestIsHeaderLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		index int
		want  bool
	}{
		{"timestamp first line", "1 無念 25/01/01(Wed)12:00:00 No.100 hello", 0, true},
		{"timestamp later line", "25/01/01(水)12:00:00 No.100", 3, true},
		{"full-width timestamp", "２５／０１／０１（水）１２：００：００", 2, true},
		{"quoted header with timestamp", ">1 無念 25/01/01(水)12:00:00 No.99", 2, true},
		{"metadata first line", "5 無念 Name No.105", 0, true},
		{"metadata later line", "5 無念 Name No.105", 1, false},
		{"no leading numeral", "無念 No.105", 0, false},
		{"no poster name", "1 No.105", 0, false},
		{"no post number", "1 無念 hello", 0, false},
		{"body line", "thanks", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHeaderLine(tt.line, tt.index); got != tt.want {
				t.Errorf("IsHeaderLine(%q, %d) = %v, want %v", tt.line, tt.index, got, tt.want)
			}
		})
	}
}

func TestHeaderLines(t *testing.T) {
	got := HeaderLines("1 無念 Name No.100\nbody\n5 無念 Name No.105")
	want := []bool{true, false, false}
	if len(got) != len(want) {
		t.Fatalf("HeaderLines() returned %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
