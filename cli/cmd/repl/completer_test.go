package repl

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/vibe/log"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"member", "bar.baz", 7, "baz", 4, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "Print(fo", 8, "fo", 6, 8},
		{"tag_name", "var x = <Ca", 11, "Ca", 9, 11},
		{"close_tag", "</Ca", 4, "Ca", 2, 4},
		{"attribute", `<Card ti`, 8, "ti", 6, 8},
		{"underscore", "my_var", 6, "my_var", 0, 6},
		{"hyphen_splits", "data-id", 7, "id", 5, 7},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"cursor_past_end", "foo", 9, "foo", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestInTagName(t *testing.T) {
	tests := []struct {
		input     string
		wordStart int
		want      bool
	}{
		{"<Ca", 1, true},
		{"</Ca", 2, true},
		{"x = <", 5, true},
		{"a < b", 4, false},
		{"Card", 0, false},
		{"<Card ti", 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := inTagName(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("inTagName(%q, %d): expected %v, got %v",
					tt.input, tt.wordStart, tt.want, got)
			}
		})
	}
}

func TestSession_tagCandidates(t *testing.T) {
	s := NewSession(log.Make(nil), nil, []string{"Widget"})
	s.SetSource("var a = <Card><span/></Card>;\n")

	want := []string{"Card", "span", "Widget"}
	if diff := cmp.Diff(want, s.tagCandidates()); diff != "" {
		t.Errorf("tagCandidates mismatch (-want +got):\n%s", diff)
	}
}
