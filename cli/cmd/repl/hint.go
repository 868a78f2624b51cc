package repl

import (
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/vibe/lang"
)

var (
	tagHintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tagHintNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	tagHintTypeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// openTag describes the markup tag being typed at the cursor.
type openTag struct {
	name    string // tag name typed so far
	closing bool   // true for "</name"
	inTag   bool   // true if the cursor is between '<' and its '>'
}

// detectOpenTag reports whether the cursor sits inside a tag that has not
// been closed with '>'. Braces enclose attribute expressions, so a '>' or '<'
// inside them does not count.
func detectOpenTag(input string, cursor int) openTag {
	if cursor > len(input) {
		cursor = len(input)
	}

	depth := 0
	open := -1

scan:
	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				return openTag{}
			}

			depth--
		case '>':
			if depth == 0 {
				return openTag{}
			}
		case '<':
			if depth == 0 {
				open = i

				break scan
			}
		}
	}

	if open < 0 {
		return openTag{}
	}

	rest := input[open+1 : cursor]

	var tag openTag
	if s, ok := cutPrefixByte(rest, '/'); ok {
		tag.closing = true
		rest = s
	}

	end := 0
	for end < len(rest) {
		r, size := utf8.DecodeRuneInString(rest[end:])
		if r != '_' && r != '-' && r != '.' && r != ':' &&
			!unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		end += size
	}

	tag.name = rest[:end]

	// "a < b" and "i<10" are comparisons, not tags.
	if tag.name != "" && lang.RejectNonIdentifier(tag.name) {
		return openTag{}
	}

	if tag.name == "" && end < len(rest) {
		return openTag{}
	}

	tag.inTag = true

	return tag
}

func cutPrefixByte(s string, b byte) (string, bool) {
	if len(s) > 0 && s[0] == b {
		return s[1:], true
	}

	return s, false
}

// renderTagHint describes how the session would rewrite tag.
func (s *Session) renderTagHint(tag openTag) string {
	name := tag.name

	switch {
	case name == "":
		return tagHintStyle.Render("tag: Component or element name")

	case s.typeKnown(name):
		return tagHintTypeStyle.Render(name) +
			tagHintStyle.Render(" is a host type; '<' is left to the compiler")

	case (&lang.Element{Tag: name}).Component():
		return tagHintNameStyle.Render("<"+name+">") +
			tagHintStyle.Render(" component: "+name+"(new { ... })")

	default:
		return tagHintNameStyle.Render("<"+name+">") +
			tagHintStyle.Render(" element")
	}
}

func (s *Session) typeKnown(name string) bool {
	return s.known.Exists(name) || lang.BuiltinTypes.Exists(name)
}
