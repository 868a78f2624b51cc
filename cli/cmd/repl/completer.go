package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "show", "unit", "tree", "types", "type", "reset", "edit", "clear",
	"quit",
}

// isWordBoundary reports whether r delimits a completion word. Words are
// host-language identifiers, so anything else is a boundary.
func isWordBoundary(r rune) bool {
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// wordBounds returns the word at the cursor position and its byte boundaries
// within input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inTagName reports whether the word starting at wordStart is the name of an
// open or close tag.
func inTagName(input string, wordStart int) bool {
	prefix := strings.TrimSuffix(input[:wordStart], "/")

	return strings.HasSuffix(prefix, "<")
}

// tagCandidates returns the names offered after a tag opener: the tags
// already used in the session followed by the known host types.
func (s *Session) tagCandidates() []string {
	names := s.Tags()

	for _, name := range s.Types() {
		names = appendUnique(names, name)
	}

	return names
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}

	return append(names, name)
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list, and
// the word boundaries. An empty word only matches right after a tag opener,
// where every tag candidate is offered.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	switch {
	case m.mode == modeCtrl:
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands

	case inTagName(input, wordStart):
		candidates = m.session.tagCandidates()

		if word == "" {
			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}

	default:
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = m.session.candidates()
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
