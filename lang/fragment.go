package lang

import "strings"

// Fragment is a slice of interpolated text: either a literal run or the
// source of an expression found between balanced braces.
type Fragment struct {
	Code  bool   `json:"code"  yaml:"code"`
	Value string `json:"value" yaml:"value"`
}

// SplitFragments splits text on balanced {…} interpolation boundaries.
//
// Literal runs and expressions are returned in the order they occur.
// Empty literal runs are omitted. An opening brace without a matching close
// brace turns the remainder of text into a literal fragment.
func SplitFragments(text string) []Fragment {
	var frags []Fragment

	emitLiteral := func(s string) {
		if s != "" {
			frags = append(frags, Fragment{Value: s})
		}
	}

	for i := 0; i < len(text); {
		open := strings.IndexByte(text[i:], '{')
		if open < 0 {
			emitLiteral(text[i:])

			break
		}

		open += i

		end, ok := matchBrace(text, open)
		if !ok {
			emitLiteral(text[i:])

			break
		}

		emitLiteral(text[i:open])
		frags = append(frags, Fragment{Code: true, Value: text[open+1 : end]})

		i = end + 1
	}

	return frags
}

// matchBrace returns the index of the brace closing the one at text[open].
// Braces are counted by depth; no string awareness is applied since
// interpolated text is free-form.
func matchBrace(text string, open int) (int, bool) {
	depth := 0

	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return -1, false
}

// openBraces reports whether text contains a '{' that is not closed.
func openBraces(text string) bool {
	depth := 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}

	return depth > 0
}
