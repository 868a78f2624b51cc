package repl

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/log"
)

// DefaultScript is the project-relative path given to the session script,
// which lets it import modules by relative path.
const DefaultScript = "repl.csx"

// Session accumulates the script lines entered in the REPL and transpiles
// them. It is not safe for concurrent use.
type Session struct {
	rel        string
	known      lang.TypeSet
	opts       []lang.Option
	transpiler *lang.Transpiler
	lines      []string
	last       string
}

// NewSession returns an empty session. Names in known are host types that
// are never parsed as tags; more can be added with [Session.AddType].
// A non-nil oracle is consulted for names that are neither builtin nor known.
func NewSession(
	logger log.Logger,
	oracle lang.Oracle,
	known []string,
	opts ...lang.Option,
) *Session {
	s := &Session{rel: DefaultScript, known: lang.NewTypeSet(known...)}

	oracles := []lang.Oracle{lang.BuiltinTypes, s.known}
	if oracle != nil {
		oracles = append(oracles, oracle)
	}

	s.opts = append([]lang.Option{
		lang.WithLogger(logger),
		lang.WithOracle(lang.AnyOracle(oracles...)),
	}, opts...)
	s.transpiler = lang.NewTranspiler(s.opts...)

	return s
}

// Eval rewrites the markup of one input line and, if that succeeds, appends
// the line to the session script.
func (s *Session) Eval(ctx context.Context, input string) (string, error) {
	out, err := s.transpiler.Pipeline().Run(ctx, input)
	if err != nil {
		return "", err
	}

	s.lines = append(s.lines, input)
	s.last = input

	return out, nil
}

// Unit transpiles the whole session script into a compilation unit.
func (s *Session) Unit(ctx context.Context) (*lang.Unit, error) {
	return s.transpiler.Transpile(ctx, lang.Source{
		Text:    s.Source(),
		RelPath: s.rel,
	})
}

// Tree renders the markup tree of input, or of the last evaluated line if
// input is empty.
func (s *Session) Tree(
	ctx context.Context,
	input string,
	format lang.Format,
) (string, error) {
	if strings.TrimSpace(input) == "" {
		input = s.last
	}

	var sb strings.Builder

	nodes := lang.ParseMarkup(ctx, input, s.opts...)
	if err := lang.FormatTree(ctx, &sb, nodes, format, 2); err != nil {
		return "", err
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}

// Source returns the session script.
func (s *Session) Source() string {
	if len(s.lines) == 0 {
		return ""
	}

	return strings.Join(s.lines, "\n") + "\n"
}

// SetSource replaces the session script.
func (s *Session) SetSource(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		s.lines = nil

		return
	}

	s.lines = strings.Split(text, "\n")
}

// Lines returns the number of lines of the session script.
func (s *Session) Lines() int { return len(s.lines) }

// Reset clears the session script.
func (s *Session) Reset() {
	s.lines = nil
	s.last = ""
}

// AddType marks names as known host types.
func (s *Session) AddType(names ...string) {
	for _, name := range names {
		if !lang.RejectNonIdentifier(name) {
			s.known[name] = struct{}{}
		}
	}
}

// Types returns the known host type names in sorted order.
func (s *Session) Types() []string { return s.known.Names() }

// Identifiers returns the distinct identifiers of the session script in
// order of first appearance, excluding host keywords and builtin types.
func (s *Session) Identifiers() []string {
	var (
		names []string
		seen  = lang.NewTypeSet()
	)

	for _, line := range s.lines {
		for _, word := range strings.FieldsFunc(line, func(r rune) bool {
			return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			if len(word) < 2 || seen.Exists(word) || lang.Keywords.Exists(word) ||
				lang.BuiltinTypes.Exists(word) || lang.RejectNonIdentifier(word) {
				continue
			}

			seen[word] = struct{}{}
			names = append(names, word)
		}
	}

	return names
}

// candidates returns the completion candidates of script input: session
// identifiers, known types, and host keywords.
func (s *Session) candidates() []string {
	names := s.Identifiers()

	for _, set := range [][]string{s.Types(), lang.Keywords.Names()} {
		for _, name := range set {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}

	return names
}

// Tags returns the distinct tag names used in the session script in order of
// first appearance.
func (s *Session) Tags() []string {
	var (
		names []string
		walk  func([]lang.Node)
	)

	walk = func(nodes []lang.Node) {
		for _, n := range nodes {
			if e, ok := n.(*lang.Element); ok {
				names = appendUnique(names, e.Tag)
				walk(e.Children)
			}
		}
	}

	walk(lang.ParseMarkup(context.Background(), s.Source(), s.opts...))

	return names
}
