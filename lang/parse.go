package lang

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/vibe/log"
)

// TagPredicate reports whether a candidate tag name must be rejected, in
// which case the '<' introducing it is kept as ordinary code.
type TagPredicate func(name string) bool

// RejectKnownType rejects names that o reports as known types, so that a
// generic argument such as the int in List<int> is never read as a tag.
func RejectKnownType(o Oracle) TagPredicate {
	return func(name string) bool {
		return o != nil && o.Exists(name)
	}
}

// RejectDisqualified rejects names containing characters that cannot occur
// in a tag name but do occur in generic types and comparison expressions.
func RejectDisqualified(name string) bool {
	return strings.ContainsAny(name, "=,<>") || strings.Contains(name, "/>")
}

// RejectNonIdentifier rejects names that do not look like a tag name, such
// as the empty name in "a < b" or the number in "i<10".
func RejectNonIdentifier(name string) bool {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || !isIdentifierStart(r) {
		return true
	}

	for _, r := range name[size:] {
		if !isIdentifierContinue(r) && r != '-' && r != '.' && r != ':' {
			return true
		}
	}

	return false
}

// DefaultRejectors returns the tag predicates used unless
// [WithTagRejectors] is given.
func DefaultRejectors(o Oracle) []TagPredicate {
	return []TagPredicate{
		RejectKnownType(o),
		RejectDisqualified,
		RejectNonIdentifier,
	}
}

// ParseMarkup parses the markup embedded in text.
//
// Host code at the top level is kept verbatim in [*Text] nodes, with string
// literals and comments skipped while looking for tags. Malformed markup
// never fails the parse: a '<' that does not start a well-formed tag is kept
// as text, and elements left open at the end of input are closed implicitly.
func ParseMarkup(ctx context.Context, text string, opts ...Option) []Node {
	cfg := makeConfig(opts...)

	p := &parser{
		ctx:    ctx,
		input:  []byte(text),
		pos:    0,
		line:   1,
		col:    1,
		reject: cfg.rejectors,
		logger: cfg.logger,
	}

	nodes := p.parseTop()

	p.logger.TraceContext(ctx, "markup parsed",
		slog.Int("source_bytes", len(p.input)),
		slog.Int("node_count", len(nodes)),
	)

	return nodes
}

// parser holds the parser state.
type parser struct {
	ctx    context.Context
	input  []byte
	pos    int
	line   int
	col    int
	open   []string // tags of enclosing elements, innermost last
	reject []TagPredicate
	logger log.Logger

	// unclosed holds the offsets of '{' whose brace scan fails.
	unclosed map[int]struct{}
}

// mark is a saved cursor the parser can back off to.
type mark struct {
	pos  int
	line int
	col  int
}

func (p *parser) mark() mark { return mark{p.pos, p.line, p.col} }

func (p *parser) reset(m mark) { p.pos, p.line, p.col = m.pos, m.line, m.col }

func (m mark) position() Position {
	return Position{Offset: m.pos, Line: m.line, Column: m.col}
}

// parseTop parses host code containing markup.
func (p *parser) parseTop() []Node {
	var nodes []Node

	start := p.mark()

	for !p.eof() {
		ch := p.peek()

		switch {
		case ch == '"':
			_ = p.skipString('"')

		case ch == '\'':
			p.skipCharLiteral()

		case ch == '@' || ch == '$':
			p.skipPrefixedString()

		case p.peekN(2) == "//":
			p.skipLineComment()

		case p.peekN(2) == "/*":
			p.skipBlockComment()

		case ch == '<' && p.tagAhead():
			at := p.mark()

			elem := p.parseElement()
			if elem == nil {
				p.advance()

				continue
			}

			if at.pos > start.pos {
				nodes = append(nodes, &Text{
					Raw: string(p.input[start.pos:at.pos]),
					Pos: start.position(),
				})
			}

			nodes = append(nodes, elem)
			start = p.mark()

		default:
			p.advance()
		}
	}

	if p.pos > start.pos {
		nodes = append(nodes, &Text{
			Raw: string(p.input[start.pos:p.pos]),
			Pos: start.position(),
		})
	}

	return nodes
}

// tagAhead reports whether the '<' at the cursor may open a tag.
func (p *parser) tagAhead() bool {
	switch p.peekN(2) {
	case "<=", "</", "<<", "<":
		return false
	}

	return true
}

// parseElement parses a tag at the cursor. It returns nil and restores the
// cursor when the tag is rejected or malformed.
func (p *parser) parseElement() *Element {
	start := p.mark()

	backOff := func(reason string) *Element {
		p.logger.TraceContext(p.ctx, "tag backed off",
			slog.String("position", start.position().String()),
			slog.String("reason", reason),
		)
		p.reset(start)

		return nil
	}

	p.advance() // skip '<'

	name := p.parseTagName()
	if p.rejected(name) {
		return backOff("rejected tag name " + name)
	}

	attrs, ok := p.parseAttributes()
	if !ok {
		p.logger.DebugContext(p.ctx, "malformed tag attributes",
			slog.String("tag", name),
			slog.String("position", start.position().String()),
		)

		return backOff("malformed attributes")
	}

	p.skipWhitespace()

	selfClosing := p.expect('/')

	if p.peek() != '>' {
		return backOff("unterminated tag")
	}

	if p.input[p.pos-1] == '=' {
		return backOff("arrow operator")
	}

	p.advance() // skip '>'

	if !selfClosing && p.operatorAhead() {
		return backOff("operator after tag")
	}

	elem := &Element{
		Tag:         name,
		Attrs:       attrs,
		SelfClosing: selfClosing,
		Pos:         start.position(),
	}

	if selfClosing {
		return elem
	}

	p.open = append(p.open, name)
	elem.Children = p.parseChildren()
	p.open = p.open[:len(p.open)-1]

	p.closeTag(name)

	return elem
}

func (p *parser) rejected(name string) bool {
	for _, reject := range p.reject {
		if reject(name) {
			return true
		}
	}

	return false
}

// parseTagName reads a tag name terminated by whitespace, '>', '/', or ','.
func (p *parser) parseTagName() string {
	start := p.pos

	for !p.eof() && !isTagNameEnd(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

// isAttributeName reports whether name may name an attribute. Names such as
// "&&" in "a<b && c>d" are not, which backs off the candidate tag.
func isAttributeName(name string) bool {
	for i, r := range name {
		switch {
		case r == '@' || r == ':' || r == '_':
		case i > 0 && (r == '-' || r == '.'):
		case i == 0 && isIdentifierStart(r):
		case i > 0 && isIdentifierContinue(r):
		default:
			return false
		}
	}

	return name != ""
}

func isTagNameEnd(r rune) bool {
	return unicode.IsSpace(r) || r == '>' || r == '/' || r == ','
}

// operatorAhead reports whether the first non-space character after a
// closing '>' is one of ")(>", which indicates a generic call or a shift
// rather than a tag. The cursor does not move.
func (p *parser) operatorAhead() bool {
	for i := p.pos; i < len(p.input); i++ {
		switch ch := p.input[i]; {
		case ch == ')' || ch == '(' || ch == '>':
			return true
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			continue
		default:
			return false
		}
	}

	return false
}

// parseAttributes parses attributes up to the closing '/' or '>'.
// It reports false when an attribute is malformed or input ends first.
func (p *parser) parseAttributes() ([]Attribute, bool) {
	var attrs []Attribute

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, false
		}

		if ch := p.peek(); ch == '>' || ch == '/' {
			return attrs, true
		}

		start := p.pos

		for !p.eof() {
			ch := p.peek()
			if unicode.IsSpace(ch) || ch == '=' || ch == '>' || ch == '/' {
				break
			}

			p.advance()
		}

		name := string(p.input[start:p.pos])
		if !isAttributeName(name) {
			return nil, false
		}

		p.skipWhitespace()

		if !p.expect('=') {
			attrs = append(attrs, Attribute{Name: name, Dynamic: true, Value: "true"})

			continue
		}

		p.skipWhitespace()

		attr, ok := p.parseAttributeValue(name)
		if !ok {
			return nil, false
		}

		attrs = append(attrs, attr)
	}
}

// parseAttributeValue parses a {expression}, a quoted literal, or a bare
// literal token.
func (p *parser) parseAttributeValue(name string) (Attribute, bool) {
	if p.eof() {
		return Attribute{}, false
	}

	switch quote := p.peek(); quote {
	case '{':
		src, ok := p.scanBraces()
		if !ok {
			return Attribute{}, false
		}

		return Attribute{Name: name, Dynamic: true, Value: strings.TrimSpace(src)}, true

	case '"', '\'':
		p.advance()

		start := p.pos

		for !p.eof() && p.peek() != quote {
			p.advance()
		}

		if p.eof() {
			return Attribute{}, false
		}

		value := string(p.input[start:p.pos])
		p.advance() // skip closing quote

		return Attribute{Name: name, Value: value}, true

	default:
		start := p.pos

		for !p.eof() {
			ch := p.peek()
			if unicode.IsSpace(ch) || ch == '>' || p.peekN(2) == "/>" {
				break
			}

			p.advance()
		}

		if p.pos == start {
			return Attribute{}, false
		}

		return Attribute{Name: name, Value: string(p.input[start:p.pos])}, true
	}
}

// scanBraces consumes a brace-balanced span starting at '{' and returns the
// text between the outer braces. Braces inside string and character
// literals and comments are not counted.
//
// A failed scan records every '{' it passed whose own scan must fail too,
// so repeated back-off over unbalanced input stays linear.
func (p *parser) scanBraces() (string, bool) {
	if _, ok := p.unclosed[p.pos]; ok {
		return "", false
	}

	var braces []brace

	first := p.pos
	fail := func(depth int) (string, bool) {
		p.markUnclosed(first, depth, braces)

		return "", false
	}

	p.advance() // skip '{'

	start := p.pos
	depth := 1

	for !p.eof() {
		switch p.peek() {
		case '"':
			if err := p.skipString('"'); err != nil {
				return fail(depth)
			}

			continue

		case '\'':
			p.skipCharLiteral()

			continue

		case '@', '$':
			p.skipPrefixedString()

			continue

		case '/':
			switch p.peekN(2) {
			case "//":
				p.skipLineComment()

				continue
			case "/*":
				p.skipBlockComment()

				continue
			}

		case '{':
			depth++
			braces = append(braces, brace{p.pos, depth})

		case '}':
			depth--
			if depth == 0 {
				src := string(p.input[start:p.pos])
				p.advance() // skip '}'

				return src, true
			}

			braces = append(braces, brace{-1, depth})
		}

		p.advance()
	}

	return fail(depth)
}

// brace is a brace passed by a scan with the depth after it. The offset is
// -1 for a closing brace.
type brace struct{ pos, depth int }

// markUnclosed records first and every opening brace of a failed scan that
// is never balanced before the scan ended at depth.
func (p *parser) markUnclosed(first, depth int, braces []brace) {
	if p.unclosed == nil {
		p.unclosed = make(map[int]struct{})
	}

	p.unclosed[first] = struct{}{}

	low := depth

	for i := len(braces) - 1; i >= 0; i-- {
		b := braces[i]
		if b.pos >= 0 && low >= b.depth {
			p.unclosed[b.pos] = struct{}{}
		}

		low = min(low, b.depth)
	}
}

// parseChildren parses the content of an element up to a close tag of any
// enclosing element or the end of input.
func (p *parser) parseChildren() []Node {
	var nodes []Node

	for {
		p.skipWhitespace()

		if p.eof() {
			return nodes
		}

		if p.peekN(2) == "</" {
			if p.isOpen(p.peekCloseName()) {
				return nodes
			}

			nodes = append(nodes, p.parseStrayClose())

			continue
		}

		if p.peek() == '<' && p.peekN(2) != "<=" {
			if elem := p.parseElement(); elem != nil {
				nodes = append(nodes, elem)

				continue
			}

			nodes = append(nodes, p.parseCode())

			continue
		}

		nodes = append(nodes, p.parseText())
	}
}

// parseText reads a text run up to the next '<'.
func (p *parser) parseText() *Text {
	start := p.mark()

	p.advance() // a run is never empty, even when it starts at "<="

	for !p.eof() && p.peek() != '<' {
		p.advance()
	}

	return &Text{Raw: string(p.input[start.pos:p.pos]), Pos: start.position()}
}

// parseCode reads a backed-off span from '<' up to the next '<'.
func (p *parser) parseCode() *Code {
	start := p.mark()

	p.advance() // skip '<'

	for !p.eof() && p.peek() != '<' {
		p.advance()
	}

	return &Code{Raw: string(p.input[start.pos:p.pos]), Pos: start.position()}
}

// parseStrayClose reads a close tag that matches no open element as text.
func (p *parser) parseStrayClose() *Text {
	start := p.mark()

	p.advance() // skip '<'
	p.advance() // skip '/'

	for !p.eof() && p.peek() != '<' {
		if p.expect('>') {
			break
		}

		p.advance()
	}

	return &Text{Raw: string(p.input[start.pos:p.pos]), Pos: start.position()}
}

// peekCloseName returns the tag name of the close tag at the cursor.
func (p *parser) peekCloseName() string {
	end := p.pos + 2

	for end < len(p.input) {
		r, size := utf8.DecodeRune(p.input[end:])
		if isTagNameEnd(r) {
			break
		}

		end += size
	}

	return string(p.input[min(p.pos+2, len(p.input)):end])
}

func (p *parser) isOpen(name string) bool {
	for _, tag := range p.open {
		if tag == name {
			return true
		}
	}

	return false
}

// closeTag consumes the close tag of the element named name if it is next.
// Otherwise the element is closed implicitly.
func (p *parser) closeTag(name string) {
	if p.peekN(2) != "</" || p.peekCloseName() != name {
		p.logger.TraceContext(p.ctx, "implicit close",
			slog.String("tag", name),
			slog.String("position", p.position().String()),
		)

		return
	}

	p.advance() // skip '<'
	p.advance() // skip '/'

	for range utf8.RuneCountInString(name) {
		p.advance()
	}

	p.skipWhitespace()
	p.expect('>')
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *parser) skipLineComment() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}
}

func (p *parser) skipBlockComment() {
	p.advance() // skip '/'
	p.advance() // skip '*'

	for !p.eof() {
		if p.peekN(2) == "*/" {
			p.advance() // skip '*'
			p.advance() // skip '/'

			return
		}

		p.advance()
	}
}

func (p *parser) skipString(quote rune) error {
	p.advance() // skip opening quote

	for !p.eof() {
		ch := p.peek()
		if ch == '\\' {
			p.advance() // skip backslash

			if !p.eof() {
				p.advance() // skip escaped char
			}

			continue
		}

		if ch == quote {
			p.advance() // skip closing quote

			return nil
		}

		p.advance()
	}

	return ErrUnbalanced.WithPosition(p.position()).
		With(slog.String("error", "unterminated string"))
}

// skipCharLiteral skips a character literal such as 'a' or '\n'. An
// apostrophe that does not open one is skipped alone.
func (p *parser) skipCharLiteral() {
	rest := p.input[p.pos+1:]

	n := 1
	if len(rest) > 0 && rest[0] == '\\' {
		n = 2
	}

	if len(rest) > n && rest[n] == '\'' {
		for range n + 2 {
			p.advance()
		}

		return
	}

	p.advance()
}

// skipPrefixedString skips a verbatim (@"…") or interpolated ($"…", $@"…",
// @$"…") string literal at the cursor. Any other '@' or '$' is skipped
// alone.
func (p *parser) skipPrefixedString() {
	verbatim := false

	for i := range 2 {
		switch p.peekN(i + 1)[i:] {
		case "@":
			verbatim = true
		case "$":
		default:
			p.advance()

			return
		}

		if p.peekN(i + 2)[i+1:] == `"` {
			for range i + 1 {
				p.advance()
			}

			if !verbatim {
				_ = p.skipString('"')

				return
			}

			p.skipVerbatimString()

			return
		}
	}

	p.advance()
}

// skipVerbatimString skips a string in which "" escapes a quote and
// backslashes are literal.
func (p *parser) skipVerbatimString() {
	p.advance() // skip opening quote

	for !p.eof() {
		if p.peekN(2) == `""` {
			p.advance()
			p.advance()

			continue
		}

		if p.expect('"') {
			return
		}

		p.advance()
	}
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}
