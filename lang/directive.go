package lang

import (
	"log/slog"
	"regexp"
	"strings"
)

// Injection is an @inject directive: a dependency-injected property.
type Injection struct {
	Type   string `json:"type"   yaml:"type"`
	Member string `json:"member" yaml:"member"`
}

// String returns the property declaration of the injection.
func (i Injection) String() string {
	return "[Inject] public " + i.Type + " " + i.Member + " { get; set; }"
}

// ServiceBlock is the body of an @Services{…} directive.
type ServiceBlock struct {
	Body string   `json:"body"     yaml:"body"`
	Pos  Position `json:"position" yaml:"position"`
}

// ServiceMarker introduces a service-registration block.
const ServiceMarker = "@Services{"

// ServicePrelude is the statement emitted ahead of service-block bodies.
const ServicePrelude = "var services = ServiceProvider.ServiceCollection;"

var (
	injectPattern = regexp.MustCompile(`@inject[ \t]+(\S+)[ \t]+([^\s;]+)[ \t]*;?`)
	usingPattern  = regexp.MustCompile(
		`(?m)^[ \t]*using[ \t]+((?:static[ \t]+)?[A-Za-z_][A-Za-z0-9_.]*)[ \t]*;[ \t]*\r?$`,
	)
)

// ExtractInjections removes every "@inject Type member" directive, with an
// optional trailing ';', from text. It returns the directives in order and
// the remaining text.
func ExtractInjections(text string) ([]Injection, string) {
	var inj []Injection

	for _, m := range injectPattern.FindAllStringSubmatch(text, -1) {
		inj = append(inj, Injection{Type: m[1], Member: m[2]})
	}

	if len(inj) == 0 {
		return nil, text
	}

	return inj, injectPattern.ReplaceAllLiteralString(text, "")
}

// ExtractUsings removes every using directive standing alone on its own
// line from text. It returns the namespaces in order, without duplicates,
// and the remaining text. Using statements and declarations are not
// directives and are kept.
func ExtractUsings(text string) ([]string, string) {
	var (
		names []string
		seen  = map[string]bool{}
	)

	for _, m := range usingPattern.FindAllStringSubmatch(text, -1) {
		name := strings.Join(strings.Fields(m[1]), " ")
		if !seen[name] {
			seen[name] = true

			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return nil, text
	}

	return names, usingPattern.ReplaceAllLiteralString(text, "")
}

// ExtractServiceBlocks removes every @Services{…} block from text. It
// returns the block bodies in order and the remaining text.
//
// Braces are counted to find the end of a block; braces in string and
// character literals and in comments are not counted. A block without a
// matching close brace is an [ErrUnbalanced] error.
func ExtractServiceBlocks(text string) ([]ServiceBlock, string, error) {
	if !strings.Contains(text, ServiceMarker) {
		return nil, text, nil
	}

	var (
		blocks []ServiceBlock
		rest   strings.Builder
	)

	p := &parser{input: []byte(text), line: 1, col: 1}
	keep := 0

	for !p.eof() {
		if p.peekN(len(ServiceMarker)) != ServiceMarker {
			p.advance()

			continue
		}

		start := p.mark()

		rest.WriteString(text[keep:p.pos])

		for range len(ServiceMarker) - 1 {
			p.advance()
		}

		body, ok := p.scanBraces()
		if !ok {
			return nil, "", ErrUnbalanced.WithPosition(start.position()).
				With(slog.String("directive", ServiceMarker))
		}

		blocks = append(blocks, ServiceBlock{Body: body, Pos: start.position()})
		keep = p.pos
	}

	rest.WriteString(text[keep:])

	return blocks, rest.String(), nil
}

// StripServiceBlock removes every @Services{…} block from text. The prelude
// is [ServicePrelude] followed by the block bodies, verbatim and in order.
func StripServiceBlock(text string) (prelude, residual string, err error) {
	blocks, residual, err := ExtractServiceBlocks(text)
	if err != nil {
		return "", "", err
	}

	return servicePrelude(blocks), residual, nil
}

func servicePrelude(blocks []ServiceBlock) string {
	var sb strings.Builder

	sb.WriteString(ServicePrelude)

	for _, b := range blocks {
		sb.WriteByte('\n')
		sb.WriteString(b.Body)
	}

	return sb.String()
}
