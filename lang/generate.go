package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// Keywords are the reserved words of the host language. An attribute whose
// name is a keyword is renamed when it becomes an anonymous-object member.
var Keywords = NewTypeSet(
	"abstract", "as", "base", "bool", "break", "byte", "case", "catch",
	"char", "checked", "class", "const", "continue", "decimal", "default",
	"delegate", "do", "double", "else", "enum", "event", "explicit", "extern",
	"false", "finally", "fixed", "float", "for", "foreach", "goto", "if",
	"implicit", "in", "int", "interface", "internal", "is", "lock", "long",
	"namespace", "new", "null", "object", "operator", "out", "override",
	"params", "private", "protected", "public", "readonly", "ref", "return",
	"sbyte", "sealed", "short", "sizeof", "stackalloc", "static", "string",
	"struct", "switch", "this", "throw", "true", "try", "typeof", "uint",
	"ulong", "unchecked", "unsafe", "ushort", "using", "virtual", "void",
	"volatile", "while",
)

// Generate emits host-language code for nodes.
//
// A lone element becomes a single expression. Otherwise text and code nodes
// are copied verbatim and each element is replaced in place by its
// expression.
//
// Dynamic attribute values are transpiled again before they are emitted, so
// markup nested in an attribute expression becomes code as well. When ctx
// carries a [Pipeline] (as it does inside [Pipeline.Run]) the value is run
// through that pipeline, otherwise through the markup rule alone.
// Interpolations in text are emitted verbatim.
func Generate(ctx context.Context, nodes []Node, opts ...Option) (string, error) {
	g := &generator{ctx: ctx, cfg: makeConfig(opts...), opts: opts}

	var sb strings.Builder

	for _, node := range nodes {
		elem, ok := node.(*Element)
		if !ok {
			sb.WriteString(raw(node))

			continue
		}

		if err := g.element(&sb, elem); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

// generator writes the code of nested elements into one builder.
type generator struct {
	ctx  context.Context
	cfg  config
	opts []Option
}

// element writes the expression constructing elem to sb.
func (g *generator) element(sb *strings.Builder, elem *Element) error {
	var (
		stage   []string
		members []string
		static  []string
	)

	rt := g.cfg.runtime

	for _, attr := range elem.Attrs {
		if !attr.Dynamic {
			static = append(static, stageCall(rt, attr.Name, verbatim("$@", attr.Value)))
			members = append(members, memberName(attr.Name)+" = "+strconv.Quote(attr.Value))

			continue
		}

		value, err := g.rerun(attr.Value)
		if err != nil {
			return ErrRule.Wrap(err).
				With(slog.String("tag", elem.Tag), slog.String("attribute", attr.Name)).
				WithPosition(elem.Pos)
		}

		stage = append(stage, stageCall(rt, attr.Name, value))
		members = append(members, memberName(attr.Name)+" = "+value)
	}

	if elem.Component() {
		sb.WriteString(elem.Tag)
		sb.WriteByte('(')

		if len(members) > 0 {
			sb.WriteString("new { ")
			sb.WriteString(strings.Join(members, ", "))
			sb.WriteString(" }")
		}

		sb.WriteByte(')')
	} else {
		sb.WriteString("new ")
		sb.WriteString(rt.Node)
		sb.WriteByte('(')
		sb.WriteString(strconv.Quote(elem.Tag))
		sb.WriteByte(')')
	}

	for _, call := range stage {
		sb.WriteString(call)
	}

	for _, call := range static {
		sb.WriteString(call)
	}

	var acc accumulator

	for i := range elem.Children {
		var err error
		if acc, err = g.combine(sb, acc, elem.Children, i); err != nil {
			return err
		}
	}

	return nil
}

// rerun transpiles a dynamic attribute value.
func (g *generator) rerun(value string) (string, error) {
	if p := pipelineFrom(g.ctx); p != nil {
		return p.Run(g.ctx, value)
	}

	return Generate(g.ctx, ParseMarkup(g.ctx, value, g.opts...), g.opts...)
}

// accumulator is the fold state of an element's children: the raw text of
// Text and Code children not yet flushed. Append calls are written to the
// generator's builder as they are produced.
type accumulator struct {
	pending string
}

// combine folds the child at index i into acc, writing append calls to sb.
//
// Text and Code children are buffered. The buffer is flushed, split into
// fragments, before an element child, after the last child, and after a
// Text child that directly follows another Text child unless an
// interpolation is still open.
func (g *generator) combine(
	sb *strings.Builder,
	acc accumulator,
	children []Node,
	i int,
) (accumulator, error) {
	child := children[i]

	if elem, ok := child.(*Element); ok {
		acc = g.flush(sb, acc)

		sb.WriteByte('.')
		sb.WriteString(g.cfg.runtime.Append)
		sb.WriteByte('(')

		if err := g.element(sb, elem); err != nil {
			return acc, err
		}

		sb.WriteByte(')')

		return acc, nil
	}

	acc.pending += raw(child)

	last := i == len(children)-1

	switch {
	case last, len(children) == 1:
		acc = g.flush(sb, acc)

	case children[i+1].Kind() == KindElement:
		acc = g.flush(sb, acc)

	case child.Kind() == KindText && i > 0 && children[i-1].Kind() == KindText &&
		!openBraces(acc.pending):
		acc = g.flush(sb, acc)
	}

	return acc, nil
}

// flush writes one append call per fragment of the buffered text.
func (g *generator) flush(sb *strings.Builder, acc accumulator) accumulator {
	if acc.pending == "" {
		return acc
	}

	for _, frag := range SplitFragments(acc.pending) {
		if frag.Code {
			sb.WriteString(appendCall(g.cfg.runtime, frag.Value))
		} else {
			sb.WriteString(appendCall(g.cfg.runtime, verbatim("@", frag.Value)))
		}
	}

	acc.pending = ""

	return acc
}

func stageCall(rt Runtime, name, value string) string {
	return "." + rt.Stage + "(" + strconv.Quote(name) + ", " + value + ")"
}

func appendCall(rt Runtime, value string) string {
	return "." + rt.Append + "(" + value + ")"
}

// verbatim returns s as a verbatim string literal with the given prefix.
func verbatim(prefix, s string) string {
	return prefix + `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// memberName returns an anonymous-object member name for an attribute.
func memberName(name string) string {
	if Keywords.Exists(name) {
		name = "X_" + name
	}

	return strings.NewReplacer("-", "_", "@", "X_").Replace(name)
}
