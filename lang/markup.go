package lang

import "unicode"

// Node is a parsed markup node: an [*Element], a [*Text] run, or a [*Code]
// span that looked like markup but was backed off.
type Node interface {
	Kind() Kind
	Position() Position
}

// Kind identifies the concrete type of a [Node].
type Kind int

const (
	KindElement Kind = iota
	KindText
	KindCode
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindCode:
		return "code"
	default:
		return "unknown"
	}
}

// Element is a tag with attributes and children in document order.
type Element struct {
	Tag         string
	Attrs       []Attribute
	Children    []Node
	SelfClosing bool
	Pos         Position
}

// Kind implements [Node].
func (*Element) Kind() Kind { return KindElement }

// Position implements [Node].
func (e *Element) Position() Position { return e.Pos }

// Component reports whether the tag refers to a callable component rather
// than a primitive node. Component tags start with an upper-case letter.
func (e *Element) Component() bool {
	for _, r := range e.Tag {
		return unicode.IsUpper(r)
	}

	return false
}

// Text is a run of literal markup text, possibly holding {…} interpolations.
type Text struct {
	Raw string
	Pos Position
}

// Kind implements [Node].
func (*Text) Kind() Kind { return KindText }

// Position implements [Node].
func (t *Text) Position() Position { return t.Pos }

// Code is a span starting at a '<' that was not accepted as a tag.
type Code struct {
	Raw string
	Pos Position
}

// Kind implements [Node].
func (*Code) Kind() Kind { return KindCode }

// Position implements [Node].
func (c *Code) Position() Position { return c.Pos }

// Attribute is a name with either a literal value or an expression source.
type Attribute struct {
	Name    string `json:"name"    yaml:"name"`
	Dynamic bool   `json:"dynamic" yaml:"dynamic"`
	Value   string `json:"value"   yaml:"value"`
}

// raw returns the source text of a Text or Code node.
func raw(n Node) string {
	switch n := n.(type) {
	case *Text:
		return n.Raw
	case *Code:
		return n.Raw
	default:
		return ""
	}
}
