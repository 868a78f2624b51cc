package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format selects the output syntax of a markup tree dump.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
)

var formatNames = []string{"text", "json", "yaml"}

// Formats returns an iterator over the names of the supported formats.
func Formats() iter.Seq[string] { return slices.Values(formatNames) }

// ParseFormat returns the Format named s, ignoring case.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}

	return FormatText, ErrFormat.With(slog.String("format", s))
}

// String returns the name of the format.
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}

	return formatNames[f]
}

// TreeNode is the serializable form of a [Node].
type TreeNode struct {
	Kind        string      `json:"kind"                   yaml:"kind"`
	Tag         string      `json:"tag,omitempty"          yaml:"tag,omitempty"`
	Component   bool        `json:"component,omitempty"    yaml:"component,omitempty"`
	SelfClosing bool        `json:"self_closing,omitempty" yaml:"self_closing,omitempty"`
	Attrs       []Attribute `json:"attrs,omitempty"        yaml:"attrs,omitempty"`
	Raw         string      `json:"raw,omitempty"          yaml:"raw,omitempty"`
	Fragments   []Fragment  `json:"fragments,omitempty"    yaml:"fragments,omitempty"`
	Position    Position    `json:"position"               yaml:"position"`
	Children    []TreeNode  `json:"children,omitempty"     yaml:"children,omitempty"`
}

// Tree returns the serializable form of nodes.
func Tree(nodes []Node) []TreeNode {
	out := make([]TreeNode, 0, len(nodes))

	for _, n := range nodes {
		t := TreeNode{Kind: n.Kind().String(), Position: n.Position()}

		switch n := n.(type) {
		case *Element:
			t.Tag = n.Tag
			t.Component = n.Component()
			t.SelfClosing = n.SelfClosing
			t.Attrs = n.Attrs
			t.Children = Tree(n.Children)
		case *Text:
			t.Raw = n.Raw
			t.Fragments = SplitFragments(n.Raw)
		case *Code:
			t.Raw = n.Raw
		}

		out = append(out, t)
	}

	return out
}

// FormatTree writes the markup tree of nodes to w in the given format.
// An indent of zero selects the most compact form of each format.
func FormatTree(
	ctx context.Context,
	w io.Writer,
	nodes []Node,
	format Format,
	indent int,
) error {
	switch format {
	case FormatText:
		return formatText(w, Tree(nodes), indent, 0)
	case FormatJSON:
		return formatJSON(w, Tree(nodes), indent)
	case FormatYAML:
		return formatYAML(ctx, w, Tree(nodes), indent)
	default:
		return ErrFormat.With(slog.String("format", format.String()))
	}
}

func formatJSON(w io.Writer, tree []TreeNode, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(tree, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(tree)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func formatYAML(ctx context.Context, w io.Writer, tree []TreeNode, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, tree, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// formatText writes one line per node, children indented below their
// parent.
func formatText(w io.Writer, tree []TreeNode, indent, depth int) error {
	if indent <= 0 {
		indent = 2
	}

	pad := strings.Repeat(" ", indent*depth)

	for _, t := range tree {
		var line string

		switch t.Kind {
		case KindElement.String():
			line = t.Kind + " " + t.Tag
			if t.Component {
				line += " component"
			}

			if t.SelfClosing {
				line += " self-closing"
			}
		default:
			line = t.Kind + " " + strconv.Quote(t.Raw)
		}

		if _, err := fmt.Fprintf(w, "%s%s @%s\n", pad, line, t.Position); err != nil {
			return err
		}

		for _, a := range t.Attrs {
			value := strconv.Quote(a.Value)
			if a.Dynamic {
				value = "{" + a.Value + "}"
			}

			if _, err := fmt.Fprintf(w, "%s%sattr %s=%s\n",
				pad, strings.Repeat(" ", indent), a.Name, value); err != nil {
				return err
			}
		}

		if err := formatText(w, t.Children, indent, depth+1); err != nil {
			return err
		}
	}

	return nil
}
