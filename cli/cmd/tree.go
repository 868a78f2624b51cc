package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/log"
)

// Tree prints the markup tree of script files.
type Tree struct {
	typeFlags `embed:""`

	Source []string `arg:"" default:"-"    help:"Script file(s) or '-' for stdin" name:"source" optional:""`
	Format string   `       default:"text" help:"Output format"                   short:"F"     enum:"${treeFormats}"`
	Indent int      `       default:"2"    help:"Indent width (0: compact)"`
}

// Run executes the tree command.
func (tr *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	format, err := lang.ParseFormat(tr.Format)
	if err != nil {
		return err
	}

	sources, err := uniqueSources(tr.Source)
	if err != nil {
		return err
	}

	oracle, err := tr.typeOracle()
	if err != nil {
		return err
	}

	opts := []lang.Option{
		lang.WithLogger(log.FromContext(ctx)),
		lang.WithOracle(oracle),
	}

	var nodes []lang.Node

	for _, src := range sources {
		text, err := src.ReadAll()
		if err != nil {
			return lang.ErrReadInput.Wrap(err).With(slog.String("source", src.Path))
		}

		nodes = append(nodes, lang.ParseMarkup(ctx, string(text), opts...)...)
	}

	return lang.FormatTree(ctx, stdout(ctx), nodes, format, tr.Indent)
}
