package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/log"
	"github.com/ardnew/vibe/project"
)

// Gen transpiles script files and writes the generated units to stdout.
type Gen struct {
	typeFlags `embed:""`

	Source    []string `arg:"" default:"-"         help:"Script file(s) or '-' for stdin"                      name:"source" optional:""`
	Root      string   `       default:"."         help:"Project root for module paths and the descriptor"                   type:"existingdir"`
	Rel       string   `       default:"stdin.csx" help:"Project-relative path of the stdin script"`
	Entry     bool     `                           help:"Transpile every source as the entry-point script"     short:"e"`
	Class     string   `                           help:"Class name of non-entry sources (default: from path)" short:"c"`
	Namespace string   `                           help:"${namespaceHelp}"                                     short:"n"`
	Format    string   `       default:"cs"        help:"Output format"                                        short:"F" enum:"cs,json,yaml"`
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.FromContext(ctx)

	root, err := filepath.Abs(g.Root)
	if err != nil {
		return ErrSource.Wrap(err)
	}

	manifest, err := project.ReadManifest(root)
	if err != nil {
		logger.DebugContext(ctx, "ignore manifest", slog.Any("error", err))
	}

	desc, err := project.LoadDescriptor(root)
	if err != nil {
		logger.DebugContext(ctx, "ignore descriptor", slog.Any("error", err))
	}

	sources, err := uniqueSources(g.Source)
	if err != nil {
		return err
	}

	oracle, err := g.typeOracle()
	if err != nil {
		return err
	}

	t := lang.NewTranspiler(
		lang.WithLogger(logger),
		lang.WithOracle(oracle),
		lang.WithNamespace(g.Namespace),
		lang.WithPlatform(desc.Platform()),
	)

	units := make([]*lang.Unit, 0, len(sources))

	for _, src := range sources {
		unit, err := g.transpile(ctx, t, root, manifest, src)
		if err != nil {
			return err
		}

		units = append(units, unit)
	}

	return writeUnits(ctx, stdout(ctx), units, g.Format)
}

func (g *Gen) transpile(
	ctx context.Context,
	t *lang.Transpiler,
	root string,
	m project.Manifest,
	src source,
) (*lang.Unit, error) {
	text, err := src.ReadAll()
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("source", src.Path))
	}

	rel := g.Rel
	if !src.Stdin() {
		rel = relPath(root, src.Path)
	}

	unit, err := t.Transpile(ctx, lang.Source{
		Text:    string(text),
		RelPath: rel,
		Class:   g.Class,
		Entry:   g.Entry || project.IsEntry(rel, m),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}

	return unit, nil
}

// relPath returns the slash-separated path of path relative to root, or its
// base name if it lies outside root.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}

	return filepath.ToSlash(rel)
}

// writeUnits writes the generated units. The structured formats encode a
// lone unit as an object and several as a list.
func writeUnits(ctx context.Context, w io.Writer, units []*lang.Unit, format string) error {
	var v any = units
	if len(units) == 1 {
		v = units[0]
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		data, err := yaml.MarshalContext(ctx, v)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err
	}

	for i, unit := range units {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, unit.Text); err != nil {
			return err
		}
	}

	return nil
}
