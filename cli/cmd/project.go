package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/log"
	"github.com/ardnew/vibe/pkg"
	"github.com/ardnew/vibe/project"
)

// projectFlags are shared by the commands that operate on a project tree.
type projectFlags struct {
	typeFlags `embed:""`

	Root      string `arg:""                 default:"." help:"Project root directory"                           optional:"" type:"existingdir"`
	Out       string `                                   help:"Output directory (default: <root>/${generated})"  short:"o"   type:"path"`
	Namespace string `                                   help:"${namespaceHelp}"                                 short:"n"`
	Jobs      int    `                       default:"0" help:"Scripts transpiled concurrently (0: one per CPU)" short:"j"`
	Force     bool   `                                   help:"Regenerate scripts whose cache entry is fresh"    short:"f"`
	Report    string `default:"text" enum:"text,json,yaml" help:"Report format"`
}

func (f projectFlags) options(ctx context.Context) ([]project.Option, error) {
	opts := []project.Option{
		project.WithLogger(log.FromContext(ctx)),
		project.WithNamespace(f.Namespace),
		project.WithJobs(f.Jobs),
		project.WithForce(f.Force),
		project.WithKnownTypes(f.knownTypes()...),
	}

	if f.Out != "" {
		opts = append(opts, project.WithOutputDir(f.Out))
	}

	oracle, err := f.exprOracle()
	if err != nil {
		return nil, err
	}

	if oracle != nil {
		opts = append(opts, project.WithOracle(oracle))
	}

	return opts, nil
}

// writeReport writes r to w in the given format.
func writeReport(ctx context.Context, w io.Writer, r project.Report, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		data, err := yaml.MarshalContext(ctx, r)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err
	}

	for _, f := range r.Files {
		if f.Status == project.StatusUnchanged {
			continue
		}

		line := fmt.Sprintf("%-9s %s", f.Status, f.Script)
		if f.Err != nil {
			line += ": " + f.Err.Error()
		} else if f.Output != "" {
			line += " -> " + f.Output
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	for _, path := range r.Removed {
		if _, err := fmt.Fprintf(w, "%-9s %s\n", "removed", path); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d generated, %d unchanged, %d failed in %s\n",
		r.Count(project.StatusGenerated),
		r.Count(project.StatusUnchanged),
		r.Count(project.StatusFailed),
		r.Elapsed.Round(time.Millisecond),
	)

	return err
}

// Build transpiles every script of a project.
type Build struct {
	projectFlags `embed:""`
}

// Run executes the build command.
func (b *Build) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := b.options(ctx)
	if err != nil {
		return err
	}

	report, buildErr := project.Build(ctx, b.Root, opts...)

	if err := writeReport(ctx, stdout(ctx), report, b.Report); err != nil {
		return err
	}

	if buildErr != nil {
		return ErrBuild.Wrap(buildErr).With(slog.String("root", report.Root))
	}

	return nil
}

// Watch rebuilds a project whenever its scripts change.
type Watch struct {
	projectFlags `embed:""`

	Debounce time.Duration `default:"${debounce}" help:"Wait for changes to settle before rebuilding"`
}

// Run executes the watch command. It returns when ctx ends.
func (w *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := w.options(ctx)
	if err != nil {
		return err
	}

	opts = append(opts, project.WithDebounce(w.Debounce))
	out := stdout(ctx)
	logger := log.FromContext(ctx)

	return project.Watch(ctx, w.Root, func(r project.Report, err error) {
		if werr := writeReport(ctx, out, r, w.Report); werr != nil {
			logger.WarnContext(ctx, "write report", slog.Any("error", werr))
		}

		if err != nil {
			logger.ErrorContext(ctx, "build failed", slog.Any("error", err))
		}
	}, opts...)
}

// Clean removes the output directory of a project.
type Clean struct {
	Root   string `arg:"" default:"."    help:"Project root directory"                          optional:"" type:"existingdir"`
	Out    string `                      help:"Output directory (default: <root>/${generated})" short:"o"   type:"path"`
	Report string `       default:"text" help:"Report format" enum:"text,json,yaml"`
}

// Run executes the clean command.
func (c *Clean) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := []project.Option{project.WithLogger(log.FromContext(ctx))}
	if c.Out != "" {
		opts = append(opts, project.WithOutputDir(c.Out))
	}

	report, err := project.Clean(ctx, c.Root, opts...)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	switch c.Report {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		data, err := yaml.MarshalContext(ctx, report)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err
	}

	if !report.Found {
		_, err = fmt.Fprintf(w, "not found %s\n", report.Dir)

		return err
	}

	_, err = fmt.Fprintf(w, "wiped %s (%d files)\n", report.Dir, report.Files)

	return err
}

// Vars returns the kong variables interpolated into the command flags.
func Vars() kong.Vars {
	return kong.Vars{
		"generated":     pkg.GeneratedDir,
		"namespace":     lang.DefaultNamespace,
		"namespaceHelp": "Namespace of generated classes (default: RootNamespace of a Maui project, else " + lang.DefaultNamespace + ")",
		"knownTypesEnv": project.KnownTypesEnv,
		"debounce":      project.DefaultDebounce.String(),
		"treeFormats":   strings.Join(slices.Collect(lang.Formats()), ","),
	}
}
