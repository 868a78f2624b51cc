package lang

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// Usings are emitted at the top of every generated compilation unit.
var Usings = []string{
	"System",
	"Vibe",
	"Microsoft.Extensions.DependencyInjection",
	"System.Dynamic",
	"System.Collections.Generic",
}

// Class and method names of generated entry-point units.
const (
	EntryClass     = "Program"
	MauiEntryClass = "MauiProgram"
	EntryMethod    = "Main"
	MauiMethod     = "CreateMauiApp"
	ModuleMethod   = "Run"
	FallbackClass  = "Script"
)

// Source is one script to transpile.
type Source struct {
	// Text is the script source.
	Text string
	// RelPath is the slash-separated path of the script relative to the
	// project root. Scripts that import other modules require it.
	RelPath string
	// Class names the generated class. If empty, it is derived from RelPath.
	// It is ignored for entry-point scripts.
	Class string
	// Entry marks the project's entry-point script.
	Entry bool
}

// Unit is one generated compilation unit.
type Unit struct {
	Namespace  string         `json:"namespace"            yaml:"namespace"`
	Class      string         `json:"class"                yaml:"class"`
	Method     string         `json:"method"               yaml:"method"`
	Static     bool           `json:"static"               yaml:"static"`
	Usings     []string       `json:"usings"               yaml:"usings"`
	Injections []Injection    `json:"injections,omitempty" yaml:"injections,omitempty"`
	Services   []ServiceBlock `json:"services,omitempty"   yaml:"services,omitempty"`
	Imports    []Import       `json:"imports,omitempty"    yaml:"imports,omitempty"`
	Exports    []Export       `json:"exports,omitempty"    yaml:"exports,omitempty"`
	Body       []string       `json:"body,omitempty"       yaml:"body,omitempty"`
	Text       string         `json:"-"                    yaml:"-"`
}

// Transpiler rewrites scripts into host-language compilation units.
// A Transpiler is safe for concurrent use if its oracle is.
type Transpiler struct {
	cfg      config
	pipeline *Pipeline
}

// NewTranspiler returns a Transpiler whose pipeline holds the markup rule.
func NewTranspiler(opts ...Option) *Transpiler {
	return &Transpiler{
		cfg:      makeConfig(opts...),
		pipeline: NewPipeline(opts...).Add(MarkupRule(opts...)),
	}
}

// Pipeline returns the rule pipeline run over each script before its
// directives and module statements are processed. Rules added to it also
// apply to dynamic attribute values.
func (t *Transpiler) Pipeline() *Pipeline { return t.pipeline }

// Transpile rewrites src into a complete compilation unit.
//
// The script is run through the rule pipeline, then service blocks,
// injections, and using directives are extracted, and finally import and
// export statements are rewritten. Errors are fatal for the script: no
// partial unit is returned.
func (t *Transpiler) Transpile(ctx context.Context, src Source) (*Unit, error) {
	logger := t.cfg.logger.With(slog.String("source", src.RelPath))

	usings, text := ExtractUsings(src.Text)

	text, err := t.pipeline.Run(ctx, text)
	if err != nil {
		return nil, err
	}

	services, text, err := ExtractServiceBlocks(text)
	if err != nil {
		return nil, WrapError(err).With(slog.String("source", src.RelPath))
	}

	injections, text := ExtractInjections(text)

	mod, err := RewriteModule(ctx, text, src.RelPath, WithLogger(logger))
	if err != nil {
		return nil, WrapError(err).With(slog.String("source", src.RelPath))
	}

	unit := t.unit(src)
	unit.Usings = mergeUsings(usings)
	unit.Injections = injections
	unit.Services = services
	unit.Imports = mod.Imports
	unit.Exports = mod.Exports
	unit.Body = mod.Statements
	unit.Text = unit.render(mod)

	logger.DebugContext(ctx, "script transpiled",
		slog.String("class", unit.Class),
		slog.Int("imports", len(unit.Imports)),
		slog.Int("exports", len(unit.Exports)),
		slog.Int("injections", len(unit.Injections)),
	)

	return unit, nil
}

// unit returns the naming of the unit generated for src.
func (t *Transpiler) unit(src Source) *Unit {
	u := &Unit{Namespace: t.namespace(), Method: ModuleMethod}

	switch {
	case src.Entry && t.cfg.platform.Maui:
		u.Class, u.Method, u.Static = MauiEntryClass, MauiMethod, true
	case src.Entry:
		u.Class, u.Method, u.Static = EntryClass, EntryMethod, true
	case src.Class != "":
		u.Class = src.Class
	default:
		u.Class = ModuleName(src.RelPath)
	}

	if u.Class == "" {
		u.Class = FallbackClass
	}

	return u
}

func (t *Transpiler) namespace() string {
	switch {
	case t.cfg.namespace != "":
		return t.cfg.namespace
	case t.cfg.platform.Maui && t.cfg.platform.RootNamespace != "":
		return t.cfg.platform.RootNamespace
	default:
		return DefaultNamespace
	}
}

func mergeUsings(extra []string) []string {
	out := slices.Clone(Usings)

	for _, u := range extra {
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}

	return out
}

// render writes the compilation unit.
func (u *Unit) render(mod *Module) string {
	var w unitWriter

	for _, name := range u.Usings {
		w.line(0, "using "+name+";")
	}

	w.line(0, "namespace "+u.Namespace)
	w.line(0, "{")

	if u.Method == MauiMethod {
		w.line(1, "public static class "+u.Class)
	} else {
		w.line(1, "public class "+u.Class)
	}

	w.line(1, "{")

	for _, inj := range u.Injections {
		w.line(2, inj.String())
	}

	static := ""
	if u.Static {
		static = "static "
	}

	w.line(2, "public "+static+"Dictionary<string, object>? Exports { get; set; }")
	w.line(2, "public "+static+"IAdvancedServiceProvider? ServiceProvider { get; set; }")

	switch u.Method {
	case MauiMethod:
		w.line(2, "public static MauiApp "+MauiMethod+"()")
	case EntryMethod:
		w.line(2, "public static void "+EntryMethod+"()")
	default:
		w.line(2, "public dynamic "+u.Method+"()")
	}

	w.line(2, "{")
	w.line(3, "Exports = new Dictionary<string, object>();")
	w.line(3, "ServiceProvider = ServiceHub.Build();")
	w.block(3, servicePrelude(u.Services))
	w.line(3, "var ServiceFactory = (DependencyInjectorFactory)ServiceProvider.GetService(typeof(DependencyInjectorFactory));")

	for _, stmt := range mod.Bindings() {
		w.line(3, stmt)
	}

	for _, stmt := range u.Body {
		w.line(3, stmt)
	}

	for _, stmt := range mod.Registrations() {
		w.line(3, stmt)
	}

	if !u.Static {
		w.line(3, "return this;")
	}

	w.line(2, "}")
	w.line(1, "}")
	w.line(0, "}")

	return w.String()
}

type unitWriter struct {
	strings.Builder
}

func (w *unitWriter) line(depth int, s string) {
	if depth > 0 && s != "" {
		w.WriteString(strings.Repeat("    ", depth))
	}

	w.WriteString(s)
	w.WriteByte('\n')
}

// block writes the non-blank lines of s.
func (w *unitWriter) block(depth int, s string) {
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimRight(l, "\r"); strings.TrimSpace(l) != "" {
			w.line(depth, l)
		}
	}
}
