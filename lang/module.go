package lang

import (
	"context"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strings"
)

// ImportKind classifies the bindings of an import statement.
type ImportKind int

const (
	ImportEmpty   ImportKind = iota // import {} from "m"
	ImportAll                       // import * as alias from "m"
	ImportNamed                     // import { a, b as c } from "m"
	ImportDefault                   // import a from "m"
)

// String returns the lower-case name of the kind.
func (k ImportKind) String() string {
	switch k {
	case ImportEmpty:
		return "empty"
	case ImportAll:
		return "all"
	case ImportNamed:
		return "named"
	case ImportDefault:
		return "default"
	default:
		return "unknown"
	}
}

// ImportName is one imported name and the local variable bound to it.
type ImportName struct {
	Name string `json:"name" yaml:"name"`
	As   string `json:"as"   yaml:"as"`
}

// Import is a parsed import statement.
type Import struct {
	Kind   ImportKind   `json:"kind"            yaml:"kind"`
	Alias  string       `json:"alias,omitempty" yaml:"alias,omitempty"`
	Names  []ImportName `json:"names,omitempty" yaml:"names,omitempty"`
	Path   string       `json:"path"            yaml:"path"`
	Module string       `json:"module"          yaml:"module"`
}

// Local returns the variable bound to the whole module of a named or
// default import.
func (i Import) Local() string {
	if i.Kind == ImportAll {
		return i.Alias
	}

	return strings.ToLower(i.Module)
}

// Export is one exported name. Statement is the cleaned source line, empty
// when the line only listed names.
type Export struct {
	Name      string `json:"name"      yaml:"name"`
	Binding   string `json:"binding"   yaml:"binding"`
	Statement string `json:"statement" yaml:"statement"`
}

// Registration returns the statement adding e to the export map.
func (e Export) Registration() string {
	return `Exports["` + e.Name + `"] = ` + e.Binding + ";"
}

// Fallback names of exports that do not declare a name.
const (
	DefaultExportName = "DefaultExportVar"
	ExportName        = "ExportedVar"
)

// ScriptExtension is stripped from module paths and file names.
const ScriptExtension = ".csx"

// Module is the result of rewriting a script's module syntax.
type Module struct {
	Imports    []Import `json:"imports,omitempty"    yaml:"imports,omitempty"`
	Exports    []Export `json:"exports,omitempty"    yaml:"exports,omitempty"`
	Statements []string `json:"statements,omitempty" yaml:"statements,omitempty"`
}

// Bindings returns the variable declarations of the imports, in order. A
// module imported by name more than once is instantiated once.
func (m *Module) Bindings() []string {
	var (
		out      []string
		declared = map[string]bool{}
	)

	for _, imp := range m.Imports {
		if imp.Kind == ImportEmpty {
			continue
		}

		create := "ServiceFactory.Create<" + imp.Module + ">().Run()"
		local := imp.Local()

		if !declared[local] {
			declared[local] = true

			out = append(out, "var "+local+" = "+create+";")
		}

		if imp.Kind == ImportAll {
			continue
		}

		for _, n := range imp.Names {
			out = append(out, "var "+n.As+" = "+local+`.Exports["`+n.Name+`"];`)
		}
	}

	return out
}

// Registrations returns the export-map statements, in order.
func (m *Module) Registrations() []string {
	out := make([]string, len(m.Exports))
	for i, e := range m.Exports {
		out[i] = e.Registration()
	}

	return out
}

var (
	importPattern = regexp.MustCompile(
		`^import\b\s*(.*?)\s*\bfrom\s*(["'])([^"']*)["']\s*;?\s*$`,
	)
	methodPattern = regexp.MustCompile(
		`^\s*export\s+(?:(?:public|private|protected|internal|static|async|virtual|override|sealed|partial)\s+)*\w+(?:<.*?>)?\s+\w+\s*\(.*?\)\s*\{`,
	)
	keywordPattern = regexp.MustCompile(`^(import|export)\b`)
)

// ignoredWords never name an export.
var ignoredWords = NewTypeSet(
	"async", "const", "var", "let", "default", "public", "private",
	"protected", "internal", "static", "readonly", "Task", "dynamic",
	"return", "new", "class", "struct", "record", "function", "void",
)

// RewriteModule converts the import and export statements of text, line by
// line, into variable bindings and export registrations.
//
// relPath is the slash-separated path of the script relative to the project
// root. It is required only when text imports other modules.
func RewriteModule(
	ctx context.Context,
	text, relPath string,
	opts ...Option,
) (*Module, error) {
	cfg := makeConfig(opts...)
	mod := &Module{}

	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		pos := Position{Line: n + 1, Column: 1}

		switch keywordPattern.FindString(trimmed) {
		case "import":
			imp, ok, err := parseImport(trimmed, relPath)
			if err != nil {
				return nil, WrapError(err).WithPosition(pos)
			}

			if ok {
				mod.Imports = append(mod.Imports, imp)

				continue
			}

			cfg.logger.DebugContext(ctx, "unrecognized import kept",
				slog.String("position", pos.String()),
				slog.String("line", trimmed),
			)

		case "export":
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			exports, stmt, malformed := parseExport(trimmed)

			for _, entry := range malformed {
				cfg.logger.DebugContext(ctx, "malformed export entry ignored",
					slog.String("position", pos.String()),
					slog.String("entry", entry),
				)
			}

			mod.Exports = append(mod.Exports, exports...)
			line = indent + stmt
		}

		if strings.TrimSpace(line) != "" {
			mod.Statements = append(mod.Statements, line)
		}
	}

	return mod, nil
}

// parseImport parses an import line. It reports false if the line is not a
// well-formed import statement.
func parseImport(line, relPath string) (Import, bool, error) {
	m := importPattern.FindStringSubmatch(line)
	if m == nil {
		return Import{}, false, nil
	}

	imp := Import{Path: m[3]}

	switch names := strings.TrimSpace(m[1]); {
	case strings.HasPrefix(names, "*"):
		alias, ok := strings.CutPrefix(strings.TrimSpace(names[1:]), "as")
		alias = strings.TrimSpace(alias)

		if !ok || !isIdentifier(alias) {
			return Import{}, false, nil
		}

		imp.Kind, imp.Alias = ImportAll, alias

	case strings.HasPrefix(names, "{") && strings.HasSuffix(names, "}"):
		list, malformed := parseNameList(names[1 : len(names)-1])
		if len(malformed) > 0 {
			return Import{}, false, nil
		}

		imp.Kind, imp.Names = ImportNamed, list
		if len(list) == 0 {
			imp.Kind = ImportEmpty
		}

	case isIdentifier(names):
		imp.Kind = ImportDefault
		imp.Names = []ImportName{{Name: names, As: names}}

	default:
		return Import{}, false, nil
	}

	module, err := ResolveModule(relPath, imp.Path)
	if err != nil {
		return Import{}, false, WrapError(err).With(slog.String("import", imp.Path))
	}

	imp.Module = module

	return imp, true, nil
}

// parseNameList parses "a, b as c". It returns the well-formed entries and
// the malformed ones separately.
func parseNameList(list string) (names []ImportName, malformed []string) {
	for _, item := range strings.Split(list, ",") {
		fields := strings.Fields(item)

		switch {
		case len(fields) == 0:
			continue
		case len(fields) == 1 && isIdentifier(fields[0]):
			names = append(names, ImportName{Name: fields[0], As: fields[0]})
		case len(fields) == 3 && fields[1] == "as" &&
			isIdentifier(fields[0]) && isIdentifier(fields[2]):
			names = append(names, ImportName{Name: fields[0], As: fields[2]})
		default:
			malformed = append(malformed, strings.TrimSpace(item))
		}
	}

	return names, malformed
}

// ResolveModule resolves modPath, as written in a script at relPath, to the
// identifier of the generated module class.
//
// Paths are resolved against the directory of relPath; a leading '/' refers
// to the project root. It is an [ErrNoModulePath] error if relPath is empty
// and an [ErrModulePath] error if the result lies outside the project.
func ResolveModule(relPath, modPath string) (string, error) {
	relPath = strings.ReplaceAll(relPath, `\`, "/")
	modPath = strings.ReplaceAll(modPath, `\`, "/")

	if strings.TrimSpace(relPath) == "" {
		return "", ErrNoModulePath
	}

	var joined string
	if strings.HasPrefix(modPath, "/") {
		joined = path.Clean(strings.TrimLeft(modPath, "/"))
	} else {
		joined = path.Join(path.Dir(relPath), modPath)
	}

	if strings.TrimSpace(modPath) == "" || joined == "." || joined == ".." ||
		strings.HasPrefix(joined, "../") || path.IsAbs(joined) {
		return "", ErrModulePath.With(slog.String("path", modPath))
	}

	return ModuleName(joined), nil
}

// ModuleName returns the class identifier of the script at the
// slash-separated relPath: "components/nav-bar.csx" becomes
// "_components_nav_bar".
func ModuleName(relPath string) string {
	relPath = strings.TrimSuffix(path.Clean(strings.ReplaceAll(relPath, `\`, "/")), ScriptExtension)

	var sb strings.Builder

	for _, seg := range strings.Split(relPath, "/") {
		if seg == "" || seg == "." {
			continue
		}

		sb.WriteByte('_')
		sb.WriteString(strings.Map(func(r rune) rune {
			if isIdentifierContinue(r) {
				return r
			}

			return '_'
		}, seg))
	}

	return sb.String()
}

// parseExport classifies an export line. It returns the exports it
// declares, the cleaned statement, and the malformed entries of an export
// list, which are not registered.
func parseExport(line string) ([]Export, string, []string) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "export"))

	switch {
	case methodPattern.MatchString(line):
		name := lastIdentifier(rest[:strings.IndexByte(rest, '(')])

		return []Export{{Name: name, Binding: name, Statement: rest}}, rest, nil

	case keywordIs(rest, "default"):
		exports, stmt := declaredExport(
			strings.TrimSpace(strings.TrimPrefix(rest, "default")), DefaultExportName)

		return exports, stmt, nil

	case strings.HasPrefix(rest, "{"):
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			end = len(rest)
		}

		var exports []Export

		list, malformed := parseNameList(rest[1:end])
		for _, n := range list {
			exports = append(exports, Export{Name: n.As, Binding: n.Name})
		}

		return exports, "", malformed

	default:
		exports, stmt := declaredExport(rest, ExportName)

		return exports, stmt, nil
	}
}

// declaredExport registers the name declared by stmt. A statement declaring
// no name, or an object creation, is bound to fallback.
func declaredExport(stmt, fallback string) ([]Export, string) {
	name := declaredName(stmt)

	if name == "" || keywordIs(stmt, "new") {
		expr := strings.TrimSuffix(strings.TrimSpace(stmt), ";")
		stmt = "var " + fallback + " = " + expr + ";"

		return []Export{{Name: fallback, Binding: fallback, Statement: stmt}}, stmt
	}

	export := Export{Name: name, Binding: name, Statement: stmt}

	// A bare name only registers what is already declared.
	if strings.TrimSuffix(strings.TrimSpace(stmt), ";") == name {
		export.Statement = ""
	}

	return []Export{export}, export.Statement
}

// declaredName returns the identifier declared by stmt: the name before the
// parameter list of a method, the target of an assignment, or else the
// first identifier that is not a modifier or keyword.
func declaredName(stmt string) string {
	paren := strings.IndexByte(stmt, '(')
	assign := assignIndex(stmt)

	switch {
	case paren >= 0 && (assign < 0 || paren < assign):
		return lastIdentifier(stmt[:paren])
	case assign >= 0:
		return lastIdentifier(stmt[:assign])
	}

	for _, word := range identifiers(stmt) {
		if !ignoredWords.Exists(word) {
			return word
		}
	}

	return ""
}

// assignIndex returns the index of the first '=' that is not part of "==",
// "=>", "<=", ">=", or "!=".
func assignIndex(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			continue
		}

		if i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
			i++

			continue
		}

		if i > 0 && strings.IndexByte("=<>!", s[i-1]) >= 0 {
			continue
		}

		return i
	}

	return -1
}

func lastIdentifier(s string) string {
	words := identifiers(s)
	for i := len(words) - 1; i >= 0; i-- {
		if !ignoredWords.Exists(words[i]) {
			return words[i]
		}
	}

	return ""
}

// identifiers returns the identifiers in s in order.
func identifiers(s string) []string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !isIdentifierContinue(r)
	})

	return slices.DeleteFunc(words, func(w string) bool { return !isIdentifier(w) })
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentifierStart(r) || !isIdentifierContinue(r) {
			return false
		}
	}

	return s != ""
}

// keywordIs reports whether s starts with the word kw.
func keywordIs(s, kw string) bool {
	rest, ok := strings.CutPrefix(s, kw)
	if !ok {
		return false
	}

	for _, r := range rest {
		return !isIdentifierContinue(r)
	}

	return true
}
