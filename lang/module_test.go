package lang

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewriteModule_Imports(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		relPath  string
		bindings []string
	}{
		{
			name:    "namespace import",
			input:   `import * as util from "./lib/util.csx";`,
			relPath: "pages/home.csx",
			bindings: []string{
				"var util = ServiceFactory.Create<_pages_lib_util>().Run();",
			},
		},
		{
			name:    "named imports",
			input:   `import { a, b as c } from "./m"`,
			relPath: "main.csx",
			bindings: []string{
				"var _m = ServiceFactory.Create<_m>().Run();",
				`var a = _m.Exports["a"];`,
				`var c = _m.Exports["b"];`,
			},
		},
		{
			name:    "default import",
			input:   `import counter from '../shared/counter';`,
			relPath: "pages/home.csx",
			bindings: []string{
				"var _shared_counter = ServiceFactory.Create<_shared_counter>().Run();",
				`var counter = _shared_counter.Exports["counter"];`,
			},
		},
		{
			name:     "empty import",
			input:    `import {} from "./m";`,
			relPath:  "main.csx",
			bindings: nil,
		},
		{
			name:    "root-relative path",
			input:   `import { Nav } from "/components/Nav-Bar";`,
			relPath: "pages/deep/page.csx",
			bindings: []string{
				"var _components_nav_bar = ServiceFactory.Create<_components_Nav_Bar>().Run();",
				`var Nav = _components_nav_bar.Exports["Nav"];`,
			},
		},
		{
			name:    "module imported twice",
			input:   "import { a } from \"./m\";\nimport { b } from \"./m\";",
			relPath: "main.csx",
			bindings: []string{
				"var _m = ServiceFactory.Create<_m>().Run();",
				`var a = _m.Exports["a"];`,
				`var b = _m.Exports["b"];`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := RewriteModule(context.Background(), tt.input, tt.relPath)
			if err != nil {
				t.Fatalf("RewriteModule: %v", err)
			}

			if diff := cmp.Diff(tt.bindings, mod.Bindings()); diff != "" {
				t.Errorf("bindings mismatch (-want +got):\n%s", diff)
			}

			if len(mod.Statements) != 0 {
				t.Errorf("expected import lines removed, got %q", mod.Statements)
			}
		})
	}
}

func TestRewriteModule_ImportErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		relPath string
		want    error
	}{
		{
			name:  "no relative path",
			input: `import { a } from "./m";`,
			want:  ErrNoModulePath,
		},
		{
			name:    "above project root",
			input:   `import { a } from "../m";`,
			relPath: "main.csx",
			want:    ErrModulePath,
		},
		{
			name:    "empty module path",
			input:   `import { a } from "";`,
			relPath: "main.csx",
			want:    ErrModulePath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RewriteModule(context.Background(), tt.input, tt.relPath)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRewriteModule_NotImports(t *testing.T) {
	input := "important = 1;\nimport foo;\nimport { a, b.c } from \"./x\";\nexports.x = 2;"

	mod, err := RewriteModule(context.Background(), input, "")
	if err != nil {
		t.Fatalf("RewriteModule: %v", err)
	}

	want := []string{"important = 1;", "import foo;", `import { a, b.c } from "./x";`, "exports.x = 2;"}
	if diff := cmp.Diff(want, mod.Statements); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}

	if len(mod.Imports) != 0 || len(mod.Exports) != 0 {
		t.Errorf("expected no module syntax, got %+v", mod)
	}
}

func TestRewriteModule_Exports(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		statements    []string
		registrations []string
	}{
		{
			name:          "function with body",
			input:         "export function foo() { return 1; }",
			statements:    []string{"function foo() { return 1; }"},
			registrations: []string{`Exports["foo"] = foo;`},
		},
		{
			name:          "method spanning lines",
			input:         "export static int Add(int x, int y) {\n    return x + y;\n}",
			statements:    []string{"static int Add(int x, int y) {", "    return x + y;", "}"},
			registrations: []string{`Exports["Add"] = Add;`},
		},
		{
			name:          "variable",
			input:         "  export var count = 0;",
			statements:    []string{"  var count = 0;"},
			registrations: []string{`Exports["count"] = count;`},
		},
		{
			name:          "typed variable",
			input:         "export int total = a + b;",
			statements:    []string{"int total = a + b;"},
			registrations: []string{`Exports["total"] = total;`},
		},
		{
			name:          "default name",
			input:         "export default counter;",
			statements:    nil,
			registrations: []string{`Exports["counter"] = counter;`},
		},
		{
			name:          "default object creation",
			input:         "export default new Widget();",
			statements:    []string{"var DefaultExportVar = new Widget();"},
			registrations: []string{`Exports["DefaultExportVar"] = DefaultExportVar;`},
		},
		{
			name:          "default literal",
			input:         "export default 42;",
			statements:    []string{"var DefaultExportVar = 42;"},
			registrations: []string{`Exports["DefaultExportVar"] = DefaultExportVar;`},
		},
		{
			name:          "default declaration",
			input:         "export default dynamic Render() {",
			statements:    []string{"dynamic Render() {"},
			registrations: []string{`Exports["Render"] = Render;`},
		},
		{
			name:       "name list",
			input:      "export { a, b as c };",
			statements: nil,
			registrations: []string{
				`Exports["a"] = a;`,
				`Exports["c"] = b;`,
			},
		},
		{
			name:       "name list with malformed entries",
			input:      "export { a, b.c, d as e, f as };",
			statements: nil,
			registrations: []string{
				`Exports["a"] = a;`,
				`Exports["e"] = d;`,
			},
		},
		{
			name:          "statement without a name",
			input:         "export 1 + 2;",
			statements:    []string{"var ExportedVar = 1 + 2;"},
			registrations: []string{`Exports["ExportedVar"] = ExportedVar;`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := RewriteModule(context.Background(), tt.input, "")
			if err != nil {
				t.Fatalf("RewriteModule: %v", err)
			}

			if diff := cmp.Diff(tt.statements, mod.Statements); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(tt.registrations, mod.Registrations()); diff != "" {
				t.Errorf("registrations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestModuleName(t *testing.T) {
	tests := map[string]string{
		"main.csx":                "_main",
		"pages/home.csx":          "_pages_home",
		`components\nav-bar.csx`:  "_components_nav_bar",
		"./lib/util":              "_lib_util",
		"":                        "",
		"weird name/Über.csx":     "_weird_name_Über",
		"nested/dir/file.min.csx": "_nested_dir_file_min",
	}

	for input, want := range tests {
		if got := ModuleName(input); got != want {
			t.Errorf("ModuleName(%q): expected %q, got %q", input, want, got)
		}
	}
}
