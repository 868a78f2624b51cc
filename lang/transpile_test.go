package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTranspile_Module(t *testing.T) {
	unit, err := NewTranspiler().Transpile(context.Background(), Source{
		Text:    "var x = 1;\n\nConsole.WriteLine(x);\n",
		RelPath: "lib/math.csx",
	})
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	want := `using System;
using Vibe;
using Microsoft.Extensions.DependencyInjection;
using System.Dynamic;
using System.Collections.Generic;
namespace GeneratedScripts
{
    public class _lib_math
    {
        public Dictionary<string, object>? Exports { get; set; }
        public IAdvancedServiceProvider? ServiceProvider { get; set; }
        public dynamic Run()
        {
            Exports = new Dictionary<string, object>();
            ServiceProvider = ServiceHub.Build();
            var services = ServiceProvider.ServiceCollection;
            var ServiceFactory = (DependencyInjectorFactory)ServiceProvider.GetService(typeof(DependencyInjectorFactory));
            var x = 1;
            Console.WriteLine(x);
            return this;
        }
    }
}
`
	if diff := cmp.Diff(want, unit.Text); diff != "" {
		t.Errorf("unit mismatch (-want +got):\n%s", diff)
	}

	// Plain statements pass through unchanged.
	if diff := cmp.Diff([]string{"var x = 1;", "Console.WriteLine(x);"}, unit.Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestTranspile_Naming(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		src       Source
		namespace string
		class     string
		method    string
		contains  []string
		excludes  []string
	}{
		{
			name:      "entry point",
			src:       Source{Text: "run();", RelPath: "main.csx", Entry: true},
			namespace: DefaultNamespace,
			class:     EntryClass,
			method:    EntryMethod,
			contains: []string{
				"public class Program",
				"public static Dictionary<string, object>? Exports { get; set; }",
				"public static void Main()",
			},
			excludes: []string{"return this;"},
		},
		{
			name:      "maui entry point",
			opts:      []Option{WithPlatform(Platform{Maui: true, RootNamespace: "MyApp"})},
			src:       Source{Text: "return builder.Build();", RelPath: "main.csx", Entry: true},
			namespace: "MyApp",
			class:     MauiEntryClass,
			method:    MauiMethod,
			contains: []string{
				"namespace MyApp",
				"public static class MauiProgram",
				"public static MauiApp CreateMauiApp()",
			},
			excludes: []string{"return this;"},
		},
		{
			name:      "explicit namespace and class",
			opts:      []Option{WithNamespace("App.Scripts"), WithPlatform(Platform{Maui: true, RootNamespace: "MyApp"})},
			src:       Source{Text: "x();", RelPath: "a/b.csx", Class: "Widget"},
			namespace: "App.Scripts",
			class:     "Widget",
			method:    ModuleMethod,
			contains:  []string{"public class Widget", "public dynamic Run()", "return this;"},
		},
		{
			name:      "no path",
			src:       Source{Text: "x();"},
			namespace: DefaultNamespace,
			class:     FallbackClass,
			method:    ModuleMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := NewTranspiler(tt.opts...).Transpile(context.Background(), tt.src)
			if err != nil {
				t.Fatalf("Transpile: %v", err)
			}

			if unit.Namespace != tt.namespace || unit.Class != tt.class || unit.Method != tt.method {
				t.Errorf("expected %s.%s.%s, got %s.%s.%s",
					tt.namespace, tt.class, tt.method,
					unit.Namespace, unit.Class, unit.Method)
			}

			for _, s := range tt.contains {
				if !strings.Contains(unit.Text, s) {
					t.Errorf("expected output to contain %q:\n%s", s, unit.Text)
				}
			}

			for _, s := range tt.excludes {
				if strings.Contains(unit.Text, s) {
					t.Errorf("expected output not to contain %q:\n%s", s, unit.Text)
				}
			}
		})
	}
}

func TestTranspile_StatementOrder(t *testing.T) {
	src := Source{
		RelPath: "pages/home.csx",
		Text: `using System.Text;
@inject ILogger log
@Services{ services.AddSingleton<Clock>(); }
import { a, b } from "./m";
var card = <Card title="x" body={y}>text{z}</Card>;
export function foo() { return card; }
log.Info("ready");
`,
	}

	unit, err := NewTranspiler().Transpile(context.Background(), src)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	ordered := []string{
		"using System.Collections.Generic;",
		"using System.Text;",
		"namespace GeneratedScripts",
		"public class _pages_home",
		"[Inject] public ILogger log { get; set; }",
		"public dynamic Run()",
		"ServiceProvider = ServiceHub.Build();",
		"var services = ServiceProvider.ServiceCollection;",
		"services.AddSingleton<Clock>();",
		"var ServiceFactory = ",
		"var _pages_m = ServiceFactory.Create<_pages_m>().Run();",
		`var a = _pages_m.Exports["a"];`,
		`var b = _pages_m.Exports["b"];`,
		`var card = Card(new { title = "x", body = y }).StageAtt("body", y).StageAtt("title", $@"x").Append(@"text").Append(z);`,
		"function foo() { return card; }",
		`log.Info("ready");`,
		`Exports["foo"] = foo;`,
		"return this;",
	}

	last := -1

	for _, s := range ordered {
		i := strings.Index(unit.Text, s)
		if i <= last {
			t.Fatalf("expected %q after offset %d:\n%s", s, last, unit.Text)
		}

		last = i
	}

	for _, gone := range []string{"@inject", "@Services", "import ", "export "} {
		if strings.Contains(unit.Text, gone) {
			t.Errorf("expected %q removed:\n%s", gone, unit.Text)
		}
	}
}

func TestTranspile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tr := NewTranspiler()

	unit, err := tr.Transpile(ctx, Source{
		RelPath: "view.csx",
		Text: `var list = new List<int>();
var view = <ul class="items">{list.Count} items<li a={<b>x</b>}>one</li></ul>;
if (list.Count < 3 && ok) { Render<Widget>(view); }
`,
	})
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	again, err := tr.Pipeline().Run(ctx, unit.Text)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff(unit.Text, again); diff != "" {
		t.Errorf("second pass changed the output (-first +second):\n%s", diff)
	}

	if strings.Contains(unit.Text, "<ul") || strings.Contains(unit.Text, "<b>") {
		t.Errorf("markup left in output:\n%s", unit.Text)
	}
}

func TestTranspile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want error
	}{
		{
			name: "import without path",
			src:  Source{Text: `import { a } from "./m";`},
			want: ErrNoModulePath,
		},
		{
			name: "unterminated service block",
			src:  Source{Text: "@Services{ x();", RelPath: "a.csx"},
			want: ErrUnbalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := NewTranspiler().Transpile(context.Background(), tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}

			if unit != nil {
				t.Errorf("expected no unit, got %+v", unit)
			}
		})
	}
}

func TestTranspile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTranspiler().Transpile(ctx, Source{Text: "x();", RelPath: "a.csx"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func BenchmarkTranspile(b *testing.B) {
	ctx := context.Background()
	tr := NewTranspiler()
	src := Source{
		RelPath: "pages/home.csx",
		Text: strings.Repeat(`import { a } from "./m";
var card = <Card title="t" body={<p>{text}</p>}><ul><li>a</li><li>{b}</li></ul></Card>;
export var n = 1;
`, 20),
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := tr.Transpile(ctx, src); err != nil {
			b.Fatal(err)
		}
	}
}
