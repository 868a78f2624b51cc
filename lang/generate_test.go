package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []Option
		want  string
	}{
		{
			name:  "primitive with attributes and interpolation",
			input: `<div class="box" id={myId}>Hello {name}!</div>`,
			want: `new CsxNode("div").StageAtt("id", myId).StageAtt("class", $@"box")` +
				`.Append(@"Hello ").Append(name).Append(@"!")`,
		},
		{
			name:  "self-closing primitive",
			input: `<br/>`,
			want:  `new CsxNode("br")`,
		},
		{
			name:  "component with attributes",
			input: `<Card title="Hi" count={n} />`,
			want:  `Card(new { title = "Hi", count = n }).StageAtt("count", n).StageAtt("title", $@"Hi")`,
		},
		{
			name:  "component without attributes",
			input: `<Spacer/>`,
			want:  `Spacer()`,
		},
		{
			name:  "component member names",
			input: `<Button class="x" data-id="1" @key={k} />`,
			want: `Button(new { X_class = "x", data_id = "1", X_key = k })` +
				`.StageAtt("@key", k).StageAtt("class", $@"x").StageAtt("data-id", $@"1")`,
		},
		{
			name:  "element in host code",
			input: `var x = <p>hi</p>;`,
			want:  `var x = new CsxNode("p").Append(@"hi");`,
		},
		{
			name:  "nested elements",
			input: `<ul><li>a</li><li>{b}</li></ul>`,
			want: `new CsxNode("ul").Append(new CsxNode("li").Append(@"a"))` +
				`.Append(new CsxNode("li").Append(b))`,
		},
		{
			name:  "text around element",
			input: `<p>Hi <b>you</b> there</p>`,
			want: `new CsxNode("p").Append(@"Hi ").Append(new CsxNode("b").Append(@"you"))` +
				`.Append(@"there")`,
		},
		{
			name:  "interpolation spanning text siblings",
			input: `<p>{a <= b}</p>`,
			want:  `new CsxNode("p").Append(a <= b)`,
		},
		{
			name:  "literal spanning text siblings",
			input: `<p>a <= b</p>`,
			want:  `new CsxNode("p").Append(@"a <= b")`,
		},
		{
			name:  "interpolation spanning code sibling",
			input: `<p>{x <1 ? "a" : "b"}</p>`,
			want:  `new CsxNode("p").Append(x <1 ? "a" : "b")`,
		},
		{
			name:  "quotes in literal text",
			input: `<p>say "hi"</p>`,
			want:  `new CsxNode("p").Append(@"say ""hi""")`,
		},
		{
			name:  "quotes in static attribute",
			input: `<p title='a "b"'/>`,
			want:  `new CsxNode("p").StageAtt("title", $@"a ""b""")`,
		},
		{
			name:  "markup in dynamic attribute",
			input: `<Card body={<p>hi</p>} />`,
			want: `Card(new { body = new CsxNode("p").Append(@"hi") })` +
				`.StageAtt("body", new CsxNode("p").Append(@"hi"))`,
		},
		{
			name:  "interpolation is verbatim",
			input: `<p>{items.Select(i => i * 2)}</p>`,
			want:  `new CsxNode("p").Append(items.Select(i => i * 2))`,
		},
		{
			name:  "runtime names",
			input: `<p a={v}>x</p>`,
			opts:  []Option{WithRuntime(Runtime{Node: "Node", Append: "Add"})},
			want:  `new Node("p").StageAtt("a", v).Add(@"x")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			got, err := Generate(ctx, ParseMarkup(ctx, tt.input, tt.opts...), tt.opts...)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected:\n%s\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestGenerate_EmissionOrder(t *testing.T) {
	ctx := context.Background()

	got, err := Generate(ctx, ParseMarkup(ctx, `<tag a="x" b={y}>text{z}</tag>`))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	parts := []string{
		`new CsxNode("tag")`,
		`.StageAtt("b", y)`,
		`.StageAtt("a", $@"x")`,
		`.Append(@"text")`,
		`.Append(z)`,
	}

	last := -1

	for _, part := range parts {
		i := strings.Index(got, part)
		if i <= last {
			t.Fatalf("expected %q after offset %d in %q", part, last, got)
		}

		last = i
	}
}

func TestGenerate_DynamicAttributeUsesPipeline(t *testing.T) {
	ctx := context.Background()

	p := NewPipeline().Add(
		MarkupRule(),
		RuleFunc{
			Label: "value",
			Func: func(_ context.Context, text string) (string, error) {
				return strings.ReplaceAll(text, "$VALUE", "42"), nil
			},
		},
	)

	got, err := p.Run(ctx, `<p a={$VALUE}/>`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if want := `new CsxNode("p").StageAtt("a", 42)`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGenerate_DynamicAttributeError(t *testing.T) {
	errBoom := errors.New("boom")

	p := NewPipeline().Add(MarkupRule(), RuleFunc{
		Label: "fail-nested",
		Func: func(_ context.Context, text string) (string, error) {
			if text == "bad" {
				return "", errBoom
			}

			return text, nil
		},
	})

	_, err := p.Run(context.Background(), `<p a={bad}/>`)
	if !errors.Is(err, errBoom) || !errors.Is(err, ErrRule) {
		t.Errorf("expected rule error wrapping boom, got %v", err)
	}
}

func TestGenerate_DeepNesting(t *testing.T) {
	const n = 20000

	ctx := context.Background()
	nodes := ParseMarkup(ctx, strings.Repeat("<a>", n)+"x"+strings.Repeat("</a>", n))

	start := time.Now()

	got, err := Generate(ctx, nodes)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("expected linear generation, took %s", elapsed)
	}

	node := `new CsxNode("a")`
	want := strings.Repeat(node+".Append(", n-1) + node + `.Append(@"x")` + strings.Repeat(")", n-1)

	if got != want {
		t.Errorf("unexpected code for %d nested elements (%d bytes, want %d)", n, len(got), len(want))
	}
}

func BenchmarkGenerate_Nested(b *testing.B) {
	ctx := context.Background()
	nodes := ParseMarkup(ctx, strings.Repeat("<a>", 2000)+strings.Repeat("</a>", 2000))

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Generate(ctx, nodes); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	ctx := context.Background()
	nodes := ParseMarkup(ctx, strings.Repeat(
		`<Card title="t" body={<p>{text}</p>}><ul><li>a</li><li>{b}</li></ul></Card>`, 20))

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Generate(ctx, nodes); err != nil {
			b.Fatal(err)
		}
	}
}
