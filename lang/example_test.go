package lang_test

import (
	"context"
	"fmt"

	"github.com/ardnew/vibe/lang"
)

func ExampleGenerate() {
	ctx := context.Background()

	code, err := lang.Generate(ctx, lang.ParseMarkup(ctx, `<p class="note">Hi {name}</p>`))
	if err != nil {
		panic(err)
	}

	fmt.Println(code)
	// Output:
	// new CsxNode("p").StageAtt("class", $@"note").Append(@"Hi ").Append(name)
}

func ExampleSplitFragments() {
	for _, f := range lang.SplitFragments("Total: {count} items") {
		fmt.Printf("%t %q\n", f.Code, f.Value)
	}
	// Output:
	// false "Total: "
	// true "count"
	// false " items"
}

func ExamplePipeline_Run() {
	known := lang.WithOracle(lang.NewTypeSet("Widget"))
	p := lang.NewPipeline().Add(lang.MarkupRule(known))

	out, err := p.Run(context.Background(), "var a = new Box<Widget>();\nvar b = <Card/>;")
	if err != nil {
		panic(err)
	}

	fmt.Println(out)
	// Output:
	// var a = new Box<Widget>();
	// var b = Card();
}
