// Package lang transpiles vibe scripts into C# compilation units.
//
// A vibe script is C# script code with three extensions: markup tags that
// describe a tree of UI nodes, JavaScript-style import and export
// statements, and the @inject and @Services{} directives. The package
// rewrites each extension into plain C#. It never parses host statements
// beyond what the extensions need and never type-checks its output.
//
// # Pipeline
//
// A script flows through these passes, in order:
//
//  1. Using directives are hoisted out of the body ([ExtractUsings]).
//  2. The rule [Pipeline] runs. It holds the markup rule ([MarkupRule]), which
//     parses markup ([ParseMarkup]) and replaces it with generated code
//     ([Generate]).
//  3. Service blocks are removed ([ExtractServiceBlocks]).
//  4. @inject directives are removed ([ExtractInjections]).
//  5. Import and export statements are rewritten line by line
//     ([RewriteModule]).
//  6. The wrapper class is assembled ([Transpiler.Transpile]).
//
// # Markup
//
//	<Tag attr="literal" dyn={expression}>text {interpolation}</Tag>
//	<tag flag />
//
// A tag whose name starts with an upper-case letter calls a component:
//
//	Card(new { title = "Hi" })
//
// Any other tag constructs a primitive node:
//
//	new CsxNode("div").StageAtt("onClick", handler).StageAtt("class", $@"box")
//
// Dynamic attributes are staged before static ones. Children are appended
// in document order; text is split on {…} interpolations into literal and
// expression appends.
//
// The host grammar uses '<' for generic types and comparisons, so a '<'
// only opens a tag if the name after it passes every [TagPredicate] and the
// tag is well formed. Otherwise the parser backs off and keeps the '<' as
// code. The default predicates reject names the [Oracle] knows as types,
// names with characters such as ',' or '=', and names that are not
// identifiers:
//
//	List<int> xs;       // int is a known type
//	if (a < b) { }      // no tag name
//	var r = <row/>;     // a tag, unless row is a known type
//
// # Modules
//
//	import * as util from "./util";   // var util = ServiceFactory.Create<_util>().Run();
//	import { a, b as c } from "./m";  // var _m = …; var a = _m.Exports["a"]; var c = _m.Exports["b"];
//	export int Add(int x, int y) {    // kept; Exports["Add"] = Add;
//	export default counter;           // Exports["counter"] = counter;
//
// # Directives
//
//	@inject ILogger logger            // [Inject] public ILogger logger { get; set; }
//	@Services{ services.AddSingleton<Clock>(); }
package lang
