// Package project transpiles every script of a project directory.
//
// A project is a directory tree holding script files (".csx"), an optional
// package manifest ("package.json") whose "main" field names the entry
// script, and a build-project descriptor ("*.csproj") found in the root or
// one of its ancestors. [Build] discovers the scripts, names their classes,
// transpiles them concurrently with [lang.Transpiler], and writes one
// generated file per script into the output directory:
//
//	report, err := project.Build(ctx, root,
//		project.WithJobs(4),
//		project.WithKnownTypes(project.KnownTypes(os.Getenv(project.KnownTypesEnv))...),
//	)
//
// Unchanged scripts are skipped using a content-addressed [Cache] kept in
// the output directory. [Watch] repeats the build whenever a script, the
// manifest, or the descriptor changes. [Clean] removes the output directory
// with the cache, so the next build regenerates everything.
package project
