// Package profile provides optional runtime profiling of transpiler builds.
//
// Profiling is compiled in only with the "pprof" build tag, using
// [github.com/pkg/profile]. Without the tag, [Modes] is empty and
// [Profiler.Start] returns a no-op [Stopper].
//
//	p := profile.Profiler{Mode: "cpu", Path: dir}
//	defer p.Start().Stop()
//
// Profiles are written to Path (or the working directory) with names that
// match the mode, e.g. cpu.pprof, and can be inspected with
//
//	go tool pprof -http=: cpu.pprof
//
// The pprof build also registers the [net/http/pprof] handlers, which are
// served only if the program starts an HTTP server.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
