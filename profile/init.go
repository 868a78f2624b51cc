package profile

import "slices"

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler configures a profiling session.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Start begins profiling in p.Mode. An empty or unsupported mode, or a
// build without the pprof tag, yields a no-op Stopper. Both Start and Stop
// are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" || !Supported(p.Mode) {
		return ignore{}
	}

	return start(p)
}

// Supported reports whether mode is one of [Modes].
func Supported(mode string) bool {
	return slices.Contains(Modes(), mode)
}

type ignore struct{}

func (ignore) Stop() {}
