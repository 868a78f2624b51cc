package project

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/log"
	"github.com/ardnew/vibe/pkg"
)

// DefaultDebounce is how long [Watch] waits for changes to settle.
const DefaultDebounce = 250 * time.Millisecond

type config struct {
	logger     log.Logger
	outDir     string
	namespace  string
	jobs       int
	force      bool
	knownTypes []string
	oracle     lang.Oracle
	cache      *lang.TypeCache
	debounce   time.Duration
	runtime    lang.Runtime
}

// Option configures [Build] and [Watch].
type Option func(*config)

func makeConfig(root string, opts ...Option) config {
	cfg := config{
		jobs:     runtime.GOMAXPROCS(0),
		debounce: DefaultDebounce,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.outDir == "" {
		cfg.outDir = filepath.Join(root, pkg.GeneratedDir)
	}

	if cfg.jobs < 1 {
		cfg.jobs = 1
	}

	if cfg.cache == nil {
		cfg.cache = lang.NewTypeCache()
	}

	return cfg
}

// typeOracle returns the type oracle of a build: the builtin host types, the
// known type names, and the configured oracle answered through the shared
// type cache.
func (c config) typeOracle() lang.Oracle {
	oracles := []lang.Oracle{lang.BuiltinTypes, lang.NewTypeSet(c.knownTypes...)}

	if c.oracle != nil {
		oracles = append(oracles, lang.CachedOracle(
			lang.ResolverFunc(func(name string) (bool, error) {
				return c.oracle.Exists(name), nil
			}),
			c.cache,
			lang.WithLogger(c.logger),
		))
	}

	return lang.AnyOracle(oracles...)
}

// oracleIdentity returns a string that changes whenever the answers of the
// configured oracle may change. It reports false for an oracle whose answers
// cannot be identified, e.g. an [lang.OracleFunc].
func (c config) oracleIdentity() (string, bool) {
	switch o := c.oracle.(type) {
	case nil:
		return "", true
	case lang.TypeSet:
		return "types:" + strings.Join(o.Names(), ","), true
	case fmt.Stringer:
		return fmt.Sprintf("%T:%s", o, o), true
	}

	return "", false
}

// WithLogger sets the logger of the build.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithOutputDir sets the directory receiving generated files. The default
// is the generated directory below the project root.
func WithOutputDir(dir string) Option {
	return func(c *config) { c.outDir = dir }
}

// WithNamespace overrides the namespace of generated classes.
func WithNamespace(ns string) Option {
	return func(c *config) { c.namespace = ns }
}

// WithJobs bounds the number of scripts transpiled concurrently.
// Values below one mean one.
func WithJobs(n int) Option {
	return func(c *config) { c.jobs = n }
}

// WithForce regenerates every script regardless of the cache.
func WithForce(force bool) Option {
	return func(c *config) { c.force = force }
}

// WithKnownTypes adds host type names that are never parsed as tags.
func WithKnownTypes(names ...string) Option {
	return func(c *config) { c.knownTypes = append(c.knownTypes, names...) }
}

// WithOracle adds a type oracle consulted for names that are neither
// builtin nor known. Its answers are memoized in the build's type cache.
func WithOracle(o lang.Oracle) Option {
	return func(c *config) { c.oracle = o }
}

// WithTypeCache shares cache between builds, e.g. successive rebuilds of
// [Watch].
func WithTypeCache(cache *lang.TypeCache) Option {
	return func(c *config) { c.cache = cache }
}

// WithDebounce sets how long [Watch] waits after the last change before
// rebuilding.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithRuntime sets the runtime member names used by generated markup code.
func WithRuntime(rt lang.Runtime) Option {
	return func(c *config) { c.runtime = rt }
}
