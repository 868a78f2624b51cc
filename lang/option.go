package lang

import "github.com/ardnew/vibe/log"

// Runtime names the host-language members that generated markup code calls.
type Runtime struct {
	// Node is the type constructed for primitive tags.
	Node string `json:"node"   yaml:"node"`
	// Stage is the method staging one attribute on a node.
	Stage string `json:"stage"  yaml:"stage"`
	// Append is the method appending a child or text fragment to a node.
	Append string `json:"append" yaml:"append"`
}

// DefaultRuntime is the runtime used unless [WithRuntime] is given.
var DefaultRuntime = Runtime{
	Node:   "CsxNode",
	Stage:  "StageAtt",
	Append: "Append",
}

// Platform describes target-platform settings read from the build-project
// descriptor.
type Platform struct {
	Maui          bool   `json:"maui"           yaml:"maui"`
	RootNamespace string `json:"root_namespace" yaml:"root_namespace"`
}

// DefaultNamespace wraps generated classes unless another is configured.
const DefaultNamespace = "GeneratedScripts"

// config holds the options shared by the parser, generator, and transpiler.
type config struct {
	logger    log.Logger
	oracle    Oracle
	rejectors []TagPredicate
	runtime   Runtime
	namespace string
	platform  Platform
}

// Option configures parsing, generation, or transpilation.
type Option func(*config)

func makeConfig(opts ...Option) config {
	cfg := config{
		oracle:  BuiltinTypes,
		runtime: DefaultRuntime,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.rejectors == nil {
		cfg.rejectors = DefaultRejectors(cfg.oracle)
	}

	return cfg
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithOracle sets the type oracle consulted by the default tag rejectors.
// The default oracle is [BuiltinTypes].
func WithOracle(oracle Oracle) Option {
	return func(c *config) {
		if oracle == nil {
			oracle = NoTypes
		}

		c.oracle = oracle
	}
}

// WithTagRejectors replaces the predicates that reject a candidate tag name.
// A name is rejected when any predicate returns true.
func WithTagRejectors(preds ...TagPredicate) Option {
	return func(c *config) {
		c.rejectors = append([]TagPredicate{}, preds...)
	}
}

// WithRuntime sets the runtime member names used by generated code.
// Empty fields keep their default.
func WithRuntime(rt Runtime) Option {
	return func(c *config) {
		if rt.Node != "" {
			c.runtime.Node = rt.Node
		}

		if rt.Stage != "" {
			c.runtime.Stage = rt.Stage
		}

		if rt.Append != "" {
			c.runtime.Append = rt.Append
		}
	}
}

// WithNamespace sets the namespace of generated classes.
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithPlatform sets the target-platform settings.
func WithPlatform(p Platform) Option {
	return func(c *config) {
		c.platform = p
	}
}
