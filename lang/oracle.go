package lang

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Oracle reports whether an identifier names a known type of the host
// language. The markup parser consults it to tell a generic type argument
// such as List<int> apart from a markup tag.
//
// Implementations must be total and free of side effects visible to the
// parser.
type Oracle interface {
	Exists(name string) bool
}

// OracleFunc adapts an ordinary function to the [Oracle] interface.
type OracleFunc func(name string) bool

// Exists implements [Oracle].
func (f OracleFunc) Exists(name string) bool { return f(name) }

// NoTypes is an [Oracle] that knows no types.
var NoTypes Oracle = OracleFunc(func(string) bool { return false })

// TypeSet is an [Oracle] backed by an explicit set of type names.
type TypeSet map[string]struct{}

// NewTypeSet returns a TypeSet containing names.
func NewTypeSet(names ...string) TypeSet {
	s := make(TypeSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}

	return s
}

// Exists implements [Oracle].
func (s TypeSet) Exists(name string) bool {
	_, ok := s[name]

	return ok
}

// Names returns the type names in s in sorted order.
func (s TypeSet) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// BuiltinTypes knows the host language's keyword types.
var BuiltinTypes = NewTypeSet(
	"bool", "byte", "sbyte", "char", "decimal", "double", "float",
	"int", "uint", "nint", "nuint", "long", "ulong", "short", "ushort",
	"object", "string", "dynamic", "void", "var",
)

// AnyOracle returns an [Oracle] that reports a name as known when any of
// oracles does. Nil oracles are skipped.
func AnyOracle(oracles ...Oracle) Oracle {
	return OracleFunc(func(name string) bool {
		for _, o := range oracles {
			if o != nil && o.Exists(name) {
				return true
			}
		}

		return false
	})
}

// Resolver looks up a type name in an external type system, such as the
// assemblies referenced by a project. A non-nil error means the lookup
// itself failed (for example, an assembly could not be loaded).
type Resolver interface {
	Resolve(name string) (bool, error)
}

// ResolverFunc adapts an ordinary function to the [Resolver] interface.
type ResolverFunc func(name string) (bool, error)

// Resolve implements [Resolver].
func (f ResolverFunc) Resolve(name string) (bool, error) { return f(name) }

// TypeCache memoizes type lookups, including failed ones. It is safe for
// concurrent use and may be shared by every file of a project build.
type TypeCache struct {
	mu     sync.RWMutex
	known  map[string]bool
	failed map[string]error
}

// NewTypeCache returns an empty TypeCache.
func NewTypeCache() *TypeCache {
	return &TypeCache{
		known:  make(map[string]bool),
		failed: make(map[string]error),
	}
}

func (c *TypeCache) load(name string) (known, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	known, ok = c.known[name]

	return known, ok
}

func (c *TypeCache) store(name string, known bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.known[name] = known

	if err != nil {
		c.failed[name] = err
	}
}

// Len returns the number of cached names.
func (c *TypeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.known)
}

// Failed returns the names whose lookup failed, in sorted order.
func (c *TypeCache) Failed() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Sorted(maps.Keys(c.failed))
}

// Reset forgets every cached name.
func (c *TypeCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.known)
	clear(c.failed)
}

// CachedOracle returns an [Oracle] that answers from cache, consulting r
// only for names it has not seen. A failed lookup is cached as an unknown
// type and never reported to the caller.
//
// If cache is nil, a private cache is used.
func CachedOracle(r Resolver, cache *TypeCache, opts ...Option) Oracle {
	if cache == nil {
		cache = NewTypeCache()
	}

	cfg := makeConfig(opts...)

	return OracleFunc(func(name string) bool {
		if known, ok := cache.load(name); ok {
			return known
		}

		known, err := r.Resolve(name)
		if err != nil {
			cfg.logger.Debug("type lookup failed",
				slog.String("name", name),
				slog.Any("error", ErrOracle.Wrap(err)),
			)

			known = false
		}

		cache.store(name, known, err)

		return known
	})
}

// ExprOracle is an [Oracle] defined by a boolean expr-lang expression over
// the variable name, for example:
//
//	name endsWith "Service" || name in ["List", "Dictionary"]
type ExprOracle struct {
	source  string
	program *vm.Program
}

// exprEnv is the compile-time environment of an [ExprOracle] expression.
type exprEnv struct {
	Name string `expr:"name"`
}

// NewExprOracle compiles source into an [ExprOracle].
func NewExprOracle(source string) (*ExprOracle, error) {
	program, err := expr.Compile(source, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrOracle.Wrap(err).
			With(slog.String("source", source))
	}

	return &ExprOracle{source: source, program: program}, nil
}

// Exists implements [Oracle]. Evaluation errors count as an unknown type.
func (o *ExprOracle) Exists(name string) bool {
	out, err := expr.Run(o.program, exprEnv{Name: name})
	if err != nil {
		return false
	}

	known, ok := out.(bool)

	return ok && known
}

// String returns the expression source.
func (o *ExprOracle) String() string { return o.source }
