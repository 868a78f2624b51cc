package cmd

import (
	"log/slog"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/project"
)

// typeFlags decide which names are host types, and so never parsed as tags.
// Every command that parses scripts embeds them, so a script parses the
// same way under each.
type typeFlags struct {
	KnownType []string `help:"Host type names never parsed as tags (also ${knownTypesEnv})" short:"t" sep:","`
	Oracle    string   `help:"Expression deciding if 'name' is a host type"`
}

// knownTypes returns the known type names of the flags and the environment.
func (f typeFlags) knownTypes() []string {
	return project.KnownTypesFromEnv(f.KnownType...)
}

// exprOracle compiles the oracle expression. It returns nil if none is set.
func (f typeFlags) exprOracle() (*lang.ExprOracle, error) {
	if f.Oracle == "" {
		return nil, nil //nolint:nilnil
	}

	oracle, err := lang.NewExprOracle(f.Oracle)
	if err != nil {
		return nil, ErrOracle.Wrap(err).With(slog.String("expr", f.Oracle))
	}

	return oracle, nil
}

// typeOracle returns the oracle of a single-script command: the builtin
// types, the known types and the oracle expression.
func (f typeFlags) typeOracle() (lang.Oracle, error) {
	oracles := []lang.Oracle{lang.BuiltinTypes, lang.NewTypeSet(f.knownTypes()...)}

	expr, err := f.exprOracle()
	if err != nil {
		return nil, err
	}

	if expr != nil {
		oracles = append(oracles, expr)
	}

	return lang.AnyOracle(oracles...), nil
}
