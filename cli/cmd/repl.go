package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/vibe/cli/cmd/repl"
	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/log"
)

// Repl starts an interactive transpiler session.
type Repl struct {
	typeFlags `embed:""`

	Source    string `arg:"" help:"Script file loaded into the session" optional:"" type:"existingfile"`
	Namespace string `       help:"${namespaceHelp}"                     short:"n"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	logger := log.FromContext(ctx)

	oracle, err := r.exprOracle()
	if err != nil {
		return err
	}

	var extra lang.Oracle
	if oracle != nil {
		extra = oracle
	}

	session := repl.NewSession(logger, extra, r.knownTypes(), lang.WithNamespace(r.Namespace))

	if r.Source != "" {
		text, err := source{Path: r.Source}.ReadAll()
		if err != nil {
			return lang.ErrReadInput.Wrap(err).With(slog.String("source", r.Source))
		}

		session.SetSource(string(text))
	}

	return repl.Run(ctx, session, ktx.Model.Vars()[CacheIdentifier], logger)
}
