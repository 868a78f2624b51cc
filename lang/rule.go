package lang

import (
	"context"
	"log/slog"
	"time"

	"github.com/ardnew/vibe/log"
)

// Rule is one text-to-text rewrite pass.
type Rule interface {
	Name() string
	Apply(ctx context.Context, text string) (string, error)
}

// RuleFunc adapts an ordinary function to the [Rule] interface.
type RuleFunc struct {
	Label string
	Func  func(ctx context.Context, text string) (string, error)
}

// Name implements [Rule].
func (r RuleFunc) Name() string { return r.Label }

// Apply implements [Rule].
func (r RuleFunc) Apply(ctx context.Context, text string) (string, error) {
	return r.Func(ctx, text)
}

// MarkupRuleName names the rule returned by [MarkupRule].
const MarkupRuleName = "markup"

// MarkupRule returns the rule that parses embedded markup and replaces it
// with generated code.
func MarkupRule(opts ...Option) Rule {
	return RuleFunc{
		Label: MarkupRuleName,
		Func: func(ctx context.Context, text string) (string, error) {
			return Generate(ctx, ParseMarkup(ctx, text, opts...), opts...)
		},
	}
}

// Pipeline runs an ordered list of rules, feeding the output of each rule to
// the next.
type Pipeline struct {
	rules  []Rule
	logger log.Logger
}

// NewPipeline returns an empty pipeline. Only [WithLogger] is used from
// opts.
func NewPipeline(opts ...Option) *Pipeline {
	return &Pipeline{logger: makeConfig(opts...).logger}
}

// Add appends rules to p and returns p.
func (p *Pipeline) Add(rules ...Rule) *Pipeline {
	for _, r := range rules {
		if r != nil {
			p.rules = append(p.rules, r)
		}
	}

	return p
}

// Rules returns the names of the rules in p, in order.
func (p *Pipeline) Rules() []string {
	names := make([]string, len(p.rules))
	for i, r := range p.rules {
		names[i] = r.Name()
	}

	return names
}

// Run applies every rule of p to text in order.
//
// The rules see a context from which the running pipeline can be recovered,
// so a rule may transpile a nested span with the same rules.
func (p *Pipeline) Run(ctx context.Context, text string) (string, error) {
	ctx = withPipeline(ctx, p)

	for _, r := range p.rules {
		if err := context.Cause(ctx); err != nil {
			return "", err
		}

		start := time.Now()

		out, err := r.Apply(ctx, text)
		if err != nil {
			return "", ErrRule.Wrap(err).With(slog.String("rule", r.Name()))
		}

		p.logger.TraceContext(ctx, "rule applied",
			slog.String("rule", r.Name()),
			slog.Int("in_bytes", len(text)),
			slog.Int("out_bytes", len(out)),
			slog.Duration("elapsed", time.Since(start)),
		)

		text = out
	}

	return text, nil
}

type pipelineKey struct{}

func withPipeline(ctx context.Context, p *Pipeline) context.Context {
	if pipelineFrom(ctx) == p {
		return ctx
	}

	return context.WithValue(ctx, pipelineKey{}, p)
}

func pipelineFrom(ctx context.Context) *Pipeline {
	if ctx == nil {
		return nil
	}

	p, _ := ctx.Value(pipelineKey{}).(*Pipeline)

	return p
}
