package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/vibe/cli/cmd"
	"github.com/ardnew/vibe/log"
	"github.com/ardnew/vibe/pkg"
)

// CLI is the top-level command-line interface for vibe.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Build cmd.Build `cmd:"" default:"withargs" help:"Transpile every script of a project"`
	Watch cmd.Watch `cmd:""                    help:"Rebuild a project whenever its scripts change"`
	Clean cmd.Clean `cmd:""                    help:"Remove the generated files and cache of a project"`
	Gen   cmd.Gen   `cmd:""                    help:"Transpile scripts to stdout"`
	Tree  cmd.Tree  `cmd:""                    help:"Print the markup tree of scripts"`
	Repl  cmd.Repl  `cmd:""                    help:"Start an interactive transpiler session"`
	Init  cmd.Init  `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the vibe CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + configExt)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
	}.
		CloneWith(cmd.Vars()).
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// reported in the requested format regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(envPrefix()),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(baseConfig), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Apply the final logger configuration, including the flags that do not
	// configure the logger while parsing.
	cli.Log.start(ctx)

	ctx = cmd.WithContext(ctx, ktx)
	ctx = log.WithContext(ctx, log.Default())

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
