package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hbs/cli/cmd"
	"github.com/ardnew/hbs/cli/cmd/repl"
	"github.com/ardnew/hbs/pkg"
)

// CLI is the top-level command-line interface of hbs.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print the version and exit." short:"V"`

	Compile cmd.Compile `cmd:"" help:"Compile a template and print the result."`
	Gen     cmd.Gen     `cmd:"" help:"Generate Go source from a template manifest."`
	Init    cmd.Init    `cmd:"" help:"Write a configuration file with the current flags."`
	Repl    repl.Repl   `cmd:"" help:"Compile templates interactively."`
}

// Run parses args and runs the selected command.
// The exit function is called by kong when parsing requests termination.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	var cli CLI

	if err := mkdirAll(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure logging before kong reports any parse errors.
	cli.Log.scan(args)

	vars := kong.Vars{
		"version":            pkg.Version,
		cmd.ConfigIdentifier: configPath(),
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.DefaultEnvars(pkg.EnvPrefix()),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(resolve, configPath()),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
