package cli

import (
	"context"
	"slices"

	"github.com/alecthomas/kong"

	"github.com/ardnew/macro/cli/cmd"
	"github.com/ardnew/macro/pkg"
)

// CLI is the top-level command-line interface for macro.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Run    cmd.Run    `cmd:"" default:"withargs" help:"Run a script"`
	Check  cmd.Check  `cmd:""                    help:"Report static analysis violations"`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format a script"`
	AST    cmd.AST    `cmd:""                    help:"Print the syntax tree of a script" name:"ast"`
	Tokens cmd.Tokens `cmd:""                    help:"Print the tokens of a script"`
	REPL   cmd.REPL   `cmd:""                    help:"Start an interactive session"       name:"repl"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`

	Version cmd.Version `cmd:"" help:"Print version"`
}

// Run executes the macro CLI with the given context and arguments.
// The exit function is called with the appropriate exit code when kong
// terminates early, e.g. after printing help.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: configPath(baseConfig),
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before kong reports any parse errors.
	cli.Log.scan(args)

	groups := slices.DeleteFunc(
		[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		func(g kong.Group) bool { return g.Key == "" },
	)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(groups),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath("config.json")),
		kong.Configuration(resolve(ctx), configPath(baseConfig)),
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
	ktx.BindTo(ctx, (*context.Context)(nil))

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
