package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/lesswatch/cmd/lesswatch/commands"
	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("lesswatch"),
		kong.Description("Incremental, dependency-aware LESS compiler with output mirroring."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := ctx.Run(commands.DefaultGlobal(), &cli)
	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
