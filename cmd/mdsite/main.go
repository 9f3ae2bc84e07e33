package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdsite/cmd/mdsite/commands"
	siterrors "git.home.luguber.info/inful/mdsite/internal/errors"
	"git.home.luguber.info/inful/mdsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("mdsite"),
		kong.Description("Build a static site from a directory of Markdown files."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	if err := ctx.Run(&cli.Globals); err != nil {
		adapter := siterrors.NewCLIErrorAdapter(cli.LogLevel == "debug", nil)
		adapter.HandleError(err)
	}
}
