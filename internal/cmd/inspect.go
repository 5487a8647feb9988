package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/preset/internal/preset"
)

// inspect returns the inspect subcommand.
func inspect() (*cli.Command, error) {
	var (
		file    string
		options preset.InspectOptions
	)

	return cli.New(
		"inspect",
		cli.Short("Dump the settings in a preset"),
		cli.Example("Dump as JSON", "preset inspect ./Warm.lrtemplate"),
		cli.Example("Dump as TOML", "preset inspect ./IMG_0001.dng --format toml"),
		cli.Arg(&file, "file", "Path to the preset to inspect"),
		cli.Flag(
			&options.Format,
			"format",
			'f',
			"Output format (json, yaml or toml)",
			cli.FlagDefault("json"),
		),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(_ context.Context, cmd *cli.Command) error {
			app := preset.New(options.Debug, cmd.Stdout(), cmd.Stderr())
			return app.Inspect(file, options)
		}),
	)
}
