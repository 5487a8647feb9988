package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/preset/internal/preset"
)

const detectLong = `
The path argument may be a directory or a file.

If it is a file, its format alone is reported. If it is a directory it
is scanned recursively (skipping hidden directories) and the format of
every file found is reported, including files that are not presets.
`

// detect returns the detect subcommand.
func detect() (*cli.Command, error) {
	var options preset.DetectOptions

	return cli.New(
		"detect",
		cli.Short("Report the preset format of files"),
		cli.Long(detectLong),
		cli.Arg(&options.Path, "path", "Path to detect, may be directory or file", cli.ArgDefault(".")),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(_ context.Context, cmd *cli.Command) error {
			app := preset.New(options.Debug, cmd.Stdout(), cmd.Stderr())
			return app.Detect(options)
		}),
	)
}
