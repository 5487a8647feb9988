package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/preset/internal/preset"
)

const batchLong = `
Every file under the directory with a preset extension (.lrtemplate,
.xmp or .dng) is converted, hidden directories are skipped.

Converted presets are written beneath '--output' (the source directory by
default) with the directory structure recreated, or into a single zip
archive with '--zip'. Files whose converted names clash are given a
numeric suffix.

A file that fails to convert does not stop the others, the failures are
reported at the end and the command exits non-zero.
`

// batch returns the batch subcommand.
func batch() (*cli.Command, error) {
	var (
		dir     string
		options preset.BatchOptions
	)

	return cli.New(
		"batch",
		cli.Short("Convert every preset in a directory"),
		cli.Long(batchLong),
		cli.Example("Convert a library to .xmp alongside the originals", "preset batch ./presets --to xmp"),
		cli.Example("Bundle a converted library into a zip", "preset batch ./presets --to xmp --zip presets.zip"),
		cli.Arg(&dir, "dir", "Directory of presets to convert", cli.ArgDefault(".")),
		cli.Flag(&options.Target, "to", 't', "Format to convert to (lrtemplate, xmp or dng)"),
		cli.Flag(&options.Output, "output", 'o', "Directory to write the converted presets to"),
		cli.Flag(&options.Zip, "zip", flag.NoShortHand, "Write the converted presets to a zip archive"),
		cli.Flag(
			&options.Jobs,
			"jobs",
			'j',
			"Number of presets to convert concurrently",
			cli.FlagDefault(preset.DefaultJobs),
		),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := preset.New(options.Debug, cmd.Stdout(), cmd.Stderr())
			return app.Batch(ctx, dir, options)
		}),
	)
}
