package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/preset/internal/preset"
)

const convertLong = `
The format of the file is detected automatically. If '--to' is not given
you will be prompted to pick the target format.

The converted file is named after the source, with any characters other
than letters, digits, '.', '_' and '-' replaced by '_', and is written
next to the source unless '--output' or '--stdout' is passed.

Only a .dng can be converted into a .dng: the settings are taken from its
embedded XMP packet and the file itself is passed through unchanged.
`

// convert returns the convert subcommand.
func convert() (*cli.Command, error) {
	var (
		file    string
		options preset.ConvertOptions
	)

	return cli.New(
		"convert",
		cli.Short("Convert a preset to another format"),
		cli.Long(convertLong),
		cli.Example("Convert to .xmp", "preset convert ./Warm.lrtemplate --to xmp"),
		cli.Example("Print the converted preset rather than writing a file", "preset convert ./Moody.xmp --to lrtemplate --stdout"),
		cli.Arg(&file, "file", "Path to the preset to convert"),
		cli.Flag(&options.Target, "to", 't', "Format to convert to (lrtemplate, xmp or dng)"),
		cli.Flag(&options.Output, "output", 'o', "Directory to write the converted preset to"),
		cli.Flag(&options.Stdout, "stdout", flag.NoShortHand, "Write the converted preset to stdout"),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := preset.New(options.Debug, cmd.Stdout(), cmd.Stderr())
			return app.Convert(ctx, file, options)
		}),
	)
}
