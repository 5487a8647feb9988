// Package cmd implements preset's CLI.
package cmd

import (
	"go.followtheprocess.codes/cli"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const rootLong = `
preset converts Lightroom Develop presets between the three formats they
are commonly shared in:

  - .lrtemplate  the Lua table format used by Lightroom Classic 7.2 and earlier
  - .xmp         the Camera Raw settings sidecar used by everything since
  - .dng         a raw file with the settings embedded as an XMP packet

Formats are detected from the file extension first and the file content
second, so renamed files are still recognised.
`

// Build builds and returns the preset CLI.
func Build() (*cli.Command, error) {
	return cli.New(
		"preset",
		cli.Short("Convert Lightroom presets between .lrtemplate, .xmp and .dng"),
		cli.Long(rootLong),
		cli.Version(version),
		cli.Commit(commit),
		cli.BuildDate(date),
		cli.Example("Convert a preset, picking the target format interactively", "preset convert ./Warm.lrtemplate"),
		cli.Example("Convert a preset to .xmp in a specific directory", "preset convert ./Warm.lrtemplate --to xmp --output ./out"),
		cli.Example("Show which format every file in a directory is", "preset detect ./presets"),
		cli.Example("Dump the settings in a preset as YAML", "preset inspect ./Moody.xmp --format yaml"),
		cli.Example("Convert a whole library into a zip of .xmp files", "preset batch ./presets --to xmp --zip presets.zip"),
		cli.Example("Run the conversion API with a web UI", "preset serve --static ./web/dist"),
		cli.SubCommands(convert, detect, inspect, batch, serve),
	)
}
