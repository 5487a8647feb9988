package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/preset/internal/preset"
)

const serveLong = `
Serves the conversion API:

  POST /api/convert  multipart upload of 'file' and 'outputFormat'
  GET  /api/health   health check
  GET  /metrics      Prometheus metrics

Configuration is taken from the defaults, then the '--config' TOML file,
then the PORT and PRESET_STATIC_DIR environment variables and finally
the flags, later sources winning.

When a static directory is configured it is served at '/' as a single
page app, unknown paths falling back to its index.html.
`

// serve returns the serve subcommand.
func serve() (*cli.Command, error) {
	var options preset.ServeOptions

	return cli.New(
		"serve",
		cli.Short("Run the preset conversion HTTP API"),
		cli.Long(serveLong),
		cli.Example("Serve on the default port", "preset serve"),
		cli.Example("Serve a web UI on a specific address", "preset serve --addr localhost:3000 --static ./web/dist"),
		cli.Flag(&options.Config, "config", 'c', "Path to a TOML config file"),
		cli.Flag(&options.Addr, "addr", flag.NoShortHand, "Address to listen on e.g. ':8787'"),
		cli.Flag(&options.Static, "static", flag.NoShortHand, "Directory of static files to serve at '/'"),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := preset.New(options.Debug, cmd.Stdout(), cmd.Stderr())
			return app.Serve(ctx, options)
		}),
	)
}
