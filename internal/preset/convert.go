package preset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/preset/internal/convert"
	"go.followtheprocess.codes/preset/internal/format"
)

// ConvertOptions are the options passed to the convert subcommand.
type ConvertOptions struct {
	// Target is the format to convert to, if empty the user is prompted
	// to pick one.
	Target string

	// Output is the directory the converted file is written to, defaults
	// to the directory of the source file.
	Output string

	// Stdout writes the converted file to stdout rather than a file.
	Stdout bool

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the ConvertOptions is valid, returning a non-nil
// error if it's not.
func (c ConvertOptions) Validate() error {
	if c.Target != "" {
		if _, err := format.Parse(c.Target); err != nil {
			return fmt.Errorf("invalid option for --to: %w", err)
		}
	}

	if c.Stdout && c.Output != "" {
		return errors.New("--stdout and --output are mutually exclusive")
	}

	return nil
}

// Convert implements the convert subcommand.
func (p Preset) Convert(ctx context.Context, file string, options ConvertOptions) error {
	logger := p.logger.Prefixed("convert").With(slog.String("file", file))

	logger.Debug("Convert configuration", slog.String("options", fmt.Sprintf("%+v", options)))

	if err := options.Validate(); err != nil {
		return err
	}

	data, source, err := readPreset(file)
	if err != nil {
		return err
	}

	logger.Debug("Detected source format", slog.String("format", source.String()))

	var target format.Format
	if options.Target == "" {
		target, err = pickTarget(ctx, source)
		if err != nil {
			return err
		}
	} else {
		// Already validated
		target, _ = format.Parse(options.Target)
	}

	start := time.Now()

	result, err := p.converter.Convert(convert.Request{
		Name:   file,
		Data:   data,
		Source: source,
		Target: target,
	})
	if err != nil {
		return fmt.Errorf("could not convert %s: %w", file, err)
	}

	logger.Debug(
		"Converted preset",
		slog.String("target", target.String()),
		slog.Int("settings", result.Count),
		slog.Duration("took", time.Since(start)),
	)

	if options.Stdout {
		if _, err := p.stdout.Write(result.Data); err != nil {
			return fmt.Errorf("could not write to stdout: %w", err)
		}

		return nil
	}

	dir := options.Output
	if dir == "" {
		dir = filepath.Dir(file)
	}

	out := filepath.Join(dir, result.Name)

	if err := checkOverwrite(file, out); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	if err := os.WriteFile(out, result.Data, 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", out, err)
	}

	msg.Fsuccess(p.stdout, "Converted %s to %s (%d settings)", file, out, result.Count)

	return nil
}

// checkOverwrite returns an error if writing out would clobber the source file.
func checkOverwrite(source, out string) error {
	sourceAbs, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("could not resolve %s: %w", source, err)
	}

	outAbs, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("could not resolve %s: %w", out, err)
	}

	if sourceAbs == outAbs {
		return fmt.Errorf("converting %s would overwrite it, pass --output to write somewhere else", source)
	}

	return nil
}

// pickTarget asks the user which format to convert a source format into.
func pickTarget(ctx context.Context, source format.Format) (format.Format, error) {
	var options []huh.Option[string]

	for _, candidate := range format.All() {
		if candidate == source {
			continue
		}

		// Nothing but a DNG can become a DNG
		if candidate == format.BinaryContainer && source != format.BinaryContainer {
			continue
		}

		options = append(options, huh.NewOption(candidate.Description(), candidate.Extension()))
	}

	var choice string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Convert .%s to", source.Extension())).
				Options(options...).
				Value(&choice),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return format.Unsupported, fmt.Errorf("could not prompt for a target format, pass --to instead: %w", err)
	}

	return format.Parse(choice)
}
