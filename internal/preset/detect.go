package preset

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/preset/internal/format"
)

// Styles.
const (
	// known is the style used to render a recognised format.
	known = hue.Green | hue.Bold

	// unknown is the style used to render an unsupported file.
	unknown = hue.Red | hue.Bold

	// dimmed is the style used for informational content like file paths.
	dimmed = hue.BrightBlack
)

// DetectOptions are the options passed to the detect subcommand.
type DetectOptions struct {
	// Path is the file or directory to detect.
	Path string

	// Debug enables debug logging.
	Debug bool
}

// Detect implements the detect subcommand, printing the format of the file at
// path, or of every file under it if it is a directory.
func (p Preset) Detect(options DetectOptions) error {
	logger := p.logger.Prefixed("detect").With(slog.String("path", options.Path))
	logger.Debug("Detecting path")

	paths, err := collect(options.Path, func(string) bool { return true })
	if err != nil {
		return err
	}

	logger.Debug("Collected files", slog.Int("number", len(paths)))

	for _, path := range paths {
		data, err := readPrefix(path)
		if err != nil {
			return err
		}

		detected := format.Detect(path, data)

		style := known
		if detected == format.Unsupported {
			style = unknown
		}

		fmt.Fprintf(p.stdout, "%s: %s\n", dimmed.Text(path), style.Text(detected.String()))
	}

	return nil
}

// readPrefix reads as much of the file at path as detection needs.
func readPrefix(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, format.SniffLimit))
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	return data, nil
}
