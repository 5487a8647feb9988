// Package convert implements the translation of presets between the
// .lrtemplate, .xmp and .dng formats.
//
// Every conversion goes through the canonical [settings.Settings] representation:
// the source bytes are parsed into settings which are then serialised into the
// target format. Conversions are pure functions of their input and the clock,
// there is no shared state so a [Converter] may be used concurrently.
package convert

import (
	"regexp"
	"strings"
	"time"

	"go.followtheprocess.codes/preset/internal/format"
	"go.followtheprocess.codes/preset/internal/settings"
)

// defaultTitle is used as the preset title when none can be derived from the file name.
const defaultTitle = "Converted Preset"

// unsafeNameChars matches everything we replace in output file names.
//
//nolint:gochecknoglobals // Compiled once, regexps are safe for concurrent use
var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Request is a single conversion to perform.
type Request struct {
	// Name is the name of the source file, used to derive the output name
	// and the preset title. It may include a path.
	Name string

	// Data is the raw content of the source file.
	Data []byte

	// Source is the format of Data.
	Source format.Format

	// Target is the format to convert to.
	Target format.Format
}

// Result is the output of a successful conversion.
type Result struct {
	// Name is the derived output file name e.g. "My_Preset.xmp".
	Name string

	// MimeType is the mime type of Data.
	MimeType string

	// Data is the converted file content.
	Data []byte

	// Count is the number of settings that were read from the source.
	Count int
}

// Option is a functional option for configuring a [Converter].
type Option func(*Converter)

// WithClock sets the function the [Converter] uses to get the current time, only
// used to stamp the id of generated .lrtemplate files.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// Converter converts presets between formats.
type Converter struct {
	now func() time.Time // Source of the current time
}

// New returns a new [Converter] configured with options.
func New(options ...Option) Converter {
	converter := Converter{
		now: time.Now,
	}

	for _, option := range options {
		option(&converter)
	}

	return converter
}

// Convert converts a preset using a [Converter] with default options.
func Convert(request Request) (Result, error) {
	return New().Convert(request)
}

// Convert parses the request data in its source format and serialises it into
// the target format.
//
// The returned error is one of [*UnsupportedFormatError], [*ParseError] or
// [*ConversionError], nothing is returned alongside an error.
func (c Converter) Convert(request Request) (Result, error) {
	parsed, err := Parse(request.Source, request.Data)
	if err != nil {
		return Result{}, err
	}

	data, mimeType, err := c.Serialize(request.Target, parsed, Title(request.Name), request.Source, request.Data)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Name:     OutputName(request.Name, request.Target),
		MimeType: mimeType,
		Data:     data,
		Count:    parsed.Len(),
	}, nil
}

// Parse parses data in the given format into [settings.Settings].
//
// It returns a [*ParseError] if no settings at all could be recovered.
func Parse(from format.Format, data []byte) (*settings.Settings, error) {
	switch from {
	case format.Template:
		return parseTemplate(data)
	case format.MetadataXML:
		return parseXMP(data)
	case format.BinaryContainer:
		return parseDNG(data)
	default:
		return nil, &UnsupportedFormatError{Role: "input", Format: from}
	}
}

// Serialize renders s in the target format, returning the encoded bytes and their
// mime type.
//
// The source format and source data are only used for DNG output, which
// is a pass through of the original file and so requires a DNG source.
func (c Converter) Serialize(
	to format.Format,
	s *settings.Settings,
	title string,
	from format.Format,
	source []byte,
) ([]byte, string, error) {
	switch to {
	case format.Template:
		return serializeTemplate(s, title, c.now()), to.MimeType(), nil
	case format.MetadataXML:
		data, err := serializeXMP(s, title)
		if err != nil {
			return nil, "", err
		}

		return data, to.MimeType(), nil
	case format.BinaryContainer:
		if from != format.BinaryContainer {
			return nil, "", &ConversionError{
				Source: from,
				Target: to,
				Reason: "converting into .dng requires a .dng source file",
			}
		}

		return source, to.MimeType(), nil
	default:
		return nil, "", &UnsupportedFormatError{Role: "output", Format: to}
	}
}

// OutputName derives the name of the converted file from the source file name.
//
// Any directory is dropped, every character other than letters, digits, '.', '_'
// and '-' is replaced with '_' and the extension is swapped for the target's.
func OutputName(source string, to format.Format) string {
	name := unsafeNameChars.ReplaceAllString(format.Base(source), "_")
	if name == "" {
		name = "preset"
	}

	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		name = name[:dot]
	}

	return name + "." + to.Extension()
}

// Title derives a preset title from the source file name: the final path
// element without its extension.
//
// "presets/My Preset!!.lrtemplate" gives "My Preset!!". Older versions of the
// web converter used the uploaded name as is, extension and all.
func Title(source string) string {
	title := format.Base(source)
	if dot := strings.LastIndexByte(title, '.'); dot > 0 {
		title = title[:dot]
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return defaultTitle
	}

	return title
}
