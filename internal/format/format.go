// Package format defines the preset file formats understood by preset and
// implements detection of a file's format from its name and content.
package format

import (
	"fmt"
	"strings"
)

// Format is a preset file format.
type Format int //nolint:recvcheck // UnmarshalText needs a pointer receiver

// Preset formats.
const (
	// Unsupported is returned when a file is not in any known format.
	Unsupported Format = iota

	// Template is the Lua-table like Lightroom preset format (.lrtemplate).
	Template

	// MetadataXML is the XMP format carrying Camera Raw Settings as crs: attributes (.xmp).
	MetadataXML

	// BinaryContainer is a DNG image with an embedded XMP packet (.dng).
	BinaryContainer
)

// All returns every supported format, in a stable order.
func All() []Format {
	return []Format{Template, MetadataXML, BinaryContainer}
}

// Parse parses a format tag as given on the command line, in a config file or
// in an HTTP form field.
//
// The conceptual name ("template", "metadata-xml", "binary-container") or the
// file extension ("lrtemplate", "xmp", "dng") are both accepted, case insensitive
// and with an optional leading ".".
func Parse(tag string) (Format, error) {
	normalised := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "."))
	switch normalised {
	case "template", "lrtemplate":
		return Template, nil
	case "metadata-xml", "xmp":
		return MetadataXML, nil
	case "binary-container", "dng":
		return BinaryContainer, nil
	default:
		return Unsupported, fmt.Errorf("unsupported format %q, allowed values are 'lrtemplate', 'xmp', 'dng'", tag)
	}
}

// String implements [fmt.Stringer] for [Format], returning its
// canonical file extension without the leading dot.
func (f Format) String() string {
	if f == Unsupported || !f.valid() {
		return "unsupported"
	}

	return f.Extension()
}

// Name returns the conceptual name of the format e.g. "metadata-xml".
func (f Format) Name() string {
	switch f {
	case Template:
		return "template"
	case MetadataXML:
		return "metadata-xml"
	case BinaryContainer:
		return "binary-container"
	default:
		return "unsupported"
	}
}

// Extension returns the canonical file extension for the format, without
// the leading dot, or "" for [Unsupported].
func (f Format) Extension() string {
	switch f {
	case Template:
		return "lrtemplate"
	case MetadataXML:
		return "xmp"
	case BinaryContainer:
		return "dng"
	default:
		return ""
	}
}

// MimeType returns the mime type of files in this format.
func (f Format) MimeType() string {
	switch f {
	case Template:
		return "text/plain"
	case MetadataXML:
		return "application/rdf+xml"
	case BinaryContainer:
		return "image/x-adobe-dng"
	default:
		return "application/octet-stream"
	}
}

// Description returns a short human readable description of the format.
func (f Format) Description() string {
	switch f {
	case Template:
		return "Lightroom Classic template (.lrtemplate)"
	case MetadataXML:
		return "XMP preset (.xmp)"
	case BinaryContainer:
		return "DNG with embedded XMP (.dng)"
	default:
		return "Unsupported"
	}
}

// MarshalText implements [encoding.TextMarshaler] for [Format].
func (f Format) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("cannot marshal invalid format %d", int(f))
	}

	return []byte(f.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler] for [Format].
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*f = parsed

	return nil
}

// valid reports whether f is one of the declared formats, including [Unsupported].
func (f Format) valid() bool {
	return f >= Unsupported && f <= BinaryContainer
}
