package format

import (
	"regexp"
	"strings"
)

// SniffLimit is the number of leading bytes inspected when detecting a
// format from file content.
const SniffLimit = 1500

//nolint:gochecknoglobals // Compiled once, regexps are safe for concurrent use
var (
	// xmpMarker matches content that looks like an XMP packet or Camera Raw settings.
	xmpMarker = regexp.MustCompile(`(?i)x:xmpmeta|<rdf:RDF|crs:`)

	// templateMarker matches content that looks like a Lightroom template.
	templateMarker = regexp.MustCompile(`(?i)\bProcessVersion\b|\bLrPreset\b|\btitle\s*=\s*"`)
)

// Detect determines the [Format] of a file from its name and content.
//
// A recognised file extension is authoritative and the content is never
// looked at. Otherwise the first 1500 bytes of data are sniffed for XMP markers
// and then for template markers, in that order. DNG files can only be identified
// by extension.
//
// If neither approach identifies the file, [Unsupported] is returned.
func Detect(name string, data []byte) Format {
	switch Ext(name) {
	case "lrtemplate":
		return Template
	case "xmp":
		return MetadataXML
	case "dng":
		return BinaryContainer
	}

	prefix := data[:min(len(data), SniffLimit)]

	switch {
	case xmpMarker.Match(prefix):
		return MetadataXML
	case templateMarker.Match(prefix):
		return Template
	default:
		return Unsupported
	}
}

// Ext returns the lower cased extension of the final path element of name, without
// the leading dot.
//
// Names without a dot, and dot files such as ".xmp", have no extension.
func Ext(name string) string {
	base := Base(name)

	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return ""
	}

	return strings.ToLower(base[dot+1:])
}

// Base returns the final '/' separated element of name, ignoring any
// trailing slashes. Unlike [path.Base] it returns "" rather than "." for an
// empty name.
func Base(name string) string {
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	return name
}
