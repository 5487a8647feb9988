package convert

import (
	"bytes"

	"go.followtheprocess.codes/preset/internal/format"
	"go.followtheprocess.codes/preset/internal/settings"
)

// Markers delimiting the XMP packet embedded in a DNG.
const (
	xmpOpen  = "<x:xmpmeta"
	xmpClose = "</x:xmpmeta>"
)

// parseDNG finds the XMP packet embedded in a DNG and parses it.
//
// The DNG structure itself is not parsed, the packet is found by searching
// for the x:xmpmeta markers.
func parseDNG(data []byte) (*settings.Settings, error) {
	packet, ok := extractXMP(data)
	if !ok {
		return nil, &ParseError{
			Format: format.BinaryContainer,
			Reason: "no embedded XMP metadata was found in this .dng file",
		}
	}

	return parseXMP(packet)
}

// extractXMP returns the bytes from the first opening x:xmpmeta marker up to and
// including the first closing marker after it, reporting whether both were found.
func extractXMP(data []byte) ([]byte, bool) {
	start := bytes.Index(data, []byte(xmpOpen))
	if start == -1 {
		return nil, false
	}

	end := bytes.Index(data[start:], []byte(xmpClose))
	if end == -1 {
		return nil, false
	}

	return data[start : start+end+len(xmpClose)], true
}
