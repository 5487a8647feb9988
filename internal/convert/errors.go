package convert

import (
	"fmt"

	"go.followtheprocess.codes/preset/internal/format"
)

// UnsupportedFormatError is returned when a conversion is asked to read or
// write a format it does not know about.
type UnsupportedFormatError struct {
	// Role is either "input" or "output".
	Role string

	// Format is the offending format.
	Format format.Format
}

// Error implements the error interface for [UnsupportedFormatError].
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported %s format", e.Role)
}

// ParseError is returned when no settings could be recovered from a source file.
type ParseError struct {
	// Reason is the human readable explanation shown to users.
	Reason string

	// Format is the format the source was being parsed as.
	Format format.Format
}

// Error implements the error interface for [ParseError].
func (e *ParseError) Error() string {
	return e.Reason
}

// ConversionError is returned when the target format cannot be produced
// from the source format.
type ConversionError struct {
	// Reason is the human readable explanation shown to users.
	Reason string

	// Source is the format being converted from.
	Source format.Format

	// Target is the format being converted to.
	Target format.Format
}

// Error implements the error interface for [ConversionError].
func (e *ConversionError) Error() string {
	return e.Reason
}
