package settings

import (
	"regexp"
	"strconv"
	"strings"
)

// numeric matches a complete integer or decimal literal, optionally signed
// and with an exponent.
//
//nolint:gochecknoglobals // Compiled once, regexps are safe for concurrent use
var numeric = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Decode turns a raw value as matched in a preset file into a [Value].
//
// The rules are applied in order:
//
//  1. Surrounding whitespace and a single trailing comma are removed, along
//     with any whitespace before the comma
//  2. A token wrapped in double quotes is text, the quotes are removed but no
//     escape sequences are processed
//  3. Exactly "true" or "false" is a boolean
//  4. A token that is entirely a numeric literal is a number
//  5. Anything else is the trimmed token as text
//
// So a quoted "true" or "42" stays text.
func Decode(raw string) Value {
	token := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), ","))

	if len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`) {
		return Text(token[1 : len(token)-1])
	}

	switch token {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}

	if numeric.MatchString(token) {
		number, err := strconv.ParseFloat(token, 64)
		if err == nil {
			return Number(number)
		}
	}

	return Text(token)
}
