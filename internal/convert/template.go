package convert

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.followtheprocess.codes/preset/internal/format"
	"go.followtheprocess.codes/preset/internal/settings"
)

// presetType is the value of the type field in every template we write.
const presetType = "Develop"

// assignment matches a single 'key = value' line in a .lrtemplate file.
//
//nolint:gochecknoglobals // Compiled once, regexps are safe for concurrent use
var assignment = regexp.MustCompile(`(?m)^\s*([A-Za-z0-9_]+)\s*=\s*(.+)$`)

// reservedTemplateKeys are written by the template header, settings with
// these names are dropped to avoid duplicate keys.
//
//nolint:gochecknoglobals // Read only lookup table
var reservedTemplateKeys = []string{"id", "internalName", "title", "type"}

// parseTemplate reads every 'key = value' assignment from a .lrtemplate file.
//
// Nesting is not understood, the file is scanned line by line so table
// openers like 's = {' end up as text settings too.
func parseTemplate(data []byte) (*settings.Settings, error) {
	parsed := settings.New()

	for _, match := range assignment.FindAllSubmatch(data, -1) {
		parsed.Set(string(match[1]), settings.Decode(string(match[2])))
	}

	if parsed.Len() == 0 {
		return nil, &ParseError{
			Format: format.Template,
			Reason: "preset settings could not be read from .lrtemplate file",
		}
	}

	return parsed, nil
}

// serializeTemplate renders settings as a .lrtemplate Develop preset.
func serializeTemplate(s *settings.Settings, title string, now time.Time) []byte {
	builder := &strings.Builder{}

	encodedTitle := encodeTemplateValue(settings.Text(title))

	builder.WriteString("s = {\n")
	fmt.Fprintf(builder, "  id = \"%d\",\n", now.Unix())
	fmt.Fprintf(builder, "  internalName = %s,\n", encodedTitle)
	fmt.Fprintf(builder, "  title = %s,\n", encodedTitle)
	fmt.Fprintf(builder, "  type = %q,\n", presetType)

	for key, value := range s.All() {
		if slices.Contains(reservedTemplateKeys, key) {
			continue
		}

		fmt.Fprintf(builder, "  %s = %s,\n", key, encodeTemplateValue(value))
	}

	builder.WriteString("}\n")

	return []byte(builder.String())
}

// encodeTemplateValue renders a single value as a .lrtemplate literal.
//
// Integers are bare digits, other numbers are fixed to 6 decimal places with
// trailing zeros removed, so anything beyond 6 decimal places is rounded away
// (see [fixed6]).
// Booleans are bare true/false and everything else is double quoted.
func encodeTemplateValue(value settings.Value) string {
	switch value.Kind() {
	case settings.KindNumber:
		if value.IsInteger() {
			return value.String()
		}

		fixed := strings.TrimRight(fixed6(value.Number()), "0")

		return strings.TrimSuffix(fixed, ".")
	case settings.KindBool:
		return value.String()
	default:
		return `"` + strings.ReplaceAll(value.Text(), `"`, `\"`) + `"`
	}
}

// fixed6 formats v with exactly 6 decimal places.
//
// Values exactly halfway between two 6 place decimals round away from zero,
// so 0.0078125 is 0.007813. [strconv.FormatFloat] alone would round those to
// even and give 0.007812.
func fixed6(v float64) string {
	fixed := strconv.FormatFloat(v, 'f', 6, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fixed
	}

	// 53 mantissa bits times 1e6 (20 bits) is exact at this precision
	scaled := new(big.Float).SetPrec(128).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, big.NewFloat(1e6))

	whole, _ := scaled.Int(nil)
	remainder := new(big.Float).SetPrec(128).Sub(scaled, new(big.Float).SetInt(whole))

	if remainder.Cmp(big.NewFloat(0.5)) != 0 {
		return fixed
	}

	digits := whole.Add(whole, big.NewInt(1)).String()
	if len(digits) < 7 {
		digits = strings.Repeat("0", 7-len(digits)) + digits
	}

	fixed = digits[:len(digits)-6] + "." + digits[len(digits)-6:]
	if v < 0 {
		fixed = "-" + fixed
	}

	return fixed
}
