package convert

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"go.followtheprocess.codes/preset/internal/format"
	"go.followtheprocess.codes/preset/internal/settings"
)

//go:embed templates/xmp.xml.tmpl
var xmpTempl string

// crsAttribute matches a single Camera Raw Settings attribute e.g. crs:Exposure2012="0.50".
//
// Attributes are matched anywhere in the document regardless of the element
// structure around them, the XML is never parsed.
//
//nolint:gochecknoglobals // Compiled once, regexps are safe for concurrent use
var crsAttribute = regexp.MustCompile(`\bcrs:([A-Za-z0-9_]+)="([^"]*)"`)

// xmlEscaper escapes text for use inside a double quoted XML attribute.
//
//nolint:gochecknoglobals // Replacers are safe for concurrent use and only need building once
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"<", "&lt;",
	">", "&gt;",
)

// xmlUnescaper reverses xmlEscaper, plus &apos; which other tools emit.
//
//nolint:gochecknoglobals // Same as above
var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// xmpFunctions are custom template functions available in xmpTemplate.
//
//nolint:gochecknoglobals // This has to be here
var xmpFunctions = template.FuncMap{
	"bom":      func() string { return "\ufeff" },
	"escape":   xmlEscaper.Replace,
	"xmpValue": encodeXMPValue,
}

// xmpTemplate is the parsed XMP packet text/template.
//
//nolint:gochecknoglobals // Having the template as a global means it's parsed only once
var xmpTemplate = template.Must(template.New("xmp").Funcs(xmpFunctions).Parse(xmpTempl))

// parseXMP reads every crs: attribute out of an XMP document.
func parseXMP(data []byte) (*settings.Settings, error) {
	parsed := settings.New()

	for _, match := range crsAttribute.FindAllSubmatch(data, -1) {
		parsed.Set(string(match[1]), decodeXMPValue(string(match[2])))
	}

	if parsed.Len() == 0 {
		return nil, &ParseError{
			Format: format.MetadataXML,
			Reason: "no Camera Raw settings found in .xmp data",
		}
	}

	return parsed, nil
}

// serializeXMP renders settings as an XMP packet with one crs: attribute per setting.
func serializeXMP(s *settings.Settings, title string) ([]byte, error) {
	data := struct {
		Settings *settings.Settings
		Title    string
	}{
		Settings: s,
		Title:    title,
	}

	buf := &bytes.Buffer{}
	if err := xmpTemplate.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("could not render XMP template: %w", err)
	}

	return buf.Bytes(), nil
}

// decodeXMPValue decodes a raw attribute value.
//
// XMP writes booleans capitalised, so True and False are booleans here on top
// of the usual [settings.Decode] rules. This keeps booleans intact across an
// XMP round trip.
func decodeXMPValue(raw string) settings.Value {
	text := xmlUnescaper.Replace(raw)
	switch strings.TrimSpace(text) {
	case "True":
		return settings.Bool(true)
	case "False":
		return settings.Bool(false)
	default:
		return settings.Decode(text)
	}
}

// encodeXMPValue renders a single value as XMP attribute text.
//
// Booleans are capitalised (True/False) as Camera Raw writes them, everything
// else is rendered as text and escaped. Numbers are never written in exponent
// form, 1e-7 becomes 0.0000001.
func encodeXMPValue(value settings.Value) string {
	if value.Kind() == settings.KindBool {
		if value.Bool() {
			return "True"
		}

		return "False"
	}

	return xmlEscaper.Replace(value.String())
}
