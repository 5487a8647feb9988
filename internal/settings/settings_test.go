package settings_test

import (
	"encoding/json"
	"slices"
	"testing"

	"go.followtheprocess.codes/preset/internal/settings"
	"go.followtheprocess.codes/test"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string         // Name of the test case
		raw  string         // Raw matched text
		want settings.Value // Expected decoded value
	}{
		{name: "quoted number stays text", raw: `"42"`, want: settings.Text("42")},
		{name: "bare integer", raw: "42", want: settings.Number(42)},
		{name: "bare true", raw: "true", want: settings.Bool(true)},
		{name: "bare false", raw: "false", want: settings.Bool(false)},
		{name: "bare word", raw: "foo", want: settings.Text("foo")},
		{name: "quoted true stays text", raw: `"true"`, want: settings.Text("true")},
		{name: "capitalised true is text", raw: "True", want: settings.Text("True")},
		{name: "trailing comma", raw: "10,", want: settings.Number(10)},
		{name: "quoted with trailing comma", raw: `"Test",`, want: settings.Text("Test")},
		{name: "surrounding whitespace", raw: "  0.5 , ", want: settings.Number(0.5)},
		{name: "space before comma bool", raw: "true ,", want: settings.Bool(true)},
		{name: "space before comma text", raw: `"As Shot" ,`, want: settings.Text("As Shot")},
		{name: "negative decimal", raw: "-12.25", want: settings.Number(-12.25)},
		{name: "leading dot", raw: ".5", want: settings.Number(0.5)},
		{name: "explicit plus", raw: "+3", want: settings.Number(3)},
		{name: "exponent", raw: "1e3", want: settings.Number(1000)},
		{name: "partial number is text", raw: "12abc", want: settings.Text("12abc")},
		{name: "hex is text", raw: "0x10", want: settings.Text("0x10")},
		{name: "empty", raw: "", want: settings.Text("")},
		{name: "empty quotes", raw: `""`, want: settings.Text("")},
		{name: "lone quote", raw: `"`, want: settings.Text(`"`)},
		{name: "escapes are kept", raw: `"say \"hi\""`, want: settings.Text(`say \"hi\"`)},
		{name: "table opener", raw: "{", want: settings.Text("{")},
		{name: "only one comma dropped", raw: "a,,", want: settings.Text("a,")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := settings.Decode(tt.raw)
			test.Equal(t, got, tt.want)
		})
	}
}

func TestSettingsOrder(t *testing.T) {
	s := settings.New()
	s.Set("Exposure2012", settings.Number(0.5))
	s.Set("Clarity2012", settings.Number(10))
	s.Set("WhiteBalance", settings.Text("Auto"))

	// Overwriting keeps the original position
	s.Set("Exposure2012", settings.Number(1))

	test.Equal(t, s.Len(), 3)
	test.EqualFunc(t, s.Keys(), []string{"Exposure2012", "Clarity2012", "WhiteBalance"}, slices.Equal)

	got, ok := s.Get("Exposure2012")
	test.True(t, ok)
	test.Equal(t, got, settings.Number(1))

	_, ok = s.Get("Missing")
	test.False(t, ok)

	test.True(t, s.Delete("Clarity2012"))
	test.False(t, s.Delete("Clarity2012"))
	test.EqualFunc(t, s.Keys(), []string{"Exposure2012", "WhiteBalance"}, slices.Equal)
}

func TestSettingsZeroValue(t *testing.T) {
	var s settings.Settings

	test.Equal(t, s.Len(), 0)
	s.Set("Sharpness", settings.Number(25))
	test.Equal(t, s.Len(), 1)
}

func TestSettingsEqual(t *testing.T) {
	a := settings.New()
	a.Set("A", settings.Bool(true))
	a.Set("B", settings.Text("x"))

	b := settings.New()
	b.Set("A", settings.Bool(true))
	b.Set("B", settings.Text("x"))

	test.True(t, a.Equal(b))

	reordered := settings.New()
	reordered.Set("B", settings.Text("x"))
	reordered.Set("A", settings.Bool(true))

	test.False(t, a.Equal(reordered), test.Context("order must matter"))

	different := settings.New()
	different.Set("A", settings.Bool(true))
	different.Set("B", settings.Text("y"))

	test.False(t, a.Equal(different))
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name  string         // Name of the test case
		want  string         // Expected String()
		value settings.Value // Value under test
	}{
		{name: "integer", value: settings.Number(10), want: "10"},
		{name: "decimal", value: settings.Number(0.5), want: "0.5"},
		{name: "negative zero", value: settings.Number(-0.0), want: "0"},
		{name: "true", value: settings.Bool(true), want: "true"},
		{name: "false", value: settings.Bool(false), want: "false"},
		{name: "text", value: settings.Text("Adobe Standard"), want: "Adobe Standard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.Equal(t, tt.value.String(), tt.want)
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	s := settings.New()
	s.Set("Zeta", settings.Number(1.25))
	s.Set("Alpha", settings.Bool(false))
	s.Set("Mid", settings.Text(`quote " here`))
	s.Set("Count", settings.Number(7))

	got, err := json.Marshal(s)
	test.Ok(t, err)

	test.Diff(t, string(got), `{"Zeta":1.25,"Alpha":false,"Mid":"quote \" here","Count":7}`)
}
