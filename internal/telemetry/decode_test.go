// internal/telemetry/decode_test.go
package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOK(t *testing.T, line string) Reading {
	t.Helper()
	r, err := Decode(line, time.Now())
	require.NoError(t, err, "line=%q", line)
	return r
}

func decodeFail(t *testing.T, line string) DecodeCode {
	t.Helper()
	_, err := Decode(line, time.Now())
	require.Error(t, err, "line=%q", line)
	code, ok := CodeOf(err)
	require.True(t, ok, "line=%q err=%v", line, err)
	return code
}

func TestDecode_Labeled(t *testing.T) {
	t.Parallel()

	r := decodeOK(t, "TEMP:27.53,HUM:63.10")

	assert.Equal(t, FormatLabeled, r.Format)
	require.NotNil(t, r.Temperature)
	require.NotNil(t, r.Humidity)
	assert.InDelta(t, 27.53, *r.Temperature, 1e-9)
	assert.InDelta(t, 63.10, *r.Humidity, 1e-9)
	assert.Equal(t, "TEMP:27.53,HUM:63.10", r.Raw)
}

func TestDecode_LabeledVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		wantTemp *float64
		wantHum  *float64
	}{
		{name: "short names", line: "T:1.5,H:2.5", wantTemp: ptr(1.5), wantHum: ptr(2.5)},
		{name: "lowercase", line: "temp:1,hum:2", wantTemp: ptr(1), wantHum: ptr(2)},
		{name: "interior spaces", line: "TEMP: 27.5, HUM: 63", wantTemp: ptr(27.5), wantHum: ptr(63)},
		{name: "temperature only", line: "TEMP:-4.25", wantTemp: ptr(-4.25)},
		{name: "humidity only", line: "HUM:55", wantHum: ptr(55)},
		{name: "unknown names ignored", line: "VOLT:3.3,TEMP:20", wantTemp: ptr(20)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := decodeOK(t, tt.line)
			assert.Equal(t, FormatLabeled, r.Format)
			assert.True(t, r.SameValues(Reading{Temperature: tt.wantTemp, Humidity: tt.wantHum}),
				"got temp=%v hum=%v", r.Temperature, r.Humidity)
		})
	}
}

func TestDecode_JSON(t *testing.T) {
	t.Parallel()

	r := decodeOK(t, `{"temp":20,"hum":40}`)

	assert.Equal(t, FormatJSON, r.Format)
	require.NotNil(t, r.Temperature)
	require.NotNil(t, r.Humidity)
	assert.InDelta(t, 20.0, *r.Temperature, 1e-9)
	assert.InDelta(t, 40.0, *r.Humidity, 1e-9)
}

func TestDecode_JSONLongKeys(t *testing.T) {
	t.Parallel()

	r := decodeOK(t, `{"Temperature":21.5,"HUMIDITY":38.2}`)

	assert.Equal(t, FormatJSON, r.Format)
	require.NotNil(t, r.Temperature)
	require.NotNil(t, r.Humidity)
	assert.InDelta(t, 21.5, *r.Temperature, 1e-9)
	assert.InDelta(t, 38.2, *r.Humidity, 1e-9)
}

func TestDecode_JSONExtraKeysIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{name: "string extra", line: `{"temp":20,"hum":40,"unit":"C"}`},
		{name: "bool extra", line: `{"temp":20,"hum":40,"ok":true}`},
		{name: "null extra", line: `{"temp":20,"hum":40,"note":null}`},
		{name: "nested extra", line: `{"temp":20,"hum":40,"meta":{"seq":7}}`},
		{name: "numeric extra", line: `{"temp":20,"hum":40,"pressure":1013}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := decodeOK(t, tt.line)
			assert.Equal(t, FormatJSON, r.Format)
			assert.True(t, r.SameValues(Reading{Temperature: ptr(20), Humidity: ptr(40)}),
				"got temp=%v hum=%v", r.Temperature, r.Humidity)
		})
	}
}

func TestDecode_CSV(t *testing.T) {
	t.Parallel()

	r := decodeOK(t, "28.42,61.1")

	assert.Equal(t, FormatCSV, r.Format)
	require.NotNil(t, r.Temperature)
	require.NotNil(t, r.Humidity)
	assert.InDelta(t, 28.42, *r.Temperature, 1e-9)
	assert.InDelta(t, 61.1, *r.Humidity, 1e-9)
}

func TestDecode_CSVSignsAndExponents(t *testing.T) {
	t.Parallel()

	r := decodeOK(t, "-1.5,+2e1")

	require.NotNil(t, r.Temperature)
	require.NotNil(t, r.Humidity)
	assert.InDelta(t, -1.5, *r.Temperature, 1e-9)
	assert.InDelta(t, 20.0, *r.Humidity, 1e-9)
}

// The same measurement must decode to equal values regardless of wire format.
func TestDecode_CrossFormatEquivalence(t *testing.T) {
	t.Parallel()

	csv := decodeOK(t, "20,40")
	lbl := decodeOK(t, "TEMP:20,HUM:40")
	jsn := decodeOK(t, `{"temp":20,"hum":40}`)

	assert.True(t, csv.SameValues(lbl))
	assert.True(t, lbl.SameValues(jsn))

	assert.Equal(t, FormatCSV, csv.Format)
	assert.Equal(t, FormatLabeled, lbl.Format)
	assert.Equal(t, FormatJSON, jsn.Format)
}

func TestDecode_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want DecodeCode
	}{
		{name: "garbage", line: "garbage", want: CodeUnrecognized},
		{name: "echo line", line: "ECHO hello", want: CodeUnrecognized},
		{name: "empty braces only", line: "{", want: CodeInvalidJSON},
		{name: "malformed json", line: `{"temp":}`, want: CodeInvalidJSON},
		{name: "json without keys", line: `{"pressure":1013}`, want: CodeInvalidJSON},
		{name: "json string value", line: `{"temp":"hot"}`, want: CodeInvalidJSON},
		{name: "labeled no recognized names", line: "VOLT:3.3,AMP:0.2", want: CodeInvalidLabeled},
		{name: "labeled unparsable values", line: "TEMP:abc,HUM:def", want: CodeInvalidLabeled},
		{name: "csv three fields", line: "1,2,3", want: CodeInvalidCSV},
		{name: "csv one field pair missing", line: "1.5,", want: CodeInvalidCSV},
		{name: "labeled nan", line: "TEMP:NaN,HUM:40", want: CodeNonFinite},
		{name: "labeled inf", line: "HUM:+Inf", want: CodeNonFinite},
		{name: "labeled overflow", line: "TEMP:1e999", want: CodeNonFinite},
		{name: "alpha csv falls to unrecognized", line: "a,b", want: CodeUnrecognized},
		{name: "sentence with comma", line: "hello, world", want: CodeUnrecognized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, decodeFail(t, tt.line), "line=%q", tt.line)
		})
	}
}

// Decode is total: arbitrary input yields a Reading or a coded failure.
func TestDecode_Total(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", " ", ",", "::::", "{{{{", "\x00\x01\x02", "TEMP:", "READ",
		"ACK PWM:128", "{\"temp\":", "1,", ",1", "--,++",
	}

	for _, line := range inputs {
		r, err := Decode(line, time.Now())
		if err == nil {
			assert.NotEqual(t, FormatUnknown, r.Format, "line=%q", line)
			continue
		}
		_, ok := CodeOf(err)
		assert.True(t, ok, "line=%q should carry a decode code, got %v", line, err)
	}
}

func TestDecode_UnsetFieldsAreNil(t *testing.T) {
	t.Parallel()

	r := decodeOK(t, "TEMP:20")
	assert.Nil(t, r.Humidity)
	require.NotNil(t, r.Temperature)
}
