// internal/telemetry/decode.go
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DecodeCode classifies a decode failure.
type DecodeCode int

const (
	// CodeInvalidJSON: line opened with '{' but is not a usable JSON reading.
	CodeInvalidJSON DecodeCode = iota + 1
	// CodeInvalidLabeled: line contained ':' but no recognized NAME:VALUE field parsed.
	CodeInvalidLabeled
	// CodeInvalidCSV: numeric CSV line without exactly two numeric fields.
	CodeInvalidCSV
	// CodeNonFinite: a value parsed to NaN or +/-Inf.
	CodeNonFinite
	// CodeUnrecognized: line matches no telemetry format. Often an echo or
	// acknowledgment rather than an error.
	CodeUnrecognized
)

func (c DecodeCode) String() string {
	switch c {
	case CodeInvalidJSON:
		return "invalid_json"
	case CodeInvalidLabeled:
		return "invalid_labeled"
	case CodeInvalidCSV:
		return "invalid_csv"
	case CodeNonFinite:
		return "non_finite_value"
	case CodeUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// DecodeError reports that a line could not be parsed into a Reading.
// It carries the raw line for diagnostics.
type DecodeError struct {
	Code DecodeCode
	Line string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("telemetry: %s: %q", e.Code, e.Line)
}

// Decode parses one complete trimmed line into a Reading.
//
// Detection order is fixed and documented because the formats are not
// self-describing: JSON (leading '{'), then labeled (contains ':'), then CSV
// (numeric charset), then unrecognized. Decoding is pure and stateless.
func Decode(line string, at time.Time) (Reading, error) {
	r := Reading{Raw: line, At: at}

	switch {
	case strings.HasPrefix(line, "{"):
		return decodeJSON(r, line)
	case strings.Contains(line, ":"):
		return decodeLabeled(r, line)
	case isCSVCandidate(line):
		return decodeCSV(r, line)
	default:
		return r, &DecodeError{Code: CodeUnrecognized, Line: line}
	}
}

// CodeOf extracts the DecodeCode from an error returned by Decode.
func CodeOf(err error) (DecodeCode, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return 0, false
}

// ---- JSON ----

func decodeJSON(r Reading, line string) (Reading, error) {
	var obj map[string]any
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return r, &DecodeError{Code: CodeInvalidJSON, Line: line}
	}

	var temp, hum *float64
	for k, raw := range obj {
		var dst **float64
		switch strings.ToLower(k) {
		case "temp", "temperature":
			dst = &temp
		case "hum", "humidity":
			dst = &hum
		default:
			// Unknown keys are ignored whatever their type, like unknown
			// labeled names.
			continue
		}

		n, ok := raw.(json.Number)
		if !ok {
			return r, &DecodeError{Code: CodeInvalidJSON, Line: line}
		}
		v, err := n.Float64()
		if err != nil || !isFinite(v) {
			// The document already validated, so a Float64 failure is an
			// overflow to +/-Inf.
			return r, &DecodeError{Code: CodeNonFinite, Line: line}
		}
		*dst = ptr(v)
	}

	if temp == nil && hum == nil {
		return r, &DecodeError{Code: CodeInvalidJSON, Line: line}
	}

	r.Temperature = temp
	r.Humidity = hum
	r.Format = FormatJSON
	return r, nil
}

// ---- Labeled ----

func decodeLabeled(r Reading, line string) (Reading, error) {
	// Devices pad labeled output with spaces ("TEMP: 27.5, HUM: 63").
	compact := strings.ReplaceAll(line, " ", "")

	var temp, hum *float64
	for _, field := range strings.Split(compact, ",") {
		name, value, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}

		v, err := parseFloat(value)
		switch {
		case strings.HasPrefix(strings.ToUpper(name), "T"):
			if err != nil {
				if isNonFiniteToken(value) {
					return r, &DecodeError{Code: CodeNonFinite, Line: line}
				}
				continue
			}
			temp = ptr(v)
		case strings.HasPrefix(strings.ToUpper(name), "H"):
			if err != nil {
				if isNonFiniteToken(value) {
					return r, &DecodeError{Code: CodeNonFinite, Line: line}
				}
				continue
			}
			hum = ptr(v)
		}
		// Other names are ignored, not an error.
	}

	if temp == nil && hum == nil {
		return r, &DecodeError{Code: CodeInvalidLabeled, Line: line}
	}

	r.Temperature = temp
	r.Humidity = hum
	r.Format = FormatLabeled
	return r, nil
}

// ---- CSV ----

// isCSVCandidate reports whether the line contains only numeric characters and
// commas. Lines failing this check fall through to unrecognized instead of
// being reported as broken CSV.
func isCSVCandidate(line string) bool {
	if !strings.Contains(line, ",") {
		return false
	}
	for _, c := range line {
		switch {
		case c >= '0' && c <= '9':
		case c == ',' || c == '.' || c == '+' || c == '-' || c == ' ':
		case c == 'e' || c == 'E':
		default:
			return false
		}
	}
	return true
}

func decodeCSV(r Reading, line string) (Reading, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return r, &DecodeError{Code: CodeInvalidCSV, Line: line}
	}

	temp, err := parseFloat(strings.TrimSpace(fields[0]))
	if err != nil {
		return r, &DecodeError{Code: CodeInvalidCSV, Line: line}
	}
	hum, err := parseFloat(strings.TrimSpace(fields[1]))
	if err != nil {
		return r, &DecodeError{Code: CodeInvalidCSV, Line: line}
	}

	r.Temperature = ptr(temp)
	r.Humidity = ptr(hum)
	r.Format = FormatCSV
	return r, nil
}

// ---- helpers ----

// parseFloat accepts standard decimal notation and rejects NaN/Inf tokens.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !isFinite(v) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// isNonFiniteToken detects NaN/Infinity tokens that strconv parses but the
// wire contract forbids. Out-of-range literals count: they round to +/-Inf.
func isNonFiniteToken(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return !isFinite(v)
	}
	var ne *strconv.NumError
	return errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange)
}

func ptr(v float64) *float64 { return &v }
