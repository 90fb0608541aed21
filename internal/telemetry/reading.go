// internal/telemetry/reading.go
package telemetry

import "time"

// Format identifies which wire format a reading was decoded from.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatLabeled
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatLabeled:
		return "labeled"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Reading is one decoded telemetry sample.
// At least one of Temperature/Humidity is set when Format != FormatUnknown.
type Reading struct {
	Temperature *float64
	Humidity    *float64
	Format      Format
	Raw         string
	At          time.Time
}

// SameValues reports whether two readings carry the same measurements,
// ignoring format, raw line and timestamp.
func (r Reading) SameValues(other Reading) bool {
	return eqPtr(r.Temperature, other.Temperature) && eqPtr(r.Humidity, other.Humidity)
}

func eqPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
