// internal/scheduler/types.go
package scheduler

import (
	"time"

	"github.com/tamzrod/serial-bridge/internal/telemetry"
)

// EventKind classifies one scheduler emission.
type EventKind int

const (
	// EventReading: a poll or manual response decoded into telemetry.
	EventReading EventKind = iota + 1
	// EventDecodeFailure: a response line that matched a format but did not
	// parse. Cosmetic; polling continues at the next tick.
	EventDecodeFailure
	// EventUnrecognized: a response line matching no telemetry format,
	// passed through as-is (likely an echo).
	EventUnrecognized
	// EventAck: device acknowledgment of a manual command.
	EventAck
	// EventTimeout: no response within the read timeout. Triggers backoff.
	EventTimeout
	// EventIOError: transport failure on write or read. Triggers backoff.
	EventIOError
	// EventFrameWarning: framing overflow, recovered by resync.
	EventFrameWarning
)

func (k EventKind) String() string {
	switch k {
	case EventReading:
		return "reading"
	case EventDecodeFailure:
		return "decode_failure"
	case EventUnrecognized:
		return "unrecognized"
	case EventAck:
		return "ack"
	case EventTimeout:
		return "timeout"
	case EventIOError:
		return "io_error"
	case EventFrameWarning:
		return "frame_warning"
	default:
		return "unknown"
	}
}

// Event is one result delivered to the consumer.
// Reading is set for EventReading; Line carries the raw response for
// decode failures, unrecognized lines and acks; Err carries the decode or
// transport error when there is one.
type Event struct {
	Kind    EventKind
	Reading telemetry.Reading
	Line    string
	Err     error
	At      time.Time
}
