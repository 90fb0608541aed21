// internal/status/snapshot.go
package status

// Health codes for the serial link.

// HealthUnknown is the boot state, before the first round trip resolves.
const HealthUnknown uint16 = 0

// HealthOK means the last request/response round trip succeeded.
const HealthOK uint16 = 1

// HealthDown means the last round trip failed with a timeout or IO error.
// Decode failures never set this: malformed telemetry is cosmetic.
const HealthDown uint16 = 2

// secondsInErrorMax saturates the error-duration counter.
const secondsInErrorMax = 65535

// Snapshot is the current link state as the consumer sees it.
// It has no memory of the past beyond current state.
type Snapshot struct {
	Health              uint16
	ConsecutiveFailures int
	SecondsInError      uint16
	LastError           string
}

// HealthString renders the health code for logs.
func (s Snapshot) HealthString() string {
	switch s.Health {
	case HealthOK:
		return "ok"
	case HealthDown:
		return "down"
	default:
		return "unknown"
	}
}
