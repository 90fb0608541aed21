// internal/status/tracker.go
package status

import "github.com/tamzrod/serial-bridge/internal/scheduler"

// Tracker folds the scheduler's event stream into a link health snapshot.
// It distinguishes "link is down" (timeouts, IO errors) from "telemetry
// malformed" (decode failures): only the former changes health.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts in the unknown state.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}

// Apply folds one event and reports whether the snapshot changed.
func (t *Tracker) Apply(ev scheduler.Event) (Snapshot, bool) {
	prev := t.snap

	switch ev.Kind {
	case scheduler.EventTimeout, scheduler.EventIOError:
		t.snap.Health = HealthDown
		t.snap.ConsecutiveFailures++
		if ev.Err != nil {
			t.snap.LastError = ev.Err.Error()
		}

	case scheduler.EventReading, scheduler.EventDecodeFailure,
		scheduler.EventUnrecognized, scheduler.EventAck:
		// Any completed round trip proves the link, even if the payload
		// did not parse.
		t.snap.Health = HealthOK
		t.snap.ConsecutiveFailures = 0
		t.snap.SecondsInError = 0
		t.snap.LastError = ""

	case scheduler.EventFrameWarning:
		// Recovered framing noise: no health change.
	}

	return t.snap, t.snap != prev
}

// Tick advances the error-duration counter. Call at 1 Hz; it counts only
// while the link is down and saturates rather than wrapping.
func (t *Tracker) Tick() (Snapshot, bool) {
	if t.snap.Health != HealthDown {
		return t.snap, false
	}
	if t.snap.SecondsInError >= secondsInErrorMax {
		return t.snap, false
	}
	t.snap.SecondsInError++
	return t.snap, true
}
