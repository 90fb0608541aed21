// internal/scheduler/runner.go
package scheduler

import (
	"context"
	"errors"

	"github.com/tamzrod/serial-bridge/internal/wire"
)

// Run drives the polling loop and emits events on the provided channel.
// It is the exclusive owner of the session: exactly one request is in flight
// at any time. Manual commands take priority over the next scheduled poll.
// Run returns when ctx is cancelled or the session is closed.
func (s *Scheduler) Run(ctx context.Context, out chan<- Event) {
	ticker := s.clock.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	done := ctx.Done()

	for {
		// A queued manual command preempts the next tick.
		select {
		case <-done:
			return
		case cmd := <-s.commands:
			if err := s.perform(done, out, cmd, true); errors.Is(err, errStop) {
				return
			}
			continue
		default:
		}

		select {
		case <-done:
			return
		case cmd := <-s.commands:
			if err := s.perform(done, out, cmd, true); errors.Is(err, errStop) {
				return
			}
		case <-ticker.Chan():
			if err := s.perform(done, out, wire.Read(), false); errors.Is(err, errStop) {
				return
			}
		}
	}
}
