// internal/scheduler/scheduler.go
package scheduler

import (
	"errors"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jpillora/backoff"

	"github.com/tamzrod/serial-bridge/internal/session"
	"github.com/tamzrod/serial-bridge/internal/telemetry"
	"github.com/tamzrod/serial-bridge/internal/wire"
)

// Requester is the single session operation the scheduler drives.
// *session.Session satisfies it.
type Requester interface {
	Request(cmd wire.Command, timeout time.Duration) (string, error)
}

// ErrCommandQueueFull reports that a manual command was dropped because one
// is already queued.
var ErrCommandQueueFull = errors.New("scheduler: command queue full")

// Config is the runtime config the scheduler needs.
type Config struct {
	// Interval between timed READ polls.
	Interval time.Duration
	// ReadTimeout is the per-request response deadline.
	ReadTimeout time.Duration
	// BackoffMin/BackoffMax bound the cooldown after a failed request.
	// The cooldown grows across consecutive failures and resets on success.
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// Scheduler owns one session exclusively and serializes timed polls and
// manual commands through it. All session access happens on the Run
// goroutine; that single-owner discipline is what enforces the session's
// no-overlap contract.
type Scheduler struct {
	cfg      Config
	sess     Requester
	clock    clockwork.Clock
	cooldown *backoff.Backoff
	commands chan wire.Command
}

// New creates a scheduler with immutable config. A nil clock selects the
// real clock.
func New(cfg Config, sess Requester, clock clockwork.Clock) (*Scheduler, error) {
	if sess == nil {
		return nil, errors.New("scheduler: session required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("scheduler: interval must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return nil, errors.New("scheduler: read timeout must be > 0")
	}
	if cfg.BackoffMin <= 0 {
		cfg.BackoffMin = 500 * time.Millisecond
	}
	if cfg.BackoffMax < cfg.BackoffMin {
		cfg.BackoffMax = cfg.BackoffMin
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Scheduler{
		cfg:   cfg,
		sess:  sess,
		clock: clock,
		cooldown: &backoff.Backoff{
			Min:    cfg.BackoffMin,
			Max:    cfg.BackoffMax,
			Factor: 2,
		},
		commands: make(chan wire.Command, 1),
	}, nil
}

// SubmitCommand queues one manual command. It preempts the next timed poll:
// the command is issued as soon as the scheduler returns to idle. At most one
// command may be pending at a time.
func (s *Scheduler) SubmitCommand(cmd wire.Command) error {
	select {
	case s.commands <- cmd:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// errStop signals the runner that the session is gone and the scheduler is
// terminal.
var errStop = errors.New("scheduler: stopped")

// perform issues one request and emits the outcome. manual marks
// caller-submitted commands, whose responses may be acknowledgments rather
// than telemetry.
func (s *Scheduler) perform(done <-chan struct{}, out chan<- Event, cmd wire.Command, manual bool) error {
	line, err := s.sess.Request(cmd, s.cfg.ReadTimeout)
	now := s.clock.Now()

	if err != nil {
		return s.handleRequestError(done, out, err, now)
	}

	s.cooldown.Reset()
	s.emit(done, out, s.classify(line, now, manual))
	return nil
}

func (s *Scheduler) handleRequestError(done <-chan struct{}, out chan<- Event, err error, now time.Time) error {
	if errors.Is(err, session.ErrClosed) {
		// Session closed underneath us: discard all in-flight state.
		s.emit(done, out, Event{Kind: EventIOError, Err: err, At: now})
		return errStop
	}

	kind := EventIOError
	if errors.Is(err, session.ErrTimeout) {
		kind = EventTimeout
	}
	s.emit(done, out, Event{Kind: kind, Err: err, At: now})

	// Backoff: no new requests until the cooldown elapses. A decode failure
	// never lands here; malformed telemetry is not evidence of a dead link.
	s.sleep(done, s.cooldown.Duration())
	return nil
}

// classify turns one raw response line into an event.
func (s *Scheduler) classify(line string, now time.Time, manual bool) Event {
	if manual && strings.HasPrefix(line, "ACK") {
		return Event{Kind: EventAck, Line: line, At: now}
	}

	reading, err := telemetry.Decode(line, now)
	if err == nil {
		return Event{Kind: EventReading, Reading: reading, Line: line, At: now}
	}
	if code, ok := telemetry.CodeOf(err); ok && code == telemetry.CodeUnrecognized {
		return Event{Kind: EventUnrecognized, Line: line, At: now}
	}
	return Event{Kind: EventDecodeFailure, Line: line, Err: err, At: now}
}

func (s *Scheduler) emit(done <-chan struct{}, out chan<- Event, ev Event) {
	select {
	case out <- ev:
	case <-done:
	}
}

func (s *Scheduler) sleep(done <-chan struct{}, d time.Duration) {
	timer := s.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
	case <-done:
	}
}
