// internal/session/session.go
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"

	"github.com/tamzrod/serial-bridge/internal/wire"
)

// Descriptor identifies one serial connection. Immutable once a session is
// opened; changing it requires closing and reopening.
type Descriptor struct {
	Path         string
	BaudRate     int
	ReadTimeout  time.Duration
	MaxLineBytes int
}

var (
	// ErrTimeout reports that no response line arrived within the request
	// deadline. The deadline is measured from transmission and is not
	// extended by partial reads.
	ErrTimeout = errors.New("session: request timeout")

	// ErrClosed reports an operation on a closed session. A request in
	// flight when Close is called resolves with this error.
	ErrClosed = errors.New("session: closed")
)

// readSlice bounds a single blocking port read so an in-flight request
// notices close and deadline promptly.
const readSlice = 50 * time.Millisecond

// Session owns one open serial connection and provides atomic
// request/response operations over it.
//
// Concurrency contract: calls on a Session must not overlap. The poll
// scheduler is the single owner; it serializes all access on one goroutine.
// The Session itself does not lock around the port.
type Session struct {
	desc   Descriptor
	port   Port
	framer *wire.Framer

	// WarnFunc, when set, receives recoverable framing errors.
	WarnFunc func(error)

	mu     sync.Mutex
	closed bool
}

// Open opens a session with the platform serial-port layer.
func Open(desc Descriptor) (*Session, error) {
	return OpenWith(desc, DefaultPortFactory)
}

// OpenWith opens a session with an injected port factory.
// Any failure here is a connect error: fatal to opening, never retried.
func OpenWith(desc Descriptor, factory PortFactory) (*Session, error) {
	if desc.Path == "" {
		return nil, errors.New("session: port path required")
	}
	if desc.BaudRate <= 0 {
		desc.BaudRate = 115200
	}

	port, err := factory(desc.Path, &serial.Mode{BaudRate: desc.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("session: connect %s: %w", desc.Path, err)
	}

	return &Session{
		desc:   desc,
		port:   port,
		framer: wire.NewFramer(desc.MaxLineBytes),
	}, nil
}

// Descriptor returns the connection descriptor the session was opened with.
func (s *Session) Descriptor() Descriptor {
	return s.desc
}

// Close releases the underlying port unconditionally. Idempotent: closing an
// already-closed session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("session: close: %w", err)
	}
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Request writes the command and blocks until one response line arrives or
// the timeout elapses. The response is returned as-is: the session frames, it
// does not interpret. Unsolicited lines already buffered beyond the first are
// discarded as late or duplicate output.
func (s *Session) Request(cmd wire.Command, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = s.desc.ReadTimeout
	}
	if s.isClosed() {
		return "", ErrClosed
	}

	// Anything the device sent before this request is stale: a late reply to
	// a timed-out poll or unsolicited streaming output. Correlation is
	// positional, so flush it rather than mistake it for our response.
	s.framer.Reset()
	if err := s.port.ResetInputBuffer(); err != nil {
		return "", s.ioError("reset input", err)
	}

	if err := s.writeLine(cmd.WireText()); err != nil {
		return "", err
	}

	// Hard deadline from transmission.
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 256)

	for {
		if s.isClosed() {
			return "", ErrClosed
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", ErrTimeout
		}
		slice := readSlice
		if remaining < slice {
			slice = remaining
		}
		if err := s.port.SetReadTimeout(slice); err != nil {
			return "", s.ioError("set read timeout", err)
		}

		n, err := s.port.Read(buf)
		if err != nil {
			return "", s.ioError("read", err)
		}

		lines, ferr := s.framer.Push(buf[:n])
		if ferr != nil {
			log.Warn().Err(ferr).Str("port", s.desc.Path).Msg("framing resynchronized")
			if s.WarnFunc != nil {
				s.WarnFunc(ferr)
			}
		}

		if len(lines) == 0 {
			continue
		}
		for _, extra := range lines[1:] {
			log.Debug().Str("line", extra).Msg("discarding unsolicited line")
		}
		return lines[0], nil
	}
}

// Send writes the command without waiting for a response.
func (s *Session) Send(cmd wire.Command) error {
	return s.writeLine(cmd.WireText())
}

func (s *Session) writeLine(text string) error {
	if s.isClosed() {
		return ErrClosed
	}

	payload := append([]byte(text), wire.Terminator)
	for len(payload) > 0 {
		n, err := s.port.Write(payload)
		if err != nil {
			return s.ioError("write", err)
		}
		payload = payload[n:]
	}
	return nil
}

// ioError maps port failures after close to ErrClosed so an in-flight request
// resolves as cancelled rather than as a transport fault.
func (s *Session) ioError(op string, err error) error {
	if s.isClosed() {
		return ErrClosed
	}
	return fmt.Errorf("session: %s: %w", op, err)
}
