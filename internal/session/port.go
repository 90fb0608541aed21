// internal/session/port.go
package session

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port is the byte-stream handle the session drives. It matches the subset of
// go.bug.st/serial.Port the bridge needs and exists so tests can inject fakes.
type Port interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// PortFactory opens a serial port for a descriptor.
type PortFactory func(path string, mode *serial.Mode) (Port, error)

// DefaultPortFactory opens real serial ports via go.bug.st/serial.
func DefaultPortFactory(path string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}
