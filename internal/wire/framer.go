// internal/wire/framer.go
package wire

import (
	"errors"
	"strings"
)

// Terminator is the line terminator on the wire.
const Terminator = '\n'

// DefaultMaxLineBytes caps the residual buffer of a Framer when no explicit
// limit is configured.
const DefaultMaxLineBytes = 4096

// ErrFrameOverflow reports that the residual buffer exceeded its cap without
// seeing a terminator. The buffer is discarded and the framer drops bytes
// until the next terminator.
var ErrFrameOverflow = errors.New("wire: frame overflow")

// Framer turns a raw byte stream into discrete text lines.
// It buffers partial lines across pushes and splits on Terminator.
type Framer struct {
	buf       []byte
	max       int
	resyncing bool
}

// NewFramer creates a framer with the given residual cap.
// maxLineBytes <= 0 selects DefaultMaxLineBytes.
func NewFramer(maxLineBytes int) *Framer {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	return &Framer{max: maxLineBytes}
}

// Push appends a chunk and returns all complete lines it unlocked.
// Lines come back terminator-stripped and whitespace-trimmed; empty lines are
// dropped. A non-nil error is always ErrFrameOverflow and is recoverable: any
// lines returned alongside it are still valid.
func (f *Framer) Push(chunk []byte) ([]string, error) {
	var lines []string
	var overflow bool

	for _, b := range chunk {
		if f.resyncing {
			if b == Terminator {
				f.resyncing = false
			}
			continue
		}

		if b == Terminator {
			line := strings.TrimSpace(string(f.buf))
			f.buf = f.buf[:0]
			if line != "" {
				lines = append(lines, line)
			}
			continue
		}

		if len(f.buf) >= f.max {
			// Cap hit without a terminator: discard and resync.
			f.buf = f.buf[:0]
			f.resyncing = true
			overflow = true
			continue
		}
		f.buf = append(f.buf, b)
	}

	if overflow {
		return lines, ErrFrameOverflow
	}
	return lines, nil
}

// Reset discards the residual buffer and any resync state.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.resyncing = false
}

// Pending reports how many residual bytes are buffered.
func (f *Framer) Pending() int {
	return len(f.buf)
}
