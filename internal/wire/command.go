// internal/wire/command.go
package wire

import (
	"errors"
	"fmt"
	"strings"
)

// CommandKind discriminates the Command variant.
type CommandKind int

const (
	// CommandRead requests one telemetry reading.
	CommandRead CommandKind = iota
	// CommandSetActuator sets the actuator duty cycle (0-255).
	CommandSetActuator
	// CommandRawQuery sends an arbitrary terminator-free line.
	CommandRawQuery
)

// ActuatorMax is the upper bound of the actuator duty cycle.
const ActuatorMax = 255

// ErrRawQueryTerminator reports a raw query containing a line terminator.
var ErrRawQueryTerminator = errors.New("wire: raw query must not contain a line terminator")

// Command is one host-to-device request. Construct with Read, SetActuator or
// RawQuery; the zero value is a read command.
type Command struct {
	Kind  CommandKind
	Value int    // actuator duty cycle, CommandSetActuator only
	Text  string // raw line, CommandRawQuery only
}

// Read returns the telemetry poll command.
func Read() Command {
	return Command{Kind: CommandRead}
}

// SetActuator returns an actuator command. Out-of-range values are clamped to
// 0-255 rather than rejected.
func SetActuator(value int) Command {
	if value < 0 {
		value = 0
	}
	if value > ActuatorMax {
		value = ActuatorMax
	}
	return Command{Kind: CommandSetActuator, Value: value}
}

// RawQuery returns a free-text command. The text must be a single line.
func RawQuery(text string) (Command, error) {
	if strings.ContainsAny(text, "\r\n") {
		return Command{}, ErrRawQueryTerminator
	}
	return Command{Kind: CommandRawQuery, Text: text}, nil
}

// WireText renders the command as it goes on the wire, without terminator.
func (c Command) WireText() string {
	switch c.Kind {
	case CommandSetActuator:
		return fmt.Sprintf("PWM:%d", c.Value)
	case CommandRawQuery:
		return c.Text
	default:
		return "READ"
	}
}

// String implements fmt.Stringer for logging.
func (c Command) String() string {
	return c.WireText()
}
