// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	b := cfg.Bridge

	if b.Port.Path == "" {
		return errors.New("config: port.path is required")
	}
	if b.Port.BaudRate < 0 {
		return fmt.Errorf("config: port.baud_rate must not be negative, got %d", b.Port.BaudRate)
	}
	if b.Port.ReadTimeoutMs < 0 {
		return fmt.Errorf("config: port.read_timeout_ms must not be negative, got %d", b.Port.ReadTimeoutMs)
	}

	if b.Poll.IntervalMs < 0 {
		return fmt.Errorf("config: poll.interval_ms must not be negative, got %d", b.Poll.IntervalMs)
	}
	if b.Poll.BackoffMinMs < 0 || b.Poll.BackoffMaxMs < 0 {
		return errors.New("config: poll backoff bounds must not be negative")
	}
	if b.Poll.BackoffMinMs > 0 && b.Poll.BackoffMaxMs > 0 &&
		b.Poll.BackoffMinMs > b.Poll.BackoffMaxMs {
		return fmt.Errorf(
			"config: poll.backoff_min_ms (%d) exceeds poll.backoff_max_ms (%d)",
			b.Poll.BackoffMinMs, b.Poll.BackoffMaxMs,
		)
	}

	if b.Framer.MaxLineBytes < 0 {
		return fmt.Errorf("config: framer.max_line_bytes must not be negative, got %d", b.Framer.MaxLineBytes)
	}

	switch b.Log.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is not a known level", b.Log.Level)
	}

	return nil
}
