// internal/config/normalize.go
package config

// Defaults applied by Normalize. Baud rate and poll range follow the device
// convention: 115200 baud, sampling between 50ms and 5s.
const (
	DefaultBaudRate      = 115200
	DefaultReadTimeoutMs = 1000
	DefaultIntervalMs    = 200
	MinIntervalMs        = 50
	DefaultBackoffMinMs  = 500
	DefaultBackoffMaxMs  = 8000
	DefaultMaxLineBytes  = 4096
	DefaultLogLevel      = "info"
)

// Normalize applies post-validation defaults and clamps.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	b := &cfg.Bridge

	if b.Port.BaudRate == 0 {
		b.Port.BaudRate = DefaultBaudRate
	}
	if b.Port.ReadTimeoutMs == 0 {
		b.Port.ReadTimeoutMs = DefaultReadTimeoutMs
	}

	if b.Poll.IntervalMs == 0 {
		b.Poll.IntervalMs = DefaultIntervalMs
	}
	if b.Poll.IntervalMs < MinIntervalMs {
		b.Poll.IntervalMs = MinIntervalMs
	}
	if b.Poll.BackoffMinMs == 0 {
		b.Poll.BackoffMinMs = DefaultBackoffMinMs
	}
	if b.Poll.BackoffMaxMs == 0 {
		b.Poll.BackoffMaxMs = DefaultBackoffMaxMs
	}
	if b.Poll.BackoffMaxMs < b.Poll.BackoffMinMs {
		b.Poll.BackoffMaxMs = b.Poll.BackoffMinMs
	}

	if b.Framer.MaxLineBytes == 0 {
		b.Framer.MaxLineBytes = DefaultMaxLineBytes
	}

	if b.Log.Level == "" {
		b.Log.Level = DefaultLogLevel
	}
}
