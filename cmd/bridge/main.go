// cmd/bridge/main.go
package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tamzrod/serial-bridge/internal/config"
	"github.com/tamzrod/serial-bridge/internal/scheduler"
	"github.com/tamzrod/serial-bridge/internal/session"
	"github.com/tamzrod/serial-bridge/internal/status"
	"github.com/tamzrod/serial-bridge/internal/wire"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: bridge <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	setupLogging(cfg.Bridge.Log.Level)

	// --------------------
	// Open the link session
	// --------------------

	sess, err := session.Open(session.Descriptor{
		Path:         cfg.Bridge.Port.Path,
		BaudRate:     cfg.Bridge.Port.BaudRate,
		ReadTimeout:  time.Duration(cfg.Bridge.Port.ReadTimeoutMs) * time.Millisecond,
		MaxLineBytes: cfg.Bridge.Framer.MaxLineBytes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect failed")
	}
	log.Info().
		Str("port", cfg.Bridge.Port.Path).
		Int("baud", cfg.Bridge.Port.BaudRate).
		Msg("connected")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// --------------------
	// Scheduler + event plumbing
	// --------------------

	sched, err := scheduler.New(scheduler.Config{
		Interval:    time.Duration(cfg.Bridge.Poll.IntervalMs) * time.Millisecond,
		ReadTimeout: time.Duration(cfg.Bridge.Port.ReadTimeoutMs) * time.Millisecond,
		BackoffMin:  time.Duration(cfg.Bridge.Poll.BackoffMinMs) * time.Millisecond,
		BackoffMax:  time.Duration(cfg.Bridge.Poll.BackoffMaxMs) * time.Millisecond,
	}, sess, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler build failed")
	}

	out := make(chan scheduler.Event, 16)

	// Framing overflows surface as warning events next to everything else.
	sess.WarnFunc = func(err error) {
		select {
		case out <- scheduler.Event{Kind: scheduler.EventFrameWarning, Err: err, At: time.Now()}:
		default:
		}
	}

	go sched.Run(ctx, out)
	go commandConsole(ctx, sched)

	runEventLoop(ctx, out)

	if err := sess.Close(); err != nil {
		log.Error().Err(err).Msg("close failed")
	}
	log.Info().Msg("bridge stopped")
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(lvl).
		With().Timestamp().Logger()
}

// runEventLoop consumes scheduler events, folds them into the link health
// tracker, and ticks the error-duration counter at 1 Hz.
func runEventLoop(ctx context.Context, out <-chan scheduler.Event) {
	tracker := status.NewTracker()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-out:
			logEvent(ev)
			if snap, changed := tracker.Apply(ev); changed {
				log.Info().
					Str("health", snap.HealthString()).
					Int("consecutive_failures", snap.ConsecutiveFailures).
					Msg("link state")
			}

		case <-secTicker.C:
			if snap, changed := tracker.Tick(); changed {
				log.Debug().
					Uint16("seconds_in_error", snap.SecondsInError).
					Msg("link still down")
			}
		}
	}
}

func logEvent(ev scheduler.Event) {
	switch ev.Kind {
	case scheduler.EventReading:
		e := log.Info().Str("format", ev.Reading.Format.String())
		if ev.Reading.Temperature != nil {
			e = e.Float64("temp", *ev.Reading.Temperature)
		}
		if ev.Reading.Humidity != nil {
			e = e.Float64("hum", *ev.Reading.Humidity)
		}
		e.Msg("reading")

	case scheduler.EventDecodeFailure:
		log.Warn().Err(ev.Err).Str("line", ev.Line).Msg("telemetry malformed")

	case scheduler.EventUnrecognized:
		log.Debug().Str("line", ev.Line).Msg("unrecognized line")

	case scheduler.EventAck:
		log.Info().Str("line", ev.Line).Msg("command acknowledged")

	case scheduler.EventTimeout:
		log.Warn().Err(ev.Err).Msg("request timed out")

	case scheduler.EventIOError:
		log.Error().Err(ev.Err).Msg("link error")

	case scheduler.EventFrameWarning:
		log.Warn().Err(ev.Err).Msg("framing recovered")
	}
}

// commandConsole reads manual commands from stdin:
//
//	pwm <0-255>   set the actuator duty cycle
//	<text>        send a raw query line verbatim
func commandConsole(ctx context.Context, sched *scheduler.Scheduler) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		cmd, err := parseConsoleCommand(text)
		if err != nil {
			log.Error().Err(err).Str("input", text).Msg("bad command")
			continue
		}

		if err := sched.SubmitCommand(cmd); err != nil {
			log.Warn().Err(err).Msg("command dropped")
		}
	}
}

func parseConsoleCommand(text string) (wire.Command, error) {
	fields := strings.Fields(text)
	if strings.EqualFold(fields[0], "pwm") && len(fields) == 2 {
		value, err := strconv.Atoi(fields[1])
		if err != nil {
			return wire.Command{}, err
		}
		return wire.SetActuator(value), nil
	}
	return wire.RawQuery(text)
}
