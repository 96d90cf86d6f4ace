// Package flight runs the fixed-rate control loop: pilot command and
// inertial sample in, motor commands out.
package flight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BryanSouza91/RotorFC/mixer"
	"github.com/BryanSouza91/RotorFC/receiver"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

// Logger is the subset of *slog.Logger the loop uses.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// SampleSource supplies one inertial sample per tick.
type SampleSource interface {
	Read() (stabilize.Sample, error)
}

// CommandSource supplies the current pilot command.
type CommandSource interface {
	Command() (receiver.Command, error)
}

// Actuator drives the motors or servos.
type Actuator interface {
	WriteMotors(mixer.Motors) error
}

// State is the loop's flight state.
type State int

const (
	// Disarmed: throttle below the cut, motors idle.
	Disarmed State = iota
	// Flying: the stabilizer drives the mixer.
	Flying
	// Failsafe: no pilot command, motors idle until the link returns.
	Failsafe
)

func (s State) String() string {
	switch s {
	case Disarmed:
		return "disarmed"
	case Flying:
		return "flying"
	case Failsafe:
		return "failsafe"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Parts are the collaborators of a Loop.
type Parts struct {
	Stabilizer *stabilize.Stabilizer
	Mixer      *mixer.Mixer
	Commands   CommandSource
	Samples    SampleSource
	Motors     Actuator
	// Log receives state changes and tick failures. Nil discards them.
	Log Logger
}

// Loop owns the single Stabilizer and serializes every call to it.
type Loop struct {
	cfg   Config
	parts Parts
	log   Logger

	state State
	last  mixer.Motors
	ticks uint64
}

// New checks cfg and parts and returns a disarmed Loop.
func New(cfg Config, parts Parts) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if parts.Stabilizer == nil || parts.Mixer == nil || parts.Commands == nil ||
		parts.Samples == nil || parts.Motors == nil {
		return nil, errors.New("flight: missing loop part")
	}
	l := &Loop{
		cfg:   cfg,
		parts: parts,
		log:   parts.Log,
		last:  parts.Mixer.Idle(),
	}
	if l.log == nil {
		l.log = nopLogger{}
	}
	return l, nil
}

// State returns the state after the last tick.
func (l *Loop) State() State { return l.state }

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 { return l.ticks }

// Motors returns the last motor command written.
func (l *Loop) Motors() mixer.Motors { return l.last }

// Tick runs one control iteration.
//
// Without a pilot command, or with throttle below the cut, the integrals
// are reset and the motors idled. If the sample cannot be read or the
// stabilizer rejects it, the previous motor command is written again and
// the error returned.
func (l *Loop) Tick() error {
	l.ticks++
	p := l.parts

	cmd, err := p.Commands.Command()
	if err != nil {
		l.setState(Failsafe, "err", err)
		return l.idle()
	}
	if cmd.Throttle < l.cfg.ThrottleCut {
		l.setState(Disarmed)
		return l.idle()
	}

	sample, err := p.Samples.Read()
	if err != nil {
		return l.hold(fmt.Errorf("flight: read sample: %w", err))
	}
	out, err := p.Stabilizer.Update(cmd.Demand, sample)
	if err != nil {
		return l.hold(fmt.Errorf("flight: stabilize: %w", err))
	}
	l.setState(Flying)
	return l.write(p.Mixer.Mix(cmd.Throttle, out))
}

// Run ticks every cfg.Period until ctx is done, then idles the motors.
// Tick errors are logged and the loop keeps going.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Period)
	defer ticker.Stop()

	l.log.Info("control loop started", "period", l.cfg.Period)
	for {
		select {
		case <-ctx.Done():
			l.parts.Stabilizer.ResetIntegral()
			err := l.idle()
			l.log.Info("control loop stopped", "ticks", l.ticks)
			return err
		case <-ticker.C:
			if err := l.Tick(); err != nil {
				l.log.Warn("tick failed", "tick", l.ticks, "err", err)
			}
		}
	}
}

func (l *Loop) setState(s State, args ...any) {
	if s == l.state {
		return
	}
	l.log.Info("flight state", append([]any{"from", l.state, "to", s}, args...)...)
	l.state = s
}

func (l *Loop) idle() error {
	l.parts.Stabilizer.ResetIntegral()
	return l.write(l.parts.Mixer.Idle())
}

func (l *Loop) hold(cause error) error {
	if err := l.write(l.last); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (l *Loop) write(m mixer.Motors) error {
	if err := l.parts.Motors.WriteMotors(m); err != nil {
		return fmt.Errorf("flight: write motors: %w", err)
	}
	l.last = m
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
