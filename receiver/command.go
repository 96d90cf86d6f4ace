package receiver

import (
	"errors"
	"fmt"
	"time"

	"github.com/BryanSouza91/RotorFC/filter"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

// ErrNoSignal is returned by Source.Command when no frame arrived within
// the timeout.
var ErrNoSignal = errors.New("receiver: no signal")

// Command is one tick of pilot input.
type Command struct {
	Demand   stabilize.Demand
	Throttle float64 // [0, 1]
}

// Mapping assigns zero-based channel indexes to the control axes.
type Mapping struct {
	Roll     int    `yaml:"roll"`
	Pitch    int    `yaml:"pitch"`
	Throttle int    `yaml:"throttle"`
	Yaw      int    `yaml:"yaw"`
	Deadband uint16 `yaml:"deadband"` // microseconds around neutral
}

// DefaultMapping is AETR order with a 20us deadband.
func DefaultMapping() Mapping {
	return Mapping{
		Roll:     0, // Rx channel 1
		Pitch:    1, // Rx channel 2
		Throttle: 2, // Rx channel 3
		Yaw:      3, // Rx channel 4
		Deadband: 20,
	}
}

// Validate checks that every index is in range and unique.
func (m Mapping) Validate() error {
	seen := map[int]string{}
	for _, ch := range []struct {
		name  string
		index int
	}{{"roll", m.Roll}, {"pitch", m.Pitch}, {"throttle", m.Throttle}, {"yaw", m.Yaw}} {
		if ch.index < 0 || ch.index >= NumChannels {
			return fmt.Errorf("%w: %s channel %d out of range [0, %d)", ErrInvalidConfig, ch.name, ch.index, NumChannels)
		}
		if other, ok := seen[ch.index]; ok {
			return fmt.Errorf("%w: %s and %s share channel %d", ErrInvalidConfig, other, ch.name, ch.index)
		}
		seen[ch.index] = ch.name
	}
	if m.Deadband >= MaxRxValue-NeutralRxValue {
		return fmt.Errorf("%w: deadband %d covers the whole stick range", ErrInvalidConfig, m.Deadband)
	}
	return nil
}

// Command maps raw channels to a Command.
func (m Mapping) Command(channels [NumChannels]uint16) Command {
	return Command{
		Demand: stabilize.Demand{
			Roll:  NormalizeStick(channels[m.Roll], m.Deadband),
			Pitch: NormalizeStick(channels[m.Pitch], m.Deadband),
			Yaw:   NormalizeStick(channels[m.Yaw], m.Deadband),
		},
		Throttle: NormalizeThrottle(channels[m.Throttle]),
	}
}

// NormalizeStick maps a channel in microseconds to [-1, 1]. Values within
// deadband of neutral read as centered.
func NormalizeStick(v, deadband uint16) float64 {
	raw := float64(v)
	// This prevents small stick movements or noise from affecting control
	if raw > NeutralRxValue-float64(deadband) && raw < NeutralRxValue+float64(deadband) {
		raw = NeutralRxValue
	}
	raw = filter.Constrain(raw, MinRxValue, MaxRxValue)
	return filter.MapRange(raw, MinRxValue, MaxRxValue, -1, 1)
}

// NormalizeThrottle maps a channel in microseconds to [0, 1].
func NormalizeThrottle(v uint16) float64 {
	raw := filter.Constrain(float64(v), MinRxValue, MaxRxValue)
	return filter.MapRange(raw, MinRxValue, MaxRxValue, 0, 1)
}

// Source turns the latest stored channels into commands.
type Source struct {
	store   *Store
	mapping Mapping
	timeout time.Duration
	now     func() time.Time
}

// NewSource returns a Source reading store. A frame older than timeout
// counts as no signal.
func NewSource(store *Store, mapping Mapping, timeout time.Duration) *Source {
	return &Source{
		store:   store,
		mapping: mapping,
		timeout: timeout,
		now:     time.Now,
	}
}

// Command returns the current pilot command, or an error wrapping
// ErrNoSignal.
func (s *Source) Command() (Command, error) {
	channels, last := s.store.Channels()
	if last.IsZero() {
		return Command{}, fmt.Errorf("%w: nothing received", ErrNoSignal)
	}
	if age := s.now().Sub(last); age > s.timeout {
		return Command{}, fmt.Errorf("%w: last frame %v ago", ErrNoSignal, age)
	}
	return s.mapping.Command(channels), nil
}
