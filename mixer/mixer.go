// Package mixer converts throttle and stabilizer outputs into per-motor
// (or per-servo) pulse widths.
package mixer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/BryanSouza91/RotorFC/filter"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

// Pulse widths in microseconds.
const (
	MinCommand     = 1000 // 1ms pulse: motor stopped, servo full negative
	MaxCommand     = 2000 // 2ms pulse: full throttle, servo full positive
	NeutralCommand = 1500
)

// MaxMotors is the number of outputs a Mixer can drive.
const MaxMotors = 8

// ErrUnknownFrame is returned by New for an unsupported frame name.
var ErrUnknownFrame = errors.New("mixer: unknown frame")

// Motors holds one pulse width per output. Entries past Mixer.Count are
// unused.
type Motors [MaxMotors]uint16

// Rule is one row of the mix table. Rows with a zero Throttle factor are
// servos centered on NeutralCommand; the others are motors.
type Rule struct {
	Throttle, Roll, Pitch, Yaw float64
}

func (r Rule) servo() bool { return r.Throttle == 0 }

func (r Rule) factor(axis stabilize.Axis) float64 {
	switch axis {
	case stabilize.Roll:
		return r.Roll
	case stabilize.Pitch:
		return r.Pitch
	}
	return r.Yaw
}

// Motor order for quadx: rear right, front right, rear left, front left.
// Positive yaw speeds up the front right / rear left diagonal.
var quadX = []Rule{
	{Throttle: 1, Roll: -1, Pitch: -1, Yaw: -1},
	{Throttle: 1, Roll: -1, Pitch: +1, Yaw: +1},
	{Throttle: 1, Roll: +1, Pitch: -1, Yaw: +1},
	{Throttle: 1, Roll: +1, Pitch: +1, Yaw: -1},
}

// Elevon order: ESC, left elevon, right elevon.
var elevon = []Rule{
	{Throttle: 1},
	{Roll: +1, Pitch: +1},
	{Roll: -1, Pitch: +1},
}

var frames = map[string][]Rule{
	"quadx":  quadX,
	"elevon": elevon,
}

// Frames returns the names accepted by New.
func Frames() []string {
	return []string{"elevon", "quadx"}
}

// Mixer applies a fixed mix table.
type Mixer struct {
	rules [MaxMotors]Rule
	count int
}

// New returns the mixer for a named frame.
func New(frame string) (*Mixer, error) {
	rules, ok := frames[strings.ToLower(frame)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownFrame, frame, strings.Join(Frames(), ", "))
	}
	return FromRules(rules)
}

// FromRules returns a mixer for a custom table.
func FromRules(rules []Rule) (*Mixer, error) {
	if len(rules) == 0 || len(rules) > MaxMotors {
		return nil, fmt.Errorf("mixer: table needs 1 to %d rows, got %d", MaxMotors, len(rules))
	}
	m := &Mixer{count: len(rules)}
	copy(m.rules[:], rules)
	return m, nil
}

// Count returns the number of outputs in use.
func (m *Mixer) Count() int { return m.count }

// Table returns a copy of the mix table.
func (m *Mixer) Table() []Rule {
	return append([]Rule(nil), m.rules[:m.count]...)
}

// Mix maps throttle in [0, 1] and the stabilizer outputs to pulse widths.
// When a motor would exceed MaxCommand, the excess is taken off every
// motor so the attitude correction is kept.
func (m *Mixer) Mix(throttle float64, out stabilize.Output) Motors {
	throttle = filter.Constrain(throttle, 0, 1)

	var values [MaxMotors]float64
	highest := math.Inf(-1)
	for i, r := range m.rules[:m.count] {
		v := float64(NeutralCommand)
		if !r.servo() {
			v = MinCommand + r.Throttle*throttle*(MaxCommand-MinCommand)
		}
		for axis := stabilize.Roll; axis < stabilize.NumAxes; axis++ {
			v += r.factor(axis) * float64(out[axis])
		}
		values[i] = v
		if !r.servo() {
			highest = max(highest, v)
		}
	}

	var motors Motors
	excess := max(highest-MaxCommand, 0)
	for i, r := range m.rules[:m.count] {
		v := values[i]
		if !r.servo() {
			v -= excess
		}
		motors[i] = uint16(math.Round(filter.Constrain(v, MinCommand, MaxCommand)))
	}
	return motors
}

// Idle returns motors stopped and servos centered.
func (m *Mixer) Idle() Motors {
	var motors Motors
	for i, r := range m.rules[:m.count] {
		motors[i] = MinCommand
		if r.servo() {
			motors[i] = NeutralCommand
		}
	}
	return motors
}

// Axes recovers the per-axis corrections from motor values by projecting
// them back on the table. Unbalanced tables and clipped outputs give an
// approximation.
func (m *Mixer) Axes(motors Motors) [stabilize.NumAxes]float64 {
	var axes [stabilize.NumAxes]float64
	for axis := stabilize.Roll; axis < stabilize.NumAxes; axis++ {
		var sum, norm float64
		for i, r := range m.rules[:m.count] {
			f := r.factor(axis)
			v := float64(motors[i])
			if r.servo() {
				v -= NeutralCommand
			}
			sum += f * v
			norm += f * f
		}
		if norm > 0 {
			axes[axis] = sum / norm
		}
	}
	return axes
}
