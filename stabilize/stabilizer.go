// Package stabilize implements the attitude stabilization core of the
// flight controller: a rate PID per axis, with an angle ("level") outer
// loop on roll and pitch whose authority fades out as the sticks are
// deflected.
//
// A Stabilizer does no I/O and no allocation after New. It has no locking:
// Update and ResetIntegral must be called from a single control loop.
package stabilize

import (
	"errors"
	"fmt"
	"math"

	"github.com/BryanSouza91/RotorFC/filter"
)

const (
	// StickRange is the integer magnitude of a full stick deflection.
	StickRange = 500

	// YawJumpMargin bounds the yaw output to YawJumpMargin + |yaw demand|.
	// It is expressed in output units and must be rescaled together with
	// StickRange or the gyro scale.
	YawJumpMargin = 100

	// MaxGyro bounds the magnitude of gyro input. Larger readings are
	// clamped so the derivative box sum and the PID sums cannot overflow.
	MaxGyro = 1 << 16

	// maxEuler bounds Euler input in degrees before fixed-point conversion.
	maxEuler = 180
)

// ErrNonFinite is returned by Update for NaN or infinite input.
var ErrNonFinite = errors.New("stabilize: non-finite input")

// Demand is the pilot's stick command, each axis normalized to [-1, 1].
type Demand struct {
	Roll, Pitch, Yaw float64
}

// Sample is one tick of inertial data.
type Sample struct {
	// Gyro is the angular rate per axis in fixed-point gyro units.
	Gyro [NumAxes]int32
	// Euler is the attitude in degrees. Only roll and pitch are used.
	Euler [NumAxes]float64
}

// Output holds the signed per-axis corrections handed to the mixer.
type Output [NumAxes]int32

// Terms are the P, I and D contributions of the last Update on one axis.
// P already includes the gyro damping.
type Terms struct {
	P, I, D int32
}

// Stabilizer owns the persistent state of all three axes.
type Stabilizer struct {
	cfg   Config
	axes  [NumAxes]axisState
	terms [NumAxes]Terms
	out   Output
}

// New validates cfg and returns a Stabilizer with all state zeroed.
func New(cfg Config) (*Stabilizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Stabilizer{cfg: cfg}, nil
}

// Update runs one control tick and returns the new axis outputs.
//
// Non-finite input is rejected with an error wrapping ErrNonFinite; the
// axis state is left untouched and the previous outputs are returned.
// Gyro readings are clamped to MaxGyro.
func (s *Stabilizer) Update(d Demand, in Sample) (Output, error) {
	if err := checkFinite(d, in); err != nil {
		return s.out, err
	}
	for axis := range in.Gyro {
		in.Gyro[axis] = filter.ConstrainAbs(in.Gyro[axis], MaxGyro)
	}

	demand := [NumAxes]int32{
		scaleDemand(d.Roll),
		scaleDemand(d.Pitch),
		scaleDemand(d.Yaw),
	}

	// Proportion of cyclic demand compared to its maximum.
	prop := float64(max(filter.Abs(demand[Roll]), filter.Abs(demand[Pitch]))) / StickRange

	s.out[Roll] = s.levelPID(demand[Roll], prop, in, Roll)
	s.out[Pitch] = s.levelPID(demand[Pitch], prop, in, Pitch)
	s.out[Yaw] = s.yawPID(demand[Yaw], in.Gyro)

	return s.out, nil
}

// ResetIntegral zeroes the gyro and angle integrals of every axis. It must
// be called on throttle cut or disarm. Derivative history is kept.
func (s *Stabilizer) ResetIntegral() {
	for i := range s.axes {
		s.axes[i].errorI = 0
		s.axes[i].angleI = 0
	}
}

// Output returns the outputs of the last successful Update.
func (s *Stabilizer) Output() Output {
	return s.out
}

// Terms returns the PID terms of the last successful Update on axis.
func (s *Stabilizer) Terms(axis Axis) Terms {
	return s.terms[axis]
}

// Integral returns the gyro error integral of axis.
func (s *Stabilizer) Integral(axis Axis) int32 {
	return s.axes[axis].errorI
}

// AngleIntegral returns the angle error integral of axis. It is always
// zero for yaw.
func (s *Stabilizer) AngleIntegral(axis Axis) int32 {
	return s.axes[axis].angleI
}

// Config returns the tuning the Stabilizer was built with.
func (s *Stabilizer) Config() Config {
	return s.cfg
}

// saturate truncates v toward zero and clamps it to the int32 range.
func saturate[T int64 | float64](v T) int32 {
	return int32(filter.Constrain(v, math.MinInt32, math.MaxInt32))
}

func scaleDemand(v float64) int32 {
	return int32(filter.ConstrainAbs(v, 1) * StickRange)
}

func checkFinite(d Demand, in Sample) error {
	finite := func(v float64) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	if !finite(d.Roll) || !finite(d.Pitch) || !finite(d.Yaw) {
		return fmt.Errorf("%w: demand %+v", ErrNonFinite, d)
	}
	if !finite(in.Euler[Roll]) || !finite(in.Euler[Pitch]) {
		return fmt.Errorf("%w: euler roll %v pitch %v", ErrNonFinite, in.Euler[Roll], in.Euler[Pitch])
	}
	return nil
}
