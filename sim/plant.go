// Package sim closes the control loop around a simple rigid-body model so
// tunings can be tried without hardware.
package sim

import (
	"math"
	"time"

	"github.com/BryanSouza91/RotorFC/mixer"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

// PlantConfig sets the dynamics of each axis:
//
//	rate' = Gain*correction - Damping*rate
//	angle' = rate
//
// with rates in degrees/second and the correction recovered from the
// motor commands through the mix table.
type PlantConfig struct {
	Gain      float64
	Damping   float64
	Period    time.Duration
	GyroScale float64 // fixed-point gyro units per degree/second
}

// DefaultPlantConfig matches the default loop period and gyro scale.
func DefaultPlantConfig() PlantConfig {
	return PlantConfig{
		Gain:      10,
		Damping:   1,
		Period:    10 * time.Millisecond,
		GyroScale: 4,
	}
}

// Plant integrates the airframe. Read advances one period and returns the
// sample, WriteMotors latches the next correction.
type Plant struct {
	cfg PlantConfig
	mix *mixer.Mixer
	dt  float64

	correction [stabilize.NumAxes]float64
	rate       [stabilize.NumAxes]float64
	angle      [stabilize.NumAxes]float64
	motors     mixer.Motors
}

// NewPlant returns a level plant at rest.
func NewPlant(cfg PlantConfig, mix *mixer.Mixer) *Plant {
	return &Plant{
		cfg:    cfg,
		mix:    mix,
		dt:     cfg.Period.Seconds(),
		motors: mix.Idle(),
	}
}

// SetAttitude places the plant at the given angles in degrees.
func (p *Plant) SetAttitude(roll, pitch float64) {
	p.angle[stabilize.Roll] = roll
	p.angle[stabilize.Pitch] = pitch
}

// Kick adds a rate disturbance in degrees/second.
func (p *Plant) Kick(axis stabilize.Axis, rate float64) {
	p.rate[axis] += rate
}

// Read implements flight.SampleSource.
func (p *Plant) Read() (stabilize.Sample, error) {
	for axis := range p.rate {
		accel := p.cfg.Gain*p.correction[axis] - p.cfg.Damping*p.rate[axis]
		p.rate[axis] += accel * p.dt
		p.angle[axis] = wrapDegrees(p.angle[axis] + p.rate[axis]*p.dt)
	}

	var s stabilize.Sample
	for axis := range p.rate {
		s.Gyro[axis] = int32(math.Round(p.rate[axis] * p.cfg.GyroScale))
	}
	s.Euler = p.angle
	return s, nil
}

// WriteMotors implements flight.Actuator.
func (p *Plant) WriteMotors(m mixer.Motors) error {
	p.motors = m
	p.correction = p.mix.Axes(m)
	return nil
}

// Attitude returns the angles in degrees.
func (p *Plant) Attitude() [stabilize.NumAxes]float64 { return p.angle }

// Rates returns the angular rates in degrees/second.
func (p *Plant) Rates() [stabilize.NumAxes]float64 { return p.rate }

// Motors returns the last motor command.
func (p *Plant) Motors() mixer.Motors { return p.motors }

func wrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}
