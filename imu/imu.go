// Package imu turns raw accelerometer and gyro readings into the
// per-tick samples consumed by the stabilizer.
package imu

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// The LSM6DS3TR driver returns micro-g for accel and micro-dps for gyro.
const (
	microToUnit = 1e-6
	radToDeg    = 180 / math.Pi
)

var (
	// ErrNotConnected is returned when the sensor does not answer.
	ErrNotConnected = errors.New("imu: sensor not connected")
	// ErrInvalidConfig is wrapped by every Config validation failure.
	ErrInvalidConfig = errors.New("imu: invalid config")
)

// Sensor is a 6-axis inertial sensor. *lsm6ds3tr.Device satisfies it.
type Sensor interface {
	// ReadAcceleration returns acceleration in micro-g.
	ReadAcceleration() (x, y, z int32, err error)
	// ReadRotation returns angular rate in micro-degrees per second.
	ReadRotation() (x, y, z int32, err error)
	Connected() bool
}

// QuaternionSensor is a Sensor that fuses attitude on chip, such as the
// USFSMAX. Its quaternion replaces the Kalman filter and the integrated
// heading.
type QuaternionSensor interface {
	Sensor
	// ReadQuaternion returns the ENU attitude as (w, x, y, z).
	ReadQuaternion() ([4]float64, error)
}

// Mount is the orientation of the sensor on the frame.
type Mount int

const (
	Upright Mount = iota
	// Inverted boards are mounted upside down; the yaw rate changes sign.
	Inverted
)

func (m Mount) String() string {
	switch m {
	case Upright:
		return "upright"
	case Inverted:
		return "inverted"
	}
	return fmt.Sprintf("mount(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mount) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mount) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "upright":
		*m = Upright
	case "inverted":
		*m = Inverted
	default:
		return fmt.Errorf("%w: unknown mount %q", ErrInvalidConfig, text)
	}
	return nil
}

// Config tunes the estimator.
type Config struct {
	// GyroScale is the number of fixed-point gyro units per degree/second.
	GyroScale float64 `yaml:"gyro_scale"`
	// LowPassAlpha is the weight of the newest raw sample, in (0, 1].
	LowPassAlpha float64 `yaml:"low_pass_alpha"`
	// Period is the sample interval used to integrate the gyro.
	Period time.Duration `yaml:"period"`
	Mount  Mount         `yaml:"mount"`

	// Kalman filter noise covariances (degrees squared).
	ProcessNoise     float64 `yaml:"process_noise"`
	MeasurementNoise float64 `yaml:"measurement_noise"`

	CalibrationSamples int `yaml:"calibration_samples"`
}

// DefaultConfig returns the settings used on the reference airframe.
func DefaultConfig() Config {
	return Config{
		GyroScale:          4,
		LowPassAlpha:       0.5,
		Period:             10 * time.Millisecond,
		Mount:              Upright,
		ProcessNoise:       0.01,
		MeasurementNoise:   0.5,
		CalibrationSamples: 1000,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, v))
		}
	}
	positive("gyro_scale", c.GyroScale)
	positive("process_noise", c.ProcessNoise)
	positive("measurement_noise", c.MeasurementNoise)
	if !(c.LowPassAlpha > 0 && c.LowPassAlpha <= 1) {
		errs = append(errs, fmt.Errorf("%w: low_pass_alpha must be in (0, 1], got %v", ErrInvalidConfig, c.LowPassAlpha))
	}
	if c.Period <= 0 {
		errs = append(errs, fmt.Errorf("%w: period must be positive, got %v", ErrInvalidConfig, c.Period))
	}
	if c.Mount != Upright && c.Mount != Inverted {
		errs = append(errs, fmt.Errorf("%w: unknown mount %v", ErrInvalidConfig, c.Mount))
	}
	if c.CalibrationSamples <= 0 {
		errs = append(errs, fmt.Errorf("%w: calibration_samples must be positive, got %d", ErrInvalidConfig, c.CalibrationSamples))
	}
	return errors.Join(errs...)
}
