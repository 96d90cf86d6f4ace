package stabilize

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("stabilize: invalid config")

// Config holds the tuning of the stabilizer. It is copied into the
// Stabilizer at construction and never changes afterwards.
type Config struct {
	// Rate loop gains for roll and pitch.
	RatePitchRollP float64 `yaml:"rate_pitchroll_p"`
	RatePitchRollI float64 `yaml:"rate_pitchroll_i"`
	RatePitchRollD float64 `yaml:"rate_pitchroll_d"`

	// Rate loop gains for yaw. Yaw has no derivative term.
	YawP float64 `yaml:"yaw_p"`
	YawI float64 `yaml:"yaw_i"`

	// Level (angle) loop gain.
	LevelP float64 `yaml:"level_p"`

	// Integral bounds, in accumulator units.
	GyroWindupMax  int32 `yaml:"gyro_windup_max"`
	AngleWindupMax int32 `yaml:"angle_windup_max"`

	// Gyro rate (gyro units) and yaw demand (stick units) above which the
	// gyro integral of the axis is discarded.
	BigGyro      int32 `yaml:"big_gyro"`
	BigYawDemand int32 `yaml:"big_yaw_demand"`

	// Maximum commanded lean angle in degrees.
	MaxLeanAngle float64 `yaml:"max_lean_angle"`

	// Static per-axis offsets added to every output, indexed by Axis.
	Trim [NumAxes]int32 `yaml:"trim"`
}

// DefaultConfig returns a conservative tune for a small quad with gyro
// readings at 4 units per degree per second.
func DefaultConfig() Config {
	return Config{
		RatePitchRollP: 0.3,
		RatePitchRollI: 0.01,
		RatePitchRollD: 0.4,
		YawP:           0.85,
		YawI:           0.045,
		LevelP:         0.1,
		GyroWindupMax:  16000,
		AngleWindupMax: 10000,
		BigGyro:        640,
		BigYawDemand:   100,
		MaxLeanAngle:   50,
	}
}

// Validate reports every out-of-range field, joined, each wrapping
// ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	gain := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be a finite non-negative gain, got %v", ErrInvalidConfig, name, v))
		}
	}
	gain("rate_pitchroll_p", c.RatePitchRollP)
	gain("rate_pitchroll_i", c.RatePitchRollI)
	gain("rate_pitchroll_d", c.RatePitchRollD)
	gain("yaw_p", c.YawP)
	gain("yaw_i", c.YawI)
	gain("level_p", c.LevelP)

	positive := func(name string, v int32) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, name, v))
		}
	}
	positive("gyro_windup_max", c.GyroWindupMax)
	positive("angle_windup_max", c.AngleWindupMax)
	positive("big_gyro", c.BigGyro)
	positive("big_yaw_demand", c.BigYawDemand)

	if !(c.MaxLeanAngle > 0 && c.MaxLeanAngle <= 90) {
		errs = append(errs, fmt.Errorf("%w: max_lean_angle must be in (0, 90], got %v", ErrInvalidConfig, c.MaxLeanAngle))
	}
	return errors.Join(errs...)
}
