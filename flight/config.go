package flight

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("flight: invalid config")

// Config times the loop.
type Config struct {
	// Period between ticks; it must match the IMU sample period.
	Period time.Duration `yaml:"period"`
	// ThrottleCut is the normalized throttle below which the motors idle
	// and the integrals are held at zero.
	ThrottleCut float64 `yaml:"throttle_cut"`
}

// DefaultConfig runs at 100 Hz with a 5% throttle cut.
func DefaultConfig() Config {
	return Config{
		Period:      10 * time.Millisecond,
		ThrottleCut: 0.05,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Period <= 0 {
		errs = append(errs, fmt.Errorf("%w: period must be positive, got %v", ErrInvalidConfig, c.Period))
	}
	if !(c.ThrottleCut >= 0 && c.ThrottleCut < 1) {
		errs = append(errs, fmt.Errorf("%w: throttle_cut must be in [0, 1), got %v", ErrInvalidConfig, c.ThrottleCut))
	}
	return errors.Join(errs...)
}
