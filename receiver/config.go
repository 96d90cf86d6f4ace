package receiver

import (
	"errors"
	"fmt"
	"time"
)

// Config selects and maps the receiver.
type Config struct {
	Protocol Protocol      `yaml:"protocol"`
	Mapping  Mapping       `yaml:"mapping"`
	Timeout  time.Duration `yaml:"timeout"` // frame age that counts as no signal
	Serial   SerialConfig  `yaml:"serial"`
}

// SerialConfig describes a host serial port carrying receiver frames.
type SerialConfig struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"` // 0 selects the protocol default
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// DefaultConfig returns an iBus receiver in AETR order.
func DefaultConfig() Config {
	return Config{
		Protocol: ProtocolIBus,
		Mapping:  DefaultMapping(),
		Timeout:  500 * time.Millisecond,
	}
}

// Validate checks the protocol, mapping and timeout.
func (c Config) Validate() error {
	var errs []error
	if _, err := NewParser(c.Protocol); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	if err := c.Mapping.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidConfig, c.Timeout))
	}
	return errors.Join(errs...)
}
