// Package config loads the complete tuning of the flight controller from
// one YAML document.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BryanSouza91/RotorFC/flight"
	"github.com/BryanSouza91/RotorFC/imu"
	"github.com/BryanSouza91/RotorFC/mixer"
	"github.com/BryanSouza91/RotorFC/receiver"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

// Config groups the settings of every package.
type Config struct {
	Stabilize stabilize.Config `yaml:"stabilize"`
	IMU       imu.Config       `yaml:"imu"`
	Receiver  receiver.Config  `yaml:"receiver"`
	Mixer     mixer.Config     `yaml:"mixer"`
	Loop      flight.Config    `yaml:"loop"`
}

// Default returns a flyable configuration.
func Default() *Config {
	return &Config{
		Stabilize: stabilize.DefaultConfig(),
		IMU:       imu.DefaultConfig(),
		Receiver:  receiver.DefaultConfig(),
		Mixer:     mixer.DefaultConfig(),
		Loop:      flight.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML document over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every section and that the IMU samples once per tick.
func (c *Config) Validate() error {
	errs := []error{
		c.Stabilize.Validate(),
		c.IMU.Validate(),
		c.Receiver.Validate(),
		c.Mixer.Validate(),
		c.Loop.Validate(),
	}
	if c.IMU.Period != c.Loop.Period {
		errs = append(errs, fmt.Errorf("config: imu period %v differs from loop period %v", c.IMU.Period, c.Loop.Period))
	}
	return errors.Join(errs...)
}

// Encode writes c as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
