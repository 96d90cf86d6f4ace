package mixer

import "fmt"

// Config selects the airframe.
type Config struct {
	Frame string `yaml:"frame"`
}

// DefaultConfig returns a quad in X configuration.
func DefaultConfig() Config {
	return Config{Frame: "quadx"}
}

// Validate checks that the frame is known.
func (c Config) Validate() error {
	if _, err := New(c.Frame); err != nil {
		return fmt.Errorf("mixer: frame: %w", err)
	}
	return nil
}
