//go:build !tinygo

package receiver

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// OpenSerial opens the port for protocol p.
func OpenSerial(cfg SerialConfig, p Protocol) (io.ReadCloser, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("receiver: no serial device configured")
	}
	baud := cfg.Baud
	if baud == 0 {
		baud = p.BaudRate()
	}
	timeout := cfg.ReadTimeout
	if timeout == 0 {
		timeout = 100 * time.Millisecond
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        baud,
		ReadTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("receiver: open %s: %w", cfg.Device, err)
	}
	return port, nil
}
