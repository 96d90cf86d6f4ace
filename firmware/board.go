//go:build tinygo

package main

// Hardware mappings and board-level settings. Tuning lives in the
// DefaultConfig of each package.

import "machine"

const (
	Version = "0.2.0"

	// frame selects the mixer table: "quadx" or "elevon".
	frame = "quadx"

	// PWM frequency shared by every output. 400 Hz leaves room for a 2ms
	// pulse and is accepted by ESCs and digital servos.
	outputFrequency = 400

	i2cFrequency = 400 * machine.KHz

	watchdogTimeoutMillis = 500
)

// Outputs in mixer order. For quadx: rear right, front right, rear left,
// front left. For elevon: ESC, left elevon, right elevon.
var outputPins = []machine.Pin{machine.D0, machine.D1, machine.D2, machine.D3}

// --- Hardware Interfaces ---
var (
	outputPWM = machine.PWM0
	imuBus    = machine.I2C0
	rxUART    = machine.DefaultUART
	statusPin = machine.LED
)
