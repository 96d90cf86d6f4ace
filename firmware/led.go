//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/BryanSouza91/RotorFC/flight"
)

// LED patterns
type ledPattern int

const (
	ledOff ledPattern = iota
	ledOn
	ledSlowFlash // disarmed
	ledFastFlash // failsafe
	ledFlash     // initializing or calibrating
)

// Half-period of each flashing pattern.
var ledToggle = map[ledPattern]time.Duration{
	ledSlowFlash: 500 * time.Millisecond,
	ledFastFlash: 50 * time.Millisecond,
	ledFlash:     150 * time.Millisecond,
}

// statusLED shows the flight state on one pin.
type statusLED struct {
	pin        machine.Pin
	pattern    ledPattern
	lastToggle time.Time
	isOn       bool
}

func newStatusLED(pin machine.Pin) *statusLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &statusLED{pin: pin, lastToggle: time.Now()}
}

func (l *statusLED) setState(s flight.State) {
	switch s {
	case flight.Flying:
		l.pattern = ledOn
	case flight.Failsafe:
		l.pattern = ledFastFlash
	default:
		l.pattern = ledSlowFlash
	}
}

// update drives the pin; call it every tick.
func (l *statusLED) update() {
	switch l.pattern {
	case ledOff:
		l.set(false)
	case ledOn:
		l.set(true)
	default:
		now := time.Now()
		if now.Sub(l.lastToggle) >= ledToggle[l.pattern] {
			l.set(!l.isOn)
			l.lastToggle = now
		}
	}
}

func (l *statusLED) set(on bool) {
	l.pin.Set(on)
	l.isOn = on
}
