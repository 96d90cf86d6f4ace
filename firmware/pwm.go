//go:build tinygo

package main

import (
	"fmt"
	"machine"

	"github.com/BryanSouza91/RotorFC/mixer"
)

// pwmGroup is one PWM peripheral with several channels.
type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmActuator writes motor pulse widths to PWM channels.
type pwmActuator struct {
	pwm      pwmGroup
	channels []uint8
	periodNs uint64
}

func newPWMActuator(pwm pwmGroup, pins []machine.Pin, count int, frequency uint64) (*pwmActuator, error) {
	if count > len(pins) {
		return nil, fmt.Errorf("pwm: mixer needs %d outputs, board has %d", count, len(pins))
	}
	a := &pwmActuator{pwm: pwm, periodNs: uint64(machine.GHz) / frequency}
	if err := pwm.Configure(machine.PWMConfig{Period: a.periodNs}); err != nil {
		return nil, fmt.Errorf("pwm: configure: %w", err)
	}
	for _, pin := range pins[:count] {
		ch, err := pwm.Channel(pin)
		if err != nil {
			return nil, fmt.Errorf("pwm: channel for pin %d: %w", pin, err)
		}
		a.channels = append(a.channels, ch)
	}
	return a, nil
}

// WriteMotors converts each pulse width in microseconds to a duty cycle
// relative to the PWM period.
func (a *pwmActuator) WriteMotors(m mixer.Motors) error {
	top := uint64(a.pwm.Top())
	for i, ch := range a.channels {
		duty := uint64(m[i]) * 1000 * top / a.periodNs
		a.pwm.Set(ch, uint32(duty))
	}
	return nil
}
