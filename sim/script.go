package sim

import (
	"fmt"
	"sort"

	"github.com/BryanSouza91/RotorFC/receiver"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

// Step holds a command for a number of ticks.
type Step struct {
	Ticks   int
	Command receiver.Command
}

// Script plays a sequence of steps, one tick per Command call. The last
// command is held once the script is over.
type Script struct {
	steps []Step
	step  int
	tick  int
}

// NewScript returns a script playing steps in order.
func NewScript(steps ...Step) *Script {
	return &Script{steps: steps}
}

// Command implements flight.CommandSource.
func (s *Script) Command() (receiver.Command, error) {
	if len(s.steps) == 0 {
		return receiver.Command{}, fmt.Errorf("%w: empty script", receiver.ErrNoSignal)
	}
	for s.step < len(s.steps)-1 && s.tick >= s.steps[s.step].Ticks {
		s.step++
		s.tick = 0
	}
	s.tick++
	return s.steps[s.step].Command, nil
}

// Len returns the total number of scripted ticks.
func (s *Script) Len() int {
	var n int
	for _, st := range s.steps {
		n += st.Ticks
	}
	return n
}

// Done reports whether every step has been played.
func (s *Script) Done() bool {
	return len(s.steps) == 0 ||
		(s.step == len(s.steps)-1 && s.tick >= s.steps[s.step].Ticks)
}

func hover(ticks int, d stabilize.Demand) Step {
	return Step{Ticks: ticks, Command: receiver.Command{Demand: d, Throttle: 0.5}}
}

var scripts = map[string]func() []Step{
	"hover": func() []Step {
		return []Step{hover(500, stabilize.Demand{})}
	},
	"roll-step": func() []Step {
		return []Step{
			{Ticks: 50},
			hover(100, stabilize.Demand{}),
			hover(100, stabilize.Demand{Roll: 0.5}),
			hover(300, stabilize.Demand{}),
		}
	},
	"flip": func() []Step {
		return []Step{
			hover(100, stabilize.Demand{}),
			hover(100, stabilize.Demand{Roll: 1}),
			hover(400, stabilize.Demand{}),
		}
	},
	"yaw-spin": func() []Step {
		return []Step{
			hover(100, stabilize.Demand{}),
			hover(200, stabilize.Demand{Yaw: 1}),
			hover(200, stabilize.Demand{}),
		}
	},
}

// LoadScript returns a named script.
func LoadScript(name string) (*Script, error) {
	gen, ok := scripts[name]
	if !ok {
		return nil, fmt.Errorf("sim: script %q not found", name)
	}
	return NewScript(gen()...), nil
}

// Scripts returns the names accepted by LoadScript.
func Scripts() []string {
	var s []string
	for name := range scripts {
		s = append(s, name)
	}
	sort.Strings(s)
	return s
}
