package stabilize

// Axis identifies one rotational degree of freedom.
type Axis int

// Axes, in the order used by every per-axis array.
const (
	Roll Axis = iota
	Pitch
	Yaw

	NumAxes = 3
)

func (a Axis) String() string {
	switch a {
	case Roll:
		return "roll"
	case Pitch:
		return "pitch"
	case Yaw:
		return "yaw"
	}
	return "unknown"
}

// levels reports whether the axis runs the angle loop.
func (a Axis) levels() bool {
	return a == Roll || a == Pitch
}

// derivative keeps the last gyro reading and the two previous deltas. The
// current delta plus the two history slots form a 3-sample box sum.
type derivative struct {
	lastGyro int32
	delta1   int32
	delta2   int32
}

// push records gyro and returns the smoothed delta sum. The oldest delta
// is dropped.
func (d *derivative) push(gyro int32) int32 {
	delta := gyro - d.lastGyro
	d.lastGyro = gyro
	sum := d.delta1 + d.delta2 + delta
	d.delta2 = d.delta1
	d.delta1 = delta
	return sum
}

// axisState is the persistent per-axis controller state.
type axisState struct {
	errorI int32 // gyro error integral
	angleI int32 // angle error integral, roll and pitch only
	deriv  derivative
}
