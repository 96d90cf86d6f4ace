package imu

import "math"

// EulerFromQuaternion converts an ENU attitude quaternion (w, x, y, z) to
// roll, pitch and heading in degrees.
func EulerFromQuaternion(q [4]float64) [3]float64 {
	q0, q1, q2, q3 := q[0], q[1], q[2], q[3]
	roll := math.Atan2(2*(q0*q2-q1*q3), q0*q0-q1*q1-q2*q2+q3*q3)
	pitch := math.Asin(clampUnit(2 * (q2*q3 + q0*q1)))
	heading := math.Atan2(2*(q1*q2-q0*q3), q0*q0-q1*q1+q2*q2-q3*q3)
	return [3]float64{roll * radToDeg, pitch * radToDeg, heading * radToDeg}
}

// clampUnit keeps rounding error from pushing asin out of its domain.
func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
