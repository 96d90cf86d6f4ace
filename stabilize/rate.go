package stabilize

import "github.com/BryanSouza91/RotorFC/filter"

// integralTerm accumulates the rate error of axis and returns its I term.
// The integral is discarded on a gyro spike, or on a large yaw demand,
// since a big disturbance invalidates the steady-state error it holds.
func (s *Stabilizer) integralTerm(rateP, rateI float64, demand int32, gyro [NumAxes]int32, axis Axis) int32 {
	st := &s.axes[axis]

	rateError := int64(float64(demand)*rateP) - int64(gyro[axis])

	// Avoid integral windup
	st.errorI = int32(filter.ConstrainAbs(int64(st.errorI)+rateError, int64(s.cfg.GyroWindupMax)))

	if filter.Abs(int64(gyro[axis])) > int64(s.cfg.BigGyro) ||
		(axis == Yaw && filter.Abs(demand) > s.cfg.BigYawDemand) {
		st.errorI = 0
	}

	return saturate(float64(st.errorI) * rateI)
}

// pid combines the terms of axis. The gyro rate is subtracted from the P
// term for damping; D is subtracted from the sum.
func (s *Stabilizer) pid(rateP float64, p, i, d int32, gyro [NumAxes]int32, axis Axis) int32 {
	p = saturate(int64(p) - int64(saturate(float64(gyro[axis])*rateP)))
	s.terms[axis] = Terms{P: p, I: i, D: d}
	return saturate(int64(p) + int64(i) - int64(d) + int64(s.cfg.Trim[axis]))
}

// yawPID runs the rate-only yaw loop. P comes straight from the stick and
// there is no D term.
func (s *Stabilizer) yawPID(demand int32, gyro [NumAxes]int32) int32 {
	i := s.integralTerm(s.cfg.YawP, s.cfg.YawI, demand, gyro, Yaw)
	out := s.pid(s.cfg.YawP, demand, i, 0, gyro, Yaw)

	// Prevent "yaw jump" when correction and demand oppose
	return filter.ConstrainAbs(out, YawJumpMargin+filter.Abs(demand))
}
