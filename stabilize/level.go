package stabilize

import "github.com/BryanSouza91/RotorFC/filter"

// levelPID computes the roll or pitch output. The stick rate demand and the
// angle correction are blended by prop: 1 is pure rate mode, 0 is pure
// level mode.
func (s *Stabilizer) levelPID(demand int32, prop float64, in Sample, axis Axis) int32 {
	st := &s.axes[axis]

	iGyro := s.integralTerm(s.cfg.RatePitchRollP, s.cfg.RatePitchRollI, demand, in.Gyro, axis)

	// The stick is doubled to [-1000, +1000] and read as tenths of a
	// degree, then the measured angle is taken off.
	maxTenths := int32(10 * s.cfg.MaxLeanAngle)
	euler := filter.ConstrainAbs(in.Euler[axis], maxEuler)
	angleError := filter.ConstrainAbs(2*demand, maxTenths) - int32(10*euler)

	angleP := saturate(float64(angleError) * s.cfg.LevelP)

	// Avoid integral windup
	st.angleI = int32(filter.ConstrainAbs(int64(st.angleI)+int64(angleError), int64(s.cfg.AngleWindupMax)))

	p := saturate(filter.Complementary(float64(demand), float64(angleP), prop))
	i := saturate(float64(iGyro) * prop)
	d := saturate(float64(st.deriv.push(in.Gyro[axis])) * s.cfg.RatePitchRollD)

	return s.pid(s.cfg.RatePitchRollP, p, i, d, in.Gyro, axis)
}
