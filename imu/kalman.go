package imu

// kalman is a two-state filter over [roll, pitch] in degrees. The gyro
// drives the prediction and the accelerometer angles are the measurement.
type kalman struct {
	x vec2 // estimated [roll, pitch]

	p mat2 // estimate error covariance
	q mat2 // process noise covariance
	r mat2 // measurement noise covariance

	f mat2 // state transition
	h mat2 // observation: roll and pitch are measured directly
}

func newKalman(processNoise, measurementNoise float64) kalman {
	return kalman{
		p: identity2(),
		q: diag2(processNoise, processNoise),
		r: diag2(measurementNoise, measurementNoise),
		f: identity2(),
		h: identity2(),
	}
}

// predict advances the state by the gyro rates (degrees/second) over dt.
func (kf *kalman) predict(rollRate, pitchRate, dt float64) {
	kf.x = kf.f.mulVec(kf.x).add(vec2{rollRate * dt, pitchRate * dt})

	// P = F P F^T + Q
	kf.p = kf.f.mul(kf.p).mul(kf.f.transpose()).add(kf.q)
}

// update corrects the state with accelerometer angles in degrees.
func (kf *kalman) update(roll, pitch float64) {
	// Innovation y = z - H x
	y := vec2{roll, pitch}.sub(kf.h.mulVec(kf.x))

	// S = H P H^T + R
	hT := kf.h.transpose()
	s := kf.h.mul(kf.p).mul(hT).add(kf.r)
	sInv, ok := s.inverse()
	if !ok {
		return
	}

	// K = P H^T S^-1
	k := kf.p.mul(hT).mul(sInv)

	kf.x = kf.x.add(k.mulVec(y))
	kf.p = identity2().sub(k.mul(kf.h)).mul(kf.p)
}

// reset places the estimate at the given angles with unit covariance.
func (kf *kalman) reset(roll, pitch float64) {
	kf.x = vec2{roll, pitch}
	kf.p = identity2()
}
