package imu

import (
	"fmt"
	"math"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/lsm6ds3tr"

	"github.com/BryanSouza91/RotorFC/filter"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

// Estimator fuses a Sensor into stabilize.Sample values.
type Estimator struct {
	sensor Sensor
	cfg    Config
	dt     float64

	accelBias [3]float64 // g
	gyroBias  [3]float64 // degrees/second

	accel [3]*filter.LowPass
	gyro  [3]*filter.LowPass

	kf      kalman
	primed  bool
	heading float64
}

// NewLSM6DS3TR configures an LSM6DS3TR on bus for 8 g, 1000 dps at 104 Hz
// and returns an Estimator reading it.
func NewLSM6DS3TR(bus drivers.I2C, cfg Config) (*Estimator, error) {
	lsm := lsm6ds3tr.New(bus)
	if !lsm.Connected() {
		return nil, fmt.Errorf("%w: no LSM6DS3TR at %#x", ErrNotConnected, lsm.Address)
	}
	err := lsm.Configure(lsm6ds3tr.Configuration{
		AccelRange:      lsm6ds3tr.ACCEL_8G,
		AccelSampleRate: lsm6ds3tr.ACCEL_SR_104,
		GyroRange:       lsm6ds3tr.GYRO_1000DPS,
		GyroSampleRate:  lsm6ds3tr.GYRO_SR_104,
	})
	if err != nil {
		return nil, fmt.Errorf("imu: configure LSM6DS3TR: %w", err)
	}
	return New(lsm, cfg)
}

// New returns an Estimator for an already configured sensor.
func New(sensor Sensor, cfg Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Estimator{
		sensor: sensor,
		cfg:    cfg,
		dt:     cfg.Period.Seconds(),
	}
	for axis := range e.accel {
		e.accel[axis] = filter.NewLowPass(cfg.LowPassAlpha)
		e.gyro[axis] = filter.NewLowPass(cfg.LowPassAlpha)
	}
	e.reset()
	return e, nil
}

// Calibrate averages samples readings taken while the frame is stationary
// and level, and uses them as bias. Gravity is kept on the Z axis. A
// samples value of zero or less uses the configured count.
func (e *Estimator) Calibrate(samples int) error {
	if samples <= 0 {
		samples = e.cfg.CalibrationSamples
	}
	var accelSum, gyroSum [3]float64
	var n int
	var lastErr error
	for i := 0; i < samples; i++ {
		accel, gyro, err := e.readRaw()
		if err != nil {
			lastErr = err
			continue
		}
		for axis := range accelSum {
			accelSum[axis] += accel[axis]
			gyroSum[axis] += gyro[axis]
		}
		n++
	}
	if n == 0 {
		return fmt.Errorf("imu: calibrate: %w", lastErr)
	}
	for axis := range accelSum {
		e.accelBias[axis] = accelSum[axis] / float64(n)
		e.gyroBias[axis] = gyroSum[axis] / float64(n)
	}
	e.accelBias[2] -= 1
	e.reset()
	return nil
}

// Bias returns the accelerometer (g) and gyro (degrees/second) offsets
// found by Calibrate.
func (e *Estimator) Bias() (accel, gyro [3]float64) {
	return e.accelBias, e.gyroBias
}

// Read takes one reading and returns the gyro rates in fixed-point units
// and the fused attitude in degrees.
func (e *Estimator) Read() (stabilize.Sample, error) {
	accel, gyro, err := e.readRaw()
	if err != nil {
		return stabilize.Sample{}, err
	}
	for axis := range accel {
		accel[axis] = e.accel[axis].Update(accel[axis] - e.accelBias[axis])
		gyro[axis] = e.gyro[axis].Update(gyro[axis] - e.gyroBias[axis])
	}
	if e.cfg.Mount == Inverted {
		gyro[2] = -gyro[2]
	}

	euler, err := e.attitude(accel, gyro)
	if err != nil {
		return stabilize.Sample{}, err
	}

	var s stabilize.Sample
	for axis := range gyro {
		s.Gyro[axis] = int32(math.Round(gyro[axis] * e.cfg.GyroScale))
	}
	s.Euler = euler
	return s, nil
}

// attitude returns roll, pitch and heading in degrees, from the chip's
// quaternion when it has one and from the Kalman filter otherwise.
func (e *Estimator) attitude(accel, gyro [3]float64) ([3]float64, error) {
	if qs, ok := e.sensor.(QuaternionSensor); ok {
		q, err := qs.ReadQuaternion()
		if err != nil {
			return [3]float64{}, fmt.Errorf("imu: read quaternion: %w", err)
		}
		return EulerFromQuaternion(q), nil
	}

	roll, pitch := accelAngles(accel)
	if !e.primed {
		e.kf.reset(roll, pitch)
		e.primed = true
	} else {
		e.kf.predict(gyro[0], gyro[1], e.dt)
		e.kf.update(roll, pitch)
	}
	e.heading = wrapDegrees(e.heading + gyro[2]*e.dt)
	return [3]float64{e.kf.x[0], e.kf.x[1], e.heading}, nil
}

func (e *Estimator) readRaw() (accel, gyro [3]float64, err error) {
	ax, ay, az, err := e.sensor.ReadAcceleration()
	if err != nil {
		return accel, gyro, fmt.Errorf("imu: read acceleration: %w", err)
	}
	gx, gy, gz, err := e.sensor.ReadRotation()
	if err != nil {
		return accel, gyro, fmt.Errorf("imu: read rotation: %w", err)
	}
	accel = [3]float64{float64(ax) * microToUnit, float64(ay) * microToUnit, float64(az) * microToUnit}
	gyro = [3]float64{float64(gx) * microToUnit, float64(gy) * microToUnit, float64(gz) * microToUnit}
	return accel, gyro, nil
}

func (e *Estimator) reset() {
	for axis := range e.accel {
		e.accel[axis].Reset()
		e.gyro[axis].Reset()
	}
	e.kf = newKalman(e.cfg.ProcessNoise, e.cfg.MeasurementNoise)
	e.primed = false
	e.heading = 0
}

// accelAngles returns roll and pitch in degrees from the gravity vector.
func accelAngles(a [3]float64) (roll, pitch float64) {
	roll = math.Atan2(a[1], a[2])
	pitch = math.Atan2(-a[0], math.Sqrt(a[1]*a[1]+a[2]*a[2]))
	return roll * radToDeg, pitch * radToDeg
}

// wrapDegrees maps an angle to (-180, 180].
func wrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}
