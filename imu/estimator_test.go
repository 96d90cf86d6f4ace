package imu

import (
	"errors"
	"math"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"tinygo.org/x/drivers/lsm6ds3tr"
	"tinygo.org/x/drivers/tester"

	"github.com/BryanSouza91/RotorFC/stabilize"
)

// newFakeLSM returns a bus holding a fake LSM6DS3TR that answers WHO_AM_I.
func newFakeLSM(c *qt.C) (*tester.I2CBus, *tester.I2CDevice8) {
	bus := tester.NewI2CBus(c)
	dev := tester.NewI2CDevice(c, lsm6ds3tr.Address)
	dev.Registers[lsm6ds3tr.WHO_AM_I] = 0x6A
	bus.AddDevice(dev)
	return bus, dev
}

// setVector stores three little-endian int16 readings starting at reg.
func setVector(dev *tester.I2CDevice8, reg uint8, x, y, z int16) {
	for i, v := range []int16{x, y, z} {
		dev.Registers[int(reg)+2*i] = uint8(uint16(v))
		dev.Registers[int(reg)+2*i+1] = uint8(uint16(v) >> 8)
	}
}

func assertNear(c *qt.C, got, want, tol float64) {
	c.Helper()
	c.Assert(math.Abs(got-want) <= tol, qt.IsTrue, qt.Commentf("got %v, want %v +/- %v", got, want, tol))
}

type fakeSensor struct {
	accel, gyro [3]int32
	err         error
}

func (f *fakeSensor) ReadAcceleration() (x, y, z int32, err error) {
	return f.accel[0], f.accel[1], f.accel[2], f.err
}

func (f *fakeSensor) ReadRotation() (x, y, z int32, err error) {
	return f.gyro[0], f.gyro[1], f.gyro[2], f.err
}

func (f *fakeSensor) Connected() bool { return f.err == nil }

func TestNewLSM6DS3TRConfiguresChip(t *testing.T) {
	c := qt.New(t)
	bus, dev := newFakeLSM(c)

	_, err := NewLSM6DS3TR(bus, DefaultConfig())
	c.Assert(err, qt.IsNil)
	c.Assert(dev.Registers[lsm6ds3tr.CTRL1_XL], qt.Equals, uint8(lsm6ds3tr.ACCEL_8G)|uint8(lsm6ds3tr.ACCEL_SR_104))
	c.Assert(dev.Registers[lsm6ds3tr.CTRL2_G], qt.Equals, uint8(lsm6ds3tr.GYRO_1000DPS)|uint8(lsm6ds3tr.GYRO_SR_104))
}

func TestNewLSM6DS3TRNotConnected(t *testing.T) {
	c := qt.New(t)
	bus, dev := newFakeLSM(c)
	dev.Registers[lsm6ds3tr.WHO_AM_I] = 0

	_, err := NewLSM6DS3TR(bus, DefaultConfig())
	c.Assert(err, qt.ErrorIs, ErrNotConnected)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	c := qt.New(t)
	cfg := DefaultConfig()
	cfg.GyroScale = 0
	_, err := New(&fakeSensor{}, cfg)
	c.Assert(err, qt.ErrorIs, ErrInvalidConfig)
}

func TestReadGyroScale(t *testing.T) {
	c := qt.New(t)
	bus, dev := newFakeLSM(c)
	e, err := NewLSM6DS3TR(bus, DefaultConfig())
	c.Assert(err, qt.IsNil)

	// 100 LSB at 1000 dps is 3.5 deg/s, i.e. 14 units at 4 units per deg/s.
	setVector(dev, lsm6ds3tr.OUTX_L_G, 100, -200, 0)
	setVector(dev, lsm6ds3tr.OUTX_L_XL, 0, 0, 4098)

	s, err := e.Read()
	c.Assert(err, qt.IsNil)
	c.Assert(s.Gyro, qt.Equals, [3]int32{14, -28, 0})
	assertNear(c, s.Euler[0], 0, 1e-9)
	assertNear(c, s.Euler[1], 0, 1e-9)
}

func TestReadConvergesToAccelAttitude(t *testing.T) {
	c := qt.New(t)
	bus, dev := newFakeLSM(c)
	e, err := NewLSM6DS3TR(bus, DefaultConfig())
	c.Assert(err, qt.IsNil)

	setVector(dev, lsm6ds3tr.OUTX_L_XL, 0, 0, 4098)
	_, err = e.Read()
	c.Assert(err, qt.IsNil)

	// Roll the frame by about 30 degrees.
	setVector(dev, lsm6ds3tr.OUTX_L_XL, 0, 2049, 3549)
	want := math.Atan2(2049, 3549) * radToDeg

	s, err := e.Read()
	c.Assert(err, qt.IsNil)
	c.Assert(s.Euler[0] > 0 && s.Euler[0] < want, qt.IsTrue, qt.Commentf("roll %v after one tick", s.Euler[0]))

	for i := 0; i < 300; i++ {
		s, err = e.Read()
		c.Assert(err, qt.IsNil)
	}
	assertNear(c, s.Euler[0], want, 0.01)
	assertNear(c, s.Euler[1], 0, 1e-9)
}

func TestCalibrateRemovesBias(t *testing.T) {
	c := qt.New(t)
	bus, dev := newFakeLSM(c)
	e, err := NewLSM6DS3TR(bus, DefaultConfig())
	c.Assert(err, qt.IsNil)

	setVector(dev, lsm6ds3tr.OUTX_L_G, 10, -20, 5)
	setVector(dev, lsm6ds3tr.OUTX_L_XL, 50, -30, 4098)
	c.Assert(e.Calibrate(20), qt.IsNil)

	accelBias, gyroBias := e.Bias()
	assertNear(c, gyroBias[0], 0.35, 1e-9)
	assertNear(c, gyroBias[1], -0.7, 1e-9)
	assertNear(c, accelBias[2], 4098*244e-6-1, 1e-9)

	s, err := e.Read()
	c.Assert(err, qt.IsNil)
	c.Assert(s.Gyro, qt.Equals, [3]int32{0, 0, 0})
	assertNear(c, s.Euler[0], 0, 1e-9)
	assertNear(c, s.Euler[1], 0, 1e-9)
}

func TestReadErrors(t *testing.T) {
	c := qt.New(t)
	bus, dev := newFakeLSM(c)
	e, err := NewLSM6DS3TR(bus, DefaultConfig())
	c.Assert(err, qt.IsNil)

	dev.Err = errors.New("bus fault")
	_, err = e.Read()
	c.Assert(err, qt.ErrorMatches, "imu: read acceleration: bus fault")
	c.Assert(e.Calibrate(3), qt.ErrorMatches, "imu: calibrate: imu: read acceleration: bus fault")
}

func TestInvertedMountNegatesYaw(t *testing.T) {
	c := qt.New(t)
	cfg := DefaultConfig()
	cfg.Mount = Inverted
	sensor := &fakeSensor{accel: [3]int32{0, 0, 1e6}, gyro: [3]int32{2e6, 0, 1e6}}
	e, err := New(sensor, cfg)
	c.Assert(err, qt.IsNil)

	s, err := e.Read()
	c.Assert(err, qt.IsNil)
	c.Assert(s.Gyro, qt.Equals, [3]int32{8, 0, -4})
}

func TestHeadingIntegratesYawRate(t *testing.T) {
	c := qt.New(t)
	cfg := DefaultConfig()
	cfg.Period = 10 * time.Millisecond
	sensor := &fakeSensor{accel: [3]int32{0, 0, 1e6}, gyro: [3]int32{0, 0, 10e6}}
	e, err := New(sensor, cfg)
	c.Assert(err, qt.IsNil)

	var s stabilize.Sample
	for i := 0; i < 100; i++ {
		s, err = e.Read()
		c.Assert(err, qt.IsNil)
	}
	assertNear(c, s.Euler[2], 10, 1e-9)
}

type fusedSensor struct {
	fakeSensor
	q    [4]float64
	qErr error
}

func (f *fusedSensor) ReadQuaternion() ([4]float64, error) {
	return f.q, f.qErr
}

func TestQuaternionSensorAttitude(t *testing.T) {
	c := qt.New(t)
	half := 30.0 / 2 * math.Pi / 180
	sensor := &fusedSensor{
		// Level accel: the chip's attitude wins over the Kalman filter.
		fakeSensor: fakeSensor{accel: [3]int32{0, 0, 1e6}, gyro: [3]int32{1e6, 0, 0}},
		q:          [4]float64{math.Cos(half), 0, math.Sin(half), 0},
	}
	e, err := New(sensor, DefaultConfig())
	c.Assert(err, qt.IsNil)

	s, err := e.Read()
	c.Assert(err, qt.IsNil)
	c.Assert(s.Gyro, qt.Equals, [3]int32{4, 0, 0})
	assertNear(c, s.Euler[0], 30, 1e-9)
	assertNear(c, s.Euler[1], 0, 1e-9)
	assertNear(c, s.Euler[2], 0, 1e-9)

	sensor.qErr = errors.New("fifo empty")
	_, err = e.Read()
	c.Assert(err, qt.ErrorMatches, "imu: read quaternion: fifo empty")
}
