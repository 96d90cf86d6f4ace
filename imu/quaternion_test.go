package imu

import (
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestEulerFromQuaternion(t *testing.T) {
	half := 30.0 / 2 * math.Pi / 180
	cos, sin := math.Cos(half), math.Sin(half)

	tests := []struct {
		name string
		q    [4]float64
		want [3]float64
	}{
		{"identity", [4]float64{1, 0, 0, 0}, [3]float64{0, 0, 0}},
		{"roll", [4]float64{cos, 0, sin, 0}, [3]float64{30, 0, 0}},
		{"pitch", [4]float64{cos, sin, 0, 0}, [3]float64{0, 30, 0}},
		{"heading", [4]float64{cos, 0, 0, sin}, [3]float64{0, 0, -30}},
	}
	c := qt.New(t)
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			got := EulerFromQuaternion(tt.q)
			for i := range got {
				assertNear(c, got[i], tt.want[i], 1e-9)
			}
		})
	}
}

func TestEulerFromQuaternionClampsPitch(t *testing.T) {
	c := qt.New(t)
	// Slightly denormalized quaternion at 90 degrees of pitch.
	s := math.Sqrt(0.5) * 1.0000001
	got := EulerFromQuaternion([4]float64{s, s, 0, 0})
	c.Assert(math.IsNaN(got[1]), qt.IsFalse)
	assertNear(c, got[1], 90, 1e-9)
}

func TestWrapDegrees(t *testing.T) {
	c := qt.New(t)
	for _, tt := range []struct{ in, want float64 }{
		{0, 0},
		{179, 179},
		{180, 180},
		{190, -170},
		{-180, 180},
		{-190, 170},
		{540, 180},
		{-725, -5},
	} {
		assertNear(c, wrapDegrees(tt.in), tt.want, 1e-9)
	}
}
