package filter

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestConstrain(t *testing.T) {
	c := qt.New(t)
	c.Assert(Constrain(5, 0, 10), qt.Equals, 5)
	c.Assert(Constrain(-3, 0, 10), qt.Equals, 0)
	c.Assert(Constrain(12.5, 0.0, 10.0), qt.Equals, 10.0)
	c.Assert(Constrain(uint16(900), 988, 2012), qt.Equals, uint16(988))
}

func TestConstrainAbs(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		value, limit, want int32
	}{
		{0, 100, 0},
		{99, 100, 99},
		{101, 100, 100},
		{-101, 100, -100},
		{-100, 100, -100},
	}
	for _, tt := range tests {
		c.Check(ConstrainAbs(tt.value, tt.limit), qt.Equals, tt.want, qt.Commentf("value %d", tt.value))
	}
}

func TestAbs(t *testing.T) {
	c := qt.New(t)
	c.Assert(Abs(int32(-7)), qt.Equals, int32(7))
	c.Assert(Abs(7.5), qt.Equals, 7.5)
}

func TestMapRange(t *testing.T) {
	c := qt.New(t)
	c.Assert(MapRange(1500.0, 1000, 2000, -1, 1), qt.Equals, 0.0)
	c.Assert(MapRange(2000.0, 1000, 2000, -1, 1), qt.Equals, 1.0)
	c.Assert(MapRange(1000.0, 1000, 2000, 0, 1), qt.Equals, 0.0)
}

func TestComplementary(t *testing.T) {
	c := qt.New(t)
	c.Assert(Complementary(10, 20, 1), qt.Equals, 10.0)
	c.Assert(Complementary(10, 20, 0), qt.Equals, 20.0)
	c.Assert(Complementary(10, 20, 0.5), qt.Equals, 15.0)
}

func TestLowPass(t *testing.T) {
	c := qt.New(t)
	lp := NewLowPass(0.5)
	c.Assert(lp.Update(8), qt.Equals, 8.0)
	c.Assert(lp.Update(0), qt.Equals, 4.0)
	c.Assert(lp.Update(0), qt.Equals, 2.0)

	lp.Reset()
	c.Assert(lp.Update(6), qt.Equals, 6.0)
}
