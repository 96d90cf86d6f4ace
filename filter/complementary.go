package filter

// Complementary blends a and b with proportion c: a*c + b*(1-c).
// c == 1 yields a, c == 0 yields b.
func Complementary(a, b, c float64) float64 {
	return a*c + b*(1-c)
}

// LowPass is a first-order exponential smoother.
type LowPass struct {
	Alpha  float64 // weight of the newest sample, in (0, 1]
	value  float64
	primed bool
}

// NewLowPass returns a LowPass with the given smoothing weight.
func NewLowPass(alpha float64) *LowPass {
	return &LowPass{Alpha: alpha}
}

// Update feeds sample and returns the filtered value. The first sample
// seeds the filter so it does not ramp up from zero.
func (f *LowPass) Update(sample float64) float64 {
	if !f.primed {
		f.value = sample
		f.primed = true
		return f.value
	}
	f.value = Complementary(sample, f.value, f.Alpha)
	return f.value
}

// Reset clears the filter so the next sample seeds it again.
func (f *LowPass) Reset() {
	f.value = 0
	f.primed = false
}
