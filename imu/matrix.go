package imu

// Fixed-size 2x2 matrix and 2-vector for the attitude filter. Nothing here
// allocates, so it can run on the control loop.

type mat2 [2][2]float64

type vec2 [2]float64

func identity2() mat2 {
	return mat2{{1, 0}, {0, 1}}
}

func diag2(a, b float64) mat2 {
	return mat2{{a, 0}, {0, b}}
}

func (m mat2) add(o mat2) mat2 {
	for i := range m {
		for j := range m[i] {
			m[i][j] += o[i][j]
		}
	}
	return m
}

func (m mat2) sub(o mat2) mat2 {
	for i := range m {
		for j := range m[i] {
			m[i][j] -= o[i][j]
		}
	}
	return m
}

func (m mat2) mul(o mat2) mat2 {
	var res mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			res[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j]
		}
	}
	return res
}

func (m mat2) mulVec(v vec2) vec2 {
	return vec2{
		m[0][0]*v[0] + m[0][1]*v[1],
		m[1][0]*v[0] + m[1][1]*v[1],
	}
}

func (m mat2) transpose() mat2 {
	return mat2{{m[0][0], m[1][0]}, {m[0][1], m[1][1]}}
}

// inverse returns the inverse of m, or false if m is singular.
func (m mat2) inverse() (mat2, bool) {
	a, b := m[0][0], m[0][1]
	c, d := m[1][0], m[1][1]
	det := a*d - b*c
	if det == 0 {
		return mat2{}, false
	}
	inv := 1 / det
	return mat2{{d * inv, -b * inv}, {-c * inv, a * inv}}, true
}

func (v vec2) add(o vec2) vec2 {
	return vec2{v[0] + o[0], v[1] + o[1]}
}

func (v vec2) sub(o vec2) vec2 {
	return vec2{v[0] - o[0], v[1] - o[1]}
}
