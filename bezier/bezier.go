// Package bezier evaluates single cubic Bezier segments in 3D.
//
// All functions are pure. The parameter u is expected to lie in [0,1]; values
// outside are mathematically valid (the polynomial is extrapolated), but callers
// usually clamp before evaluating.
package bezier

import "github.com/ungerik/go3d/float64/vec3"

// Point returns the position on the cubic Bezier segment p0..p3 at u,
// computed by the Bernstein blend
//
//	(1-u)³·p0 + 3(1-u)²u·p1 + 3(1-u)u²·p2 + u³·p3
func Point(p0, p1, p2, p3 vec3.T, u float64) vec3.T {
	v := 1 - u
	b0, b1, b2, b3 := v*v*v, 3*v*v*u, 3*v*u*u, u*u*u
	return vec3.T{
		b0*p0[0] + b1*p1[0] + b2*p2[0] + b3*p3[0],
		b0*p0[1] + b1*p1[1] + b2*p2[1] + b3*p3[1],
		b0*p0[2] + b1*p1[2] + b2*p2[2] + b3*p3[2],
	}
}

// FirstDerivative returns the velocity of the cubic Bezier segment p0..p3 at u:
//
//	3(1-u)²·(p1-p0) + 6(1-u)u·(p2-p1) + 3u²·(p3-p2)
func FirstDerivative(p0, p1, p2, p3 vec3.T, u float64) vec3.T {
	v := 1 - u
	d0 := vec3.Sub(&p1, &p0)
	d1 := vec3.Sub(&p2, &p1)
	d2 := vec3.Sub(&p3, &p2)
	c0, c1, c2 := 3*v*v, 6*v*u, 3*u*u
	return vec3.T{
		c0*d0[0] + c1*d1[0] + c2*d2[0],
		c0*d0[1] + c1*d1[1] + c2*d2[1],
		c0*d0[2] + c1*d1[2] + c2*d2[2],
	}
}

// Segment is a cubic Bezier segment given by its four control points.
type Segment [4]vec3.T

// Eval returns the position at u.
func (s Segment) Eval(u float64) vec3.T {
	return Point(s[0], s[1], s[2], s[3], u)
}

// Deriv returns the first derivative at u.
func (s Segment) Deriv(u float64) vec3.T {
	return FirstDerivative(s[0], s[1], s[2], s[3], u)
}
