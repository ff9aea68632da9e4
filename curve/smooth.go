package curve

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ungerik/go3d/float64/vec3"
)

// Smooth computes all tangent handles from the anchors, using John Hobby's
// spline interpolation algorithm as known from MetaFont/MetaPost. Anchors are
// kept in place. Directions are solved in the horizontal XZ-plane; the height
// of each handle is interpolated linearly between the heights of its segment's
// anchors. Open curves get neutral curl at both ends, looped curves are solved
// as cycles.
//
// Tension is applied to every segment and is adapted to lie between 3/4 and 4.
// After smoothing, all anchors with two handles are set to mode Aligned.
//
// The curve is left unchanged if an error is returned.
func (c *Curve) Smooth(tension float64) error {
	anchors := c.AnchorCount()
	if c.loop {
		anchors-- // last anchor duplicates the first one
	}
	h := &hobby{
		z:     make([]complex128, anchors),
		cycle: c.loop,
		a:     1 / clampTension(tension),
	}
	for k := range h.z {
		p := c.points[3*k]
		h.z[k] = complex(p[0], p[2])
	}
	if err := h.validate(); err != nil {
		return err
	}
	theta := h.solve()
	tracer().Debugf("hobby angles = %v", theta)
	for k := 0; k < c.SegmentCount(); k++ {
		post, pre := h.controls(k, theta)
		y0, y1 := c.points[3*k][1], c.points[3*k+3][1]
		c.points[3*k+1] = vec3.T{real(post), y0 + (y1-y0)/3, imag(post)}
		c.points[3*k+2] = vec3.T{real(pre), y0 + 2*(y1-y0)/3, imag(pre)}
	}
	for m := range c.modes {
		if c.loop || (m > 0 && m < len(c.modes)-1) {
			c.modes[m] = Aligned
		}
	}
	tracer().Infof("smooth curve = \n%s", AsString(c))
	c.version++
	return nil
}

// Tensions are adapted to lie between 3/4 and 4.
func clampTension(t float64) float64 {
	t = math.Abs(t)
	if t < 0.75 {
		return 0.75
	} else if t > 4.0 {
		return 4.0
	}
	return t
}

// hobby holds a skeleton path of knots in the plane, with uniform tension and
// neutral curl.
type hobby struct {
	z     []complex128 // knots
	cycle bool
	a     float64 // 1/tension, the same before and after every knot
}

func (h *hobby) n() int {
	return len(h.z)
}

// Z returns knot i; cyclic paths are indexed modulo N.
func (h *hobby) Z(i int) complex128 {
	if h.cycle {
		n := h.n()
		i = (i%n + n) % n
	}
	return h.z[i]
}

func (h *hobby) delta(i int) complex128 {
	return h.Z(i+1) - h.Z(i)
}

func (h *hobby) d(i int) float64 {
	return cmplx.Abs(h.delta(i))
}

// Turning angle at z.i.
func (h *hobby) psi(i int) float64 {
	if !h.cycle && (i <= 0 || i >= h.n()-1) {
		return 0
	}
	return reduceAngle(cmplx.Phase(h.delta(i)) - cmplx.Phase(h.delta(i-1)))
}

func (h *hobby) validate() error {
	n := h.n()
	if h.cycle && n < 3 {
		return fmt.Errorf("%w: cycle needs at least 3 anchors, got %d", ErrTooFewKnots, n)
	} else if n < 2 {
		return fmt.Errorf("%w: open curve needs at least 2 anchors, got %d", ErrTooFewKnots, n)
	}
	limit := n - 1
	if h.cycle {
		limit = n
	}
	for i := 0; i < limit; i++ {
		if h.d(i) <= _epsilon {
			return fmt.Errorf("%w between anchors %d and %d", ErrDegenerateSegment, i, (i+1)%n)
		}
	}
	return nil
}

// solve returns the angles θ.i between the outgoing direction at knot i and
// the chord to knot i+1. For cycles, θ has N+1 entries with θ.N = θ.0.
func (h *hobby) solve() []float64 {
	n := h.n()
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	theta := make([]float64, n+1)
	if h.cycle {
		w := make([]float64, n+1)
		u[0], v[0], w[0] = 0, 0, 1
		for i := 1; i <= n; i++ {
			h.eq(i, u, v, w)
		}
		// θ.n = aa + bb·θ.n, running backwards n-1 … 1, then n
		aa, bb := 0.0, 1.0
		for k := n - 1; k >= 1; k-- {
			aa = v[k] - aa*u[k]
			bb = w[k] - bb*u[k]
		}
		aa = v[n] - aa*u[n]
		bb = w[n] - bb*u[n]
		t0 := aa / (1 - bb)
		theta[0], theta[n] = t0, t0
		for k := 1; k < n; k++ {
			v[k] += t0 * w[k]
		}
		for k := n - 1; k >= 1; k-- {
			theta[k] = v[k] - u[k]*theta[k+1]
		}
		return theta
	}
	if n == 2 { // curl meets curl: a straight line
		return theta
	}
	a, b := h.a, h.a
	cc := square(a) / square(b) // curl 1
	u[0] = ((3-a)*cc + b) / (a*cc + 3 - b)
	v[0] = -u[0] * h.psi(1)
	for i := 1; i < n-1; i++ {
		h.eq(i, u, v, nil)
	}
	last := n - 1
	cc = square(b) / square(a)
	ulast := (b*cc + 3 - a) / ((3-b)*cc + a)
	theta[last] = v[last-1] / (u[last-1] - ulast)
	for i := last - 1; i >= 0; i-- {
		theta[i] = v[i] - u[i]*theta[i+1]
	}
	return theta
}

// eq builds the linear equation for knot i, eliminating θ.(i-1).
func (h *hobby) eq(i int, u, v, w []float64) {
	a, b := h.a, h.a
	A := a / (square(b) * h.d(i-1))
	B := (3 - a) / (square(b) * h.d(i-1))
	C := (3 - b) / (square(a) * h.d(i))
	D := b / (square(a) * h.d(i))
	t := B - u[i-1]*A + C
	u[i] = D / t
	v[i] = (-B*h.psi(i) - D*h.psi(i+1) - A*v[i-1]) / t
	if w != nil {
		w[i] = -A * w[i-1] / t
	}
}

// controls returns the post-control of knot k and the pre-control of knot k+1.
func (h *hobby) controls(k int, theta []float64) (complex128, complex128) {
	th := theta[k]
	phi := -h.psi(k+1) - theta[k+1]
	alpha, beta := hobbyParamsAlphaBeta(th, phi)
	rho, sigma := (2+alpha)/beta, (2-alpha)/beta
	dvec := h.delta(k)
	post := h.Z(k) + complex(h.a/3*rho, 0)*dvec*cmplx.Rect(1, th)
	pre := h.Z(k+1) - complex(h.a/3*sigma, 0)*dvec*cmplx.Rect(1, -phi)
	return post, pre
}

func hobbyParamsAlphaBeta(theta, phi float64) (float64, float64) {
	constA := 1.41421356     // sqrt(2) -- empiric constants, as explained by J.Hobby
	constB := 0.0625         // 1/16
	constC := 0.38196601125  // (3 - sqrt(5)) / 2
	constCC := 0.61803398875 // 1 - c
	st, ct := math.Sin(theta), math.Cos(theta)
	sf, cf := math.Sin(phi), math.Cos(phi)
	alpha := constA * (st - constB*sf) * (sf - constB*st) * (ct - cf)
	beta := 1 + constCC*ct + constC*cf
	return alpha, beta
}
