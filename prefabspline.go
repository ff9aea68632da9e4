/*
Package prefabspline implements placement of object instances along
cubic Bezier splines in 3D. The root package holds the numeric helpers,
3D vector helpers and transforms shared by the sub-packages.

Sub-packages:

	bezier     cubic Bezier segment evaluation
	curve      piecewise cubic curve with tangent modes
	resample   arc-length resampling into a table of samples
	itemseq    sequences of items to place (list, pattern, weighted random)
	placement  instance transforms from a sample table
	ground     polygonal terrain for projecting samples onto the ground
	spline     the owning object tying all of the above together

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package prefabspline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/ungerik/go3d/float64/vec3"
)

// tracer writes to trace with key 'prefabspline'
func tracer() tracing.Trace {
	return tracing.Select("prefabspline")
}

// === Numeric Data Type =====================================================

// Deg2Rad is a constant for converting from DEG to RAD or vice versa
var Deg2Rad float64 = math.Pi / 180

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Is1 is a predicate: is n = 1.0 ?
func Is1(n float64) bool {
	return math.Abs(1-n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// === Vectors ===============================================================

// World axes. The world is Y-up, forward is +Z.
var (
	Up      = vec3.T{0, 1, 0}
	Down    = vec3.T{0, -1, 0}
	Forward = vec3.T{0, 0, 1}
	Right   = vec3.T{1, 0, 0}
	One     = vec3.T{1, 1, 1}
)

// V is a quick notation for contructing a vector from floats.
func V(x, y, z float64) vec3.T {
	return vec3.T{x, y, z}
}

// VecEqual compares two vectors component-wise with tolerance Epsilon.
func VecEqual(a, b vec3.T) bool {
	return Is0(a[0]-b[0]) && Is0(a[1]-b[1]) && Is0(a[2]-b[2])
}

// VecNear compares two vectors with a caller supplied tolerance.
func VecNear(a, b vec3.T, tolerance float64) bool {
	return vec3.Distance(&a, &b) <= tolerance
}

// ZapVec rounds each component to zero if it "means" to be zero.
func ZapVec(v vec3.T) vec3.T {
	return vec3.T{Zap(v[0]), Zap(v[1]), Zap(v[2])}
}

// VecString is a pretty Stringer for simple vectors. Components which
// "mean" to be zero are printed as 0.
func VecString(v vec3.T) string {
	v = ZapVec(v)
	return fmt.Sprintf("(%g,%g,%g)", v[0], v[1], v[2])
}

// ParseVec reads a vector from a string of the form "x,y,z". Whitespace and
// enclosing parentheses are ignored.
func ParseVec(s string) (vec3.T, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return vec3.T{}, fmt.Errorf("vector %q must have 3 components", s)
	}
	var v vec3.T
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return vec3.T{}, fmt.Errorf("vector %q: %w", s, err)
		}
		v[i] = f
	}
	return v, nil
}

// IsFinite is a predicate: are all components of v neither NaN nor Inf?
func IsFinite(v vec3.T) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Lerp interpolates linearly between a and b. t is not clamped.
func Lerp(a, b vec3.T, t float64) vec3.T {
	return vec3.Interpolate(&a, &b, t)
}

// ProjectOnPlane removes the component of v along the plane normal n.
// n need not be normalized; a zero normal leaves v unchanged.
func ProjectOnPlane(v, n vec3.T) vec3.T {
	nn := n.LengthSqr()
	if Is0(nn) {
		return v
	}
	d := vec3.Dot(&v, &n) / nn
	s := n.Scaled(d)
	return vec3.Sub(&v, &s)
}

// MulComponents multiplies two vectors component by component.
func MulComponents(a, b vec3.T) vec3.T {
	return vec3.T{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
