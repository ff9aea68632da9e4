package prefabspline

import (
	"fmt"
	"math"

	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
)

// === Rotations =============================================================

// Euler creates a rotation from Euler angles given in degrees. Rotation order
// is Z first, then X, then Y (roll, pitch, heading).
func Euler(deg vec3.T) quaternion.T {
	return quaternion.FromEulerAngles(deg[1]*Deg2Rad, deg[0]*Deg2Rad, deg[2]*Deg2Rad)
}

// LookRotation creates a rotation which maps the +Z axis onto forward and
// keeps +Y as close to up as possible. If forward is zero, the identity is
// returned. If forward and up are parallel, a substitute up-vector is chosen.
func LookRotation(forward, up vec3.T) quaternion.T {
	if Is0(forward.LengthSqr()) {
		return quaternion.Ident
	}
	z := forward.Normalized()
	x := vec3.Cross(&up, &z)
	if Is0(x.LengthSqr()) {
		tracer().Debugf("look rotation: forward %s parallel to up", VecString(forward))
		alt := Forward
		if math.Abs(z[2]) > 0.9 {
			alt = Right
		}
		x = vec3.Cross(&alt, &z)
	}
	x.Normalize()
	y := vec3.Cross(&z, &x)
	return fromBasis(x, y, z)
}

// fromBasis converts an orthonormal basis (columns of a rotation matrix)
// into a quaternion.
func fromBasis(x, y, z vec3.T) quaternion.T {
	m00, m01, m02 := x[0], y[0], z[0]
	m10, m11, m12 := x[1], y[1], z[1]
	m20, m21, m22 := x[2], y[2], z[2]
	var q quaternion.T
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quaternion.T{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s, 0.25 / s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quaternion.T{0.25 * s, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quaternion.T{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s, (m02 - m20) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quaternion.T{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s, (m10 - m01) / s}
	}
	return q.Normalized()
}

// Rotate applies rotation q to v.
func Rotate(q quaternion.T, v vec3.T) vec3.T {
	return q.RotatedVec3(&v)
}

// === Transforms ============================================================

// Transform is a TRS transform: points are scaled, then rotated, then translated.
// The zero value is not usable; start with Identity().
type Transform struct {
	Position vec3.T
	Rotation quaternion.T
	Scale    vec3.T
}

// Identity transform. Will transform a point onto itself.
func Identity() Transform {
	return Transform{
		Rotation: quaternion.Ident,
		Scale:    One,
	}
}

// Translation transform. Translate a point by v.
func Translation(v vec3.T) Transform {
	t := Identity()
	t.Position = v
	return t
}

// IsIdentity is a predicate: will t map every point onto itself?
func (t Transform) IsIdentity() bool {
	id := quaternion.Ident
	return VecEqual(t.Position, vec3.Zero) && VecEqual(t.Scale, One) &&
		Is1(math.Abs(quaternion.Dot(&t.Rotation, &id)))
}

// Apply transforms a point. The argument is unchanged and a new vector is returned.
func (t Transform) Apply(p vec3.T) vec3.T {
	v := t.ApplyVector(p)
	return vec3.Add(&v, &t.Position)
}

// ApplyVector transforms a direction or velocity vector, i.e. without translation.
func (t Transform) ApplyVector(v vec3.T) vec3.T {
	s := MulComponents(v, t.Scale)
	return t.Rotation.RotatedVec3(&s)
}

// Combine two transforms to a new one: the result first applies inner, then t.
// Scales are combined component-wise, which is exact for uniform scales.
func (t Transform) Combine(inner Transform) Transform {
	return Transform{
		Position: t.Apply(inner.Position),
		Rotation: quaternion.Mul(&t.Rotation, &inner.Rotation),
		Scale:    MulComponents(t.Scale, inner.Scale),
	}
}

// Debug Stringer for a transform.
func (t Transform) String() string {
	return fmt.Sprintf("[T%s|R(%g,%g,%g,%g)|S%s]", VecString(t.Position),
		t.Rotation[0], t.Rotation[1], t.Rotation[2], t.Rotation[3], VecString(t.Scale))
}
