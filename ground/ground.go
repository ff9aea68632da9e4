/*
Package ground provides a simple polygonal terrain for projecting placed
instances onto the ground.

A terrain consists of plateaus: flat regions at a given height, with a
polygonal footprint in the XZ-plane. A plateau's surface normal may be
tilted to mimic a slope. Probing the terrain straight down from a point
hits the highest plateau at or below that point whose footprint contains
the point.

Footprints are handled by polyclip, so plateaus may be merged by union.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package ground

import (
	"errors"
	"fmt"
	"strings"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/npillmayer/prefabspline"
	"github.com/npillmayer/prefabspline/placement"
	"github.com/npillmayer/schuko/tracing"
	"github.com/ungerik/go3d/float64/vec3"
)

// tracer writes to trace with key 'ground'
func tracer() tracing.Trace {
	return tracing.Select("ground")
}

// ErrDegenerateFootprint is the panic value for footprints with fewer than 3 knots.
var ErrDegenerateFootprint = errors.New("footprint needs at least 3 knots")

// Plateau is a flat region at a height, with a polygonal footprint in the
// XZ-plane. Plateaus are immutable.
type Plateau struct {
	height float64
	normal vec3.T
	shape  polyclip.Polygon
}

// Builder collects the knots of a plateau's footprint.
type Builder struct {
	height  float64
	contour polyclip.Contour
}

// NullPlateau starts a footprint at the given height. Add knots with Knot and
// close it with Cycle:
//
//	p := NullPlateau(2).Knot(0, 0).Knot(1, 3).Knot(3, 0).Cycle()
func NullPlateau(height float64) *Builder {
	return &Builder{height: height}
}

// Knot appends a footprint vertex at (x,z).
func (b *Builder) Knot(x, z float64) *Builder {
	b.contour.Add(polyclip.Point{X: x, Y: z})
	return b
}

// Cycle closes the footprint and returns the plateau. The surface normal is
// straight up. Panics if fewer than 3 knots have been added.
func (b *Builder) Cycle() *Plateau {
	if len(b.contour) < 3 {
		panic(fmt.Errorf("%w: got %d", ErrDegenerateFootprint, len(b.contour)))
	}
	return &Plateau{
		height: b.height,
		normal: prefabspline.Up,
		shape:  polyclip.Polygon{append(polyclip.Contour(nil), b.contour...)},
	}
}

// Box is a plateau with a rectangular footprint, given by two opposite corners.
func Box(height, x0, z0, x1, z1 float64) *Plateau {
	return NullPlateau(height).Knot(x0, z0).Knot(x1, z0).Knot(x1, z1).Knot(x0, z1).Cycle()
}

// N returns the number of footprint vertices.
func (p *Plateau) N() int {
	n := 0
	for _, c := range p.shape {
		n += len(c)
	}
	return n
}

// Height returns the height of the plateau's surface.
func (p *Plateau) Height() float64 {
	return p.height
}

// Normal returns the surface normal.
func (p *Plateau) Normal() vec3.T {
	return p.normal
}

// WithNormal returns a copy of p with a different surface normal. The
// footprint stays flat; the normal only tilts instances placed on it.
func (p *Plateau) WithNormal(n vec3.T) *Plateau {
	q := *p
	if prefabspline.Is0(n.LengthSqr()) {
		tracer().Errorf("plateau normal must not be zero, keeping %s", prefabspline.VecString(p.normal))
		return &q
	}
	q.normal = n.Normalized()
	return &q
}

// Union merges the footprints of p and other. The result has p's height
// and normal.
func (p *Plateau) Union(other *Plateau) *Plateau {
	return &Plateau{
		height: p.height,
		normal: p.normal,
		shape:  p.shape.Construct(polyclip.UNION, other.shape),
	}
}

// Contains is a predicate: is (x,z) inside the footprint? Footprints with
// holes use the even-odd rule.
func (p *Plateau) Contains(x, z float64) bool {
	pt := polyclip.Point{X: x, Y: z}
	bbox := p.shape.BoundingBox()
	if x < bbox.Min.X || x > bbox.Max.X || z < bbox.Min.Y || z > bbox.Max.Y {
		return false
	}
	inside := false
	for _, c := range p.shape {
		if c.Contains(pt) {
			inside = !inside
		}
	}
	return inside
}

// AsString returns a plateau as a (debugging) string, contours separated
// by newlines:
//
//	@2: (0,0) -- (1,3) -- (3,0) -- cycle
func AsString(p *Plateau) string {
	var sb strings.Builder
	for i, c := range p.shape {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "@%g: ", p.height)
		for _, pt := range c {
			fmt.Fprintf(&sb, "(%g,%g) -- ", pt.X, pt.Y)
		}
		sb.WriteString("cycle")
	}
	return sb.String()
}

// --- Terrain ---------------------------------------------------------------

// Terrain is a set of plateaus. It implements placement.Ground.
type Terrain struct {
	plateaus []*Plateau
}

var _ placement.Ground = (*Terrain)(nil)

// NewTerrain creates a terrain from plateaus.
func NewTerrain(plateaus ...*Plateau) *Terrain {
	return &Terrain{plateaus: append([]*Plateau(nil), plateaus...)}
}

// Add adds a plateau to the terrain.
func (t *Terrain) Add(p *Plateau) {
	t.plateaus = append(t.plateaus, p)
}

// Cast casts a ray onto the terrain from origin. Only downward rays can hit a
// plateau; the hit is on the highest plateau at or below origin whose
// footprint contains origin's XZ position.
func (t *Terrain) Cast(origin, direction vec3.T) (placement.Hit, bool) {
	d := direction
	if prefabspline.Is0(d.LengthSqr()) {
		return placement.Hit{}, false
	}
	d.Normalize()
	if !prefabspline.VecEqual(d, prefabspline.Down) {
		tracer().Debugf("terrain supports downward rays only, got %s", prefabspline.VecString(direction))
		return placement.Hit{}, false
	}
	var best *Plateau
	for _, p := range t.plateaus {
		if p.height > origin[1]+prefabspline.Epsilon || !p.Contains(origin[0], origin[2]) {
			continue
		}
		if best == nil || p.height > best.height {
			best = p
		}
	}
	if best == nil {
		return placement.Hit{}, false
	}
	return placement.Hit{
		Point:  vec3.T{origin[0], best.height, origin[2]},
		Normal: best.normal,
	}, true
}
