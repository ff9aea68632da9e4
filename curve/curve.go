package curve

import (
	"fmt"

	"github.com/npillmayer/prefabspline"
	"github.com/npillmayer/prefabspline/bezier"
	"github.com/ungerik/go3d/float64/vec3"
)

// New creates the default curve: one straight segment of four points
// along the x-axis, both anchors in mode Free, not looped.
func New() *Curve {
	return &Curve{
		points: []vec3.T{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}},
		modes:  []TangentMode{Free, Free},
	}
}

// FromPoints creates a curve from persisted control points and modes. The
// arrays are copied. If loop is set, the seam is closed by forcing the last
// anchor onto the first one.
func FromPoints(points []vec3.T, modes []TangentMode, loop bool) (*Curve, error) {
	n := len(points)
	if n < 4 || n%3 != 1 {
		return nil, fmt.Errorf("%w: %d points, need 3k+1 with k ≥ 1", ErrInvalidLayout, n)
	}
	if len(modes) != (n+2)/3 {
		return nil, fmt.Errorf("%w: %d modes for %d points, need %d", ErrInvalidLayout,
			len(modes), n, (n+2)/3)
	}
	for i, p := range points {
		if !prefabspline.IsFinite(p) {
			return nil, fmt.Errorf("%w: point %d is not finite", ErrInvalidLayout, i)
		}
	}
	for i, m := range modes {
		if m < Free || m > Mirrored {
			return nil, fmt.Errorf("%w: mode %d is %s", ErrInvalidLayout, i, m)
		}
	}
	c := &Curve{
		points: append([]vec3.T(nil), points...),
		modes:  append([]TangentMode(nil), modes...),
	}
	if loop {
		c.SetLoop(true)
	}
	return c, nil
}

// === Index arithmetic ======================================================

// IsAnchor is a predicate: is point i an anchor (as opposed to a tangent handle)?
func IsAnchor(i int) bool {
	return i%3 == 0
}

// AnchorOf returns the index of the anchor nearest to point i, i.e. the anchor
// which owns handle i.
func AnchorOf(i int) int {
	return modeIndex(i) * 3
}

// modeIndex maps a point index to the index of the mode of its anchor.
func modeIndex(i int) int {
	return (i + 1) / 3
}

func (c *Curve) checkIndex(i int) {
	if i < 0 || i >= len(c.points) {
		panic(fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(c.points)))
	}
}

// === Properties ============================================================

// PointCount returns the number of control points, 3·SegmentCount()+1.
func (c *Curve) PointCount() int {
	return len(c.points)
}

// SegmentCount returns the number of cubic segments.
func (c *Curve) SegmentCount() int {
	return (len(c.points) - 1) / 3
}

// AnchorCount returns the number of anchors, which equals the number of modes.
func (c *Curve) AnchorCount() int {
	return len(c.modes)
}

// Loop is a predicate: is this curve closed?
func (c *Curve) Loop() bool {
	return c.loop
}

// Version returns a counter which changes with every edit of the curve.
// Clients use it to detect stale derived data.
func (c *Curve) Version() uint64 {
	return c.version
}

// Points returns a copy of all control points.
func (c *Curve) Points() []vec3.T {
	return append([]vec3.T(nil), c.points...)
}

// Modes returns a copy of all anchor modes.
func (c *Curve) Modes() []TangentMode {
	return append([]TangentMode(nil), c.modes...)
}

// Point returns control point i. Panics if i is out of range.
func (c *Curve) Point(i int) vec3.T {
	c.checkIndex(i)
	return c.points[i]
}

// Segment returns the four control points of segment k.
func (c *Curve) Segment(k int) bezier.Segment {
	if k < 0 || k >= c.SegmentCount() {
		panic(fmt.Errorf("%w: segment %d not in [0,%d)", ErrIndexOutOfRange, k, c.SegmentCount()))
	}
	i := 3 * k
	return bezier.Segment{c.points[i], c.points[i+1], c.points[i+2], c.points[i+3]}
}

// Mode returns the tangent mode of the anchor nearest to point i.
func (c *Curve) Mode(i int) TangentMode {
	c.checkIndex(i)
	return c.modes[modeIndex(i)]
}

// === Editing ===============================================================

// SetPoint moves control point i to p. Moving an anchor translates its
// tangent handles by the same delta; at the loop seam this wraps around, at
// the ends of an open curve only the existing handle moves. Afterwards the
// tangent mode at the affected anchor is enforced.
func (c *Curve) SetPoint(i int, p vec3.T) {
	c.checkIndex(i)
	n := len(c.points)
	if IsAnchor(i) {
		delta := vec3.Sub(&p, &c.points[i])
		if c.loop {
			switch i {
			case 0:
				c.points[1].Add(&delta)
				c.points[n-2].Add(&delta)
				c.points[n-1] = p
			case n - 1:
				c.points[0] = p
				c.points[1].Add(&delta)
				c.points[i-1].Add(&delta)
			default:
				c.points[i-1].Add(&delta)
				c.points[i+1].Add(&delta)
			}
		} else {
			if i > 0 {
				c.points[i-1].Add(&delta)
			}
			if i+1 < n {
				c.points[i+1].Add(&delta)
			}
		}
	}
	c.points[i] = p
	c.enforce(i)
	c.version++
}

// SetMode sets the tangent mode of the anchor nearest to point i. On a looped
// curve the first and last anchor share their mode. The mode is enforced
// immediately.
func (c *Curve) SetMode(i int, mode TangentMode) {
	c.checkIndex(i)
	m := modeIndex(i)
	c.modes[m] = mode
	if c.loop {
		if m == 0 {
			c.modes[len(c.modes)-1] = mode
		} else if m == len(c.modes)-1 {
			c.modes[0] = mode
		}
	}
	c.enforce(i)
	c.version++
}

// EnforceMode re-establishes the tangent mode at the anchor next to point i,
// where i is the point which has just been edited. The handle on the other
// side of the anchor is recomputed; the edited handle stays fixed.
//
// Free anchors and the end anchors of an open curve are left untouched.
func (c *Curve) EnforceMode(i int) {
	c.checkIndex(i)
	c.enforce(i)
	c.version++
}

func (c *Curve) enforce(i int) {
	m := modeIndex(i)
	mode := c.modes[m]
	if mode == Free || !c.loop && (m == 0 || m == len(c.modes)-1) {
		return
	}
	n := len(c.points)
	middle := m * 3
	var fixed, enforced int
	if i <= middle {
		fixed, enforced = middle-1, middle+1
	} else {
		fixed, enforced = middle+1, middle-1
	}
	// wrap around the loop seam
	if fixed < 0 {
		fixed = n - 2
	} else if fixed >= n {
		fixed = 1
	}
	if enforced < 0 {
		enforced = n - 2
	} else if enforced >= n {
		enforced = 1
	}
	anchor := c.points[middle]
	tangent := vec3.Sub(&anchor, &c.points[fixed])
	if mode == Aligned {
		dist := vec3.Distance(&anchor, &c.points[enforced])
		tangent.Normalize()
		tangent.Scale(dist)
	}
	c.points[enforced] = vec3.Add(&anchor, &tangent)
	tracer().Debugf("enforced %s at anchor %d: handle %d = %s", mode, middle, enforced,
		prefabspline.VecString(c.points[enforced]))
}

// SetLoop opens or closes the curve. Closing forces the last anchor's position
// and mode onto the first one's. Opening leaves the seam points as independent
// copies.
func (c *Curve) SetLoop(loop bool) {
	c.loop = loop
	if loop {
		c.modes[len(c.modes)-1] = c.modes[0]
		c.SetPoint(0, c.points[0])
	}
	c.version++
}

// AppendSegment adds a segment at the end of the curve. The three new points
// continue the direction of the last tangent in unit steps. The new anchor
// inherits the mode of the previous last anchor. On a looped curve the new
// end is joined back to the start.
func (c *Curve) AppendSegment() {
	n := len(c.points)
	last := c.points[n-1]
	dir := vec3.Sub(&last, &c.points[n-2])
	if prefabspline.Is0(dir.LengthSqr()) {
		dir = prefabspline.Right
	}
	dir.Normalize()
	for k := 1; k <= 3; k++ {
		step := dir.Scaled(float64(k))
		c.points = append(c.points, vec3.Add(&last, &step))
	}
	c.modes = append(c.modes, c.modes[len(c.modes)-1])
	c.enforce(n - 1)
	if c.loop {
		c.closeSeam()
	}
	tracer().Debugf("appended segment, curve has %d segments", c.SegmentCount())
	c.version++
}

// InsertSegment splits the curve at the anchor nearest to point i by
// inserting a new anchor with its two handles right after that anchor's
// outgoing handle. New points are offset along +x from the anchor; their
// placement is a starting point for further editing, not geometrically
// optimised. Inserting at the last anchor appends a segment instead.
func (c *Curve) InsertSegment(i int) {
	c.checkIndex(i)
	a := AnchorOf(i)
	if a >= len(c.points)-2 {
		c.AppendSegment()
		return
	}
	anchor := c.points[a]
	fresh := make([]vec3.T, 3)
	for k := range fresh {
		fresh[k] = vec3.T{anchor[0] + float64(k+1), anchor[1], anchor[2]}
	}
	points := make([]vec3.T, 0, len(c.points)+3)
	points = append(points, c.points[:a+2]...)
	points = append(points, fresh...)
	points = append(points, c.points[a+2:]...)
	m := modeIndex(i)
	modes := make([]TangentMode, 0, len(c.modes)+1)
	modes = append(modes, c.modes[:m+1]...)
	modes = append(modes, c.modes[m:]...)
	c.points, c.modes = points, modes
	c.enforce(i)
	if c.loop {
		c.closeSeam()
	}
	tracer().Debugf("inserted segment after anchor %d", a)
	c.version++
}

// RemoveAnchor removes the anchor nearest to point i together with its
// handles: three points in total, the anchor plus both handles for an interior
// anchor, or the anchor plus the two points towards the interior for an end
// anchor. The anchor's mode is removed as well.
//
// On a looped curve, the closing anchor is the first anchor.
//
// Returns false, leaving the curve unchanged, if the curve would drop below
// one segment.
func (c *Curve) RemoveAnchor(i int) bool {
	c.checkIndex(i)
	n := len(c.points)
	if n <= 4 {
		tracer().Debugf("cannot remove anchor from single segment curve")
		return false
	}
	a := AnchorOf(i)
	if c.loop && a == n-1 {
		a = 0
	}
	var from int
	switch a {
	case 0:
		from = 0
	case n - 1:
		from = n - 3
	default:
		from = a - 1
	}
	points := make([]vec3.T, 0, n-3)
	points = append(points, c.points[:from]...)
	points = append(points, c.points[from+3:]...)
	m := a / 3
	modes := make([]TangentMode, 0, len(c.modes)-1)
	modes = append(modes, c.modes[:m]...)
	modes = append(modes, c.modes[m+1:]...)
	c.points, c.modes = points, modes
	if c.loop {
		c.closeSeam()
	}
	tracer().Debugf("removed anchor %d, curve has %d segments", a, c.SegmentCount())
	c.version++
	return true
}

// closeSeam forces the last anchor onto the first one, used after structural
// edits of a looped curve.
func (c *Curve) closeSeam() {
	c.points[len(c.points)-1] = c.points[0]
	c.modes[len(c.modes)-1] = c.modes[0]
	c.enforce(0)
}

// Flatten sets the height (y-coordinate) of all control points to y.
func (c *Curve) Flatten(y float64) {
	for i := range c.points {
		c.points[i][1] = y
	}
	c.version++
}

// === Evaluation ============================================================

// segmentAt maps a global parameter t to the index of the first control
// point of its segment and the local parameter u within that segment.
// t is clamped to [0,1]; t ≥ 1 maps to the end of the last segment.
func (c *Curve) segmentAt(t float64) (int, float64) {
	if t >= 1 {
		return len(c.points) - 4, 1
	}
	if !(t > 0) { // catches NaN as well
		t = 0
	}
	t *= float64(c.SegmentCount())
	k := int(t)
	return k * 3, t - float64(k)
}

// Evaluate returns the position on the curve at global parameter t ∈ [0,1].
func (c *Curve) Evaluate(t float64) vec3.T {
	i, u := c.segmentAt(t)
	return bezier.Point(c.points[i], c.points[i+1], c.points[i+2], c.points[i+3], u)
}

// EvaluateDerivative returns the velocity at global parameter t ∈ [0,1], with
// respect to the segment-local parameter.
func (c *Curve) EvaluateDerivative(t float64) vec3.T {
	i, u := c.segmentAt(t)
	return bezier.FirstDerivative(c.points[i], c.points[i+1], c.points[i+2], c.points[i+3], u)
}

// Direction returns the normalized velocity at t. It is zero where the curve
// has a vanishing derivative.
func (c *Curve) Direction(t float64) vec3.T {
	d := c.EvaluateDerivative(t)
	return d.Normalized()
}
