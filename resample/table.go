package resample

import (
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/prefabspline"
	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
)

// Table is an ordered sequence of samples with monotonically non-decreasing
// distances. The first sample is at t=0, the last one at t=1.
//
// A table is derived from a curve and becomes stale with every edit of that
// curve. Tables are never updated in place, except for sample geometry
// replaced through SetSample (e.g., for ground projection).
type Table struct {
	samples []Sample
	total   float64
	spacing float64
	step    float64
}

// Len returns the number of samples.
func (tbl *Table) Len() int {
	return len(tbl.samples)
}

// At returns sample i.
func (tbl *Table) At(i int) Sample {
	return tbl.samples[i]
}

// Samples returns a copy of all samples.
func (tbl *Table) Samples() []Sample {
	return append([]Sample(nil), tbl.samples...)
}

// SetSample replaces point, forward and up of sample i. Parameter and distance
// are kept, as they describe the curve, not the placement.
func (tbl *Table) SetSample(i int, s Sample) {
	s.T, s.Distance = tbl.samples[i].T, tbl.samples[i].Distance
	tbl.samples[i] = s
}

// TotalLength returns the arc length of the curve, as measured by the resampler.
func (tbl *Table) TotalLength() float64 {
	return tbl.total
}

// Spacing returns the target spacing the table was created with.
func (tbl *Table) Spacing() float64 {
	return tbl.spacing
}

// Step returns the parameter step the table was created with.
func (tbl *Table) Step() float64 {
	return tbl.step
}

// InstanceCount is the number of full spacing intervals fitting on the curve.
// Rounding noise from summing up steps is tolerated.
func (tbl *Table) InstanceCount() int {
	return int(math.Floor(tbl.total/tbl.spacing + prefabspline.Epsilon))
}

// SurroundingSamples returns the two samples bracketing a distance along the
// curve, such that before.Distance ≤ d ≤ after.Distance. Distances are taken
// modulo the total length; negative distances count backwards from the end.
// If d hits a sample's distance exactly, that sample is returned twice.
//
// An error wrapping ErrInconsistentTable is returned for non-finite distances
// and for tables violating the ordering invariant.
func (tbl *Table) SurroundingSamples(distance float64) (before, after Sample, err error) {
	before, after, _, err = tbl.bracket(distance)
	return
}

func (tbl *Table) bracket(distance float64) (Sample, Sample, float64, error) {
	n := len(tbl.samples)
	if n == 0 {
		return Sample{}, Sample{}, 0, fmt.Errorf("%w: empty table", ErrInconsistentTable)
	}
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		tracer().Errorf("sample lookup for distance %g", distance)
		return Sample{}, Sample{}, 0, fmt.Errorf("%w: distance %g", ErrInconsistentTable, distance)
	}
	if !(tbl.total > 0) {
		return tbl.samples[0], tbl.samples[0], 0, nil
	}
	d := math.Mod(distance, tbl.total)
	if d < 0 {
		d += tbl.total
	}
	i := sort.Search(n, func(i int) bool {
		return tbl.samples[i].Distance >= d
	})
	switch {
	case i == n || (i == 0 && tbl.samples[0].Distance > d):
		tracer().Errorf("no samples bracket distance %g (table of %d samples, %g..%g)",
			d, n, tbl.samples[0].Distance, tbl.samples[n-1].Distance)
		return Sample{}, Sample{}, d, fmt.Errorf("%w: distance %g not covered", ErrInconsistentTable, d)
	case tbl.samples[i].Distance == d:
		return tbl.samples[i], tbl.samples[i], d, nil
	}
	return tbl.samples[i-1], tbl.samples[i], d, nil
}

// PositionAndRotation interpolates position and heading at a distance along
// the curve. The rotation looks along the interpolated forward direction. If
// stayHorizontal is set, the heading is projected onto the horizontal plane,
// leaving pitch and roll to the caller (e.g., for ground vehicles).
func (tbl *Table) PositionAndRotation(distance float64, stayHorizontal bool) (vec3.T, quaternion.T, error) {
	before, after, d, err := tbl.bracket(distance)
	if err != nil {
		return vec3.Zero, quaternion.Ident, err
	}
	var f float64
	if span := after.Distance - before.Distance; span > 0 {
		f = math.Min(math.Max((d-before.Distance)/span, 0), 1)
	}
	pos := prefabspline.Lerp(before.Point, after.Point, f)
	heading := prefabspline.Lerp(before.Forward, after.Forward, f)
	if stayHorizontal {
		heading = unit(prefabspline.ProjectOnPlane(heading, prefabspline.Up))
	}
	if prefabspline.Is0(heading.LengthSqr()) {
		heading = prefabspline.Forward
	}
	return pos, prefabspline.LookRotation(heading, prefabspline.Up), nil
}

// Position is PositionAndRotation without the rotation.
func (tbl *Table) Position(distance float64) (vec3.T, error) {
	p, _, err := tbl.PositionAndRotation(distance, true)
	return p, err
}

// Stats summarizes the accuracy of a table.
type Stats struct {
	Samples     int
	TotalLength float64
	StepError   float64 // maximum distance covered by one parameter step, in metres
	ErrorMargin float64 // StepError relative to spacing, in percent
}

// Stats returns accuracy statistics for tbl.
func (tbl *Table) Stats() Stats {
	e := tbl.step * tbl.total
	return Stats{
		Samples:     len(tbl.samples),
		TotalLength: tbl.total,
		StepError:   e,
		ErrorMargin: e / tbl.spacing * 100,
	}
}

func (st Stats) String() string {
	return fmt.Sprintf("Sample count: %d.\nTotal spline length: %.4gm.\nTime resolution step: ±%.4gm.\n%.4g%% error margin of distance step.",
		st.Samples, st.TotalLength, st.StepError, st.ErrorMargin)
}
