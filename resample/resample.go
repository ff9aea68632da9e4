/*
Package resample converts the non-uniform parametrization of a curve into
a table of samples spaced at an (approximately) fixed arc length.

The resampler walks the curve in small parameter steps and sums up the
distances between consecutive points. Whenever the distance travelled since
the last sample reaches the target spacing, a sample is stored. The overshoot
is carried over to the next interval, so spacing errors do not add up.
The first sample is always at t=0, the last one always at t=1.

Finer steps mean more accurate spacing at higher cost. Table.Stats reports
the error to expect from a given step size.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/prefabspline"
	"github.com/npillmayer/schuko/tracing"
	"github.com/ungerik/go3d/float64/vec3"
)

// tracer writes to trace with key 'resample'
func tracer() tracing.Trace {
	return tracing.Select("resample")
}

var (
	// ErrInvalidSpacing is returned for a target spacing which is not a positive number.
	ErrInvalidSpacing = errors.New("spacing must be positive")
	// ErrInvalidStep is returned for a step size outside (0,1].
	ErrInvalidStep = errors.New("step size must be in (0,1]")
	// ErrInconsistentTable flags a sample lookup which could not be satisfied.
	// This points to a corrupted table or an invalid query.
	ErrInconsistentTable = errors.New("inconsistent sample table")
)

// Curve is what the resampler needs from a curve: positions and velocities
// for a global parameter t ∈ [0,1].
type Curve interface {
	Evaluate(t float64) vec3.T
	EvaluateDerivative(t float64) vec3.T
}

// Sample is a point on a curve, annotated with its arc length distance from
// the start of the curve.
type Sample struct {
	T        float64 // curve parameter
	Distance float64 // cumulative distance from the start
	Point    vec3.T
	Forward  vec3.T // unit tangent; zero where the curve stalls
	Up       vec3.T // unit up vector
}

func (s Sample) String() string {
	return fmt.Sprintf("<t=%.4f d=%.4f p=%s>", s.T, s.Distance, prefabspline.VecString(s.Point))
}

// Resample walks curve c with parameter increments of step and creates a
// table of samples spaced approximately spacing apart. If loop is set, the
// final sample is placed at the curve's start point, to close the table
// seamlessly.
//
// Resample is deterministic and takes time proportional to 1/step. It fails
// for a spacing ≤ 0 and a step outside (0,1].
func Resample(c Curve, step, spacing float64, loop bool) (*Table, error) {
	if !(spacing > 0) || math.IsInf(spacing, 1) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSpacing, spacing)
	}
	if !(step > 0 && step <= 1) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidStep, step)
	}
	tbl := &Table{spacing: spacing, step: step}
	start := c.Evaluate(0)
	tbl.store(c, 0, start, 0)
	var total, since float64
	prev := start
	for k := 1; ; k++ {
		t := float64(k) * step
		if t >= 1 {
			break
		}
		p := c.Evaluate(t)
		d := vec3.Distance(&prev, &p)
		total += d
		since += d
		if since >= spacing {
			since -= spacing
			tbl.store(c, t, p, total)
		}
		prev = p
	}
	end := c.Evaluate(1)
	total += vec3.Distance(&prev, &end)
	if loop {
		end = start
	}
	tbl.store(c, 1, end, total)
	tbl.total = total
	tracer().Infof("resampled curve: %d samples, length %.4f", len(tbl.samples), total)
	return tbl, nil
}

func (tbl *Table) store(c Curve, t float64, p vec3.T, dist float64) {
	s := Sample{
		T:        t,
		Distance: dist,
		Point:    p,
		Forward:  unit(c.EvaluateDerivative(t)),
		Up:       prefabspline.Up,
	}
	tracer().Debugf("sample %d = %s", len(tbl.samples), s)
	tbl.samples = append(tbl.samples, s)
}

func unit(v vec3.T) vec3.T {
	if prefabspline.Is0(v.LengthSqr()) {
		return vec3.Zero
	}
	return v.Normalized()
}

// SpacingForCount returns the spacing needed to fit n instances on a curve
// of length total.
func SpacingForCount(total float64, n int) (float64, error) {
	if n < 1 || !(total > 0) {
		return 0, fmt.Errorf("%w: cannot fit %d instances on length %g", ErrInvalidSpacing, n, total)
	}
	return total / float64(n), nil
}

// CountForSpacing returns the number of instances placed on a curve of length
// total, counting both ends, for a given spacing.
func CountForSpacing(total, spacing float64) (int, error) {
	if !(spacing > 0) {
		return 0, fmt.Errorf("%w: %g", ErrInvalidSpacing, spacing)
	}
	return int(math.Floor(total/spacing+prefabspline.Epsilon)) + 1, nil
}
