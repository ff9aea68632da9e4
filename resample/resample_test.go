package resample

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/npillmayer/prefabspline"
	"github.com/npillmayer/prefabspline/curve"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ungerik/go3d/float64/vec3"
)

func straight(t *testing.T, to vec3.T) *curve.Curve {
	t.Helper()
	pts := make([]vec3.T, 4)
	for i := range pts {
		pts[i] = to.Scaled(float64(i) / 3)
	}
	c, err := curve.FromPoints(pts, []curve.TangentMode{curve.Free, curve.Free}, false)
	require.NoError(t, err)
	return c
}

// square of side 3 in the XZ-plane, with straight edges
func square(t *testing.T) *curve.Curve {
	t.Helper()
	corners := []vec3.T{{0, 0, 0}, {3, 0, 0}, {3, 0, 3}, {0, 0, 3}, {0, 0, 0}}
	var pts []vec3.T
	for i := 0; i < len(corners)-1; i++ {
		a, b := corners[i], corners[i+1]
		pts = append(pts, a, prefabspline.Lerp(a, b, 1.0/3), prefabspline.Lerp(a, b, 2.0/3))
	}
	pts = append(pts, corners[0])
	c, err := curve.FromPoints(pts, make([]curve.TangentMode, 5), true)
	require.NoError(t, err)
	return c
}

func TestStraightScenario(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl, err := Resample(straight(t, vec3.T{3, 0, 0}), 0.001, 1.0, false)
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len())
	for i, s := range tbl.Samples() {
		assert.InDelta(t, float64(i), s.Distance, 0.01, "sample %d", i)
		assert.InDelta(t, s.Distance, s.Point[0], 1e-9, "sample %d", i)
		assert.True(t, prefabspline.VecEqual(prefabspline.Right, s.Forward), "forward of sample %d", i)
		assert.Equal(t, prefabspline.Up, s.Up)
	}
	assert.Equal(t, 0.0, tbl.At(0).T)
	assert.Equal(t, 1.0, tbl.At(3).T)
	assert.InDelta(t, 3, tbl.TotalLength(), 1e-9)
	assert.Equal(t, 3, tbl.InstanceCount())
}

func TestResampleIsMonotonic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := curve.New()
	c.AppendSegment()
	c.SetPoint(4, vec3.T{5, 3, 1})
	c.SetPoint(6, vec3.T{2, -1, 4})
	tbl, err := Resample(c, 0.0005, 0.4, false)
	require.NoError(t, err)
	require.Greater(t, tbl.Len(), 2)
	for i := 1; i < tbl.Len(); i++ {
		assert.GreaterOrEqual(t, tbl.At(i).Distance, tbl.At(i-1).Distance)
		assert.Greater(t, tbl.At(i).T, tbl.At(i-1).T)
	}
	// inner samples are about one spacing apart
	for i := 1; i < tbl.Len()-1; i++ {
		gap := tbl.At(i).Distance - tbl.At(i-1).Distance
		assert.InDelta(t, 0.4, gap, 0.05, "gap before sample %d", i)
	}
	assert.Equal(t, 0.0, tbl.At(0).T)
	assert.Equal(t, 1.0, tbl.At(tbl.Len()-1).T)
}

func TestResampleIsDeterministic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := square(t)
	t1, err := Resample(c, 0.001, 0.7, true)
	require.NoError(t, err)
	t2, err := Resample(c, 0.001, 0.7, true)
	require.NoError(t, err)
	assert.Equal(t, t1.Samples(), t2.Samples())
}

func TestLoopedTableCloses(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := square(t)
	assert.Equal(t, c.Evaluate(0), c.Evaluate(1))
	tbl, err := Resample(c, 0.0001, 1.0, true)
	require.NoError(t, err)
	first, last := tbl.At(0), tbl.At(tbl.Len()-1)
	assert.Equal(t, first.Point, last.Point)
	assert.InDelta(t, 12, tbl.TotalLength(), 1e-6)
	assert.InDelta(t, 12, last.Distance, 1e-6)
}

func TestInvalidArguments(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := curve.New()
	for _, spacing := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Resample(c, 0.001, spacing, false)
		assert.True(t, errors.Is(err, ErrInvalidSpacing), "spacing %g: %v", spacing, err)
	}
	for _, step := range []float64{0, -0.1, 1.5, math.NaN()} {
		_, err := Resample(c, step, 1, false)
		assert.True(t, errors.Is(err, ErrInvalidStep), "step %g: %v", step, err)
	}
	// a step of 1 only produces the two end samples
	tbl, err := Resample(c, 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestSurroundingSamplesBracket(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl, err := Resample(square(t), 0.001, 0.7, true)
	require.NoError(t, err)
	total := tbl.TotalLength()
	for d := 0.0; d < total; d += 0.05 {
		before, after, err := tbl.SurroundingSamples(d)
		require.NoError(t, err)
		assert.LessOrEqual(t, before.Distance, d)
		assert.GreaterOrEqual(t, after.Distance, d)
		assert.LessOrEqual(t, after.Distance-before.Distance, 0.7+0.05)
	}
}

func TestSurroundingSamplesWrapsAndTies(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl, err := Resample(straight(t, vec3.T{3, 0, 0}), 0.001, 1.0, false)
	require.NoError(t, err)
	b1, a1, err := tbl.SurroundingSamples(1.5)
	require.NoError(t, err)
	b2, a2, err := tbl.SurroundingSamples(1.5 + tbl.TotalLength())
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
	assert.Equal(t, a1, a2)
	b3, a3, err := tbl.SurroundingSamples(1.5 - tbl.TotalLength())
	require.NoError(t, err)
	assert.Equal(t, b1, b3)
	assert.Equal(t, a1, a3)
	exact := tbl.At(2).Distance
	before, after, err := tbl.SurroundingSamples(exact)
	require.NoError(t, err)
	assert.Equal(t, tbl.At(2), before)
	assert.Equal(t, tbl.At(2), after)
	before, after, err = tbl.SurroundingSamples(0)
	require.NoError(t, err)
	assert.Equal(t, tbl.At(0), before)
	assert.Equal(t, tbl.At(0), after)
}

func TestInconsistentLookup(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl := &Table{
		samples: []Sample{{T: 0, Distance: 0}, {T: 1, Distance: 1}},
		total:   3,
		spacing: 1,
		step:    0.01,
	}
	_, _, err := tbl.SurroundingSamples(2)
	assert.True(t, errors.Is(err, ErrInconsistentTable), "got %v", err)
	good, err := Resample(curve.New(), 0.01, 1, false)
	require.NoError(t, err)
	_, _, err = good.SurroundingSamples(math.NaN())
	assert.True(t, errors.Is(err, ErrInconsistentTable), "got %v", err)
	_, err = good.Position(math.Inf(-1))
	assert.True(t, errors.Is(err, ErrInconsistentTable), "got %v", err)
	_, _, err = (&Table{}).SurroundingSamples(0)
	assert.True(t, errors.Is(err, ErrInconsistentTable), "got %v", err)
}

type stalled struct{}

func (stalled) Evaluate(float64) vec3.T           { return vec3.T{1, 2, 3} }
func (stalled) EvaluateDerivative(float64) vec3.T { return vec3.Zero }

func TestZeroLengthCurve(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl, err := Resample(stalled{}, 0.01, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 0.0, tbl.TotalLength())
	assert.Equal(t, vec3.Zero, tbl.At(0).Forward)
	before, after, err := tbl.SurroundingSamples(5)
	require.NoError(t, err)
	assert.Equal(t, tbl.At(0), before)
	assert.Equal(t, tbl.At(0), after)
	p, q, err := tbl.PositionAndRotation(0, false)
	require.NoError(t, err)
	assert.Equal(t, vec3.T{1, 2, 3}, p)
	f := prefabspline.Rotate(q, prefabspline.Forward)
	assert.True(t, prefabspline.VecEqual(prefabspline.Forward, f), "got %v", f)
}

func TestPositionAndRotation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl, err := Resample(straight(t, vec3.T{3, 0, 0}), 0.001, 1.0, false)
	require.NoError(t, err)
	p, q, err := tbl.PositionAndRotation(1.5, true)
	require.NoError(t, err)
	assert.True(t, prefabspline.VecNear(vec3.T{1.5, 0, 0}, p, 1e-6), "got %v", p)
	f := prefabspline.Rotate(q, prefabspline.Forward)
	assert.True(t, prefabspline.VecNear(prefabspline.Right, f, 1e-9), "got %v", f)
	p, err = tbl.Position(4.5) // wraps to 1.5
	require.NoError(t, err)
	assert.True(t, prefabspline.VecNear(vec3.T{1.5, 0, 0}, p, 1e-6), "got %v", p)
}

func TestStayHorizontal(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl, err := Resample(straight(t, vec3.T{3, 3, 0}), 0.001, 1.0, false)
	require.NoError(t, err)
	_, q, err := tbl.PositionAndRotation(2, true)
	require.NoError(t, err)
	f := prefabspline.Rotate(q, prefabspline.Forward)
	assert.True(t, prefabspline.VecNear(prefabspline.Right, f, 1e-9), "got %v", f)
	_, q, err = tbl.PositionAndRotation(2, false)
	require.NoError(t, err)
	f = prefabspline.Rotate(q, prefabspline.Forward)
	diag := vec3.T{math.Sqrt2 / 2, math.Sqrt2 / 2, 0}
	assert.True(t, prefabspline.VecNear(diag, f, 1e-9), "got %v", f)
}

func TestSetSampleKeepsDistance(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl, err := Resample(straight(t, vec3.T{3, 0, 0}), 0.001, 1.0, false)
	require.NoError(t, err)
	s := tbl.At(1)
	tbl.SetSample(1, Sample{T: 0.9, Distance: 99, Point: vec3.T{1, -2, 0}, Forward: prefabspline.Right, Up: prefabspline.Up})
	assert.Equal(t, s.T, tbl.At(1).T)
	assert.Equal(t, s.Distance, tbl.At(1).Distance)
	assert.Equal(t, vec3.T{1, -2, 0}, tbl.At(1).Point)
}

func TestStatsAndCounts(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl, err := Resample(straight(t, vec3.T{3, 0, 0}), 0.001, 1.0, false)
	require.NoError(t, err)
	st := tbl.Stats()
	assert.Equal(t, 4, st.Samples)
	assert.InDelta(t, 0.003, st.StepError, 1e-9)
	assert.InDelta(t, 0.3, st.ErrorMargin, 1e-6)
	assert.Contains(t, st.String(), "Sample count: 4.")
	sp, err := SpacingForCount(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.75, sp)
	_, err = SpacingForCount(3, 0)
	assert.True(t, errors.Is(err, ErrInvalidSpacing))
	n, err := CountForSpacing(3, 0.75)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, err = CountForSpacing(3, 0)
	assert.True(t, errors.Is(err, ErrInvalidSpacing))
}

func ExampleResample() {
	pts := []vec3.T{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	c, _ := curve.FromPoints(pts, []curve.TangentMode{curve.Free, curve.Free}, false)
	tbl, err := Resample(c, 0.001, 1.0, false)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, s := range tbl.Samples() {
		fmt.Printf("t=%.3f d=%.1f\n", s.T, s.Distance)
	}
	// Output:
	// t=0.000 d=0.0
	// t=0.334 d=1.0
	// t=0.667 d=2.0
	// t=1.000 d=3.0
}
