package placement

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/npillmayer/prefabspline"
	"github.com/npillmayer/prefabspline/curve"
	"github.com/npillmayer/prefabspline/itemseq"
	"github.com/npillmayer/prefabspline/resample"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ungerik/go3d/float64/vec3"
)

// samples at x = 0, 1, 2, 3 along the x-axis
func straightTable(t *testing.T) *resample.Table {
	t.Helper()
	pts := []vec3.T{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	c, err := curve.FromPoints(pts, []curve.TangentMode{curve.Free, curve.Free}, false)
	require.NoError(t, err)
	tbl, err := resample.Resample(c, 0.001, 1, false)
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len())
	return tbl
}

func abc(t *testing.T) itemseq.Sequence {
	seq, err := itemseq.NewList([]itemseq.Entry{{Item: "a"}, {Item: "b"}, {Item: "c"}})
	require.NoError(t, err)
	return seq
}

func near(t *testing.T, want, got vec3.T, tolerance float64) {
	t.Helper()
	assert.True(t, prefabspline.VecNear(want, got, tolerance), "want %v, got %v", want, got)
}

func TestPlaceOnSamples(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl := straightTable(t)
	d := &Driver{Config: DefaultConfig(), Sequence: abc(t)}
	sink := &Collector{}
	n, err := d.Place(tbl, sink)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Len(t, sink.Instances, 3)
	for i, inst := range sink.Instances {
		assert.Equal(t, i, inst.Index)
		assert.Equal(t, tbl.At(i).Point, inst.Position)
		near(t, prefabspline.Right, prefabspline.Rotate(inst.Rotation, prefabspline.Forward), 1e-9)
		near(t, prefabspline.Up, prefabspline.Rotate(inst.Rotation, prefabspline.Up), 1e-9)
		assert.Equal(t, vec3.T{2, 2, 2}, inst.Scale)
	}
	assert.Equal(t, "a", sink.Instances[0].Item)
	assert.Equal(t, "c", sink.Instances[2].Item)
	// the sequence starts over with every run
	sink = &Collector{}
	_, err = d.Place(tbl, sink)
	require.NoError(t, err)
	assert.Equal(t, "a", sink.Instances[0].Item)
}

func TestFixedOffsetFollowsOrientation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl := straightTable(t)
	cfg := DefaultConfig()
	cfg.Offset = vec3.T{0, 2, 0.5} // up and ahead, in instance space
	cfg.Scale = vec3.T{2, 2, 2}
	d := &Driver{Config: cfg, Sequence: abc(t)}
	sink := &Collector{}
	_, err := d.Place(tbl, sink)
	require.NoError(t, err)
	for i, inst := range sink.Instances {
		p := tbl.At(i).Point
		near(t, vec3.T{p[0] + 0.5, 2, 0}, inst.Position, 1e-9)
		assert.Equal(t, vec3.T{3, 3, 3}, inst.Scale)
	}
}

func TestFixedRotationIsLocal(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cfg := DefaultConfig()
	cfg.Rotation = vec3.T{0, 90, 0}
	d := &Driver{Config: cfg, Sequence: abc(t)}
	sink := &Collector{}
	_, err := d.Place(straightTable(t), sink)
	require.NoError(t, err)
	for _, inst := range sink.Instances {
		// turned right from heading +X
		near(t, vec3.T{0, 0, -1}, prefabspline.Rotate(inst.Rotation, prefabspline.Forward), 1e-9)
	}
}

func TestRandomRanges(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl := straightTable(t)
	cfg := DefaultConfig()
	cfg.RandomOffset = Range{Enabled: true, Lower: vec3.T{-1, 0, -1}, Upper: vec3.T{1, 0, 1}}
	cfg.RandomRotation = Range{Enabled: true, Lower: vec3.T{0, -10, 0}, Upper: vec3.T{0, 10, 0}}
	cfg.RandomScale = Range{Enabled: true, Lower: vec3.T{0, 0, 0}, Upper: vec3.T{1, 1, 1}}
	d := &Driver{Config: cfg, Sequence: abc(t), Rand: rand.New(rand.NewPCG(3, 4))}
	sink := &Collector{}
	_, err := d.Place(tbl, sink)
	require.NoError(t, err)
	for i, inst := range sink.Instances {
		p := tbl.At(i).Point
		assert.InDelta(t, 0, inst.Position[1], 1e-9)
		assert.InDelta(t, p[0], inst.Position[0], 1+1e-9)
		assert.InDelta(t, 0, inst.Position[2], 1+1e-9)
		for _, s := range inst.Scale {
			assert.GreaterOrEqual(t, s, 1.0)
			assert.LessOrEqual(t, s, 2.0)
		}
		f := prefabspline.Rotate(inst.Rotation, prefabspline.Forward)
		angle := math.Acos(math.Min(1, f[0])) / prefabspline.Deg2Rad
		assert.LessOrEqual(t, angle, 10+1e-6)
	}
	// same seed, same result
	d2 := &Driver{Config: cfg, Sequence: abc(t), Rand: rand.New(rand.NewPCG(3, 4))}
	sink2 := &Collector{}
	_, err = d2.Place(tbl, sink2)
	require.NoError(t, err)
	assert.Equal(t, sink.Instances, sink2.Instances)
}

func TestDisabledRangesDrawNothing(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cfg := DefaultConfig()
	cfg.RandomOffset = Range{Lower: vec3.T{-1, -1, -1}, Upper: vec3.T{1, 1, 1}}
	rnd := rand.New(rand.NewPCG(5, 6))
	d := &Driver{Config: cfg, Sequence: abc(t), Rand: rnd}
	_, err := d.Place(straightTable(t), &Collector{})
	require.NoError(t, err)
	fresh := rand.New(rand.NewPCG(5, 6))
	assert.Equal(t, fresh.Uint64(), rnd.Uint64())
}

func TestDisabledScaleRangeAddsUnitScale(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cfg := DefaultConfig()
	cfg.Scale = vec3.T{0.5, 1, 2}
	cfg.RandomScale = Range{Lower: vec3.T{5, 5, 5}, Upper: vec3.T{9, 9, 9}}
	rnd := rand.New(rand.NewPCG(7, 8))
	sink := &Collector{}
	_, err := (&Driver{Config: cfg, Sequence: abc(t), Rand: rnd}).Place(straightTable(t), sink)
	require.NoError(t, err)
	for _, inst := range sink.Instances {
		assert.Equal(t, vec3.T{1.5, 2, 3}, inst.Scale)
	}
	fresh := rand.New(rand.NewPCG(7, 8))
	assert.Equal(t, fresh.Uint64(), rnd.Uint64())
}

func TestSinkErrorStopsPlacement(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	full := errors.New("sink is full")
	var placed []Instance
	sink := SinkFunc(func(inst Instance) error {
		if len(placed) == 1 {
			return full
		}
		placed = append(placed, inst)
		return nil
	})
	d := &Driver{Config: DefaultConfig(), Sequence: abc(t)}
	n, err := d.Place(straightTable(t), sink)
	assert.Equal(t, 1, n)
	assert.True(t, errors.Is(err, full), "got %v", err)
}

func TestInvalidConfig(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cfg := DefaultConfig()
	cfg.RandomScale = Range{Enabled: true, Lower: vec3.T{1, 0, 0}, Upper: vec3.T{0, 0, 0}}
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))
	cfg.RandomScale.Enabled = false
	assert.NoError(t, cfg.Validate())
	cfg.Offset[1] = math.NaN()
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))
	sink := &Collector{}
	n, err := (&Driver{Config: cfg, Sequence: abc(t)}).Place(straightTable(t), sink)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Empty(t, sink.Instances)
	_, err = (&Driver{Config: DefaultConfig()}).Place(straightTable(t), sink)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

// slope is ground at y = -5 for x < 1.5, with a tilted normal
type slope struct{}

func (slope) Cast(origin, direction vec3.T) (Hit, bool) {
	if origin[0] >= 1.5 || direction != prefabspline.Down {
		return Hit{}, false
	}
	return Hit{
		Point:  vec3.T{origin[0], -5, origin[2]},
		Normal: vec3.T{-1, 1, 0},
	}, true
}

func TestProjectOntoGround(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl := straightTable(t)
	before := tbl.Samples()
	hits := ProjectOntoGround(tbl, slope{}, false)
	assert.Equal(t, 2, hits)
	assert.Equal(t, vec3.T{0, -5, 0}, tbl.At(0).Point)
	assert.Equal(t, -5.0, tbl.At(1).Point[1])
	assert.Equal(t, before[2], tbl.At(2))
	assert.Equal(t, before[3], tbl.At(3))
	assert.Equal(t, prefabspline.Up, tbl.At(0).Up)
	assert.Equal(t, before[0].Distance, tbl.At(0).Distance)
}

func TestProjectOntoGroundWithNormal(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tbl := straightTable(t)
	ProjectOntoGround(tbl, slope{}, true)
	s := tbl.At(0)
	r := math.Sqrt2 / 2
	near(t, vec3.T{-r, r, 0}, s.Up, 1e-9)
	near(t, vec3.T{r, r, 0}, s.Forward, 1e-9)
	// instances follow the slope
	sink := &Collector{}
	_, err := (&Driver{Config: DefaultConfig(), Sequence: abc(t)}).Place(tbl, sink)
	require.NoError(t, err)
	near(t, vec3.T{r, r, 0}, prefabspline.Rotate(sink.Instances[0].Rotation, prefabspline.Forward), 1e-9)
	near(t, vec3.T{-r, r, 0}, prefabspline.Rotate(sink.Instances[0].Rotation, prefabspline.Up), 1e-9)
}

type mapConf map[string]string

func (c mapConf) InitDefaults() {}
func (c mapConf) IsSet(key string) bool {
	_, ok := c[key]
	return ok
}

func (c mapConf) GetString(key string) string { return c[key] }

func (c mapConf) GetInt(key string) int {
	n, _ := strconv.Atoi(c[key])
	return n
}

func (c mapConf) GetBool(key string) bool {
	b, _ := strconv.ParseBool(c[key])
	return b
}

func (c mapConf) IsInteractive() bool { return false }

func TestConfigFromConfiguration(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cfg, err := ConfigFromConfiguration(mapConf{
		"placement.offset":                "0, 1, 0",
		"placement.scale":                 "(2,2,2)",
		"placement.castToGround":          "true",
		"placement.random.rotation.lower": "0,-45,0",
		"placement.random.rotation.upper": "0,45,0",
	})
	require.NoError(t, err)
	assert.Equal(t, vec3.T{0, 1, 0}, cfg.Offset)
	assert.Equal(t, vec3.T{2, 2, 2}, cfg.Scale)
	assert.Equal(t, vec3.Zero, cfg.Rotation)
	assert.True(t, cfg.CastToGround)
	assert.False(t, cfg.UseGroundNormal)
	assert.True(t, cfg.RandomRotation.Enabled)
	assert.Equal(t, vec3.T{0, 45, 0}, cfg.RandomRotation.Upper)
	assert.False(t, cfg.RandomOffset.Enabled)
	_, err = ConfigFromConfiguration(mapConf{"placement.offset": "1,2"})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	_, err = ConfigFromConfiguration(mapConf{"placement.useGroundNormal": "maybe"})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	_, err = ConfigFromConfiguration(mapConf{"placement.random.scale.lower": "1,1,1"})
	assert.True(t, errors.Is(err, ErrInvalidConfig), "lower above default upper")
}
