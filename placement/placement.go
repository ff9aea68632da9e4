/*
Package placement computes instance transforms from a table of samples.

For every sample but the closing one, an instance is placed at the sample's
point, looking along the sample's forward direction. A fixed offset,
rotation and scale from the configuration are applied, optionally jittered
by random values drawn from configured ranges. Which item is placed is
decided by an item sequence; what placing means is decided by a Sink.

Optionally, samples are first projected onto the ground below them, using
a Ground provided by the client.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package placement

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/npillmayer/prefabspline"
	"github.com/npillmayer/prefabspline/itemseq"
	"github.com/npillmayer/prefabspline/resample"
	"github.com/npillmayer/schuko/tracing"
	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
)

// tracer writes to trace with key 'placement'
func tracer() tracing.Trace {
	return tracing.Select("placement")
}

// ErrInvalidConfig is returned for placement configurations which cannot be used.
var ErrInvalidConfig = errors.New("invalid placement configuration")

// Instance is a placed item.
type Instance struct {
	Index    int
	Item     string
	Position vec3.T
	Rotation quaternion.T
	Scale    vec3.T
}

func (inst Instance) String() string {
	return fmt.Sprintf("#%d %q at %s", inst.Index, inst.Item, prefabspline.VecString(inst.Position))
}

// Sink materializes instances.
type Sink interface {
	Place(Instance) error
}

// SinkFunc adapts a function to interface Sink.
type SinkFunc func(Instance) error

// Place is part of interface Sink.
func (f SinkFunc) Place(inst Instance) error {
	return f(inst)
}

// Collector is a sink which keeps all instances in memory.
type Collector struct {
	Instances []Instance
}

// Place is part of interface Sink.
func (c *Collector) Place(inst Instance) error {
	c.Instances = append(c.Instances, inst)
	return nil
}

// Driver places items along a sample table.
type Driver struct {
	Config   Config
	Sequence itemseq.Sequence
	Rand     *rand.Rand // source for random ranges; a seeded one is created if nil
}

// Place hands one instance per sample to sink, skipping the table's final
// sample (which closes the curve). The item sequence is reset first.
// Returns the number of instances placed. Placement stops at the first error
// of the sink.
func (d *Driver) Place(tbl *resample.Table, sink Sink) (int, error) {
	if err := d.Config.Validate(); err != nil {
		return 0, err
	}
	if d.Sequence == nil {
		return 0, fmt.Errorf("%w: no item sequence", ErrInvalidConfig)
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	d.Sequence.ResetIndex()
	fixedRotation := prefabspline.Euler(d.Config.Rotation)
	count := 0
	for i := 0; i < tbl.Len()-1; i++ {
		inst := d.instance(i, tbl.At(i), fixedRotation)
		tracer().Debugf("placing %s", inst)
		if err := sink.Place(inst); err != nil {
			return count, fmt.Errorf("placing instance %d: %w", i, err)
		}
		count++
	}
	tracer().Infof("placed %d instances", count)
	return count, nil
}

func (d *Driver) instance(i int, s resample.Sample, fixedRotation quaternion.T) Instance {
	cfg := &d.Config
	orientation := prefabspline.LookRotation(s.Forward, s.Up)
	randomOffset := d.draw(cfg.RandomOffset)
	randomRotation := quaternion.Ident
	if cfg.RandomRotation.Enabled {
		randomRotation = prefabspline.Euler(d.draw(cfg.RandomRotation))
	}
	randomScale := prefabspline.One
	if cfg.RandomScale.Enabled {
		randomScale = d.draw(cfg.RandomScale)
	}
	pos := s.Point
	offset := prefabspline.Rotate(orientation, cfg.Offset)
	jitter := prefabspline.Rotate(orientation, randomOffset)
	pos.Add(&offset)
	pos.Add(&jitter)
	rot := quaternion.Mul(&orientation, &fixedRotation)
	rot = quaternion.Mul(&rot, &randomRotation)
	return Instance{
		Index:    i,
		Item:     d.Sequence.Next(),
		Position: pos,
		Rotation: rot,
		Scale:    vec3.Add(&cfg.Scale, &randomScale),
	}
}

// draw returns a random vector from r, or zero if r is disabled. Nothing is
// drawn from the generator for disabled ranges.
func (d *Driver) draw(r Range) vec3.T {
	if !r.Enabled {
		return vec3.Zero
	}
	var v vec3.T
	for i := range v {
		v[i] = r.Lower[i] + d.Rand.Float64()*(r.Upper[i]-r.Lower[i])
	}
	return v
}

// --- Ground projection -----------------------------------------------------

// Hit is the result of a successful ground cast.
type Hit struct {
	Point  vec3.T
	Normal vec3.T
}

// Ground finds the surface hit by a ray from origin along direction.
type Ground interface {
	Cast(origin, direction vec3.T) (Hit, bool)
}

// ProjectOntoGround moves every sample but the last one onto the ground right
// below it. With useNormal set, a projected sample's up vector becomes the
// ground normal, and its forward vector is tilted onto the ground plane.
// Samples without ground below are left unchanged.
//
// Returns the number of samples projected.
func ProjectOntoGround(tbl *resample.Table, g Ground, useNormal bool) int {
	hits := 0
	for i := 0; i < tbl.Len()-1; i++ {
		s := tbl.At(i)
		hit, ok := g.Cast(s.Point, prefabspline.Down)
		if !ok {
			tracer().Debugf("no ground below sample %d at %s", i, prefabspline.VecString(s.Point))
			continue
		}
		s.Point = hit.Point
		if useNormal && !prefabspline.Is0(hit.Normal.LengthSqr()) {
			s.Up = hit.Normal.Normalized()
			fwd := prefabspline.ProjectOnPlane(s.Forward, s.Up)
			if !prefabspline.Is0(fwd.LengthSqr()) {
				fwd.Normalize()
			}
			s.Forward = fwd
		}
		tbl.SetSample(i, s)
		hits++
	}
	tracer().Infof("projected %d of %d samples onto ground", hits, tbl.Len()-1)
	return hits
}
