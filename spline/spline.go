/*
Package spline ties curve, resampling and placement together into one
object, as edited by a placement tool.

A Spline owns a curve and derives a table of samples from it. The table is
cached: it is re-used until the curve, the settings or the spline's world
transform change, or until resampling is forced. Placement always resamples.

	s := spline.New()
	s.Curve.AppendSegment()
	s.Items = itemseq.Config{Mode: itemseq.ListMode, Entries: entries}
	n, err := s.Place(nil, sink)

A Spline is not safe for concurrent use. Callers sharing one between
goroutines must guard the spline, including its curve, as one unit.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package spline

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/npillmayer/prefabspline"
	"github.com/npillmayer/prefabspline/curve"
	"github.com/npillmayer/prefabspline/itemseq"
	"github.com/npillmayer/prefabspline/placement"
	"github.com/npillmayer/prefabspline/resample"
	"github.com/npillmayer/schuko/tracing"
	"github.com/ungerik/go3d/float64/quaternion"
	"github.com/ungerik/go3d/float64/vec3"
)

// tracer writes to trace with key 'spline'
func tracer() tracing.Trace {
	return tracing.Select("spline")
}

// ErrInvalidSettings is returned for settings which cannot be used for resampling.
var ErrInvalidSettings = errors.New("invalid spline settings")

// Spline is a curve together with everything needed to place items along it.
type Spline struct {
	Curve     *curve.Curve
	Settings  Settings
	Placement placement.Config
	Items     itemseq.Config
	Transform prefabspline.Transform // local to world
	Rand      *rand.Rand             // for random item selection and placement; may be nil

	table *resample.Table
	key   cacheKey
}

// cacheKey identifies the inputs a sample table has been derived from.
type cacheKey struct {
	curve     *curve.Curve
	version   uint64
	settings  Settings
	transform prefabspline.Transform
}

// New creates a spline with the default curve and default settings.
func New() *Spline {
	return &Spline{
		Curve:     curve.New(),
		Settings:  DefaultSettings(),
		Placement: placement.DefaultConfig(),
		Transform: prefabspline.Identity(),
	}
}

func (s *Spline) currentKey() cacheKey {
	return cacheKey{
		curve:     s.Curve,
		version:   s.Curve.Version(),
		settings:  s.Settings,
		transform: s.Transform,
	}
}

// Resample returns the sample table for the spline's curve in world space.
// A cached table is returned if it is still valid, unless force is set.
// If resampling fails, the previous table is kept.
func (s *Spline) Resample(force bool) (*resample.Table, error) {
	key := s.currentKey()
	if s.table != nil && !force && key == s.key {
		return s.table, nil
	}
	if err := s.Settings.Validate(); err != nil {
		return nil, err
	}
	tbl, err := resample.Resample(world{s}, s.Settings.Resolution, s.Settings.Spacing, s.Curve.Loop())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	s.table, s.key = tbl, key
	return tbl, nil
}

// Table is Resample(false).
func (s *Spline) Table() (*resample.Table, error) {
	return s.Resample(false)
}

// TotalLength returns the length of the spline in world space.
func (s *Spline) TotalLength() (float64, error) {
	tbl, err := s.Resample(false)
	if err != nil {
		return 0, err
	}
	return tbl.TotalLength(), nil
}

// SetSpacing sets the distance between placed instances.
func (s *Spline) SetSpacing(spacing float64) error {
	settings := s.Settings
	settings.Spacing = spacing
	if err := settings.Validate(); err != nil {
		return err
	}
	s.Settings = settings
	return nil
}

// SetInstanceCount adapts the spacing so that n instances fit on the spline.
func (s *Spline) SetInstanceCount(n int) error {
	total, err := s.TotalLength()
	if err != nil {
		return err
	}
	spacing, err := resample.SpacingForCount(total, n)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return s.SetSpacing(spacing)
}

// InstanceCount returns the number of spacing intervals fitting on the spline.
func (s *Spline) InstanceCount() (int, error) {
	tbl, err := s.Resample(false)
	if err != nil {
		return 0, err
	}
	return tbl.InstanceCount(), nil
}

// PositionAndRotation returns position and heading at a distance along the
// spline, in world space. See resample.Table.PositionAndRotation.
func (s *Spline) PositionAndRotation(distance float64, stayHorizontal bool) (vec3.T, quaternion.T, error) {
	tbl, err := s.Resample(false)
	if err != nil {
		return vec3.Zero, quaternion.Ident, err
	}
	return tbl.PositionAndRotation(distance, stayHorizontal)
}

// Position returns the position at a distance along the spline.
func (s *Spline) Position(distance float64) (vec3.T, error) {
	p, _, err := s.PositionAndRotation(distance, true)
	return p, err
}

// DebugInfo describes the accuracy of the cached table.
func (s *Spline) DebugInfo() string {
	if s.table == nil {
		return "No data. Resample first."
	}
	return s.table.Stats().String()
}

// Place resamples the spline and places one item per sample into sink. If
// the placement configuration asks for it and g is not nil, samples are
// projected onto g first. Returns the number of instances placed.
func (s *Spline) Place(g placement.Ground, sink placement.Sink) (int, error) {
	seq, err := itemseq.New(s.Items, s.Rand)
	if err != nil {
		return 0, err
	}
	if err := s.Placement.Validate(); err != nil {
		return 0, err
	}
	tbl, err := s.Resample(true)
	if err != nil {
		return 0, err
	}
	if s.Placement.CastToGround && g != nil {
		placement.ProjectOntoGround(tbl, g, s.Placement.UseGroundNormal)
		s.table = nil // projected samples no longer describe the curve
	}
	d := &placement.Driver{Config: s.Placement, Sequence: seq, Rand: s.Rand}
	return d.Place(tbl, sink)
}

// world presents the spline's curve in world space.
type world struct {
	s *Spline
}

func (w world) Evaluate(t float64) vec3.T {
	return w.s.Transform.Apply(w.s.Curve.Evaluate(t))
}

func (w world) EvaluateDerivative(t float64) vec3.T {
	return w.s.Transform.ApplyVector(w.s.Curve.EvaluateDerivative(t))
}
