package spline

import (
	"fmt"
	"io"

	"github.com/npillmayer/prefabspline"
	"github.com/npillmayer/prefabspline/curve"
	"github.com/npillmayer/prefabspline/itemseq"
	"github.com/npillmayer/prefabspline/placement"
	"github.com/ungerik/go3d/float64/vec3"
	"gopkg.in/yaml.v3"
)

// State is the persisted form of a spline. Sample tables are derived data
// and are not part of it.
type State struct {
	Points    []vec3.T               `yaml:"points"`
	Modes     []curve.TangentMode    `yaml:"modes"`
	Loop      bool                   `yaml:"loop"`
	Settings  Settings               `yaml:"settings"`
	Placement placement.Config       `yaml:"placement"`
	Items     itemseq.Config         `yaml:"items"`
	Transform prefabspline.Transform `yaml:"transform"`
}

// State returns a snapshot of s.
func (s *Spline) State() State {
	return State{
		Points:    s.Curve.Points(),
		Modes:     s.Curve.Modes(),
		Loop:      s.Curve.Loop(),
		Settings:  s.Settings,
		Placement: s.Placement,
		Items:     s.Items,
		Transform: s.Transform,
	}
}

// FromState re-creates a spline from a snapshot. The snapshot is validated.
func FromState(st State) (*Spline, error) {
	c, err := curve.FromPoints(st.Points, st.Modes, st.Loop)
	if err != nil {
		return nil, err
	}
	if err := st.Settings.Validate(); err != nil {
		return nil, err
	}
	if err := st.Placement.Validate(); err != nil {
		return nil, err
	}
	if st.Items.Mode == itemseq.PatternMode {
		if st.Items.Pattern, err = itemseq.ParsePattern(st.Items.Pattern); err != nil {
			return nil, err
		}
	}
	return &Spline{
		Curve:     c,
		Settings:  st.Settings,
		Placement: st.Placement,
		Items:     st.Items,
		Transform: st.Transform,
	}, nil
}

// Save writes s to w as YAML.
func (s *Spline) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.State()); err != nil {
		return fmt.Errorf("saving spline: %w", err)
	}
	return enc.Close()
}

// Load reads a spline saved with Save.
func Load(r io.Reader) (*Spline, error) {
	var st State
	if err := yaml.NewDecoder(r).Decode(&st); err != nil {
		return nil, fmt.Errorf("loading spline: %w", err)
	}
	s, err := FromState(st)
	if err != nil {
		return nil, err
	}
	tracer().Infof("loaded spline with %d segments", s.Curve.SegmentCount())
	return s, nil
}
