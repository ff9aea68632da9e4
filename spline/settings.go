package spline

import (
	"fmt"
	"math"
	"strconv"

	"github.com/npillmayer/prefabspline/itemseq"
	"github.com/npillmayer/prefabspline/placement"
	"github.com/npillmayer/schuko"
)

// Settings control resampling.
type Settings struct {
	Resolution float64 `yaml:"resolution"` // parameter step for resampling, e.g. 1/sample count
	Spacing    float64 `yaml:"spacing"`    // distance between placed instances
}

// DefaultSettings returns a fine resolution and instances 1 unit apart.
func DefaultSettings() Settings {
	return Settings{Resolution: 0.0001, Spacing: 1}
}

// Validate checks that resolution is in (0,1] and spacing is positive.
func (s Settings) Validate() error {
	if !(s.Resolution > 0 && s.Resolution <= 1) {
		return fmt.Errorf("%w: resolution %g not in (0,1]", ErrInvalidSettings, s.Resolution)
	}
	if !(s.Spacing > 0) || math.IsInf(s.Spacing, 1) {
		return fmt.Errorf("%w: spacing %g", ErrInvalidSettings, s.Spacing)
	}
	return nil
}

// Configuration keys read by SettingsFromConfiguration and Spline.Configure.
const (
	KeyResolution = "spline.resolution"
	KeySpacing    = "spline.spacing"
	KeyLoop       = "spline.loop"
	KeyItemMode   = "itemseq.mode"
	KeyPattern    = "itemseq.pattern"
)

// SettingsFromConfiguration reads settings from a schuko configuration,
// starting from DefaultSettings.
func SettingsFromConfiguration(conf schuko.Configuration) (Settings, error) {
	s := DefaultSettings()
	for key, f := range map[string]*float64{
		KeyResolution: &s.Resolution,
		KeySpacing:    &s.Spacing,
	} {
		if !conf.IsSet(key) {
			continue
		}
		v, err := strconv.ParseFloat(conf.GetString(key), 64)
		if err != nil {
			return s, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, key, err)
		}
		*f = v
	}
	return s, s.Validate()
}

// Configure applies a schuko configuration to s: resampling settings,
// placement configuration, loop flag and item sequence mode and pattern.
// Entries of the item sequence are not configurable this way. If an error
// is returned, s is unchanged.
func (s *Spline) Configure(conf schuko.Configuration) error {
	settings, err := SettingsFromConfiguration(conf)
	if err != nil {
		return err
	}
	pcfg, err := placement.ConfigFromConfiguration(conf)
	if err != nil {
		return err
	}
	items := s.Items
	if conf.IsSet(KeyItemMode) {
		if items.Mode, err = itemseq.ParseMode(conf.GetString(KeyItemMode)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSettings, KeyItemMode, err)
		}
	}
	if conf.IsSet(KeyPattern) {
		if items.Pattern, err = itemseq.ParsePattern(conf.GetString(KeyPattern)); err != nil {
			return err
		}
	}
	loop := s.Curve.Loop()
	if conf.IsSet(KeyLoop) {
		if loop, err = strconv.ParseBool(conf.GetString(KeyLoop)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSettings, KeyLoop, err)
		}
	}
	s.Settings, s.Placement, s.Items = settings, pcfg, items
	if loop != s.Curve.Loop() {
		s.Curve.SetLoop(loop)
	}
	tracer().Debugf("configured spline: %+v", s.Settings)
	return nil
}
