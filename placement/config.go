package placement

import (
	"fmt"
	"strconv"

	"github.com/npillmayer/prefabspline"
	"github.com/npillmayer/schuko"
	"github.com/ungerik/go3d/float64/vec3"
)

// Range is a box of random values, drawn independently per axis from
// [Lower, Upper]. A disabled range draws nothing.
type Range struct {
	Enabled bool   `yaml:"enabled"`
	Lower   vec3.T `yaml:"lower"`
	Upper   vec3.T `yaml:"upper"`
}

// Config holds the per-instance transform settings of a placement run.
// Rotations are Euler angles in degrees.
type Config struct {
	Offset          vec3.T `yaml:"offset"`
	Rotation        vec3.T `yaml:"rotation"`
	Scale           vec3.T `yaml:"scale"`
	RandomOffset    Range  `yaml:"randomOffset"`
	RandomRotation  Range  `yaml:"randomRotation"`
	RandomScale     Range  `yaml:"randomScale"`
	CastToGround    bool   `yaml:"castToGround"`
	UseGroundNormal bool   `yaml:"useGroundNormal"`
}

// DefaultConfig places instances right on the samples, unrotated and
// unscaled, without randomness.
func DefaultConfig() Config {
	return Config{Scale: prefabspline.One}
}

// Validate checks that all vectors are finite and that enabled ranges are
// not inverted.
func (cfg Config) Validate() error {
	for name, v := range map[string]vec3.T{
		"offset": cfg.Offset, "rotation": cfg.Rotation, "scale": cfg.Scale,
	} {
		if !prefabspline.IsFinite(v) {
			return fmt.Errorf("%w: %s %s is not finite", ErrInvalidConfig, name, prefabspline.VecString(v))
		}
	}
	for name, r := range map[string]Range{
		"offset": cfg.RandomOffset, "rotation": cfg.RandomRotation, "scale": cfg.RandomScale,
	} {
		if !r.Enabled {
			continue
		}
		if !prefabspline.IsFinite(r.Lower) || !prefabspline.IsFinite(r.Upper) {
			return fmt.Errorf("%w: random %s range is not finite", ErrInvalidConfig, name)
		}
		for i := range r.Lower {
			if r.Lower[i] > r.Upper[i] {
				return fmt.Errorf("%w: random %s range %s..%s is inverted", ErrInvalidConfig, name,
					prefabspline.VecString(r.Lower), prefabspline.VecString(r.Upper))
			}
		}
	}
	return nil
}

// Configuration keys read by ConfigFromConfiguration.
const (
	KeyOffset          = "placement.offset"
	KeyRotation        = "placement.rotation"
	KeyScale           = "placement.scale"
	KeyCastToGround    = "placement.castToGround"
	KeyUseGroundNormal = "placement.useGroundNormal"
	keyRandom          = "placement.random."
)

// ConfigFromConfiguration reads a placement configuration from a schuko
// configuration, starting from DefaultConfig. Vectors are given as "x,y,z".
// A random range is enabled if any of its limits is set, e.g.
//
//	placement.random.offset.lower = "-1,0,-1"
//	placement.random.offset.upper = "1,0,1"
func ConfigFromConfiguration(conf schuko.Configuration) (Config, error) {
	cfg := DefaultConfig()
	type vecKey struct {
		key string
		v   *vec3.T
	}
	vectors := []vecKey{
		{KeyOffset, &cfg.Offset},
		{KeyRotation, &cfg.Rotation},
		{KeyScale, &cfg.Scale},
	}
	for _, r := range []struct {
		name string
		r    *Range
	}{
		{"offset", &cfg.RandomOffset},
		{"rotation", &cfg.RandomRotation},
		{"scale", &cfg.RandomScale},
	} {
		lower, upper := keyRandom+r.name+".lower", keyRandom+r.name+".upper"
		if conf.IsSet(lower) || conf.IsSet(upper) {
			r.r.Enabled = true
		}
		vectors = append(vectors, vecKey{lower, &r.r.Lower}, vecKey{upper, &r.r.Upper})
	}
	for _, vec := range vectors {
		if !conf.IsSet(vec.key) {
			continue
		}
		v, err := prefabspline.ParseVec(conf.GetString(vec.key))
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, vec.key, err)
		}
		*vec.v = v
	}
	for key, flag := range map[string]*bool{
		KeyCastToGround:    &cfg.CastToGround,
		KeyUseGroundNormal: &cfg.UseGroundNormal,
	} {
		if !conf.IsSet(key) {
			continue
		}
		b, err := strconv.ParseBool(conf.GetString(key))
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*flag = b
	}
	tracer().Debugf("placement configuration = %+v", cfg)
	return cfg, cfg.Validate()
}
