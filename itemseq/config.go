package itemseq

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Mode selects one of the sequence variants.
type Mode int

const (
	ListMode Mode = iota
	PatternMode
	RandomMode
)

var modeNames = [...]string{"list", "pattern", "random"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode is the inverse of String, case-insensitive.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Mode(i), nil
		}
	}
	return ListMode, fmt.Errorf("unknown item sequence mode %q", s)
}

// MarshalText is part of encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("cannot marshal %s", m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText is part of encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Config is the persisted form of a sequence.
type Config struct {
	Mode    Mode    `yaml:"mode"`
	Pattern string  `yaml:"pattern,omitempty"`
	Entries []Entry `yaml:"entries"`
}

// New creates a sequence from a configuration. rnd is used by RandomMode only
// and may be nil.
func New(cfg Config, rnd *rand.Rand) (Sequence, error) {
	var seq Sequence
	var err error
	switch cfg.Mode {
	case ListMode:
		seq, err = NewList(cfg.Entries)
	case PatternMode:
		seq, err = NewPattern(cfg.Entries, cfg.Pattern)
	case RandomMode:
		seq, err = NewWeightedRandom(cfg.Entries, rnd)
	default:
		err = fmt.Errorf("unknown item sequence mode %d", int(cfg.Mode))
	}
	if err != nil {
		return nil, err
	}
	return seq, nil
}
