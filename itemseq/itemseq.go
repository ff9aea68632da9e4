/*
Package itemseq generates sequences of items to place along a spline.

Placement asks a Sequence for the next item once per instance. Three
variants are provided: round robin over a list, an explicit pattern of
letters ("ABBA", where A is the first entry), and a weighted random
choice. Items are opaque handles (strings); what an item stands for is
up to the client.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package itemseq

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'itemseq'
func tracer() tracing.Trace {
	return tracing.Select("itemseq")
}

var (
	// ErrNoItems is returned when constructing a sequence without entries.
	ErrNoItems = errors.New("item sequence has no entries")
	// ErrInvalidPattern is returned for patterns not consisting of letters A…Z.
	ErrInvalidPattern = errors.New("not a valid pattern")
	// ErrInvalidWeight is returned for negative weights or a zero sum of weights.
	ErrInvalidWeight = errors.New("invalid item weight")
)

// Sequence produces items, one per call of Next. Sequences are stateful;
// ResetIndex starts over.
type Sequence interface {
	Next() string
	ResetIndex()
}

// Entry is an item together with its weight for random selection.
type Entry struct {
	Item   string `yaml:"item"`
	Weight int    `yaml:"weight"`
}

// --- Round robin -----------------------------------------------------------

// List hands out its entries in order, starting over after the last one.
type List struct {
	entries []Entry
	index   int
}

// NewList creates a round robin sequence.
func NewList(entries []Entry) (*List, error) {
	if len(entries) == 0 {
		return nil, ErrNoItems
	}
	return &List{entries: append([]Entry(nil), entries...)}, nil
}

// Next is part of interface Sequence.
func (l *List) Next() string {
	item := l.entries[l.index]
	l.index = (l.index + 1) % len(l.entries)
	return item.Item
}

// ResetIndex is part of interface Sequence.
func (l *List) ResetIndex() {
	l.index = 0
}

// --- Pattern ---------------------------------------------------------------

var patternSyntax = regexp.MustCompile(`^[A-Z]+$`)

// Pattern hands out entries as given by a pattern of letters, where 'A' stands
// for the first entry, 'B' for the second, and so on. The pattern repeats.
type Pattern struct {
	entries []Entry
	pattern string
	index   int
}

// NewPattern creates a pattern sequence. Patterns are case-insensitive and
// must consist of letters only.
func NewPattern(entries []Entry, pattern string) (*Pattern, error) {
	if len(entries) == 0 {
		return nil, ErrNoItems
	}
	p, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &Pattern{entries: append([]Entry(nil), entries...), pattern: p}, nil
}

// ParsePattern validates a pattern and returns it in upper case.
func ParsePattern(pattern string) (string, error) {
	p := strings.ToUpper(pattern)
	if !patternSyntax.MatchString(p) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	return p, nil
}

// Next is part of interface Sequence. A letter without a matching entry is
// reported as an error to the trace and yields the first entry.
func (p *Pattern) Next() string {
	letter := p.pattern[p.index]
	p.index = (p.index + 1) % len(p.pattern)
	i := int(letter - 'A')
	if i >= len(p.entries) {
		tracer().Errorf("pattern letter %c does not match any of %d items", letter, len(p.entries))
		return p.entries[0].Item
	}
	return p.entries[i].Item
}

// ResetIndex is part of interface Sequence.
func (p *Pattern) ResetIndex() {
	p.index = 0
}

// --- Weighted random -------------------------------------------------------

// WeightedRandom picks entries at random, each with a probability proportional
// to its weight. Entries with weight 0 are never picked.
type WeightedRandom struct {
	entries []Entry
	sum     int
	rnd     *rand.Rand
}

// NewWeightedRandom creates a weighted random sequence, drawing from rnd.
// If rnd is nil, a generator with a random seed is used.
func NewWeightedRandom(entries []Entry, rnd *rand.Rand) (*WeightedRandom, error) {
	if len(entries) == 0 {
		return nil, ErrNoItems
	}
	sum := 0
	for _, e := range entries {
		if e.Weight < 0 {
			return nil, fmt.Errorf("%w: %q has weight %d", ErrInvalidWeight, e.Item, e.Weight)
		}
		sum += e.Weight
	}
	if sum == 0 {
		return nil, fmt.Errorf("%w: weights sum up to 0", ErrInvalidWeight)
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &WeightedRandom{entries: append([]Entry(nil), entries...), sum: sum, rnd: rnd}, nil
}

// Next is part of interface Sequence.
func (w *WeightedRandom) Next() string {
	selected := 1 + w.rnd.IntN(w.sum) // in [1,sum]
	acc := 0
	for _, e := range w.entries {
		acc += e.Weight
		if acc >= selected {
			return e.Item
		}
	}
	panic("unreachable: weights changed after construction")
}

// ResetIndex is part of interface Sequence. Random draws have no index, but
// the generator keeps its state.
func (w *WeightedRandom) ResetIndex() {}
