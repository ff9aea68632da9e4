package curve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/ungerik/go3d/float64/vec3"
)

// tracer writes to trace with key 'curve'
func tracer() tracing.Trace {
	return tracing.Select("curve")
}

var (
	// ErrIndexOutOfRange is the panic value (wrapped) for control point or mode
	// indices outside the curve. Out-of-range access is a programming error.
	ErrIndexOutOfRange = errors.New("control point index out of range")
	// ErrInvalidLayout indicates a point/mode array pair violating the curve invariants.
	ErrInvalidLayout = errors.New("invalid control point layout")
	// ErrTooFewKnots indicates the curve has too few anchors for smoothing.
	ErrTooFewKnots = errors.New("curve has too few anchors")
	// ErrDegenerateSegment indicates two consecutive anchors collapse to one point.
	ErrDegenerateSegment = errors.New("curve has degenerate segment")
)

// TangentMode governs how the two tangent handles flanking an anchor are
// kept consistent when one of them moves.
type TangentMode int8

const (
	// Free handles move independently.
	Free TangentMode = iota
	// Aligned handles stay collinear through the anchor, lengths may differ.
	Aligned
	// Mirrored handles stay collinear and equidistant from the anchor.
	Mirrored
)

var modeNames = [...]string{"free", "aligned", "mirrored"}

func (m TangentMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("TangentMode(%d)", int8(m))
	}
	return modeNames[m]
}

// ParseTangentMode is the inverse of String, case-insensitive.
func ParseTangentMode(s string) (TangentMode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(n, s) {
			return TangentMode(i), nil
		}
	}
	return Free, fmt.Errorf("unknown tangent mode %q", s)
}

// MarshalText is part of encoding.TextMarshaler, used for persisting curves.
func (m TangentMode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("cannot marshal %s", m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText is part of encoding.TextUnmarshaler.
func (m *TangentMode) UnmarshalText(text []byte) error {
	mode, err := ParseTangentMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Curve is a piecewise cubic Bezier curve. Control points are stored in one
// array, grouped in runs of four per segment, with consecutive segments sharing
// their anchor: point 3k is the end of segment k-1 and the start of segment k.
// Points 3k±1 are the tangent handles of anchor 3k.
//
// Invariants:
//
//	len(points) ≡ 1 (mod 3), len(points) ≥ 4
//	len(modes)  == (len(points)+2)/3    (one mode per anchor)
//
// If the curve loops, the first and last anchor are kept equal, as are their modes.
//
// A Curve is not safe for concurrent use.
type Curve struct {
	points  []vec3.T
	modes   []TangentMode
	loop    bool
	version uint64 // incremented by every edit
}
