/*
Package curve implements piecewise cubic Bezier curves in 3D, as edited
by placement tools.

A curve is stored as one array of control points. Every third point is
an anchor the curve passes through; the two points next to an anchor are
its tangent handles. Each anchor carries a tangent mode (Free, Aligned,
Mirrored), which is enforced whenever a handle or anchor is moved:

	anchor  handle handle  anchor  handle handle  anchor
	  0       1      2       3       4      5       6
	  |<-- segment 0 -->|<-- segment 1 -->|

Curves are evaluated with a global parameter t ∈ [0,1], which is
distributed evenly over the segments. Note that this parametrization is not
proportional to arc length; see package resample for that.

Usage

	c := curve.New()                 // (1,0,0) .. (4,0,0)
	c.AppendSegment()
	c.SetMode(3, curve.Mirrored)
	c.SetPoint(3, vec3.T{4, 1, 0})  // handles 2 and 4 follow
	p := c.Evaluate(0.5)

Clients may let the curve compute its handles by calling Smooth(…), which
applies John Hobby's spline interpolation algorithm (as used by
MetaFont/MetaPost) to the anchors. The primary source of information for
"Hobby-splines" is:

	Smooth, Easy to Compute Interpolating Splines -- John D. Hobby
	Computer Science Dept. Stanford University
	Report No. STAN-CS-85-1047, Jan 1985

Index violations are programming errors and cause a panic with an error
wrapping ErrIndexOutOfRange.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package curve

import "strings"

// AsString returns a curve as a (debugging) string in a MetaPost-like
// notation, one segment per line:
//
//	(1,0,1) .. controls (1.0000,0.0000,1.5523) and (1.4477,0.0000,2.0000)
//	  .. (2,0,2) .. controls (2.5523,0.0000,2.0000) and (3.0000,0.0000,1.5523)
//	  .. cycle
//
// For looped curves the seam anchor is printed as "cycle".
func AsString(c *Curve) string {
	var sb strings.Builder
	n := c.PointCount()
	for i := 0; i < n; i += 3 {
		if i > 0 {
			sb.WriteString(" and ")
			sb.WriteString(ptstring(c.points[i-1], true))
			sb.WriteString("\n  .. ")
		}
		if i == n-1 && c.loop {
			sb.WriteString("cycle")
			break
		}
		sb.WriteString(ptstring(c.points[i], false))
		if i < n-1 {
			sb.WriteString(" .. controls ")
			sb.WriteString(ptstring(c.points[i+1], true))
		}
	}
	return sb.String()
}
