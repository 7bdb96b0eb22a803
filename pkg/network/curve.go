package network

import "fmt"

// CurvePoint is one (X, Y) sample of a piecewise-linear efficiency or
// stabilization curve, e.g. (watts, efficiency) for a generator or TRU.
type CurvePoint struct {
	X float64
	Y float64
}

// Curve is a piecewise-linear lookup table. Construction validates that
// X is strictly increasing and 0 <= Y < 1 for every point (spec §3, §4.1).
type Curve struct {
	points []CurvePoint
}

// NewCurve builds a Curve from points already in increasing-X order and
// validates the monotonicity/range invariants.
func NewCurve(points []CurvePoint) (*Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("curve: need at least 2 points, got %d", len(points))
	}
	for i, p := range points {
		if p.Y < 0 || p.Y >= 1 {
			return nil, fmt.Errorf("curve: point %d has Y=%g, want 0<=Y<1", i, p.Y)
		}
		if i > 0 && p.X <= points[i-1].X {
			return nil, fmt.Errorf("curve: point %d has X=%g, not strictly greater than previous X=%g", i, p.X, points[i-1].X)
		}
	}
	return &Curve{points: append([]CurvePoint(nil), points...)}, nil
}

// Lookup returns the piecewise-linear interpolation of Y at x, clamped at
// the curve's endpoints (clamping, not extrapolation). A caller that wants
// to treat an x outside the table as an error checks InRange first; the
// converter efficiency path in this package does not, and clamps.
func (c *Curve) Lookup(x float64) float64 {
	pts := c.points
	if x <= pts[0].X {
		return pts[0].Y
	}
	last := len(pts) - 1
	if x >= pts[last].X {
		return pts[last].Y
	}
	for i := 1; i <= last; i++ {
		if x <= pts[i].X {
			lo, hi := pts[i-1], pts[i]
			t := (x - lo.X) / (hi.X - lo.X)
			return lo.Y + t*(hi.Y-lo.Y)
		}
	}
	return pts[last].Y
}

// InRange reports whether x falls within the curve's defined domain; a
// component that needs to flag extrapolation (rather than silently clamp)
// checks this first.
func (c *Curve) InRange(x float64) bool {
	return x >= c.points[0].X && x <= c.points[len(c.points)-1].X
}
