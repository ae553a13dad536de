package mcl

import "math"

// DistPoints returns the Euclidean distance between two points.
func DistPoints(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// DistPointSegment returns the distance between a point and a line segment.
// The point is projected onto the line carrying the segment and the
// projection parameter is clamped to [0,1], so the distance is measured to
// the nearest point of the segment itself.
func DistPointSegment(p Point, s Segment) float64 {
	// t = dot(p-p1, p2-p1) / |p2-p1|^2. The direction vector is left
	// unnormalised; the squared norm in the denominator absorbs it.
	dx := s.P2.X - s.P1.X
	dy := s.P2.Y - s.P1.Y
	sqnorm := dx*dx + dy*dy
	if sqnorm == 0 {
		return DistPoints(p, s.P1)
	}

	t := ((p.X-s.P1.X)*dx + (p.Y-s.P1.Y)*dy) / sqnorm
	switch {
	case t < 0:
		return DistPoints(p, s.P1)
	case t > 1:
		return DistPoints(p, s.P2)
	default:
		return DistPoints(p, Point{X: s.P1.X + t*dx, Y: s.P1.Y + t*dy})
	}
}

// IntersectLines returns the parameters (t1, t2) at which the infinite
// lines carrying s1 and s2 intersect: the crossing lies at
// s1.P1 + t1*(s1.P2-s1.P1). The segments themselves intersect iff both
// parameters lie in [0,1]. Parallel lines yield (+Inf, +Inf).
func IntersectLines(s1, s2 Segment) (float64, float64) {
	a1, a2 := s1.P1, s1.P2
	b1, b2 := s2.P1, s2.P2

	t1 := (b1.Y-b2.Y)*(a1.X-b1.X) - (b1.X-b2.X)*(a1.Y-b1.Y)
	t2 := (a1.Y-a2.Y)*(a1.X-b1.X) - (a1.X-a2.X)*(a1.Y-b1.Y)
	n := (b2.X-b1.X)*(a1.Y-a2.Y) - (a1.X-a2.X)*(b2.Y-b1.Y)

	if n == 0 {
		return math.Inf(1), math.Inf(1)
	}
	return t1 / n, t2 / n
}

// DistSegments returns the distance between two segments: zero when they
// intersect, otherwise the smallest of the four endpoint-to-segment
// distances.
func DistSegments(s1, s2 Segment) float64 {
	t1, t2 := IntersectLines(s1, s2)
	if t1 >= 0 && t1 <= 1 && t2 >= 0 && t2 <= 1 {
		return 0
	}

	return math.Min(
		math.Min(DistPointSegment(s1.P1, s2), DistPointSegment(s1.P2, s2)),
		math.Min(DistPointSegment(s2.P1, s1), DistPointSegment(s2.P2, s1)),
	)
}
