package geom

import "math"

// DistanceToSegment returns the nearest Euclidean distance from p to the
// closed segment [a, b]. When the segment is numerically degenerate it
// falls back to the point distance to a.
//
// Site laws that model a charge as a line source (pressure, SDoB) use
// this instead of a centroid distance: directly above a charge the
// centroid distance produces a spurious shell of equal values, the
// segment distance does not.
func DistanceToSegment(p, a, b Vec3) float64 {
	ab := b.Sub(a)
	lenSq := ab.NormSq()
	if lenSq < eps {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Dist(a.Add(ab.Scale(t)))
}

// NearestOnSegment returns the point on the closed segment [a, b] nearest
// to p.
func NearestOnSegment(p, a, b Vec3) Vec3 {
	ab := b.Sub(a)
	lenSq := ab.NormSq()
	if lenSq < eps {
		return a
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t))
}

// AngleCosSin returns the cosine and sine of the angle between axis and
// dir. The sine comes from sqrt(1-cos^2) rather than acos/sin, which
// keeps the value exact at the poles where trig round-tripping drifts.
// A zero-length input yields (1, 0).
func AngleCosSin(axis, dir Vec3) (cosPhi, sinPhi float64) {
	an := axis.Norm()
	dn := dir.Norm()
	if an < eps || dn < eps {
		return 1, 0
	}
	cosPhi = axis.Dot(dir) / (an * dn)
	if cosPhi > 1 {
		cosPhi = 1
	} else if cosPhi < -1 {
		cosPhi = -1
	}
	sinPhi = math.Sqrt(math.Max(1-cosPhi*cosPhi, 0))
	return cosPhi, sinPhi
}
