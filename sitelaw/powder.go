package sitelaw

import (
	"math"

	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
)

// PowderFactor evaluates the volumetric powder factor
//
//	mass / ((4/3) * pi * R^3)
//
// in kg/m3 against a sphere centred on each charge centroid; the peak
// across charged intervals governs. Callers typically display this on
// a log scale, but that is a display concern, not the engine's.
type PowderFactor struct {
	CutoffDistance     float64
	MaxDisplayDistance float64
}

// Evaluate returns the peak powder factor (kg/m3) at the point.
func (e *PowderFactor) Evaluate(p geom.Vec3, holes []charge.Hole) Result {
	var peak float64
	for _, h := range holes {
		if !h.Valid() || !withinDisplay(p, h, e.MaxDisplayDistance) {
			continue
		}
		for _, c := range charge.EffectiveColumns(h) {
			r := p.Dist(h.PointAt(c.CentroidDepth()))
			if r < e.CutoffDistance {
				r = e.CutoffDistance
			}
			if r <= 0 {
				continue
			}
			v := finiteOrZero(c.TotalMass / (4.0 / 3.0 * math.Pi * r * r * r))
			if v > peak {
				peak = v
			}
		}
	}
	return Result{Value: peak}
}
