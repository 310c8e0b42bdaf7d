package sitelaw

import (
	"math"

	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
)

// SDoB evaluates scaled depth of burial, the flyrock risk indicator
//
//	D / Wt^(1/3)
//
// where D is the distance from the point to the charge-column segment
// (not a centroid: directly above a charge D is the stemming length,
// beside it the standoff) and Wt is the charge mass within the
// contributing length, capped at m diameters of charge with m = 10 for
// holes >= 100 mm and 8 below.
//
// No cutoff floor applies to D: a point inside the charge legitimately
// yields SDoB = 0. The governing (minimum) value across all charged
// intervals is returned; with no contributing charge the result is 0.
type SDoB struct {
	MaxDisplayDistance float64
}

// Evaluate returns the minimum SDoB (m/kg^(1/3)) at the point.
func (e *SDoB) Evaluate(p geom.Vec3, holes []charge.Hole) Result {
	best := math.Inf(1)
	for _, h := range holes {
		if !h.Valid() || !withinDisplay(p, h, e.MaxDisplayDistance) {
			continue
		}
		for _, c := range charge.EffectiveColumns(h) {
			wt := ContributingMass(c, h.Diameter)
			if wt <= 0 {
				continue
			}
			d := geom.DistanceToSegment(p, h.PointAt(c.TopDepth), h.PointAt(c.BaseDepth))
			if v := d / math.Cbrt(wt); v < best {
				best = v
			}
		}
	}
	if math.IsInf(best, 1) {
		return Result{Value: 0}
	}
	return Result{Value: best}
}

// ContributingMass returns the charge mass inside the contributing
// length min(chargeLength, m*diameter), the portion of the column that
// actually drives surface effects. Diameter is in millimetres.
func ContributingMass(c charge.ChargeColumn, diameter float64) float64 {
	length := c.Length()
	if length <= 0 || c.TotalMass <= 0 {
		return 0
	}
	m := 8.0
	if diameter >= 100 {
		m = 10.0
	}
	contributing := math.Min(length, m*diameter/1000)
	return c.TotalMass * contributing / length
}
