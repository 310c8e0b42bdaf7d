package sitelaw

import (
	"math"

	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
)

// HolmbergPersson evaluates near-field damage: per-element PPV
//
//	K * (q*dL)^A / R^B
//
// with q the linear charge density, RMS-summed per charged interval.
// Value is the damage index peakPPV / PPVCritical; values above 1 mean
// predicted failure. Embedded Params supplies K, A (alpha) and B (beta)
// in the usual roles.
type HolmbergPersson struct {
	Params

	PPVCritical       float64 // mm/s
	ElementsPerCharge int
}

// Evaluate returns the damage index at the observation point.
func (e *HolmbergPersson) Evaluate(p geom.Vec3, holes []charge.Hole) Result {
	peak := e.PeakPPV(p, holes)
	if e.PPVCritical <= 0 {
		return Result{Value: 0}
	}
	return Result{Value: math.Max(peak/e.PPVCritical, 0)}
}

// PeakPPV returns the governing Holmberg-Persson PPV (mm/s) across all
// charged intervals: each interval's elements RMS-sum, intervals
// compete for the peak.
func (e *HolmbergPersson) PeakPPV(p geom.Vec3, holes []charge.Hole) float64 {
	m := e.ElementsPerCharge
	if m < 1 {
		m = 1
	}

	var peak float64
	for _, h := range holes {
		if !h.Valid() || !e.withinDisplay(p, h) {
			continue
		}
		for _, c := range charge.EffectiveColumns(h) {
			elems := charge.DiscretizeColumn(h, c, m)
			if len(elems) == 0 {
				continue
			}
			dl := c.Length() / float64(len(elems))
			w := c.LinearDensity() * dl // charge mass per element

			var sumSq float64
			for _, el := range elems {
				r := e.floorDistance(p.Dist(charge.ElementPosition(h, c.TopDepth, el)))
				v := e.K * safePow(w, e.ChargeExponent) / safePow(r, e.B)
				v = finiteOrZero(v)
				sumSq += v * v
			}
			if v := math.Sqrt(sumSq); v > peak {
				peak = v
			}
		}
	}
	return peak
}
