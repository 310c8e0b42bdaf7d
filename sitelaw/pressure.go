package sitelaw

import (
	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
)

// Pressure evaluates borehole wall pressure Pb = rho_e * VOD^2 / 8
// attenuated geometrically as Pb * (a/R)^alpha, with R the distance to
// the nearest point on the charge segment. Reported in MPa; the peak
// across all charged intervals governs.
type Pressure struct {
	CutoffDistance     float64
	MaxDisplayDistance float64

	// AttenuationExponent alpha; <= 0 means 1.5.
	AttenuationExponent float64
}

// Evaluate returns the peak attenuated pressure (MPa) at the point.
func (e *Pressure) Evaluate(p geom.Vec3, holes []charge.Hole) Result {
	alpha := e.AttenuationExponent
	if alpha <= 0 {
		alpha = 1.5
	}

	var peak float64
	for _, h := range holes {
		if !h.Valid() || !withinDisplay(p, h, e.MaxDisplayDistance) {
			continue
		}
		a := h.Radius()
		if a <= 0 {
			continue
		}
		for _, c := range charge.EffectiveColumns(h) {
			if c.Density <= 0 || c.VOD <= 0 {
				continue
			}
			pb := c.Density * c.VOD * c.VOD / 8 / 1e6 // Pa -> MPa

			r := geom.DistanceToSegment(p, h.PointAt(c.TopDepth), h.PointAt(c.BaseDepth))
			if r < e.CutoffDistance {
				r = e.CutoffDistance
			}
			if r < a {
				// Inside the borehole wall the full pressure applies.
				r = a
			}
			v := finiteOrZero(pb * safePow(a/r, alpha))
			if v > peak {
				peak = v
			}
		}
	}
	return Result{Value: peak}
}
