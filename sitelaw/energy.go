package sitelaw

import (
	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
)

// SEE evaluates specific explosive energy, 0.5 * rho_e * VOD^2,
// reported in GJ/m3. SEE is a property of the charge, not of the
// ground between charge and point, so nearby holes are blended by
// inverse-distance weighting for a smooth field rather than competing
// for a peak.
type SEE struct {
	CutoffDistance     float64
	MaxDisplayDistance float64

	// IDWPower is the inverse-distance exponent; <= 0 means 2.
	IDWPower float64
}

// Evaluate returns the blended SEE (GJ/m3) at the point.
func (e *SEE) Evaluate(p geom.Vec3, holes []charge.Hole) Result {
	power := e.IDWPower
	if power <= 0 {
		power = 2
	}

	var weighted, weights float64
	for _, h := range holes {
		if !h.Valid() || !withinDisplay(p, h, e.MaxDisplayDistance) {
			continue
		}
		for _, c := range charge.EffectiveColumns(h) {
			if c.Density <= 0 || c.VOD <= 0 {
				continue
			}
			see := 0.5 * c.Density * c.VOD * c.VOD / 1e9 // J/m3 -> GJ/m3

			r := p.Dist(h.PointAt(c.CentroidDepth()))
			if r < e.CutoffDistance {
				r = e.CutoffDistance
			}
			if r <= 0 {
				continue
			}
			w := 1 / safePow(r, power)
			weighted += w * see
			weights += w
		}
	}
	if weights <= 0 {
		return Result{Value: 0}
	}
	return Result{Value: finiteOrZero(weighted / weights)}
}
