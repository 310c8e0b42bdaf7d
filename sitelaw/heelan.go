package sitelaw

import (
	"math"

	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/detonation"
	"github.com/brentbuffham/blastvib/geom"
)

// Combine selects how per-element P and SV contributions are merged.
type Combine int

const (
	// CombineIncoherent RMS-sums squared amplitudes. The default for
	// static worst-case maps: coherent summation of evenly spaced
	// elements paints interference fringes that are artefacts of the
	// discretization, not of the ground.
	CombineIncoherent Combine = iota

	// CombineCoherent vector-sums the radial/vertical components.
	CombineCoherent
)

// HeelanParams configures the wave-radiation family. Embedded Params
// carries K/B for the scaled variant plus the distance rules.
type HeelanParams struct {
	Params

	RockDensity float64 // kg/m3
	PVelocity   float64 // m/s
	SVelocity   float64 // m/s
	Qp, Qs      float64 // quality factors for viscoelastic attenuation

	// ElementsPerCharge is the discretization count per charged
	// interval; < 1 means 1.
	ElementsPerCharge int

	// SimultaneityTolMS is the Em grouping tolerance for the scaled
	// variant's detonation front; 0 means the detonation default.
	SimultaneityTolMS float64

	// ToeDecayLength (m) controls the exponential decay applied once
	// the observation point projects past the hole toe, modelling loss
	// of free-face confinement. Zero disables the decay.
	ToeDecayLength float64

	Combine Combine
}

func (hp HeelanParams) elements() int {
	if hp.ElementsPerCharge < 1 {
		return 1
	}
	return hp.ElementsPerCharge
}

// Heelan evaluates the physical Heelan (1953) radiation model: each
// charge element radiates a P wave weighted by F1 = 2 sin cos^2 and an
// SV wave weighted by F2 = sin (2cos^2 - 1), with amplitude set by the
// borehole wall pressure Pb = rho_e VOD^2 / 8 against the rock
// impedance.
type Heelan struct {
	HeelanParams
}

// Evaluate returns PPV in mm/s with radial/vertical components.
func (e *Heelan) Evaluate(p geom.Vec3, holes []charge.Hole) Result {
	return evaluateHeelan(p, holes, e.HeelanParams, false)
}

// ScaledHeelan keeps Heelan's radiation geometry but takes its
// amplitude from the empirical site law K * Em * R^-B, with Em the
// Blair effective mass of each element so the result is independent of
// the discretization count.
type ScaledHeelan struct {
	HeelanParams
}

// Evaluate returns PPV in mm/s with radial/vertical components.
func (e *ScaledHeelan) Evaluate(p geom.Vec3, holes []charge.Hole) Result {
	return evaluateHeelan(p, holes, e.HeelanParams, true)
}

func evaluateHeelan(p geom.Vec3, holes []charge.Hole, hp HeelanParams, scaled bool) Result {
	var (
		radial, vertical float64 // coherent accumulators
		radSq, vertSq    float64 // incoherent accumulators
		sumSq            float64
	)

	for _, h := range holes {
		if !h.Valid() || !hp.withinDisplay(p, h) {
			continue
		}
		axis := h.Axis()
		holeLen := h.Length()
		a := h.Radius()

		// Below-toe confinement decay, applied once per hole.
		toeFactor := 1.0
		if hp.ToeDecayLength > 0 {
			if s := p.Sub(h.Collar).Dot(axis); s > holeLen {
				toeFactor = math.Exp(-(s - holeLen) / hp.ToeDecayLength)
			}
		}

		for _, c := range charge.EffectiveColumns(h) {
			if c.VOD <= 0 || a <= 0 {
				continue
			}
			elems := heelanElements(c, hp, scaled)
			if len(elems) == 0 {
				continue
			}

			omega := c.VOD / (2 * a)
			dl := c.Length() / float64(len(elems))
			pb := c.Density * c.VOD * c.VOD / 8

			for _, el := range elems {
				centre := charge.ElementPosition(h, c.TopDepth, el)
				toObs := p.Sub(centre)
				r := hp.floorDistance(toObs.Norm())

				cosPhi, sinPhi := geom.AngleCosSin(axis, toObs)
				f1 := 2 * sinPhi * cosPhi * cosPhi
				f2 := sinPhi * (2*cosPhi*cosPhi - 1)

				attenP := math.Exp(-omega * r / (2 * hp.Qp * hp.PVelocity))
				attenS := math.Exp(-omega * r / (2 * hp.Qs * hp.SVelocity))

				var vP, vS float64
				if scaled {
					base := hp.K * el.Em * safePow(r, -hp.B)
					vP = base * f1 * attenP
					vS = base * f2 * attenS
				} else {
					// Physical far-field amplitude: borehole pressure
					// against rock impedance, 1/R spreading, mm/s out.
					ampP := pb * a * a * omega * dl / (hp.RockDensity * hp.PVelocity * hp.PVelocity * hp.PVelocity * r)
					ampS := pb * a * a * omega * dl / (hp.RockDensity * hp.SVelocity * hp.SVelocity * hp.SVelocity * r)
					vP = ampP * omega * f1 * attenP * 1000
					vS = ampS * omega * f2 * attenS * 1000
				}
				vP = finiteOrZero(vP) * toeFactor
				vS = finiteOrZero(vS) * toeFactor

				// P motion lies along the ray, SV perpendicular to it in
				// the axis-ray plane.
				elRad := vP*sinPhi + vS*cosPhi
				elVert := vP*cosPhi - vS*sinPhi

				radial += elRad
				vertical += elVert
				radSq += elRad * elRad
				vertSq += elVert * elVert
				sumSq += vP*vP + vS*vS
			}
		}
	}

	if hp.Combine == CombineCoherent {
		return Result{
			Value:    math.Hypot(radial, vertical),
			Radial:   radial,
			Vertical: vertical,
		}
	}
	return Result{
		Value:    math.Sqrt(sumSq),
		Radial:   math.Sqrt(radSq),
		Vertical: math.Sqrt(vertSq),
	}
}

// heelanElements discretizes a column for the radiation loop. The
// static physical model only needs evenly spaced elements; the scaled
// variant runs the detonation front so each element carries its Blair
// effective mass.
func heelanElements(c charge.ChargeColumn, hp HeelanParams, scaled bool) []charge.Element {
	if !scaled {
		return charge.Discretize(c.Length(), c.TotalMass, hp.elements())
	}
	opts := detonation.Options{SimultaneityTolMS: hp.SimultaneityTolMS}
	elems, _ := detonation.Simulate(detonation.Column{
		TopDepth:  c.TopDepth,
		BaseDepth: c.BaseDepth,
		TotalMass: c.TotalMass,
		VOD:       c.VOD,
		Primers:   c.Primers,
		Elements:  hp.elements(),
	}, opts)
	return detonation.ComputeEm(elems, hp.ChargeExponent, opts)
}
