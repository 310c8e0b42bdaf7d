package sitelaw

import (
	"math"

	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
)

// JointedRock converts Holmberg-Persson PPV into dynamic stress
// sigma_d = rho * Vp * v and reports the worse of two failure ratios:
// intact-rock tensile fracture (sigma_d / tensile strength) and
// Mohr-Coulomb slip on a joint plane at the configured dip.
type JointedRock struct {
	// PPV carries the underlying near-field model; its PPVCritical is
	// not used here.
	PPV HolmbergPersson

	RockDensity     float64 // kg/m3
	PVelocity       float64 // m/s
	TensileStrength float64 // Pa
	JointCohesion   float64 // Pa
	JointFriction   float64 // coefficient mu
	JointDipDeg     float64 // degrees from horizontal
}

// Evaluate returns max(tensile ratio, joint slip ratio); >= 1 predicts
// failure by the corresponding mechanism.
func (e *JointedRock) Evaluate(p geom.Vec3, holes []charge.Hole) Result {
	ppv := e.PPV.PeakPPV(p, holes) / 1000 // mm/s -> m/s
	sigmaD := e.RockDensity * e.PVelocity * ppv

	var tensile float64
	if e.TensileStrength > 0 {
		tensile = sigmaD / e.TensileStrength
	}

	// Resolve the dynamic stress onto the joint plane.
	dip := e.JointDipDeg * math.Pi / 180
	cosD, sinD := math.Cos(dip), math.Sin(dip)
	sigmaN := sigmaD * cosD * cosD
	tau := sigmaD * sinD * cosD

	var joint float64
	if denom := e.JointCohesion + e.JointFriction*sigmaN; denom > 0 {
		joint = tau / denom
	}

	return Result{Value: finiteOrZero(math.Max(tensile, joint))}
}
