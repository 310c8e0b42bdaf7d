// Package sitelaw implements the pluggable field evaluators: scaled
// distance PPV, Heelan wave radiation, Holmberg-Persson damage, scaled
// depth of burial, specific explosive energy, borehole pressure, and
// powder factor. Every evaluator is a pure function of its inputs; the
// caller supplies parameters per evaluation and nothing is cached
// between points except what Prepare computes.
package sitelaw

import (
	"math"

	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
)

// Result is a field value at one observation point. Scalar models fill
// Value only; the Heelan family also reports the radial and vertical
// components.
type Result struct {
	Value    float64
	Radial   float64
	Vertical float64
}

// Evaluator computes a field value at an observation point from a set
// of holes. Implementations must be safe for concurrent use after
// Prepare (when implemented) has run.
type Evaluator interface {
	Evaluate(p geom.Vec3, holes []charge.Hole) Result
}

// Preparer is implemented by evaluators that need a whole-blast
// aggregation pass (timing-window MIC) before per-point evaluation.
// field.EvaluateGrid runs Prepare once, then evaluates points in
// parallel against the prepared state.
type Preparer interface {
	Prepare(holes []charge.Hole)
}

// Params are the regression constants and distance rules shared by the
// scaled-distance law family. Model-specific evaluators embed this and
// add their own constants.
type Params struct {
	K              float64 // site constant
	B              float64 // attenuation exponent
	ChargeExponent float64 // A in Q^A

	// CutoffDistance floors every distance before division; it must be
	// positive for any law that divides by R.
	CutoffDistance float64

	// MaxDisplayDistance culls holes whose collar or charge midpoint is
	// farther than this before the per-element loop. Zero disables
	// culling.
	MaxDisplayDistance float64
}

// floorDistance applies the cutoff floor.
func (p Params) floorDistance(r float64) float64 {
	if r < p.CutoffDistance {
		return p.CutoffDistance
	}
	return r
}

// withinDisplay is the cheap cull: distance to the collar or to the
// midpoint of the first charged interval, whichever is nearer.
func (p Params) withinDisplay(pt geom.Vec3, h charge.Hole) bool {
	return withinDisplay(pt, h, p.MaxDisplayDistance)
}

func withinDisplay(pt geom.Vec3, h charge.Hole, maxDist float64) bool {
	if maxDist <= 0 {
		return true
	}
	limSq := maxDist * maxDist
	if pt.DistSq(h.Collar) <= limSq {
		return true
	}
	mid := h.Collar.Add(h.Toe).Scale(0.5)
	return pt.DistSq(mid) <= limSq
}

// finiteOrZero converts NaN and infinities to zero so a numeric domain
// error inside one element can never reach the caller.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// safePow guards fractional powers against negative bases.
func safePow(x, a float64) float64 {
	return math.Pow(math.Max(x, 0), a)
}
