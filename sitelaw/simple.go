package sitelaw

import (
	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
)

// TimingWindow configures cooperative MIC evaluation for SimplePPV.
type TimingWindow struct {
	Width  float64 // ms
	Offset float64 // ms
}

// SimplePPV is the classic scaled-distance law
//
//	PPV = K * (R / Q^A)^-B
//
// evaluated against the charge centroid of each column, or against the
// top/mid/base of each deck (nearest position wins). With a timing
// window set, holes are binned by fire time and every member of a bin
// evaluates with the bin's MIC instead of its own mass.
type SimplePPV struct {
	Params

	// Window enables MIC grouping. Prepare must run before Evaluate
	// when a window is set; field.EvaluateGrid does this automatically.
	Window *TimingWindow

	mic map[int]float64
}

// Prepare aggregates per-window MIC sums across the whole hole set.
// This is the sequential phase; Evaluate afterwards is read-only and
// safe to run concurrently.
func (s *SimplePPV) Prepare(holes []charge.Hole) {
	s.mic = nil
	if s.Window == nil {
		return
	}
	s.mic = BinMIC(CollectTimedCharges(holes), s.Window.Width, s.Window.Offset)
}

// Evaluate returns the peak PPV (mm/s) over all holes and charge
// positions at the observation point.
func (s *SimplePPV) Evaluate(p geom.Vec3, holes []charge.Hole) Result {
	var peak float64
	for _, h := range holes {
		if !h.Valid() || !s.withinDisplay(p, h) {
			continue
		}

		for _, c := range h.Columns {
			if !c.Valid() {
				continue
			}
			r := p.Dist(h.PointAt(c.CentroidDepth()))
			if v := s.ppv(r, s.chargeMass(c)); v > peak {
				peak = v
			}
		}

		for _, d := range h.Decks {
			if !d.Valid() {
				continue
			}
			c := d.Column(h.Diameter)
			if !c.Valid() {
				continue
			}
			// Nearest of top, mid, and base of the deck governs.
			r := p.Dist(h.PointAt(c.TopDepth))
			if r2 := p.Dist(h.PointAt(c.CentroidDepth())); r2 < r {
				r = r2
			}
			if r2 := p.Dist(h.PointAt(c.BaseDepth)); r2 < r {
				r = r2
			}
			if v := s.ppv(r, s.chargeMass(c)); v > peak {
				peak = v
			}
		}
	}
	return Result{Value: peak}
}

// chargeMass resolves the mass a column evaluates with: its own, or its
// timing window's MIC when windowing is active.
func (s *SimplePPV) chargeMass(c charge.ChargeColumn) float64 {
	if s.mic == nil {
		return c.TotalMass
	}
	return s.mic[BinIndex(c.FireTime(), s.Window.Width, s.Window.Offset)]
}

func (s *SimplePPV) ppv(r, q float64) float64 {
	if q <= 0 {
		return 0
	}
	sd := s.floorDistance(r) / safePow(q, s.ChargeExponent)
	return finiteOrZero(s.K * safePow(sd, -s.B))
}
