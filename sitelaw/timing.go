package sitelaw

import (
	"math"

	"github.com/brentbuffham/blastvib/charge"
)

// TimedCharge pairs a charge mass with its fire time for MIC grouping.
type TimedCharge struct {
	Mass     float64
	FireTime float64 // ms
}

// BinIndex assigns a fire time to a timing window. Windows are
// [offset+n*W, offset+(n+1)*W); everything before the offset shares the
// single edge bin -1. A non-positive width puts everything in bin 0
// (windowing disabled).
func BinIndex(t, width, offset float64) int {
	if width <= 0 {
		return 0
	}
	if t < offset {
		return -1
	}
	return int(math.Floor((t - offset) / width))
}

// BinMIC sums charge mass per timing window, producing the Maximum
// Instantaneous Charge each window's members evaluate with. Charges
// that detonate within one window cooperate; the MIC stands in for
// their combined mass without requiring true wave superposition.
func BinMIC(items []TimedCharge, width, offset float64) map[int]float64 {
	mic := make(map[int]float64)
	for _, it := range items {
		if it.Mass <= 0 {
			continue
		}
		mic[BinIndex(it.FireTime, width, offset)] += it.Mass
	}
	return mic
}

// CollectTimedCharges flattens a hole set into (mass, fireTime) pairs,
// one per charged interval. Invalid intervals are skipped.
func CollectTimedCharges(holes []charge.Hole) []TimedCharge {
	var items []TimedCharge
	for _, h := range holes {
		if !h.Valid() {
			continue
		}
		for _, c := range charge.EffectiveColumns(h) {
			items = append(items, TimedCharge{Mass: c.TotalMass, FireTime: c.FireTime()})
		}
	}
	return items
}
