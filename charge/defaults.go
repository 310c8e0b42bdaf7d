package charge

import "math"

// ChargingDefaults are the engine-wide fallbacks substituted when a
// hole arrives without charging data. They are passed explicitly; the
// engine keeps no globals.
type ChargingDefaults struct {
	StemmingFraction float64 // fraction of hole length left uncharged at the collar
	Density          float64 // kg/m3
	VOD              float64 // m/s
}

// ApplyDefaults fills in a default charge column for a hole that has
// neither columns nor decks: stemming over the top StemmingFraction of
// the hole, charge over the remainder, mass derived from the fallback
// density and the hole diameter. Holes that already carry charging, or
// whose geometry is invalid, are returned unchanged.
//
// Missing product properties on existing columns and decks are also
// backfilled here, so downstream code never sees a zero density or VOD
// on a charged interval.
func ApplyDefaults(h Hole, d ChargingDefaults) Hole {
	if !h.Valid() {
		return h
	}

	for i := range h.Columns {
		if h.Columns[i].Density <= 0 {
			h.Columns[i].Density = d.Density
		}
		if h.Columns[i].VOD <= 0 {
			h.Columns[i].VOD = d.VOD
		}
	}
	for i := range h.Decks {
		if h.Decks[i].Density <= 0 {
			h.Decks[i].Density = d.Density
		}
		if h.Decks[i].VOD <= 0 {
			h.Decks[i].VOD = d.VOD
		}
	}

	if len(h.Columns) > 0 || len(h.Decks) > 0 {
		return h
	}

	length := h.Length()
	top := d.StemmingFraction * length
	chargeLen := length - top
	if chargeLen <= 0 {
		return h
	}

	r := h.Diameter / 2000
	mass := d.Density * math.Pi * r * r * chargeLen

	h.Columns = []ChargeColumn{{
		TopDepth:  top,
		BaseDepth: length,
		TotalMass: mass,
		Density:   d.Density,
		VOD:       d.VOD,
	}}
	return h
}

// EffectiveColumns returns the charged intervals of a hole as columns,
// whichever way the hole was charged. Decks are converted with their
// mass resolved; invalid intervals are filtered out.
func EffectiveColumns(h Hole) []ChargeColumn {
	if !h.Valid() {
		return nil
	}
	var cols []ChargeColumn
	for _, c := range h.Columns {
		if c.Valid() {
			cols = append(cols, c)
		}
	}
	for _, d := range h.Decks {
		if !d.Valid() {
			continue
		}
		c := d.Column(h.Diameter)
		if c.Valid() {
			cols = append(cols, c)
		}
	}
	return cols
}
