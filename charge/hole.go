// Package charge holds the blast design records the engine consumes:
// holes, charge columns, decks, primers, and the discretized elements
// the site laws iterate over. Records are built once per design
// snapshot and treated as read-only for the life of an evaluation
// session; a changed design means a rebuilt slice, not a mutation.
package charge

import (
	"math"

	"github.com/brentbuffham/blastvib/geom"
)

// Hole is a single blasthole. Diameter is in millimetres; everything
// else is metres and kilograms.
type Hole struct {
	ID       string
	Collar   geom.Vec3
	Toe      geom.Vec3
	Diameter float64 // mm

	// A hole carries either whole-column charging or independently
	// timed decks. Both may be empty for an uncharged hole.
	Columns []ChargeColumn
	Decks   []Deck
}

// Length returns the collar-to-toe length in metres.
func (h Hole) Length() float64 {
	return h.Collar.Dist(h.Toe)
}

// Axis returns the unit vector from collar to toe, or the zero vector
// for a degenerate hole.
func (h Hole) Axis() geom.Vec3 {
	return h.Toe.Sub(h.Collar).Normalize()
}

// Valid reports whether the hole has usable geometry. Invalid holes are
// skipped by every evaluator; incomplete design data is routine, not an
// error.
func (h Hole) Valid() bool {
	return h.Length() > 0
}

// Radius returns the borehole radius in metres.
func (h Hole) Radius() float64 {
	return h.Diameter / 2000
}

// PointAt returns the 3D position at the given depth along the hole
// axis, measured from the collar.
func (h Hole) PointAt(depth float64) geom.Vec3 {
	return h.Collar.Add(h.Axis().Scale(depth))
}

// ChargeColumn is a contiguous charged interval of a hole. Depths are
// metres from the collar along the axis.
type ChargeColumn struct {
	TopDepth  float64
	BaseDepth float64
	TotalMass float64 // kg
	Density   float64 // kg/m3
	VOD       float64 // m/s
	Primers   []Primer
}

// Length returns the charged length in metres.
func (c ChargeColumn) Length() float64 {
	return c.BaseDepth - c.TopDepth
}

// Valid reports whether the column contributes to any evaluation.
func (c ChargeColumn) Valid() bool {
	return c.BaseDepth > c.TopDepth && c.TopDepth >= 0 && c.TotalMass > 0
}

// CentroidDepth returns the depth of the charge midpoint from the
// collar.
func (c ChargeColumn) CentroidDepth() float64 {
	return (c.TopDepth + c.BaseDepth) / 2
}

// LinearDensity returns the charge mass per metre of column.
func (c ChargeColumn) LinearDensity() float64 {
	l := c.Length()
	if l <= 0 {
		return 0
	}
	return c.TotalMass / l
}

// FireTime returns the earliest primer fire time of the column, or 0
// when the column has no primers (the implicit base primer fires at 0).
func (c ChargeColumn) FireTime() float64 {
	if len(c.Primers) == 0 {
		return 0
	}
	t := c.Primers[0].FireTime
	for _, p := range c.Primers[1:] {
		if p.FireTime < t {
			t = p.FireTime
		}
	}
	return t
}

// Deck is an independently timed and producted charged sub-interval of
// a hole. Air gaps between decks are simply intervals no deck covers.
type Deck struct {
	TopDepth  float64
	BaseDepth float64
	TotalMass float64 // kg; 0 means derive from density and diameter
	Density   float64 // kg/m3
	VOD       float64 // m/s
	FireTime  float64 // ms
	Primers   []Primer
}

// Length returns the deck length in metres.
func (d Deck) Length() float64 {
	return d.BaseDepth - d.TopDepth
}

// Valid reports whether the deck contributes to any evaluation. Mass
// may still be derived, so only geometry is checked here.
func (d Deck) Valid() bool {
	return d.BaseDepth > d.TopDepth && d.TopDepth >= 0
}

// Mass returns the deck mass, deriving it from the product density and
// the hole diameter (mm) when no explicit mass was supplied.
func (d Deck) Mass(holeDiameter float64) float64 {
	if d.TotalMass > 0 {
		return d.TotalMass
	}
	r := holeDiameter / 2000
	return d.Density * math.Pi * r * r * d.Length()
}

// Column converts the deck into an equivalent charge column, resolving
// mass against the hole diameter. Used by evaluators that operate on
// columns regardless of how the hole was charged. A deck timed only via
// FireTime gets a synthetic base primer so the timing survives the
// conversion.
func (d Deck) Column(holeDiameter float64) ChargeColumn {
	primers := d.Primers
	if len(primers) == 0 && d.FireTime != 0 {
		primers = []Primer{{Depth: d.Length(), FireTime: d.FireTime}}
	}
	return ChargeColumn{
		TopDepth:  d.TopDepth,
		BaseDepth: d.BaseDepth,
		TotalMass: d.Mass(holeDiameter),
		Density:   d.Density,
		VOD:       d.VOD,
		Primers:   primers,
	}
}

// Primer is an initiation point inside a charge interval. Depth is
// metres from the top of the interval it belongs to; FireTime is
// milliseconds.
type Primer struct {
	Depth    float64
	FireTime float64
}
