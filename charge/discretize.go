package charge

import (
	"math"

	"github.com/brentbuffham/blastvib/geom"
)

// Element is an ephemeral discretization unit of a charge interval.
// Elements are rebuilt on every query that needs them and never
// persisted.
type Element struct {
	Index       int     // 0 = nearest the interval base
	CentreDepth float64 // m from the top of the interval
	Mass        float64 // kg
	DetTime     float64 // ms; +Inf until a front simulation assigns it
	Em          float64 // Blair effective-mass contribution
}

// Discretize splits a charge interval of the given length and total
// mass into m equal elements. Element 0 sits nearest the interval base;
// centre depths are measured from the interval top, so element 0 has
// the largest CentreDepth. Degenerate input (non-positive length or
// mass, m < 1) yields an empty slice: the interval contributes nothing
// and the caller moves on.
//
// Mass is conserved exactly up to floating tolerance:
// sum(Mass) == totalMass for any m.
func Discretize(length, totalMass float64, m int) []Element {
	if length <= 0 || totalMass <= 0 || m < 1 {
		return nil
	}
	dl := length / float64(m)
	elemMass := totalMass / float64(m)

	elems := make([]Element, m)
	for i := range elems {
		elems[i] = Element{
			Index:       i,
			CentreDepth: length - (float64(i)+0.5)*dl,
			Mass:        elemMass,
			DetTime:     math.Inf(1),
		}
	}
	return elems
}

// DiscretizeColumn discretizes a column owned by a hole. Same contract
// as Discretize; an invalid column or hole yields an empty slice.
func DiscretizeColumn(h Hole, c ChargeColumn, m int) []Element {
	if !h.Valid() || !c.Valid() {
		return nil
	}
	return Discretize(c.Length(), c.TotalMass, m)
}

// ElementPosition returns the 3D centre of an element belonging to the
// interval starting at intervalTop (m from the collar) of a hole.
func ElementPosition(h Hole, intervalTop float64, e Element) geom.Vec3 {
	return h.PointAt(intervalTop + e.CentreDepth)
}
