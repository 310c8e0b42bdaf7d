package detonation

import (
	"math"
	"sort"

	"github.com/brentbuffham/blastvib/charge"
)

// ComputeEm assigns Blair (2008) effective-mass contributions to a set
// of simulated elements. Elements are processed in detonation order;
// arrivals within the simultaneity tolerance form one group whose
// telescoping contribution
//
//	cum^A - prev^A
//
// is split equally among its members. Grouping is anchored at the
// group's first arrival: a group collects every element within the
// tolerance of its anchor, and the next later element anchors a new
// group. A ramp of sub-tolerance gaps therefore splits once its span
// exceeds the tolerance rather than chaining indefinitely, keeping a
// group's extent bounded by the tolerance. The telescoping makes
// sum(Em) == totalMass^A regardless of how finely the charge was
// discretized, which is the property that distinguishes this law from
// naive per-element mass^A summation.
//
// The input slice is not modified; a new slice in the original element
// order is returned. Re-applying ComputeEm to its own output yields
// identical values.
func ComputeEm(elems []charge.Element, exponent float64, opts Options) []charge.Element {
	out := make([]charge.Element, len(elems))
	copy(out, elems)
	if len(out) == 0 {
		return out
	}

	order := make([]int, 0, len(out))
	blocked := make([]int, 0)
	for i := range out {
		out[i].Em = 0
		if math.IsInf(out[i].DetTime, 1) {
			blocked = append(blocked, i)
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return out[order[a]].DetTime < out[order[b]].DetTime
	})

	tol := opts.tolerance()
	cum := 0.0

	assignGroup := func(group []int) {
		var groupMass float64
		for _, i := range group {
			groupMass += out[i].Mass
		}
		prev := cum
		cum += groupMass
		groupEm := safePow(cum, exponent)
		if prev > 0 {
			groupEm -= safePow(prev, exponent)
		}
		per := groupEm / float64(len(group))
		for _, i := range group {
			out[i].Em = per
		}
	}

	start := 0
	for start < len(order) {
		end := start + 1
		t0 := out[order[start]].DetTime
		for end < len(order) && out[order[end]].DetTime-t0 < tol {
			end++
		}
		assignGroup(order[start:end])
		start = end
	}

	// Unreachable elements: excluded by default, or folded in as one
	// final group when the caller asked to preserve the mass invariant.
	if opts.Blocked == BlockedLast && len(blocked) > 0 {
		assignGroup(blocked)
	}

	return out
}

// TotalEm sums the Em contributions of a simulated element set.
func TotalEm(elems []charge.Element) float64 {
	var sum float64
	for _, e := range elems {
		sum += e.Em
	}
	return sum
}

// safePow guards the fractional power against negative bases so a
// rounding artefact can never produce a NaN that leaks into a result.
func safePow(x, a float64) float64 {
	return math.Pow(math.Max(x, 0), a)
}
