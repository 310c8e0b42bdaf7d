// Package detonation simulates detonation front propagation through a
// charge interval and converts the resulting firing order into Blair
// (2008) effective-mass contributions. Both operations are pure
// functions over their inputs and safe to run concurrently.
package detonation

import (
	"math"
	"sort"

	"github.com/brentbuffham/blastvib/charge"
)

// BlockedPolicy decides what happens to elements no unblocked front can
// reach. These only occur in pathological primer configurations.
type BlockedPolicy int

const (
	// BlockedExclude drops unreachable elements from the Em
	// superposition. The sum(Em) == W^A invariant no longer holds for
	// that column; the Diagnostics count lets the caller surface a
	// warning.
	BlockedExclude BlockedPolicy = iota

	// BlockedLast treats unreachable elements as detonating after every
	// reachable element, preserving the superposition invariant.
	BlockedLast
)

// Options tune the simulation. The zero value uses the defaults below.
type Options struct {
	// SimultaneityTolMS groups arrival times closer than this into one
	// detonation group for the Em split. Default 0.01 ms.
	SimultaneityTolMS float64

	// Blocked selects the unreachable-element policy.
	Blocked BlockedPolicy
}

// DefaultSimultaneityTolMS is the arrival-time tolerance under which
// two elements are considered to detonate together.
const DefaultSimultaneityTolMS = 0.01

func (o Options) tolerance() float64 {
	if o.SimultaneityTolMS > 0 {
		return o.SimultaneityTolMS
	}
	return DefaultSimultaneityTolMS
}

// Column is the charge interval a front simulation runs over. Depths
// are metres; primer depths are measured from the top of the interval.
type Column struct {
	TopDepth  float64
	BaseDepth float64
	TotalMass float64
	VOD       float64 // m/s
	Primers   []charge.Primer
	Elements  int // discretization count; < 1 means 1
}

// Diagnostics reports modelling anomalies from a simulation.
type Diagnostics struct {
	// Blocked counts elements no unblocked front could reach.
	Blocked int
	// Primers is the effective primer count after defaulting.
	Primers int
}

// primerWindow is the depth interval a primer's fronts can reach before
// colliding with a neighbour's front. Bounds are inclusive: an element
// exactly at a meeting depth belongs to both primers, and taking the
// minimum arrival keeps the tie harmless.
type primerWindow struct {
	depth, fireTime float64
	lo, hi          float64
}

// Simulate computes each element's earliest unblocked detonation
// arrival time for a column with one or more primers. An interval with
// no primers defaults to a single base primer firing at 0 ms. The
// returned elements are ordered as Discretize orders them (element 0
// nearest the base); degenerate columns yield nil.
func Simulate(col Column, opts Options) ([]charge.Element, Diagnostics) {
	length := col.BaseDepth - col.TopDepth
	if length <= 0 || col.TotalMass <= 0 || col.VOD <= 0 {
		return nil, Diagnostics{}
	}
	m := col.Elements
	if m < 1 {
		m = 1
	}

	elems := charge.Discretize(length, col.TotalMass, m)
	windows := primerWindows(col.Primers, length, col.VOD)

	var diag Diagnostics
	diag.Primers = len(windows)

	for i := range elems {
		d := elems[i].CentreDepth
		best := math.Inf(1)
		for _, w := range windows {
			if d < w.lo || d > w.hi {
				continue
			}
			arrival := w.fireTime + math.Abs(d-w.depth)/col.VOD*1000
			if arrival < best {
				best = arrival
			}
		}
		elems[i].DetTime = best
		if math.IsInf(best, 1) {
			diag.Blocked++
		}
	}
	return elems, diag
}

// primerWindows sorts the primers by depth and computes the depth
// interval each primer's fronts own. Fronts from depth-adjacent primers
// meet where their travel times coincide:
//
//	meet = (dA+dB)/2 + vod*(tB-tA)/2000
//
// for the shallower primer A and deeper primer B (the /2000 folds the
// ms-to-s conversion into the halving). Beyond the meeting depth a
// front is blocked. A primer with no neighbour on a side is never
// blocked on that side.
func primerWindows(primers []charge.Primer, length, vod float64) []primerWindow {
	var ws []primerWindow
	if len(primers) == 0 {
		// Implicit base primer at time zero.
		ws = []primerWindow{{depth: length, fireTime: 0}}
	} else {
		ws = make([]primerWindow, len(primers))
		for i, p := range primers {
			d := p.Depth
			if d < 0 {
				d = 0
			} else if d > length {
				d = length
			}
			ws[i] = primerWindow{depth: d, fireTime: p.FireTime}
		}
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].depth < ws[j].depth })
	}

	for i := range ws {
		ws[i].lo = math.Inf(-1)
		ws[i].hi = math.Inf(1)
		if i > 0 {
			above := ws[i-1]
			ws[i].lo = (above.depth+ws[i].depth)/2 + vod*(ws[i].fireTime-above.fireTime)/2000
		}
		if i < len(ws)-1 {
			below := ws[i+1]
			ws[i].hi = (ws[i].depth+below.depth)/2 + vod*(below.fireTime-ws[i].fireTime)/2000
		}
	}
	return ws
}
