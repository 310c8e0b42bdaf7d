package charge

import (
	"math"
	"testing"

	"github.com/brentbuffham/blastvib/geom"
)

func testHole() Hole {
	return Hole{
		ID:       "H1",
		Collar:   geom.Vec3{X: 0, Y: 0, Z: 0},
		Toe:      geom.Vec3{X: 0, Y: 0, Z: -10},
		Diameter: 115,
	}
}

func TestDiscretize_MassConservation(t *testing.T) {
	const totalMass = 50.0
	for _, m := range []int{1, 5, 20, 100} {
		elems := Discretize(7, totalMass, m)
		if len(elems) != m {
			t.Fatalf("m=%d: expected %d elements, got %d", m, m, len(elems))
		}
		var sum float64
		for _, e := range elems {
			sum += e.Mass
		}
		if rel := math.Abs(sum-totalMass) / totalMass; rel > 1e-9 {
			t.Errorf("m=%d: mass not conserved, sum=%g rel err=%g", m, sum, rel)
		}
	}
}

func TestDiscretize_ElementZeroNearestBase(t *testing.T) {
	elems := Discretize(10, 100, 4)
	// Centre depths from the interval top: element 0 deepest.
	want := []float64{8.75, 6.25, 3.75, 1.25}
	for i, e := range elems {
		if math.Abs(e.CentreDepth-want[i]) > 1e-12 {
			t.Errorf("element %d: centre depth %g, want %g", i, e.CentreDepth, want[i])
		}
		if !math.IsInf(e.DetTime, 1) {
			t.Errorf("element %d: fresh element should have infinite det time", i)
		}
	}
}

func TestDiscretize_DegenerateInput(t *testing.T) {
	if elems := Discretize(0, 50, 10); elems != nil {
		t.Errorf("zero length should yield no elements, got %d", len(elems))
	}
	if elems := Discretize(7, 0, 10); elems != nil {
		t.Errorf("zero mass should yield no elements, got %d", len(elems))
	}
	if elems := Discretize(7, 50, 0); elems != nil {
		t.Errorf("m=0 should yield no elements, got %d", len(elems))
	}
}

func TestDiscretizeColumn_ElementPositions(t *testing.T) {
	h := testHole()
	c := ChargeColumn{TopDepth: 3, BaseDepth: 10, TotalMass: 50}

	elems := DiscretizeColumn(h, c, 7)
	if len(elems) != 7 {
		t.Fatalf("expected 7 elements, got %d", len(elems))
	}
	// Element 0 sits half an element length above the base.
	p := ElementPosition(h, c.TopDepth, elems[0])
	if p.Dist(geom.Vec3{X: 0, Y: 0, Z: -9.5}) > 1e-12 {
		t.Errorf("element 0 position: got %+v", p)
	}

	h.Toe = h.Collar
	if elems := DiscretizeColumn(h, c, 7); elems != nil {
		t.Error("invalid hole should yield no elements")
	}
}

func TestHole_AxisAndLength(t *testing.T) {
	h := testHole()
	if l := h.Length(); math.Abs(l-10) > 1e-12 {
		t.Errorf("length: got %g, want 10", l)
	}
	axis := h.Axis()
	if axis != (geom.Vec3{X: 0, Y: 0, Z: -1}) {
		t.Errorf("axis: got %+v", axis)
	}
	p := h.PointAt(6.5)
	if p.Dist(geom.Vec3{X: 0, Y: 0, Z: -6.5}) > 1e-12 {
		t.Errorf("PointAt(6.5): got %+v", p)
	}
}

func TestHole_ZeroLengthInvalid(t *testing.T) {
	h := testHole()
	h.Toe = h.Collar
	if h.Valid() {
		t.Error("zero-length hole should be invalid")
	}
	if h.Axis() != (geom.Vec3{}) {
		t.Error("degenerate axis should be zero")
	}
}

func TestApplyDefaults_UnchargedHole(t *testing.T) {
	d := ChargingDefaults{StemmingFraction: 0.3, Density: 1100, VOD: 5000}
	h := ApplyDefaults(testHole(), d)

	if len(h.Columns) != 1 {
		t.Fatalf("expected 1 default column, got %d", len(h.Columns))
	}
	c := h.Columns[0]
	if math.Abs(c.TopDepth-3) > 1e-12 || math.Abs(c.BaseDepth-10) > 1e-12 {
		t.Errorf("expected 30/70 split [3,10], got [%g,%g]", c.TopDepth, c.BaseDepth)
	}

	// Mass = density * bore area * charged length.
	r := 115.0 / 2000
	wantMass := 1100 * math.Pi * r * r * 7
	if math.Abs(c.TotalMass-wantMass) > 1e-9 {
		t.Errorf("derived mass: got %g, want %g", c.TotalMass, wantMass)
	}
	if c.Density != 1100 || c.VOD != 5000 {
		t.Errorf("fallback product not applied: %+v", c)
	}
}

func TestApplyDefaults_KeepsExistingCharging(t *testing.T) {
	d := ChargingDefaults{StemmingFraction: 0.3, Density: 1100, VOD: 5000}
	h := testHole()
	h.Columns = []ChargeColumn{{TopDepth: 2, BaseDepth: 9, TotalMass: 40}}

	got := ApplyDefaults(h, d)
	if len(got.Columns) != 1 || got.Columns[0].TotalMass != 40 {
		t.Fatalf("existing charging should be kept, got %+v", got.Columns)
	}
	// Missing product values are backfilled.
	if got.Columns[0].Density != 1100 || got.Columns[0].VOD != 5000 {
		t.Errorf("missing product not backfilled: %+v", got.Columns[0])
	}
}

func TestEffectiveColumns_SkipsInvalid(t *testing.T) {
	h := testHole()
	h.Columns = []ChargeColumn{
		{TopDepth: 3, BaseDepth: 10, TotalMass: 50},
		{TopDepth: 5, BaseDepth: 4, TotalMass: 50}, // inverted interval
		{TopDepth: 3, BaseDepth: 10, TotalMass: 0}, // no mass
	}
	cols := EffectiveColumns(h)
	if len(cols) != 1 {
		t.Errorf("expected only the valid column, got %d", len(cols))
	}
}

func TestDeck_MassDerivation(t *testing.T) {
	d := Deck{TopDepth: 3, BaseDepth: 10, Density: 1100, VOD: 5000}
	r := 115.0 / 2000
	want := 1100 * math.Pi * r * r * 7
	if got := d.Mass(115); math.Abs(got-want) > 1e-9 {
		t.Errorf("derived deck mass: got %g, want %g", got, want)
	}

	d.TotalMass = 42
	if got := d.Mass(115); got != 42 {
		t.Errorf("explicit mass should win, got %g", got)
	}
}

func TestDeck_ColumnCarriesTiming(t *testing.T) {
	d := Deck{TopDepth: 3, BaseDepth: 10, TotalMass: 50, FireTime: 25}
	c := d.Column(115)
	if len(c.Primers) != 1 {
		t.Fatalf("expected synthetic primer, got %d", len(c.Primers))
	}
	if c.Primers[0].FireTime != 25 || c.Primers[0].Depth != 7 {
		t.Errorf("synthetic primer wrong: %+v", c.Primers[0])
	}
	if c.FireTime() != 25 {
		t.Errorf("column fire time: got %g, want 25", c.FireTime())
	}
}
