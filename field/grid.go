package field

import (
	"gonum.org/v1/gonum/floats"

	"github.com/brentbuffham/blastvib/geom"
	"github.com/brentbuffham/blastvib/sitelaw"
)

// GridSpec describes a regular horizontal grid of observation points at
// a fixed elevation, the usual shape for a contour/raster query.
type GridSpec struct {
	Origin  geom.Vec3 // south-west corner
	NX, NY  int
	Spacing float64 // m
}

// Points expands the spec into observation points, row-major from the
// origin.
func (g GridSpec) Points() []geom.Vec3 {
	if g.NX < 1 || g.NY < 1 || g.Spacing <= 0 {
		return nil
	}
	pts := make([]geom.Vec3, 0, g.NX*g.NY)
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			pts = append(pts, geom.Vec3{
				X: g.Origin.X + float64(i)*g.Spacing,
				Y: g.Origin.Y + float64(j)*g.Spacing,
				Z: g.Origin.Z,
			})
		}
	}
	return pts
}

// Values extracts the scalar values from a result set.
func Values(results []sitelaw.Result) []float64 {
	vs := make([]float64, len(results))
	for i, r := range results {
		vs[i] = r.Value
	}
	return vs
}

// Range returns the minimum and maximum scalar value of a result set,
// the numbers a caller feeds its colour ramp. Empty input yields
// (0, 0).
func Range(results []sitelaw.Result) (min, max float64) {
	if len(results) == 0 {
		return 0, 0
	}
	vs := Values(results)
	return floats.Min(vs), floats.Max(vs)
}
