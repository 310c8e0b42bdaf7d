package blastio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
	"github.com/brentbuffham/blastvib/sitelaw"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const holesCSV = `hole_id,collar_x,collar_y,collar_z,toe_x,toe_y,toe_z,diameter_mm
H1,100,200,50,100,200,40,115
H2,105,200,50,105,200,40,115
`

func testDefaults() charge.ChargingDefaults {
	return charge.ChargingDefaults{StemmingFraction: 0.3, Density: 1100, VOD: 5000}
}

func TestLoadHoles_FullRecordSet(t *testing.T) {
	dir := t.TempDir()
	holesPath := writeFile(t, dir, "holes.csv", holesCSV)
	decksPath := writeFile(t, dir, "decks.csv",
		`hole_id,top_depth_m,base_depth_m,mass_kg,density_kg_l,vod_m_s,fire_time_ms
H1,3,10,50,1.2,5200,0
H2,3,10,50,1.2,5200,8
`)
	primersPath := writeFile(t, dir, "primers.csv",
		`hole_id,deck_index,depth_m,fire_time_ms
H1,0,6.5,0
`)

	holes, err := LoadHoles(holesPath, decksPath, primersPath, testDefaults())
	require.NoError(t, err)
	require.Len(t, holes, 2)

	assert.Equal(t, "H1", holes[0].ID)
	assert.Equal(t, geom.Vec3{X: 100, Y: 200, Z: 50}, holes[0].Collar)
	assert.InDelta(t, 115, holes[0].Diameter, 1e-12)

	require.Len(t, holes[0].Decks, 1)
	d := holes[0].Decks[0]
	assert.InDelta(t, 1200, d.Density, 1e-9, "density converts kg/L to kg/m3")
	assert.InDelta(t, 5200, d.VOD, 1e-9)
	require.Len(t, d.Primers, 1)
	assert.InDelta(t, 6.5, d.Primers[0].Depth, 1e-12)

	// The second hole has no primer rows; its deck fire time survives.
	assert.InDelta(t, 8, holes[1].Decks[0].FireTime, 1e-12)
}

func TestLoadHoles_DefaultsForUnchargedHole(t *testing.T) {
	dir := t.TempDir()
	holesPath := writeFile(t, dir, "holes.csv", holesCSV)

	holes, err := LoadHoles(holesPath, "", "", testDefaults())
	require.NoError(t, err)

	// No decks loaded, so every hole gets the fallback column.
	for _, h := range holes {
		cols := charge.EffectiveColumns(h)
		require.Len(t, cols, 1, "hole %s", h.ID)
		assert.InDelta(t, 3, cols[0].TopDepth, 1e-9)
		assert.InDelta(t, 10, cols[0].BaseDepth, 1e-9)
		assert.Greater(t, cols[0].TotalMass, 0.0)
	}
}

func TestLoadHoles_UnknownHoleReferences(t *testing.T) {
	dir := t.TempDir()
	holesPath := writeFile(t, dir, "holes.csv", holesCSV)
	decksPath := writeFile(t, dir, "decks.csv",
		`hole_id,top_depth_m,base_depth_m,mass_kg,density_kg_l,vod_m_s,fire_time_ms
H9,3,10,50,1.2,5200,0
`)

	_, err := LoadHoles(holesPath, decksPath, "", testDefaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "H9")
}

func TestLoadHoles_PrimerDeckIndexOutOfRange(t *testing.T) {
	dir := t.TempDir()
	holesPath := writeFile(t, dir, "holes.csv", holesCSV)
	decksPath := writeFile(t, dir, "decks.csv",
		`hole_id,top_depth_m,base_depth_m,mass_kg,density_kg_l,vod_m_s,fire_time_ms
H1,3,10,50,1.2,5200,0
`)
	primersPath := writeFile(t, dir, "primers.csv",
		`hole_id,deck_index,depth_m,fire_time_ms
H1,2,6.5,0
`)

	_, err := LoadHoles(holesPath, decksPath, primersPath, testDefaults())
	require.Error(t, err)
}

func TestLoadMonitors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "monitors.csv",
		`distance_m,charge_kg,ppv_mm_s
100,50,12.4
250,50,3.1
`)

	recs, err := LoadMonitors(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.InDelta(t, 12.4, recs[0].PPVMmS, 1e-12)

	bad := writeFile(t, dir, "bad.csv",
		`distance_m,charge_kg,ppv_mm_s
100,0,12.4
`)
	_, err = LoadMonitors(bad)
	require.Error(t, err, "non-positive charge must be rejected")
}

func TestOutputManager_GridHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	points := []geom.Vec3{{X: 1}, {X: 2}}
	results := []sitelaw.Result{{Value: 10}, {Value: 5}}
	require.NoError(t, om.WriteGrid(points, results))
	require.NoError(t, om.WriteGrid(points, results))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "grid.csv"))
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 1, strings.Count(content, "x,y,z,value"), "header written once")
	assert.Equal(t, 5, len(strings.Split(strings.TrimSpace(content), "\n")), "header plus four rows")
}

func TestOutputManager_MismatchedBatch(t *testing.T) {
	om, err := NewOutputManager(t.TempDir())
	require.NoError(t, err)
	defer om.Close()

	err = om.WriteGrid([]geom.Vec3{{X: 1}}, nil)
	require.Error(t, err)
}

func TestOutputManager_DisabledIsNoop(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	require.Nil(t, om)

	// All methods tolerate the nil receiver.
	assert.NoError(t, om.WriteGrid(nil, nil))
	assert.NoError(t, om.WriteTiming(nil))
	assert.NoError(t, om.Close())
	assert.Equal(t, "", om.Dir())
}
