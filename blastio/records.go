// Package blastio reads blast design records from CSV and writes
// evaluation results back out. This is the engine's only I/O surface;
// everything inside the evaluators is pure computation.
package blastio

import (
	"fmt"
	"os"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/geom"
)

// HoleRecord is one blasthole row as exported by the design package.
type HoleRecord struct {
	ID         string  `csv:"hole_id"`
	CollarX    float64 `csv:"collar_x"`
	CollarY    float64 `csv:"collar_y"`
	CollarZ    float64 `csv:"collar_z"`
	ToeX       float64 `csv:"toe_x"`
	ToeY       float64 `csv:"toe_y"`
	ToeZ       float64 `csv:"toe_z"`
	DiameterMM float64 `csv:"diameter_mm"`
}

// DeckRecord is one charged interval row. Mass may be zero, in which
// case it is derived from the product density and the hole diameter.
// Density arrives in kg/L as the loading sheets record it.
type DeckRecord struct {
	HoleID     string  `csv:"hole_id"`
	TopDepth   float64 `csv:"top_depth_m"`
	BaseDepth  float64 `csv:"base_depth_m"`
	MassKg     float64 `csv:"mass_kg"`
	DensityKgL float64 `csv:"density_kg_l"`
	VODMs      float64 `csv:"vod_m_s"`
	FireTimeMs float64 `csv:"fire_time_ms"`
}

// PrimerRecord is one primer row. Depth is measured from the top of
// the charged interval it initiates.
type PrimerRecord struct {
	HoleID     string  `csv:"hole_id"`
	DeckIndex  int     `csv:"deck_index"` // 0-based, per hole in file order
	Depth      float64 `csv:"depth_m"`
	FireTimeMs float64 `csv:"fire_time_ms"`
}

// LoadHoles assembles a hole set from the three record files. The deck
// and primer paths may be empty; holes without charging get the
// fallback charging applied by the caller. Rows referencing unknown
// holes are an error - silently dropping them would hide a broken
// export.
func LoadHoles(holesPath, decksPath, primersPath string, defaults charge.ChargingDefaults) ([]charge.Hole, error) {
	holeRecs, err := readCSV[HoleRecord](holesPath)
	if err != nil {
		return nil, fmt.Errorf("loading holes: %w", err)
	}

	index := make(map[string]int, len(holeRecs))
	holes := make([]charge.Hole, len(holeRecs))
	for i, r := range holeRecs {
		holes[i] = charge.Hole{
			ID:       r.ID,
			Collar:   geom.Vec3{X: r.CollarX, Y: r.CollarY, Z: r.CollarZ},
			Toe:      geom.Vec3{X: r.ToeX, Y: r.ToeY, Z: r.ToeZ},
			Diameter: r.DiameterMM,
		}
		index[r.ID] = i
	}

	if decksPath != "" {
		deckRecs, err := readCSV[DeckRecord](decksPath)
		if err != nil {
			return nil, fmt.Errorf("loading decks: %w", err)
		}
		for _, r := range deckRecs {
			i, ok := index[r.HoleID]
			if !ok {
				return nil, fmt.Errorf("deck references unknown hole %q", r.HoleID)
			}
			holes[i].Decks = append(holes[i].Decks, charge.Deck{
				TopDepth:  r.TopDepth,
				BaseDepth: r.BaseDepth,
				TotalMass: r.MassKg,
				Density:   r.DensityKgL * 1000, // kg/L -> kg/m3
				VOD:       r.VODMs,
				FireTime:  r.FireTimeMs,
			})
		}
	}

	if primersPath != "" {
		primerRecs, err := readCSV[PrimerRecord](primersPath)
		if err != nil {
			return nil, fmt.Errorf("loading primers: %w", err)
		}
		// Stable order keeps repeated loads identical.
		sort.SliceStable(primerRecs, func(a, b int) bool {
			if primerRecs[a].HoleID != primerRecs[b].HoleID {
				return primerRecs[a].HoleID < primerRecs[b].HoleID
			}
			return primerRecs[a].Depth < primerRecs[b].Depth
		})
		for _, r := range primerRecs {
			i, ok := index[r.HoleID]
			if !ok {
				return nil, fmt.Errorf("primer references unknown hole %q", r.HoleID)
			}
			h := &holes[i]
			if r.DeckIndex < 0 || r.DeckIndex >= len(h.Decks) {
				return nil, fmt.Errorf("primer for hole %q references deck %d of %d",
					r.HoleID, r.DeckIndex, len(h.Decks))
			}
			h.Decks[r.DeckIndex].Primers = append(h.Decks[r.DeckIndex].Primers,
				charge.Primer{Depth: r.Depth, FireTime: r.FireTimeMs})
		}
	}

	for i := range holes {
		holes[i] = charge.ApplyDefaults(holes[i], defaults)
	}
	return holes, nil
}

func readCSV[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recs []T
	if err := gocsv.UnmarshalFile(f, &recs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return recs, nil
}
