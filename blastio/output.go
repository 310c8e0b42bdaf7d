package blastio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/brentbuffham/blastvib/config"
	"github.com/brentbuffham/blastvib/geom"
	"github.com/brentbuffham/blastvib/sitelaw"
)

// GridRecord is one evaluated observation point.
type GridRecord struct {
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Z        float64 `csv:"z"`
	Value    float64 `csv:"value"`
	Radial   float64 `csv:"radial"`
	Vertical float64 `csv:"vertical"`
}

// TimingRecord is one charge element's detonation state, for
// inspecting front simulation and superposition weights.
type TimingRecord struct {
	HoleID      string  `csv:"hole_id"`
	Element     int     `csv:"element"`
	CentreDepth float64 `csv:"centre_depth_m"`
	DetTimeMs   float64 `csv:"det_time_ms"`
	Em          float64 `csv:"em"`
	Blocked     bool    `csv:"blocked"`
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir        string
	gridFile   *os.File
	timingFile *os.File

	// Track if headers have been written
	gridHeaderWritten   bool
	timingHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the
// output directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	gridPath := filepath.Join(dir, "grid.csv")
	f, err := os.Create(gridPath)
	if err != nil {
		return nil, fmt.Errorf("creating grid.csv: %w", err)
	}
	om.gridFile = f

	timingPath := filepath.Join(dir, "timing.csv")
	f, err = os.Create(timingPath)
	if err != nil {
		om.gridFile.Close()
		return nil, fmt.Errorf("creating timing.csv: %w", err)
	}
	om.timingFile = f

	return om, nil
}

// WriteConfig saves the run configuration as YAML alongside the results.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGrid appends a batch of evaluated points to grid.csv. Points and
// results must be parallel slices.
func (om *OutputManager) WriteGrid(points []geom.Vec3, results []sitelaw.Result) error {
	if om == nil {
		return nil
	}
	if len(points) != len(results) {
		return fmt.Errorf("grid output: %d points but %d results", len(points), len(results))
	}

	records := make([]GridRecord, len(points))
	for i, p := range points {
		records[i] = GridRecord{
			X:        p.X,
			Y:        p.Y,
			Z:        p.Z,
			Value:    results[i].Value,
			Radial:   results[i].Radial,
			Vertical: results[i].Vertical,
		}
	}

	if !om.gridHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.gridFile); err != nil {
			return fmt.Errorf("writing grid: %w", err)
		}
		om.gridHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.gridFile); err != nil {
			return fmt.Errorf("writing grid: %w", err)
		}
	}

	return nil
}

// WriteTiming appends element detonation records to timing.csv.
func (om *OutputManager) WriteTiming(records []TimingRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}

	if !om.timingHeaderWritten {
		if err := gocsv.Marshal(records, om.timingFile); err != nil {
			return fmt.Errorf("writing timing: %w", err)
		}
		om.timingHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.timingFile); err != nil {
			return fmt.Errorf("writing timing: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.gridFile != nil {
		if err := om.gridFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.timingFile != nil {
		if err := om.timingFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
