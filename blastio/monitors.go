package blastio

import "fmt"

// MonitorRecord is one seismograph reading paired with the shot it
// measured: distance to the nearest charge, the charge mass firing
// within the monitor's timing window, and the recorded peak.
type MonitorRecord struct {
	DistanceM float64 `csv:"distance_m"`
	ChargeKg  float64 `csv:"charge_kg"`
	PPVMmS    float64 `csv:"ppv_mm_s"`
}

// LoadMonitors reads monitored shot records for site law fitting.
// Rows with non-positive distance, charge or PPV are rejected; a fit
// over logs cannot use them.
func LoadMonitors(path string) ([]MonitorRecord, error) {
	recs, err := readCSV[MonitorRecord](path)
	if err != nil {
		return nil, fmt.Errorf("loading monitors: %w", err)
	}
	for i, r := range recs {
		if r.DistanceM <= 0 || r.ChargeKg <= 0 || r.PPVMmS <= 0 {
			return nil, fmt.Errorf("monitor row %d: all fields must be positive, got %+v", i+1, r)
		}
	}
	return recs, nil
}
