// Command blastfield evaluates a vibration or energy field over a grid
// of observation points from blasthole CSV records, or fits site law
// constants to monitored shot data.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/brentbuffham/blastvib/blastio"
	"github.com/brentbuffham/blastvib/calibrate"
	"github.com/brentbuffham/blastvib/charge"
	"github.com/brentbuffham/blastvib/config"
	"github.com/brentbuffham/blastvib/detonation"
	"github.com/brentbuffham/blastvib/field"
	"github.com/brentbuffham/blastvib/geom"
	"github.com/brentbuffham/blastvib/sitelaw"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	holesPath := flag.String("holes", "", "Hole records CSV (required unless fitting)")
	decksPath := flag.String("decks", "", "Deck records CSV (empty = default charging)")
	primersPath := flag.String("primers", "", "Primer records CSV")
	monitorsPath := flag.String("monitors", "", "Monitored shot CSV; fits K and B instead of evaluating")
	model := flag.String("model", "ppv", "Field model: ppv, heelan, scaledheelan, damage, jointed, sdob, see, pressure, powder")
	outputDir := flag.String("output-dir", "", "Output directory for CSV results and config snapshot")

	// Site law constants
	k := flag.Float64("k", 1140, "Site constant K")
	b := flag.Float64("b", 1.6, "Attenuation exponent B")
	a := flag.Float64("a", 0.5, "Charge exponent A")
	ppvCritical := flag.Float64("ppv-critical", 700, "Critical PPV for damage index (mm/s)")

	// Rock properties for the wave-radiation and jointed models
	rockDensity := flag.Float64("rock-density", 2600, "Rock density (kg/m3)")
	vp := flag.Float64("vp", 4500, "P wave velocity (m/s)")
	vs := flag.Float64("vs", 2600, "S wave velocity (m/s)")
	qp := flag.Float64("qp", 40, "P wave quality factor")
	qs := flag.Float64("qs", 25, "S wave quality factor")
	coherent := flag.Bool("coherent", false, "Vector-sum element contributions instead of RMS")
	tensile := flag.Float64("tensile", 8e6, "Rock tensile strength (Pa)")
	cohesion := flag.Float64("cohesion", 1e6, "Joint cohesion (Pa)")
	friction := flag.Float64("friction", 0.6, "Joint friction coefficient")
	dip := flag.Float64("dip", 30, "Joint dip (degrees)")

	// Timing window for cooperative MIC evaluation
	window := flag.Float64("window", 0, "Timing window width in ms (0 = disabled)")
	offset := flag.Float64("offset", 0, "Timing window offset in ms")

	// Grid of observation points
	originX := flag.Float64("origin-x", 0, "Grid origin X")
	originY := flag.Float64("origin-y", 0, "Grid origin Y")
	originZ := flag.Float64("origin-z", 0, "Grid elevation Z")
	nx := flag.Int("nx", 100, "Grid points in X")
	ny := flag.Int("ny", 100, "Grid points in Y")
	spacing := flag.Float64("spacing", 5, "Grid spacing (m)")

	writeTiming := flag.Bool("timing", false, "Write per-element detonation diagnostics")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Fit mode: recover site constants from monitored data and exit.
	if *monitorsPath != "" {
		runFit(*monitorsPath, *a)
		return
	}

	if *holesPath == "" {
		slog.Error("-holes is required")
		os.Exit(1)
	}

	defaults := charge.ChargingDefaults{
		StemmingFraction: cfg.Charging.StemmingFraction,
		Density:          cfg.Charging.DefaultDensity,
		VOD:              cfg.Charging.DefaultVOD,
	}
	holes, err := blastio.LoadHoles(*holesPath, *decksPath, *primersPath, defaults)
	if err != nil {
		slog.Error("failed to load blast", "error", err)
		os.Exit(1)
	}
	slog.Info("blast loaded", "holes", len(holes), "model", *model)

	params := sitelaw.Params{
		K:                  *k,
		B:                  *b,
		ChargeExponent:     *a,
		CutoffDistance:     cfg.Evaluation.CutoffDistance,
		MaxDisplayDistance: cfg.Evaluation.MaxDisplayDistance,
	}
	combine := sitelaw.CombineIncoherent
	if *coherent {
		combine = sitelaw.CombineCoherent
	}
	heelanParams := sitelaw.HeelanParams{
		Params:            params,
		RockDensity:       *rockDensity,
		PVelocity:         *vp,
		SVelocity:         *vs,
		Qp:                *qp,
		Qs:                *qs,
		ElementsPerCharge: cfg.Discretization.ElementsPerColumn,
		SimultaneityTolMS: cfg.Discretization.SimultaneityTolMS,
		ToeDecayLength:    cfg.Evaluation.ToeDecayLength,
		Combine:           combine,
	}
	hp := sitelaw.HolmbergPersson{
		Params:            params,
		PPVCritical:       *ppvCritical,
		ElementsPerCharge: cfg.Discretization.ElementsPerColumn,
	}

	var ev sitelaw.Evaluator
	switch *model {
	case "ppv":
		simple := &sitelaw.SimplePPV{Params: params}
		if *window > 0 {
			simple.Window = &sitelaw.TimingWindow{Width: *window, Offset: *offset}
		}
		ev = simple
	case "heelan":
		ev = &sitelaw.Heelan{HeelanParams: heelanParams}
	case "scaledheelan":
		ev = &sitelaw.ScaledHeelan{HeelanParams: heelanParams}
	case "damage":
		ev = &hp
	case "jointed":
		ev = &sitelaw.JointedRock{
			PPV:             hp,
			RockDensity:     *rockDensity,
			PVelocity:       *vp,
			TensileStrength: *tensile,
			JointCohesion:   *cohesion,
			JointFriction:   *friction,
			JointDipDeg:     *dip,
		}
	case "sdob":
		ev = &sitelaw.SDoB{MaxDisplayDistance: cfg.Evaluation.MaxDisplayDistance}
	case "see":
		ev = &sitelaw.SEE{
			CutoffDistance:     cfg.Evaluation.CutoffDistance,
			MaxDisplayDistance: cfg.Evaluation.MaxDisplayDistance,
		}
	case "pressure":
		ev = &sitelaw.Pressure{
			CutoffDistance:     cfg.Evaluation.CutoffDistance,
			MaxDisplayDistance: cfg.Evaluation.MaxDisplayDistance,
		}
	case "powder":
		ev = &sitelaw.PowderFactor{
			CutoffDistance:     cfg.Evaluation.CutoffDistance,
			MaxDisplayDistance: cfg.Evaluation.MaxDisplayDistance,
		}
	default:
		slog.Error("unknown model", "model", *model)
		os.Exit(1)
	}

	spec := field.GridSpec{
		Origin:  geom.Vec3{X: *originX, Y: *originY, Z: *originZ},
		NX:      *nx,
		NY:      *ny,
		Spacing: *spacing,
	}
	points := spec.Points()
	if len(points) == 0 {
		slog.Error("grid spec yields no points", "nx", *nx, "ny", *ny)
		os.Exit(1)
	}

	eng := field.NewEngine(cfg.Workers)
	defer eng.Close()
	results := eng.EvaluateGrid(ev, points, holes)

	lo, hi := field.Range(results)
	slog.Info("field evaluated", "points", len(points), "min", lo, "max", hi)

	om, err := blastio.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to open output", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	if err := om.WriteGrid(points, results); err != nil {
		slog.Error("failed to write grid", "error", err)
		os.Exit(1)
	}
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}
	if *writeTiming {
		if err := om.WriteTiming(timingRecords(holes, cfg, *a)); err != nil {
			slog.Error("failed to write timing", "error", err)
		}
	}
	if om.Dir() != "" {
		slog.Info("results written", "dir", om.Dir())
	}
}

// runFit recovers K and B from monitored shots and prints the fit.
func runFit(path string, exponent float64) {
	recs, err := blastio.LoadMonitors(path)
	if err != nil {
		slog.Error("failed to load monitors", "error", err)
		os.Exit(1)
	}
	obs := make([]calibrate.Observation, len(recs))
	for i, r := range recs {
		obs[i] = calibrate.Observation{Distance: r.DistanceM, Charge: r.ChargeKg, PPV: r.PPVMmS}
	}

	fit, err := calibrate.FitScaledDistance(obs, exponent)
	if err != nil {
		slog.Error("fit failed", "error", err)
		os.Exit(1)
	}
	slog.Info("site law fitted",
		"observations", len(obs),
		"k", fit.K,
		"b", fit.B,
		"exponent", fit.Exponent,
		"rms_log", fit.RMSLog,
	)
	fmt.Printf("PPV = %.1f * (D / Q^%.2f)^-%.3f\n", fit.K, fit.Exponent, fit.B)
}

// timingRecords runs the detonation front through every charged
// interval and flattens the element states for the diagnostics file.
func timingRecords(holes []charge.Hole, cfg *config.Config, exponent float64) []blastio.TimingRecord {
	opts := detonation.Options{SimultaneityTolMS: cfg.Discretization.SimultaneityTolMS}
	var recs []blastio.TimingRecord
	for _, h := range holes {
		if !h.Valid() {
			continue
		}
		for _, c := range charge.EffectiveColumns(h) {
			elems, diag := detonation.Simulate(detonation.Column{
				TopDepth:  c.TopDepth,
				BaseDepth: c.BaseDepth,
				TotalMass: c.TotalMass,
				VOD:       c.VOD,
				Primers:   c.Primers,
				Elements:  cfg.Discretization.ElementsPerColumn,
			}, opts)
			if diag.Blocked > 0 {
				slog.Warn("blocked elements", "hole", h.ID, "count", diag.Blocked)
			}
			for _, el := range detonation.ComputeEm(elems, exponent, opts) {
				recs = append(recs, blastio.TimingRecord{
					HoleID:      h.ID,
					Element:     el.Index,
					CentreDepth: el.CentreDepth,
					DetTimeMs:   el.DetTime,
					Em:          el.Em,
					Blocked:     math.IsInf(el.DetTime, 1),
				})
			}
		}
	}
	return recs
}
