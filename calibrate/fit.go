// Package calibrate fits site law constants to monitored blast data.
// Given (distance, charge, PPV) triples from seismograph records, it
// recovers the K and B of a scaled distance law by least squares in
// log space.
package calibrate

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Observation is one monitored shot: distance from the charge to the
// monitor, the charge mass firing within the monitor's timing window,
// and the recorded peak particle velocity.
type Observation struct {
	Distance float64 // m
	Charge   float64 // kg
	PPV      float64 // mm/s
}

// Fit is the recovered site law: PPV = K * (D / Q^exponent)^-B.
type Fit struct {
	K        float64
	B        float64
	Exponent float64 // the charge exponent the fit was run with
	RMSLog   float64 // residual RMS in log10 space
}

// minObservations is the smallest sample a two-parameter fit accepts.
const minObservations = 3

// FitScaledDistance recovers K and B from monitored shots, holding the
// charge exponent fixed. The fit minimizes squared residuals of
// log10(PPV) against log10(K) - B*log10(SD) with Nelder-Mead, which
// for this model is equivalent to a linear regression but keeps the
// door open for non-linear laws.
func FitScaledDistance(obs []Observation, exponent float64) (Fit, error) {
	if len(obs) < minObservations {
		return Fit{}, fmt.Errorf("fit needs at least %d observations, got %d", minObservations, len(obs))
	}
	if exponent <= 0 {
		return Fit{}, errors.New("charge exponent must be positive")
	}

	// Precompute log-space coordinates once.
	logSD := make([]float64, len(obs))
	logPPV := make([]float64, len(obs))
	for i, o := range obs {
		if o.Distance <= 0 || o.Charge <= 0 || o.PPV <= 0 {
			return Fit{}, fmt.Errorf("observation %d: distance, charge and ppv must be positive", i)
		}
		logSD[i] = math.Log10(o.Distance / math.Pow(o.Charge, exponent))
		logPPV[i] = math.Log10(o.PPV)
	}

	sumSq := func(logK, b float64) float64 {
		var s float64
		for i := range logSD {
			r := logPPV[i] - (logK - b*logSD[i])
			s += r * r
		}
		return s
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return sumSq(x[0], x[1])
		},
	}

	// Start from the closed-form regression estimate so Nelder-Mead
	// only has to polish.
	logK0, b0 := regressionSeed(logSD, logPPV)

	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(problem, []float64{logK0, b0}, settings, &optimize.NelderMead{})
	if err != nil {
		return Fit{}, fmt.Errorf("minimizing residuals: %w", err)
	}

	logK, b := result.X[0], result.X[1]
	fit := Fit{
		K:        math.Pow(10, logK),
		B:        b,
		Exponent: exponent,
		RMSLog:   math.Sqrt(sumSq(logK, b) / float64(len(obs))),
	}
	if fit.B <= 0 || math.IsNaN(fit.K) || math.IsInf(fit.K, 0) {
		return Fit{}, errors.New("fit did not converge to a decaying law")
	}
	return fit, nil
}

// Predict evaluates the fitted law at a scaled distance input.
func (f Fit) Predict(distance, chargeMass float64) float64 {
	if distance <= 0 || chargeMass <= 0 {
		return 0
	}
	sd := distance / math.Pow(chargeMass, f.Exponent)
	return f.K * math.Pow(sd, -f.B)
}

// regressionSeed is the ordinary least squares line through
// (logSD, logPPV), returned as (logK, B).
func regressionSeed(logSD, logPPV []float64) (float64, float64) {
	n := float64(len(logSD))
	var sx, sy, sxx, sxy float64
	for i := range logSD {
		sx += logSD[i]
		sy += logPPV[i]
		sxx += logSD[i] * logSD[i]
		sxy += logSD[i] * logPPV[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		// All observations at one scaled distance; slope is unresolvable,
		// seed with a typical hard rock exponent.
		return sy / n, 1.6
	}
	slope := (n*sxy - sx*sy) / den
	intercept := (sy - slope*sx) / n
	return intercept, -slope
}
