// Package formulas provides small, pure statistical helpers shared by the
// analytics modules. All slice inputs are treated as immutable.
package formulas

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Quantile returns the empirical p-quantile (0 <= p <= 1) of data.
// The input is copied and sorted; ties follow gonum's empirical convention.
func Quantile(p float64, data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// BB100 converts a series of per-hand results in big blinds to the standard
// bb/100 winrate unit.
func BB100(netBB []float64) float64 {
	if len(netBB) == 0 {
		return 0
	}
	return Mean(netBB) * 100
}

// MaxDrawdown returns the largest peak-to-trough decline of a value path.
// A monotonically increasing path has drawdown 0.
func MaxDrawdown(path []float64) float64 {
	maxDD := 0.0
	peak := 0.0
	for i, v := range path {
		if i == 0 || v > peak {
			peak = v
		}
		if dd := peak - v; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Median returns the 0.5 empirical quantile of data.
func Median(data []float64) float64 {
	return Quantile(0.5, data)
}
