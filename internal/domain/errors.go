package domain

import "fmt"

// InsufficientDataError is returned when a computation is asked to run on a
// sample smaller than its documented minimum. The caller decides whether to
// present a "not enough data yet" state or retry later with more records.
type InsufficientDataError struct {
	Op       string // Computation that rejected the input (e.g. "volatility.fit")
	Required int    // Documented minimum sample size
	Actual   int    // Sample size that was supplied
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need at least %d observations, got %d", e.Op, e.Required, e.Actual)
}

// InvalidParameterError is returned for parameters that are structurally
// invalid (non-positive standard deviation, zero bankroll, etc.).
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// FitFailedError is returned when an iterative numerical fit does not
// converge. LastParams carries the last attempted parameter vector so the
// caller can log or display it.
type FitFailedError struct {
	Op         string
	Iterations int
	LastParams []float64
}

func (e *FitFailedError) Error() string {
	return fmt.Sprintf("%s: fit did not converge after %d iterations (last params %v)", e.Op, e.Iterations, e.LastParams)
}

// DegenerateInputError is returned for inputs that are well-formed but
// mathematically unusable, such as a zero-variance series feeding a GARCH
// fit or a constant stat column feeding standardization.
type DegenerateInputError struct {
	Op     string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input: %s", e.Op, e.Reason)
}
