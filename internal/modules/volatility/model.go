// Package volatility fits a GARCH(1,1) model to a chronological session
// P/L series and classifies the current swinginess regime. Poker results
// cluster volatility the same way asset returns do: big winning and losing
// sessions arrive in bunches, and the conditional sigma series makes that
// visible.
package volatility

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/pkg/formulas"
)

// Model fits GARCH(1,1) session volatility models.
type Model struct {
	log zerolog.Logger
}

// NewModel creates a new volatility model.
func NewModel(log zerolog.Logger) *Model {
	return &Model{
		log: log.With().Str("component", "volatility").Logger(),
	}
}

// Fit estimates sigma^2_t = omega + alpha*eps^2_{t-1} + beta*sigma^2_{t-1}
// over the session P/L series by Gaussian maximum likelihood. The series is
// de-meaned and scaled to unit variance before fitting; the returned
// conditional sigmas are rescaled back to input units.
//
// A fit that does not converge, or converges outside the stationarity
// region, surfaces as a FitFailedError. There is no silent fallback to a
// rolling standard deviation.
func (m *Model) Fit(pnl []float64) (*Result, error) {
	if len(pnl) < MinObservations {
		return nil, &domain.InsufficientDataError{
			Op:       "volatility.fit",
			Required: MinObservations,
			Actual:   len(pnl),
		}
	}

	mean := formulas.Mean(pnl)
	scale := formulas.StdDev(pnl)
	if scale == 0 {
		return nil, &domain.DegenerateInputError{
			Op:     "volatility.fit",
			Reason: "zero-variance session series",
		}
	}

	// Standardized residuals the likelihood works on.
	z := make([]float64, len(pnl))
	for i, v := range pnl {
		z[i] = (v - mean) / scale
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return negLogLikelihood(x, z) },
	}
	initial := []float64{0.1, 0.1, 0.8}
	settings := &optimize.Settings{MajorIterations: MaxFitIterations}

	result, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if err != nil || result == nil {
		last := initial
		iters := 0
		if result != nil {
			last = result.X
			iters = result.Stats.MajorIterations
		}
		return nil, &domain.FitFailedError{
			Op:         "volatility.fit",
			Iterations: iters,
			LastParams: last,
		}
	}

	omega, alpha, beta := result.X[0], result.X[1], result.X[2]
	if !paramsValid(omega, alpha, beta) || math.IsInf(result.F, 0) || math.IsNaN(result.F) {
		return nil, &domain.FitFailedError{
			Op:         "volatility.fit",
			Iterations: result.Stats.MajorIterations,
			LastParams: result.X,
		}
	}

	variance := conditionalVariance(omega, alpha, beta, z)
	condSigma := make([]float64, len(variance))
	upper := make([]float64, len(variance))
	lower := make([]float64, len(variance))
	for i, h := range variance {
		sigma := math.Sqrt(h) * scale
		condSigma[i] = sigma
		upper[i] = mean + BandWidthSigmas*sigma
		lower[i] = mean - BandWidthSigmas*sigma
	}
	latest := condSigma[len(condSigma)-1]

	fitted := &Result{
		Omega:            omega,
		Alpha:            alpha,
		Beta:             beta,
		Persistence:      alpha + beta,
		MeanPnL:          mean,
		ConditionalSigma: condSigma,
		LatestSigma:      latest,
		LongRunSigma:     math.Sqrt(omega/(1-alpha-beta)) * scale,
		Regime:           classifyRegime(latest, condSigma),
		UpperBand:        upper,
		LowerBand:        lower,
		Iterations:       result.Stats.MajorIterations,
	}

	m.log.Debug().
		Float64("alpha", alpha).
		Float64("beta", beta).
		Str("regime", string(fitted.Regime)).
		Int("sessions", len(pnl)).
		Msg("GARCH fit complete")

	return fitted, nil
}

func paramsValid(omega, alpha, beta float64) bool {
	return omega > 0 && alpha >= 0 && beta >= 0 && alpha+beta < 1
}

// negLogLikelihood is the Gaussian GARCH(1,1) negative log-likelihood over
// the standardized series. Parameter vectors outside the stationarity region
// get a large penalty so Nelder-Mead walks back inside.
func negLogLikelihood(x, z []float64) float64 {
	omega, alpha, beta := x[0], x[1], x[2]
	if !paramsValid(omega, alpha, beta) {
		return 1e10
	}

	variance := conditionalVariance(omega, alpha, beta, z)
	nll := 0.0
	for i, h := range variance {
		if h <= 0 {
			return 1e10
		}
		nll += 0.5 * (math.Log(h) + z[i]*z[i]/h)
	}
	return nll
}

// conditionalVariance runs the GARCH recursion, seeding h_0 with the sample
// variance of the standardized series (1 by construction).
func conditionalVariance(omega, alpha, beta float64, z []float64) []float64 {
	h := make([]float64, len(z))
	h[0] = formulas.Variance(z)
	if h[0] <= 0 {
		h[0] = 1
	}
	for t := 1; t < len(z); t++ {
		h[t] = omega + alpha*z[t-1]*z[t-1] + beta*h[t-1]
	}
	return h
}

// classifyRegime places the latest sigma against the terciles of the fitted
// sigma series itself.
func classifyRegime(latest float64, condSigma []float64) Regime {
	lowCut := formulas.Quantile(RegimeLowCut, condSigma)
	highCut := formulas.Quantile(RegimeHighCut, condSigma)

	switch {
	case latest <= lowCut:
		return RegimeLow
	case latest >= highCut:
		return RegimeHigh
	default:
		return RegimeMedium
	}
}
