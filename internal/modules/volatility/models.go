package volatility

// Constants for volatility model configuration
const (
	// MinObservations is the smallest session P/L series worth fitting.
	MinObservations = 10

	// MaxFitIterations bounds the Nelder-Mead search.
	MaxFitIterations = 1000

	// Regime cut points against the fitted conditional sigma series' own
	// empirical distribution.
	RegimeLowCut  = 1.0 / 3.0
	RegimeHighCut = 2.0 / 3.0

	// BandWidthSigmas is the width of the expectation bands.
	BandWidthSigmas = 2.0
)

// Regime classifies the latest conditional volatility against the history
// of the fitted series.
type Regime string

const (
	RegimeLow    Regime = "low"
	RegimeMedium Regime = "medium"
	RegimeHigh   Regime = "high"
)

// Result holds a fitted GARCH(1,1) model over a session P/L series.
// ConditionalSigma is in the same units as the input series (big blinds).
type Result struct {
	Omega       float64 `json:"omega"`
	Alpha       float64 `json:"alpha"`
	Beta        float64 `json:"beta"`
	Persistence float64 `json:"persistence"` // alpha + beta

	MeanPnL          float64   `json:"mean_pnl"`
	ConditionalSigma []float64 `json:"conditional_sigma"` // one per observation
	LatestSigma      float64   `json:"latest_sigma"`
	LongRunSigma     float64   `json:"long_run_sigma"` // unconditional sigma implied by the fit

	Regime    Regime    `json:"regime"`
	UpperBand []float64 `json:"upper_band"` // mean + BandWidthSigmas * sigma_t
	LowerBand []float64 `json:"lower_band"` // mean - BandWidthSigmas * sigma_t

	Iterations int `json:"iterations"`
}
