package winrate

// Constants for bootstrap configuration
const (
	DefaultIterations = 10000
	MaxIterations     = 200000
	DefaultConfidence = 0.95

	// MeaningfulMinHands is the sample size below which the interval is
	// still computed but flagged as low-confidence.
	MeaningfulMinHands = 100

	// resampleChunks fixes how the iteration space is split for the worker
	// pool. A constant chunk count keeps seeded runs reproducible no matter
	// how many workers actually run.
	resampleChunks = 8
)

// Options configures a bootstrap estimate. Zero values select defaults.
type Options struct {
	Iterations int     `json:"iterations,omitempty"`
	Confidence float64 `json:"confidence,omitempty"` // e.g. 0.95
	Seed       uint64  `json:"seed,omitempty"`       // 0 = nondeterministic
}

// Result holds a bootstrap winrate estimate in bb/100 units.
type Result struct {
	PointEstimate  float64 `json:"point_estimate"`  // observed mean * 100
	IntervalLow    float64 `json:"interval_low"`    // empirical percentile interval
	IntervalHigh   float64 `json:"interval_high"`
	Confidence     float64 `json:"confidence"`
	StdError       float64 `json:"std_error"`       // std dev of resampled means
	ProbProfitable float64 `json:"prob_profitable"` // fraction of resampled means > 0
	Hands          int     `json:"hands"`
	Iterations     int     `json:"iterations"`
	LowSample      bool    `json:"low_sample"` // fewer than MeaningfulMinHands hands
	Seed           uint64  `json:"seed"`
}

// SampleSizeResult answers "how many hands until my winrate estimate is
// within the margin at this confidence".
type SampleSizeResult struct {
	HandsNeeded  int     `json:"hands_needed"`
	MarginBB100  float64 `json:"margin_bb100"`
	Confidence   float64 `json:"confidence"`
	StdDevBB100  float64 `json:"std_dev_bb100"`
}
