package simulation

// Constants for simulation configuration
const (
	DefaultTrajectories = 1000
	DefaultHands        = 10000
	MaxTrajectories     = 100000
	MaxHands            = 1000000
	HandsPerStep        = 100
)

// DefaultPercentiles are the fan-chart bands computed when the caller does
// not ask for specific ones.
var DefaultPercentiles = []float64{5, 25, 50, 75, 95}

// Params describes a Monte Carlo bankroll simulation request. All monetary
// quantities are in big blinds; winrate and standard deviation are in the
// usual bb/100 units.
type Params struct {
	StartingBankrollBB float64   `json:"starting_bankroll_bb"`
	WinRateBB100       float64   `json:"win_rate_bb100"`
	StdDevBB100        float64   `json:"std_dev_bb100"`
	Trajectories       int       `json:"trajectories"`
	HandsPerTrajectory int       `json:"hands_per_trajectory"`
	TargetBankrollBB   float64   `json:"target_bankroll_bb,omitempty"`
	Percentiles        []float64 `json:"percentiles,omitempty"`
	Seed               uint64    `json:"seed,omitempty"` // 0 = nondeterministic
}

// Band is one percentile trace across the simulated steps, including the
// starting bankroll at index 0.
type Band struct {
	Percentile float64   `json:"percentile"`
	Values     []float64 `json:"values"`
}

// Result holds the aggregated outcome of a simulation run. Individual
// trajectories are not returned; the percentile bands carry the fan chart.
type Result struct {
	RiskOfRuin        float64 `json:"risk_of_ruin"`         // fraction of trajectories that hit <= 0
	ExpectedFinalBB   float64 `json:"expected_final_bb"`    // mean final bankroll
	MedianFinalBB     float64 `json:"median_final_bb"`      // 50th percentile final bankroll
	MedianMaxDrawdown float64 `json:"median_max_drawdown"`  // median of per-trajectory max drawdowns
	ProbReachTarget   float64 `json:"prob_reach_target"`    // 0 when no target was set
	Bands             []Band  `json:"bands"`                // one trace per requested percentile
	Steps             int     `json:"steps"`                // simulated 100-hand steps per trajectory
	TrajectoriesRun   int     `json:"trajectories_run"`
	HandsSimulated    int     `json:"hands_simulated"`
	Seed              uint64  `json:"seed"`                 // effective seed (resolved when input was 0)
}

// KellyResult holds bankroll sizing guidance derived from a winrate and
// standard deviation pair.
type KellyResult struct {
	KellyFraction         float64 `json:"kelly_fraction"`           // f* = mu / sigma^2 in per-hand units
	HalfKellyFraction     float64 `json:"half_kelly_fraction"`
	ConservativeBuyIns    int     `json:"conservative_buy_ins"`     // ~1% ruin tolerance
	ModerateBuyIns        int     `json:"moderate_buy_ins"`         // ~5% ruin tolerance
	AggressiveBuyIns      int     `json:"aggressive_buy_ins"`       // ~10% ruin tolerance
	RecommendedBankrollBB float64 `json:"recommended_bankroll_bb"`  // moderate buy-ins * 100 bb
	IsWinning             bool    `json:"is_winning"`
}

// TimeToTargetResult estimates how many hands an expectation-only grind
// needs to move the bankroll from current to target.
type TimeToTargetResult struct {
	HandsNeeded    int     `json:"hands_needed"`
	SessionsNeeded int     `json:"sessions_needed"` // at HandsPerSession hands each
	TargetBB       float64 `json:"target_bb"`
	Reachable      bool    `json:"reachable"` // false for non-positive winrates
}
