package sessions

// Constants for session summary configuration
const (
	// MinHandsForWinRate is the hand count below which bb/100 is not a
	// meaningful number and is refused rather than reported.
	MinHandsForWinRate = 1000

	// TrendPeriod is the moving-average window (in sessions) for the P/L
	// trend readout.
	TrendPeriod = 10
)

// Trend direction labels for the summary.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendFlat      = "flat"
)

// CreateParams describes a new session being opened.
type CreateParams struct {
	Stakes   string  `json:"stakes"` // "0.05/0.10"
	BuyIn    float64 `json:"buy_in"`
	Location string  `json:"location,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// StakeBreakdown aggregates results at one stake level.
type StakeBreakdown struct {
	Stakes    string  `json:"stakes"`
	Sessions  int     `json:"sessions"`
	Hands     int     `json:"hands"`
	ProfitBB  float64 `json:"profit_bb"`
	Profit    float64 `json:"profit"`
}

// Summary is the whole-history session readout. WinRateBB100 is nil until
// the sample crosses MinHandsForWinRate; a small sample has no honest
// winrate.
type Summary struct {
	TotalSessions int              `json:"total_sessions"`
	TotalHands    int              `json:"total_hands"`
	TotalProfit   float64          `json:"total_profit"`
	TotalProfitBB float64          `json:"total_profit_bb"`
	HoursPlayed   float64          `json:"hours_played"`
	WinRateBB100  *float64         `json:"win_rate_bb100,omitempty"`
	ByStakes      []StakeBreakdown `json:"by_stakes"`
	Trend         string           `json:"trend"`
	TrendEMA      []float64        `json:"trend_ema,omitempty"` // cumulative P/L EMA, bb
	TrendSMA      []float64        `json:"trend_sma,omitempty"`
}
