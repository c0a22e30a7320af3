package leaks

import "time"

// Constants for leak detection thresholds
const (
	// Position/action combinations losing worse than this over enough hands.
	ComboLossBB100 = -5.0
	ComboMinHands  = 5

	// Whole positions bleeding money.
	PositionLossBB100 = -10.0
	PositionMinHands  = 10

	// Sessions at or above this tilt score contribute to tilt burn.
	TiltSessionScoreMin = 5.0

	// Station bluffing: failed aggression against opponents who do not fold.
	StationBluffMinHands = 3
)

// Rule names, one per independent detection computation.
const (
	RuleComboLoss      = "position_action_loss"
	RulePositionLoss   = "position_loss"
	RuleTiltBurn       = "tilt_burn"
	RuleStationBluffing = "station_bluffing"
)

// LeakItem is one ranked improvement opportunity. ImpactBB100 is the
// estimated rate being lost to the pattern, as a positive magnitude.
type LeakItem struct {
	Rule          string    `json:"rule"`
	Description   string    `json:"description"`
	Context       string    `json:"context"` // position, combo, or opponent scope
	ImpactBB100   float64   `json:"impact_bb100"`
	HandsObserved int       `json:"hands_observed"`
	FirstSeen     time.Time `json:"first_seen"`
	Rank          int       `json:"rank"` // 1-based after ranking
}
