package tilt

// Constants for tilt detection thresholds
const (
	// MinHands below which scoring returns zero with the Insufficient flag.
	MinHands = 20

	// Downswing: any 50-hand window losing more than 10bb.
	DownswingWindow = 50
	DownswingLossBB = 10.0

	// Loss-chasing: VPIP over the 30 hands after the first downswing vs the
	// 50 hands before it.
	ChaseWindowHands    = 30
	ChaseBaselineHands  = 50
	ChaseVPIPDeltaPts   = 10.0

	// Aggression spike: post-downswing aggressive-action rate vs baseline.
	AggressionSpikeRatio = 1.5

	// Weak-hand chasing: entering pots with weak holdings right after a
	// meaningful loss.
	WeakHandLossBB    = 2.0
	WeakHandChaseRate = 0.20
	WeakStrengthMax   = 0.3

	// Component weights; the total is capped at MaxScore.
	DownswingMaxWeight  = 3.0
	ChaseMaxWeight      = 3.0
	AggressionWeight    = 2.0
	WeakChaseWeight     = 2.0
	MaxScore            = 10.0
)

// Flag names reported on a TiltScore.
const (
	FlagDownswing       = "downswing"
	FlagLossChasing     = "loss_chasing"
	FlagAggressionSpike = "aggression_spike"
	FlagWeakHandChasing = "weak_hand_chasing"
	FlagInsufficient    = "insufficient_hands"
)

// Flag is one triggered tilt indicator with its contribution to the score.
type Flag struct {
	Name         string  `json:"name"`
	Detail       string  `json:"detail"`
	Contribution float64 `json:"contribution"`
}

// TiltScore is the 0-10 composite tilt reading over a hand series.
// Stateless: recomputed fresh from the series on every call.
type TiltScore struct {
	Score         float64 `json:"score"`
	Flags         []Flag  `json:"flags"`
	HandsAnalyzed int     `json:"hands_analyzed"`
	Insufficient  bool    `json:"insufficient"`
}
