package simulation

import (
	"math"

	"github.com/aristath/railbird/internal/domain"
)

// Bankroll sizing configuration
const (
	HandsPerSession = 250 // typical live/online session length used for estimates

	conservativeRuinTolerance = 0.01
	moderateRuinTolerance     = 0.05
	aggressiveRuinTolerance   = 0.10

	// Floors keep the recommendation sane when the RoR formula produces a
	// tiny bankroll for very high winrates.
	conservativeFloorBuyIns = 50
	moderateFloorBuyIns     = 30
	aggressiveFloorBuyIns   = 20
)

// Kelly derives bankroll sizing guidance from a winrate / standard deviation
// pair. Inputs are in bb/100 units; the Kelly fraction itself is computed in
// per-hand units (mu = winrate/100, sigma = stddev/10).
func (s *Simulator) Kelly(winRateBB100, stdDevBB100 float64) (*KellyResult, error) {
	if stdDevBB100 <= 0 {
		return nil, &domain.InvalidParameterError{Param: "std_dev_bb100", Reason: "must be positive"}
	}

	mu := winRateBB100 / 100
	sigma := stdDevBB100 / 10
	variance := sigma * sigma

	if mu <= 0 {
		// A non-winning game has no positive Kelly fraction and no bankroll
		// that bounds the risk of ruin.
		return &KellyResult{IsWinning: false}, nil
	}

	kelly := mu / variance

	conservative := buyInsForRuinTolerance(mu, variance, conservativeRuinTolerance, conservativeFloorBuyIns)
	moderate := buyInsForRuinTolerance(mu, variance, moderateRuinTolerance, moderateFloorBuyIns)
	aggressive := buyInsForRuinTolerance(mu, variance, aggressiveRuinTolerance, aggressiveFloorBuyIns)

	return &KellyResult{
		KellyFraction:         kelly,
		HalfKellyFraction:     kelly / 2,
		ConservativeBuyIns:    conservative,
		ModerateBuyIns:        moderate,
		AggressiveBuyIns:      aggressive,
		RecommendedBankrollBB: float64(moderate) * 100,
		IsWinning:             true,
	}, nil
}

// buyInsForRuinTolerance inverts the classic random-walk ruin approximation
// RoR = exp(-2*mu*B/sigma^2) for the bankroll B that keeps ruin probability
// at the tolerance, expressed in 100bb buy-ins.
func buyInsForRuinTolerance(mu, variance, tolerance float64, floor int) int {
	bankrollBB := -variance * math.Log(tolerance) / (2 * mu)
	buyIns := int(math.Ceil(bankrollBB / 100))
	if buyIns < floor {
		return floor
	}
	return buyIns
}

// TimeToTarget estimates the expectation-only number of hands needed to grow
// the bankroll from current to target at the given winrate. Variance is
// deliberately ignored; the Monte Carlo simulator answers the probabilistic
// version of the question.
func (s *Simulator) TimeToTarget(currentBB, targetBB, winRateBB100 float64) (*TimeToTargetResult, error) {
	if currentBB <= 0 {
		return nil, &domain.InvalidParameterError{Param: "current_bb", Reason: "must be positive"}
	}
	if targetBB <= currentBB {
		return &TimeToTargetResult{TargetBB: targetBB, Reachable: true}, nil
	}
	if winRateBB100 <= 0 {
		return &TimeToTargetResult{TargetBB: targetBB, Reachable: false}, nil
	}

	hands := int(math.Ceil((targetBB - currentBB) / winRateBB100 * 100))
	sessions := int(math.Ceil(float64(hands) / HandsPerSession))

	return &TimeToTargetResult{
		HandsNeeded:    hands,
		SessionsNeeded: sessions,
		TargetBB:       targetBB,
		Reachable:      true,
	}, nil
}
