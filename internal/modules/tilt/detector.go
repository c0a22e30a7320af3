// Package tilt scores behavioral tilt indicators over a chronological hand
// series: downswings, loss-chasing, aggression spikes, and weak-hand
// chasing. The score is a weighted composite on a 0-10 scale.
package tilt

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

// Detector scores tilt indicators over hand series.
type Detector struct {
	log zerolog.Logger
}

// NewDetector creates a new tilt detector.
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{
		log: log.With().Str("component", "tilt").Logger(),
	}
}

// Score computes the composite tilt score over a chronological hand series.
// Fewer than MinHands hands yields a zero score with the Insufficient flag
// rather than an error: "not enough hands to tell" is a valid reading.
func (d *Detector) Score(hands []domain.HandRecord) (*TiltScore, error) {
	if len(hands) < MinHands {
		return &TiltScore{
			Score:         0,
			Flags:         []Flag{{Name: FlagInsufficient, Detail: fmt.Sprintf("need at least %d hands, got %d", MinHands, len(hands))}},
			HandsAnalyzed: len(hands),
			Insufficient:  true,
		}, nil
	}

	var flags []Flag
	total := 0.0

	worstLoss, downswingEnd := worstWindowLoss(hands)
	if worstLoss > DownswingLossBB {
		contribution := math.Min(DownswingMaxWeight, worstLoss/DownswingLossBB)
		flags = append(flags, Flag{
			Name:         FlagDownswing,
			Detail:       fmt.Sprintf("%.1fbb lost over a %d-hand window", worstLoss, DownswingWindow),
			Contribution: contribution,
		})
		total += contribution

		if flag, ok := d.lossChasing(hands, downswingEnd); ok {
			flags = append(flags, flag)
			total += flag.Contribution
		}
		if flag, ok := d.aggressionSpike(hands, downswingEnd); ok {
			flags = append(flags, flag)
			total += flag.Contribution
		}
	}

	if flag, ok := d.weakHandChasing(hands); ok {
		flags = append(flags, flag)
		total += flag.Contribution
	}

	score := math.Min(MaxScore, total)

	d.log.Debug().
		Float64("score", score).
		Int("hands", len(hands)).
		Int("flags", len(flags)).
		Msg("Tilt score computed")

	return &TiltScore{
		Score:         score,
		Flags:         flags,
		HandsAnalyzed: len(hands),
	}, nil
}

// worstWindowLoss returns the largest cumulative loss over any
// DownswingWindow-hand window (shorter prefixes count at the start), and the
// index just past the end of the first window exceeding the threshold.
func worstWindowLoss(hands []domain.HandRecord) (float64, int) {
	worst := 0.0
	firstEnd := -1

	running := 0.0
	prefix := make([]float64, len(hands)+1)
	for i, h := range hands {
		running += h.NetBB
		prefix[i+1] = running
	}

	for end := 1; end <= len(hands); end++ {
		start := end - DownswingWindow
		if start < 0 {
			start = 0
		}
		loss := prefix[start] - prefix[end]
		if loss > worst {
			worst = loss
		}
		if firstEnd < 0 && loss > DownswingLossBB {
			firstEnd = end
		}
	}
	return worst, firstEnd
}

// lossChasing compares VPIP after the first downswing against the stretch
// before it.
func (d *Detector) lossChasing(hands []domain.HandRecord, downswingEnd int) (Flag, bool) {
	if downswingEnd < 0 {
		return Flag{}, false
	}

	beforeStart := downswingEnd - ChaseBaselineHands
	if beforeStart < 0 {
		beforeStart = 0
	}
	before := hands[beforeStart:downswingEnd]

	afterEnd := downswingEnd + ChaseWindowHands
	if afterEnd > len(hands) {
		afterEnd = len(hands)
	}
	after := hands[downswingEnd:afterEnd]

	if len(before) == 0 || len(after) == 0 {
		return Flag{}, false
	}

	delta := vpipRate(after)*100 - vpipRate(before)*100
	if delta <= ChaseVPIPDeltaPts {
		return Flag{}, false
	}

	return Flag{
		Name:         FlagLossChasing,
		Detail:       fmt.Sprintf("VPIP up %.1f points after downswing", delta),
		Contribution: math.Min(ChaseMaxWeight, delta/ChaseVPIPDeltaPts),
	}, true
}

// aggressionSpike compares the post-downswing aggressive-action rate against
// the whole-series baseline.
func (d *Detector) aggressionSpike(hands []domain.HandRecord, downswingEnd int) (Flag, bool) {
	if downswingEnd < 0 || downswingEnd >= len(hands) {
		return Flag{}, false
	}

	baseline := aggressionRate(hands)
	post := aggressionRate(hands[downswingEnd:])
	if baseline <= 0 || post <= baseline*AggressionSpikeRatio {
		return Flag{}, false
	}

	return Flag{
		Name:         FlagAggressionSpike,
		Detail:       fmt.Sprintf("aggression %.0f%% vs %.0f%% baseline after downswing", post*100, baseline*100),
		Contribution: AggressionWeight,
	}, true
}

// weakHandChasing looks at the hands played immediately after a meaningful
// loss: entering the pot with a weak holding is the classic chase pattern.
// Hands with unparseable hole cards are skipped, not guessed at.
func (d *Detector) weakHandChasing(hands []domain.HandRecord) (Flag, bool) {
	triggered := 0
	chased := 0
	for i := 1; i < len(hands); i++ {
		if hands[i-1].NetBB > -WeakHandLossBB {
			continue
		}
		triggered++
		if !hands[i].VPIP {
			continue
		}
		cards, err := domain.ParseCards(hands[i].HoleCards)
		if err != nil || len(cards) != 2 {
			continue
		}
		if domain.PreflopStrength(cards) < WeakStrengthMax {
			chased++
		}
	}

	if triggered == 0 {
		return Flag{}, false
	}
	rate := float64(chased) / float64(triggered)
	if rate <= WeakHandChaseRate {
		return Flag{}, false
	}

	return Flag{
		Name:         FlagWeakHandChasing,
		Detail:       fmt.Sprintf("%.0f%% of post-loss hands played with weak holdings", rate*100),
		Contribution: WeakChaseWeight,
	}, true
}

func vpipRate(hands []domain.HandRecord) float64 {
	if len(hands) == 0 {
		return 0
	}
	count := 0
	for _, h := range hands {
		if h.VPIP {
			count++
		}
	}
	return float64(count) / float64(len(hands))
}

func aggressionRate(hands []domain.HandRecord) float64 {
	if len(hands) == 0 {
		return 0
	}
	count := 0
	for _, h := range hands {
		if h.Aggressive {
			count++
		}
	}
	return float64(count) / float64(len(hands))
}
