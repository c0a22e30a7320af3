package tilt

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

func testDetector() *Detector {
	return NewDetector(zerolog.Nop())
}

type handSpec struct {
	netBB      float64
	vpip       bool
	aggressive bool
	holeCards  string
}

func buildHands(specs []handSpec) []domain.HandRecord {
	hands := make([]domain.HandRecord, len(specs))
	for i, s := range specs {
		hands[i] = domain.HandRecord{
			NetBB:      s.netBB,
			VPIP:       s.vpip,
			Aggressive: s.aggressive,
			HoleCards:  s.holeCards,
		}
	}
	return hands
}

// flatSeries is a calm winning stretch with stable VPIP: no tilt signal.
func flatSeries(n int) []domain.HandRecord {
	specs := make([]handSpec, n)
	for i := range specs {
		specs[i] = handSpec{netBB: 0.1, vpip: i%4 == 0}
	}
	return buildHands(specs)
}

// tiltedSeries reproduces the classic pattern: stable baseline, a 15bb
// downswing, then VPIP jumping from ~20% to 40%.
func tiltedSeries() []domain.HandRecord {
	var specs []handSpec
	for i := 0; i < 50; i++ { // baseline, ~20% VPIP, small winner
		specs = append(specs, handSpec{netBB: 0.2, vpip: i%5 == 0})
	}
	for i := 0; i < 30; i++ { // 15bb downswing
		specs = append(specs, handSpec{netBB: -0.5, vpip: i%5 == 0})
	}
	for i := 0; i < 30; i++ { // chase: VPIP 40%
		specs = append(specs, handSpec{netBB: -0.1, vpip: i%5 < 2})
	}
	return buildHands(specs)
}

func TestScoreInsufficientHands(t *testing.T) {
	detector := testDetector()

	result, err := detector.Score(flatSeries(MinHands - 1))
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if !result.Insufficient {
		t.Error("short series should set Insufficient")
	}
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 for insufficient data", result.Score)
	}
	if len(result.Flags) != 1 || result.Flags[0].Name != FlagInsufficient {
		t.Errorf("expected only the insufficient flag, got %v", result.Flags)
	}
}

func TestScoreFlatSeriesIsCalm(t *testing.T) {
	detector := testDetector()

	result, err := detector.Score(flatSeries(200))
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 for a calm winning series", result.Score)
	}
	if len(result.Flags) != 0 {
		t.Errorf("unexpected flags on calm series: %v", result.Flags)
	}
}

func TestScoreDownswingWithChase(t *testing.T) {
	detector := testDetector()

	tilted, err := detector.Score(tiltedSeries())
	if err != nil {
		t.Fatalf("Score(tilted) error: %v", err)
	}
	flat, err := detector.Score(flatSeries(110))
	if err != nil {
		t.Fatalf("Score(flat) error: %v", err)
	}

	if tilted.Score <= flat.Score {
		t.Errorf("tilted series score %v should exceed flat series score %v", tilted.Score, flat.Score)
	}

	names := flagNames(tilted.Flags)
	if !names[FlagDownswing] {
		t.Errorf("expected downswing flag, got %v", names)
	}
	if !names[FlagLossChasing] {
		t.Errorf("expected loss-chasing flag, got %v", names)
	}
}

func TestScoreCappedAtMax(t *testing.T) {
	detector := testDetector()

	// Everything fires at full weight: huge downswing, total VPIP chase,
	// aggression spike, weak holdings after every loss.
	var specs []handSpec
	for i := 0; i < 50; i++ {
		specs = append(specs, handSpec{netBB: 0.1, vpip: i%10 == 0, aggressive: i%10 == 0, holeCards: "Ah Kh"})
	}
	for i := 0; i < 60; i++ {
		specs = append(specs, handSpec{netBB: -3, vpip: true, aggressive: true, holeCards: "6c 2d"})
	}

	result, err := detector.Score(buildHands(specs))
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if result.Score != MaxScore {
		t.Errorf("Score = %v, want capped at %v", result.Score, MaxScore)
	}

	names := flagNames(result.Flags)
	for _, want := range []string{FlagDownswing, FlagLossChasing, FlagAggressionSpike, FlagWeakHandChasing} {
		if !names[want] {
			t.Errorf("missing flag %s in %v", want, names)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	detector := testDetector()

	series := [][]domain.HandRecord{
		flatSeries(50),
		tiltedSeries(),
	}
	for _, hands := range series {
		result, err := detector.Score(hands)
		if err != nil {
			t.Fatalf("Score() error: %v", err)
		}
		if result.Score < 0 || result.Score > MaxScore {
			t.Errorf("Score = %v, want within [0, %v]", result.Score, MaxScore)
		}
	}
}

func TestScoreStateless(t *testing.T) {
	detector := testDetector()
	hands := tiltedSeries()

	first, err := detector.Score(hands)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	second, err := detector.Score(hands)
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if first.Score != second.Score {
		t.Errorf("repeated scoring differs: %v vs %v", first.Score, second.Score)
	}
}

func flagNames(flags []Flag) map[string]bool {
	names := make(map[string]bool, len(flags))
	for _, f := range flags {
		names[f.Name] = true
	}
	return names
}
