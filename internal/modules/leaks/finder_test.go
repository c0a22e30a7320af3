package leaks

import (
	"iter"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/tagging"
)

func testFinder() *Finder {
	return NewFinder(zerolog.Nop())
}

func collect(seq iter.Seq[LeakItem]) []LeakItem {
	var items []LeakItem
	for item := range seq {
		items = append(items, item)
	}
	return items
}

var baseTime = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func lossyHands(position, action string, count int, netBB float64, start time.Time) []domain.HandRecord {
	hands := make([]domain.HandRecord, count)
	for i := range hands {
		hands[i] = domain.HandRecord{
			Position:      position,
			PreflopAction: action,
			NetBB:         netBB,
			PlayedAt:      start.Add(time.Duration(i) * time.Minute),
		}
	}
	return hands
}

func TestAnalyzeComboAndPositionLosses(t *testing.T) {
	finder := testFinder()

	// UTG limps losing hard, BTN raising fine. UTG overall also a loser.
	var hands []domain.HandRecord
	hands = append(hands, lossyHands("UTG", "limp", 10, -0.5, baseTime)...)           // -50bb/100
	hands = append(hands, lossyHands("UTG", "raise", 10, 0.02, baseTime.Add(time.Hour))...)
	hands = append(hands, lossyHands("BTN", "raise", 20, 0.1, baseTime.Add(2*time.Hour))...)

	items := collect(finder.Analyze(nil, hands, nil, nil))
	if len(items) == 0 {
		t.Fatal("expected leaks for a losing UTG limp range")
	}

	foundCombo := false
	foundPosition := false
	for _, item := range items {
		switch item.Rule {
		case RuleComboLoss:
			if item.Context == "UTG/limp" {
				foundCombo = true
				if item.HandsObserved != 10 {
					t.Errorf("combo HandsObserved = %d, want 10", item.HandsObserved)
				}
			}
			if item.Context == "BTN/raise" {
				t.Error("winning combo flagged as a leak")
			}
		case RulePositionLoss:
			if item.Context == "UTG" {
				foundPosition = true
			}
		}
	}
	if !foundCombo {
		t.Error("UTG/limp combo leak not detected")
	}
	if !foundPosition {
		t.Error("UTG position leak not detected")
	}
}

func TestAnalyzeRankingOrder(t *testing.T) {
	finder := testFinder()

	var hands []domain.HandRecord
	hands = append(hands, lossyHands("UTG", "limp", 10, -0.5, baseTime)...)  // -50bb/100
	hands = append(hands, lossyHands("SB", "call", 10, -0.2, baseTime)...)   // -20bb/100

	items := collect(finder.Analyze(nil, hands, nil, nil))
	if len(items) < 2 {
		t.Fatalf("expected at least 2 leaks, got %d", len(items))
	}

	for i := 1; i < len(items); i++ {
		if items[i].ImpactBB100 > items[i-1].ImpactBB100 {
			t.Fatalf("items not in descending impact order: %v after %v",
				items[i].ImpactBB100, items[i-1].ImpactBB100)
		}
	}
	for i, item := range items {
		if item.Rank != i+1 {
			t.Errorf("item %d has Rank %d", i, item.Rank)
		}
	}
	if items[0].Context != "UTG/limp" && items[0].Context != "UTG" {
		t.Errorf("worst leak should be the UTG bleed, got %q", items[0].Context)
	}
}

func TestAnalyzeTiesBreakByEarliestOccurrence(t *testing.T) {
	finder := testFinder()

	later := lossyHands("CO", "limp", 10, -0.3, baseTime.Add(3*time.Hour))
	earlier := lossyHands("MP", "limp", 10, -0.3, baseTime)

	var hands []domain.HandRecord
	hands = append(hands, later...)
	hands = append(hands, earlier...)

	items := collect(finder.Analyze(nil, hands, nil, nil))

	var comboItems []LeakItem
	for _, item := range items {
		if item.Rule == RuleComboLoss {
			comboItems = append(comboItems, item)
		}
	}
	if len(comboItems) != 2 {
		t.Fatalf("expected 2 combo leaks, got %d", len(comboItems))
	}
	if comboItems[0].Context != "MP/limp" {
		t.Errorf("equal-impact leaks should order by earliest occurrence, got %q first", comboItems[0].Context)
	}
}

func TestAnalyzeTiltBurn(t *testing.T) {
	finder := testFinder()

	sessions := []domain.SessionRecord{
		{ID: "s1", StartedAt: baseTime, BigBlind: 1, BuyIn: 200, CashOut: 50, HandsPlayed: 300},
		{ID: "s2", StartedAt: baseTime.Add(24 * time.Hour), BigBlind: 1, BuyIn: 200, CashOut: 400, HandsPlayed: 300},
	}
	tiltScores := map[string]float64{"s1": 7.5, "s2": 1.0}

	items := collect(finder.Analyze(sessions, nil, nil, tiltScores))
	if len(items) != 1 {
		t.Fatalf("expected a single tilt-burn leak, got %d items", len(items))
	}
	item := items[0]
	if item.Rule != RuleTiltBurn {
		t.Fatalf("Rule = %q, want %q", item.Rule, RuleTiltBurn)
	}
	// 150bb lost over 300 hands of tilted play = 50bb/100.
	if item.ImpactBB100 != 50 {
		t.Errorf("ImpactBB100 = %v, want 50", item.ImpactBB100)
	}
	if item.HandsObserved != 300 {
		t.Errorf("HandsObserved = %d, want 300", item.HandsObserved)
	}
}

func TestAnalyzeStationBluffing(t *testing.T) {
	finder := testFinder()

	tags := []tagging.OpponentTag{
		{Name: "station joe", Archetype: domain.ArchetypeCallingStation},
		{Name: "solid sam", Archetype: domain.ArchetypeTAG},
	}

	var hands []domain.HandRecord
	for i := 0; i < 5; i++ {
		hands = append(hands, domain.HandRecord{
			Opponent:   "station joe",
			Aggressive: true,
			NetBB:      -8,
			PlayedAt:   baseTime.Add(time.Duration(i) * time.Minute),
		})
	}
	// Bluffing the TAG is not this leak.
	hands = append(hands, domain.HandRecord{
		Opponent: "solid sam", Aggressive: true, NetBB: -8, PlayedAt: baseTime,
	})
	// Value hands against the station are not bluffs.
	hands = append(hands, domain.HandRecord{
		Opponent: "station joe", Aggressive: true, WentToShowdown: true, NetBB: 12, PlayedAt: baseTime,
	})

	items := collect(finder.Analyze(nil, hands, tags, nil))
	if len(items) != 1 {
		t.Fatalf("expected a single station-bluffing leak, got %d items", len(items))
	}
	if items[0].Rule != RuleStationBluffing {
		t.Fatalf("Rule = %q, want %q", items[0].Rule, RuleStationBluffing)
	}
	if items[0].HandsObserved != 5 {
		t.Errorf("HandsObserved = %d, want 5", items[0].HandsObserved)
	}
}

func TestAnalyzeCleanRecordsYieldNothing(t *testing.T) {
	finder := testFinder()

	hands := lossyHands("BTN", "raise", 50, 0.15, baseTime)
	sessions := []domain.SessionRecord{
		{ID: "s1", StartedAt: baseTime, BigBlind: 1, BuyIn: 200, CashOut: 350, HandsPlayed: 400},
	}

	items := collect(finder.Analyze(sessions, hands, nil, map[string]float64{"s1": 0}))
	if len(items) != 0 {
		t.Errorf("expected no leaks for clean records, got %v", items)
	}
}

func TestAnalyzeSequenceIsRestartable(t *testing.T) {
	finder := testFinder()

	var hands []domain.HandRecord
	hands = append(hands, lossyHands("UTG", "limp", 10, -0.5, baseTime)...)
	hands = append(hands, lossyHands("SB", "call", 10, -0.2, baseTime)...)

	seq := finder.Analyze(nil, hands, nil, nil)

	first := collect(seq)
	second := collect(seq)
	if len(first) != len(second) {
		t.Fatalf("restarted sequence differs in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("restarted sequence differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	// Early break must not poison later iterations.
	for range seq {
		break
	}
	third := collect(seq)
	if len(third) != len(first) {
		t.Errorf("sequence not restartable after early break: %d vs %d", len(third), len(first))
	}
}
