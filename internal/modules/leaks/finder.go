// Package leaks aggregates the other analytics outputs plus raw records
// into a ranked list of improvement items. Each rule is an independent,
// named computation; ranking is a separate pure step over their combined
// output.
package leaks

import (
	"fmt"
	"iter"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
	"github.com/aristath/railbird/internal/modules/tagging"
	"github.com/aristath/railbird/pkg/formulas"
)

// Finder detects and ranks leaks.
type Finder struct {
	log zerolog.Logger
}

// NewFinder creates a new leak finder.
func NewFinder(log zerolog.Logger) *Finder {
	return &Finder{
		log: log.With().Str("component", "leaks").Logger(),
	}
}

// Analyze returns the ranked leak sequence. The sequence is lazy and
// restartable: detection and ranking rerun on each range over it, so the
// caller always sees results for the records passed in, never a stale
// snapshot.
func (f *Finder) Analyze(
	sessions []domain.SessionRecord,
	hands []domain.HandRecord,
	tags []tagging.OpponentTag,
	tiltScores map[string]float64,
) iter.Seq[LeakItem] {
	return func(yield func(LeakItem) bool) {
		var items []LeakItem
		items = append(items, f.comboLosses(hands)...)
		items = append(items, f.positionLosses(hands)...)
		items = append(items, f.tiltBurn(sessions, tiltScores)...)
		items = append(items, f.stationBluffing(hands, tags)...)

		rank(items)

		f.log.Debug().Int("leaks", len(items)).Msg("Leak analysis complete")

		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// rank orders items by descending impact, ties by earliest occurrence, and
// assigns 1-based ranks. Pure: no detection logic lives here.
func rank(items []LeakItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ImpactBB100 != items[j].ImpactBB100 {
			return items[i].ImpactBB100 > items[j].ImpactBB100
		}
		return items[i].FirstSeen.Before(items[j].FirstSeen)
	})
	for i := range items {
		items[i].Rank = i + 1
	}
}

type handGroup struct {
	netBB     []float64
	firstSeen domain.HandRecord
}

func (g *handGroup) add(h domain.HandRecord) {
	if len(g.netBB) == 0 || h.PlayedAt.Before(g.firstSeen.PlayedAt) {
		g.firstSeen = h
	}
	g.netBB = append(g.netBB, h.NetBB)
}

// comboLosses finds position/preflop-action combinations bleeding money.
func (f *Finder) comboLosses(hands []domain.HandRecord) []LeakItem {
	groups := make(map[string]*handGroup)
	for _, h := range hands {
		if h.Position == "" || h.PreflopAction == "" {
			continue
		}
		key := h.Position + "/" + h.PreflopAction
		if groups[key] == nil {
			groups[key] = &handGroup{}
		}
		groups[key].add(h)
	}

	var items []LeakItem
	for key, g := range groups {
		if len(g.netBB) < ComboMinHands {
			continue
		}
		rate := formulas.BB100(g.netBB)
		if rate >= ComboLossBB100 {
			continue
		}
		items = append(items, LeakItem{
			Rule:          RuleComboLoss,
			Description:   fmt.Sprintf("Losing %.1fbb/100 when you %s from %s", -rate, g.firstSeen.PreflopAction, g.firstSeen.Position),
			Context:       key,
			ImpactBB100:   -rate,
			HandsObserved: len(g.netBB),
			FirstSeen:     g.firstSeen.PlayedAt,
		})
	}
	return items
}

// positionLosses finds whole positions with a losing rate.
func (f *Finder) positionLosses(hands []domain.HandRecord) []LeakItem {
	groups := make(map[string]*handGroup)
	for _, h := range hands {
		if h.Position == "" {
			continue
		}
		if groups[h.Position] == nil {
			groups[h.Position] = &handGroup{}
		}
		groups[h.Position].add(h)
	}

	var items []LeakItem
	for position, g := range groups {
		if len(g.netBB) < PositionMinHands {
			continue
		}
		rate := formulas.BB100(g.netBB)
		if rate >= PositionLossBB100 {
			continue
		}
		items = append(items, LeakItem{
			Rule:          RulePositionLoss,
			Description:   fmt.Sprintf("%s is costing you %.1fbb/100 overall", position, -rate),
			Context:       position,
			ImpactBB100:   -rate,
			HandsObserved: len(g.netBB),
			FirstSeen:     g.firstSeen.PlayedAt,
		})
	}
	return items
}

// tiltBurn totals money lost in sessions the tilt detector scored high.
func (f *Finder) tiltBurn(sessions []domain.SessionRecord, tiltScores map[string]float64) []LeakItem {
	lostBB := 0.0
	handsInTilt := 0
	count := 0
	var firstSeen domain.SessionRecord
	for _, s := range sessions {
		if tiltScores[s.ID] < TiltSessionScoreMin {
			continue
		}
		if pl := s.ProfitLossBB(); pl < 0 {
			lostBB += -pl
		}
		handsInTilt += s.HandsPlayed
		if count == 0 || s.StartedAt.Before(firstSeen.StartedAt) {
			firstSeen = s
		}
		count++
	}

	if count == 0 || lostBB == 0 || handsInTilt == 0 {
		return nil
	}

	rate := lostBB / float64(handsInTilt) * 100
	return []LeakItem{{
		Rule:          RuleTiltBurn,
		Description:   fmt.Sprintf("%.0fbb lost across %d tilted sessions", lostBB, count),
		Context:       fmt.Sprintf("%d sessions", count),
		ImpactBB100:   rate,
		HandsObserved: handsInTilt,
		FirstSeen:     firstSeen.StartedAt,
	}}
}

// stationBluffing finds failed aggression against opponents tagged as
// players who do not fold. A bluff here is an aggressive hand lost without
// showdown.
func (f *Finder) stationBluffing(hands []domain.HandRecord, tags []tagging.OpponentTag) []LeakItem {
	sticky := make(map[string]bool)
	for _, tag := range tags {
		if tag.Archetype == domain.ArchetypeCallingStation || tag.Archetype == domain.ArchetypeWhale {
			sticky[tag.Name] = true
		}
	}
	if len(sticky) == 0 {
		return nil
	}

	var g handGroup
	for _, h := range hands {
		if h.Opponent == "" || !sticky[h.Opponent] {
			continue
		}
		if !h.Aggressive || h.WentToShowdown || h.NetBB >= 0 {
			continue
		}
		g.add(h)
	}

	if len(g.netBB) < StationBluffMinHands {
		return nil
	}

	rate := formulas.BB100(g.netBB)
	return []LeakItem{{
		Rule:          RuleStationBluffing,
		Description:   fmt.Sprintf("Bluffing players who do not fold: %.1fbb/100 burned over %d hands", -rate, len(g.netBB)),
		Context:       "calling stations",
		ImpactBB100:   -rate,
		HandsObserved: len(g.netBB),
		FirstSeen:     g.firstSeen.PlayedAt,
	}}
}
