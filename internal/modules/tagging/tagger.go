// Package tagging assigns a style archetype to an opponent from their
// aggregate stats. The rule table is ordered; the first matching predicate
// wins, which keeps overlapping profiles deterministic.
package tagging

import (
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

// Threshold constants for the archetype rules
const (
	// MinHandsForTag below which every opponent is Unknown.
	MinHandsForTag = 10

	NitVPIPMax = 18

	TAGVPIPMax = 26
	TAGPFRMin  = 15
	TAGAFMin   = 1.8

	LAGVPIPMax = 38
	LAGPFRMin  = 22
	LAGAFMin   = 2.5

	StationVPIPMin = 35
	StationPFRMax  = 12
	StationAFMax   = 1.5

	ManiacVPIPMin = 45
	ManiacPFRMin  = 30

	WhaleVPIPMin = 45
)

// rule is one row of the archetype table. First match wins.
type rule struct {
	archetype domain.Archetype
	note      string
	matches   func(domain.OpponentRecord) bool
}

// rules is evaluated in order. The Calling Station row sits above Whale so
// the passive high-VPIP profile resolves consistently.
var rules = []rule{
	{
		archetype: domain.ArchetypeNit,
		note:      "Steal their blinds relentlessly. Fold to their raises unless you have a premium; when a nit shows aggression, believe them.",
		matches: func(o domain.OpponentRecord) bool {
			return o.VPIP < NitVPIPMax
		},
	},
	{
		archetype: domain.ArchetypeTAG,
		note:      "Avoid marginal spots; a solid player gives little away. Look for over-folding to big turn and river pressure.",
		matches: func(o domain.OpponentRecord) bool {
			return o.VPIP < TAGVPIPMax && o.PFR >= TAGPFRMin && o.AF >= TAGAFMin
		},
	},
	{
		archetype: domain.ArchetypeLAG,
		note:      "Call down lighter than usual; their range is wide. Let them bluff into your strong hands rather than bloating pots out of position.",
		matches: func(o domain.OpponentRecord) bool {
			return o.VPIP < LAGVPIPMax && o.PFR >= LAGPFRMin && o.AF >= LAGAFMin
		},
	},
	{
		archetype: domain.ArchetypeCallingStation,
		note:      "Value bet thinner and bigger on every street. Never bluff; they will call with any pair and many draws.",
		matches: func(o domain.OpponentRecord) bool {
			return o.VPIP >= StationVPIPMin && o.PFR <= StationPFRMax && o.AF <= StationAFMax
		},
	},
	{
		archetype: domain.ArchetypeManiac,
		note:      "Tighten up and let them hang themselves. Flat premium hands preflop and snap off their barrels with top pair or better.",
		matches: func(o domain.OpponentRecord) bool {
			return o.VPIP >= ManiacVPIPMin && o.PFR >= ManiacPFRMin
		},
	},
	{
		archetype: domain.ArchetypeWhale,
		note:      "Isolate them in position at every opportunity. Play straightforward big-pot poker; fancy lines are wasted here.",
		matches: func(o domain.OpponentRecord) bool {
			return o.VPIP >= WhaleVPIPMin
		},
	},
}

const unknownNote = "Not enough hands yet. Default to solid play and keep logging."
const unmatchedNote = "Mixed profile; no strong reads. Default to solid play and watch showdowns."

// OpponentTag is a style read with its exploitation note.
type OpponentTag struct {
	OpponentID   string           `json:"opponent_id"`
	Name         string           `json:"name"`
	Archetype    domain.Archetype `json:"archetype"`
	Exploitation string           `json:"exploitation"`
	HandsSampled int              `json:"hands_sampled"`
}

// Tagger assigns archetypes from aggregate opponent stats.
type Tagger struct {
	log zerolog.Logger
}

// NewTagger creates a new opponent tagger.
func NewTagger(log zerolog.Logger) *Tagger {
	return &Tagger{
		log: log.With().Str("component", "tagging").Logger(),
	}
}

// Tag is a total function: every stats profile gets an archetype. Opponents
// with fewer than MinHandsForTag hands are Unknown; profiles matching no
// rule also fall through to Unknown with a different note.
func (t *Tagger) Tag(stats domain.OpponentRecord) OpponentTag {
	tag := OpponentTag{
		OpponentID:   stats.ID,
		Name:         stats.Name,
		Archetype:    domain.ArchetypeUnknown,
		Exploitation: unknownNote,
		HandsSampled: stats.HandsSampled,
	}

	if stats.HandsSampled < MinHandsForTag {
		return tag
	}

	for _, r := range rules {
		if r.matches(stats) {
			tag.Archetype = r.archetype
			tag.Exploitation = r.note
			return tag
		}
	}

	tag.Exploitation = unmatchedNote
	return tag
}

// TagAll tags a whole pool, preserving input order.
func (t *Tagger) TagAll(opponents []domain.OpponentRecord) []OpponentTag {
	tags := make([]OpponentTag, len(opponents))
	for i, opp := range opponents {
		tags[i] = t.Tag(opp)
	}
	return tags
}
