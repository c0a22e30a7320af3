package tagging

import (
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

func testTagger() *Tagger {
	return NewTagger(zerolog.Nop())
}

func opponent(vpip, pfr, af float64, hands int) domain.OpponentRecord {
	return domain.OpponentRecord{
		ID:           "opp-1",
		Name:         "villain",
		VPIP:         vpip,
		PFR:          pfr,
		AF:           af,
		WTSD:         28,
		HandsSampled: hands,
	}
}

func TestTagArchetypes(t *testing.T) {
	tagger := testTagger()

	tests := []struct {
		name string
		opp  domain.OpponentRecord
		want domain.Archetype
	}{
		{"rock tight", opponent(14, 11, 1.5, 500), domain.ArchetypeNit},
		{"solid regular", opponent(23, 19, 2.4, 500), domain.ArchetypeTAG},
		{"wide aggressive", opponent(32, 26, 3.1, 500), domain.ArchetypeLAG},
		{"passive caller", opponent(48, 8, 0.9, 500), domain.ArchetypeCallingStation},
		{"spewing raiser", opponent(55, 42, 4.0, 500), domain.ArchetypeManiac},
		{"loose but not raising enough for maniac", opponent(50, 20, 2.0, 500), domain.ArchetypeWhale},
		{"passive high-vpip resolves to station not whale", opponent(65, 5, 1.2, 500), domain.ArchetypeCallingStation},
		{"fresh opponent", opponent(65, 5, 1.2, MinHandsForTag-1), domain.ArchetypeUnknown},
		{"mixed profile falls through", opponent(30, 10, 1.0, 500), domain.ArchetypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := tagger.Tag(tt.opp)
			if tag.Archetype != tt.want {
				t.Errorf("Tag(VPIP=%v PFR=%v AF=%v) = %v, want %v",
					tt.opp.VPIP, tt.opp.PFR, tt.opp.AF, tag.Archetype, tt.want)
			}
			if tag.Exploitation == "" {
				t.Error("every tag should carry an exploitation note")
			}
		})
	}
}

func TestTagIsTotalAndDeterministic(t *testing.T) {
	tagger := testTagger()
	rng := rand.New(rand.NewPCG(1, 1))

	known := map[domain.Archetype]bool{
		domain.ArchetypeNit: true, domain.ArchetypeTAG: true, domain.ArchetypeLAG: true,
		domain.ArchetypeCallingStation: true, domain.ArchetypeManiac: true,
		domain.ArchetypeWhale: true, domain.ArchetypeUnknown: true,
	}

	for i := 0; i < 1000; i++ {
		opp := opponent(rng.Float64()*100, rng.Float64()*100, rng.Float64()*6, rng.IntN(1000))
		first := tagger.Tag(opp)
		second := tagger.Tag(opp)

		if !known[first.Archetype] {
			t.Fatalf("unknown archetype %q for %+v", first.Archetype, opp)
		}
		if first.Archetype != second.Archetype {
			t.Fatalf("tagging not deterministic for %+v: %v vs %v", opp, first.Archetype, second.Archetype)
		}
	}
}

func TestTagAllPreservesOrder(t *testing.T) {
	tagger := testTagger()

	pool := []domain.OpponentRecord{
		{ID: "a", VPIP: 14, PFR: 11, AF: 1.5, HandsSampled: 100},
		{ID: "b", VPIP: 55, PFR: 42, AF: 4.0, HandsSampled: 100},
	}

	tags := tagger.TagAll(pool)
	if len(tags) != 2 {
		t.Fatalf("TagAll returned %d tags, want 2", len(tags))
	}
	if tags[0].OpponentID != "a" || tags[1].OpponentID != "b" {
		t.Errorf("TagAll reordered results: %v", tags)
	}
	if tags[0].Archetype != domain.ArchetypeNit || tags[1].Archetype != domain.ArchetypeManiac {
		t.Errorf("unexpected archetypes: %v / %v", tags[0].Archetype, tags[1].Archetype)
	}
}
