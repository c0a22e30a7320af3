package population

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/domain"
)

func testEngine() *ClusteringEngine {
	return NewClusteringEngine(zerolog.Nop())
}

// opponentPool generates a pool with four distinct style groups plus noise,
// deterministically from the seed.
func opponentPool(perGroup int, seed uint64) []domain.OpponentRecord {
	rng := rand.New(rand.NewPCG(seed, seed))

	groups := []struct {
		prefix string
		vpip   float64
		pfr    float64
		af     float64
		wtsd   float64
	}{
		{"nit", 14, 11, 1.4, 21},
		{"tag", 23, 19, 2.6, 27},
		{"station", 47, 7, 0.7, 39},
		{"maniac", 56, 42, 4.2, 31},
	}

	var pool []domain.OpponentRecord
	for _, g := range groups {
		for i := 0; i < perGroup; i++ {
			pool = append(pool, domain.OpponentRecord{
				ID:           fmt.Sprintf("%s-%d", g.prefix, i),
				Name:         fmt.Sprintf("%s %d", g.prefix, i),
				VPIP:         g.vpip + rng.Float64()*4 - 2,
				PFR:          g.pfr + rng.Float64()*3 - 1.5,
				AF:           g.af + rng.Float64()*0.4 - 0.2,
				WTSD:         g.wtsd + rng.Float64()*4 - 2,
				HandsSampled: 100 + rng.IntN(400),
				UpdatedAt:    time.Now(),
			})
		}
	}
	return pool
}

func TestClusterTotalityAndReproducibility(t *testing.T) {
	engine := testEngine()
	pool := opponentPool(20, 1) // 80 opponents, 4 clean groups

	opts := Options{Seed: 42}
	first, err := engine.Cluster(pool, opts)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	second, err := engine.Cluster(pool, opts)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	// Every usable opponent lands in exactly one cluster.
	if len(first.Assignments) != len(pool) {
		t.Errorf("assignments cover %d opponents, want %d", len(first.Assignments), len(pool))
	}
	totalMembers := 0
	for _, c := range first.Clusters {
		totalMembers += c.Size
		if c.Size != len(c.Members) {
			t.Errorf("cluster %d Size=%d but %d members", c.Index, c.Size, len(c.Members))
		}
	}
	if totalMembers != len(pool) {
		t.Errorf("cluster sizes sum to %d, want %d", totalMembers, len(pool))
	}

	// Same seed, same pool, identical assignments.
	for id, ci := range first.Assignments {
		if second.Assignments[id] != ci {
			t.Fatalf("assignment for %s differs between runs: %d vs %d", id, ci, second.Assignments[id])
		}
	}
}

func TestClusterSeparatesCleanGroups(t *testing.T) {
	engine := testEngine()
	pool := opponentPool(20, 3)

	result, err := engine.Cluster(pool, Options{Seed: 7})
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	// With well-separated synthetic groups, members of the same group
	// should share a cluster.
	groupCluster := make(map[string]int)
	for _, p := range result.Points {
		prefix := p.OpponentID[:3]
		if prev, seen := groupCluster[prefix]; seen && prev != p.Cluster {
			t.Fatalf("group %q split across clusters %d and %d", prefix, prev, p.Cluster)
		}
		groupCluster[prefix] = p.Cluster
	}

	// The station group's cluster should be labeled Calling Station.
	stationCluster := groupCluster["sta"]
	if got := result.Clusters[stationCluster].Archetype; got != domain.ArchetypeCallingStation {
		t.Errorf("station cluster labeled %v, want %v", got, domain.ArchetypeCallingStation)
	}
	maniacCluster := groupCluster["man"]
	if got := result.Clusters[maniacCluster].Archetype; got != domain.ArchetypeManiac {
		t.Errorf("maniac cluster labeled %v, want %v", got, domain.ArchetypeManiac)
	}
}

func TestClusterFiltersSmallSamples(t *testing.T) {
	engine := testEngine()
	pool := opponentPool(15, 5)

	// Opponents below the hand threshold must not appear anywhere.
	pool = append(pool, domain.OpponentRecord{
		ID: "fresh-1", Name: "fresh", VPIP: 30, PFR: 20, AF: 2, WTSD: 25,
		HandsSampled: MinHandsSampled - 1,
	})

	result, err := engine.Cluster(pool, Options{Seed: 9})
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if result.OpponentsSkipped != 1 {
		t.Errorf("OpponentsSkipped = %d, want 1", result.OpponentsSkipped)
	}
	if _, present := result.Assignments["fresh-1"]; present {
		t.Error("under-sampled opponent should be excluded from assignments")
	}
}

func TestClusterLowConfidenceFlag(t *testing.T) {
	engine := testEngine()
	pool := opponentPool(3, 2) // 12 opponents: clusterable but thin

	result, err := engine.Cluster(pool, Options{Seed: 4})
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if !result.LowConfidence {
		t.Errorf("%d opponents should set LowConfidence", result.OpponentsUsed)
	}
}

func TestClusterInsufficientData(t *testing.T) {
	engine := testEngine()
	pool := opponentPool(3, 2)[:3] // fewer usable opponents than k

	_, err := engine.Cluster(pool, Options{Seed: 1})
	var insufficientErr *domain.InsufficientDataError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestClusterDegenerateColumn(t *testing.T) {
	engine := testEngine()

	pool := make([]domain.OpponentRecord, 10)
	for i := range pool {
		pool[i] = domain.OpponentRecord{
			ID:           fmt.Sprintf("opp-%d", i),
			VPIP:         25, // constant column
			PFR:          float64(5 + i),
			AF:           1 + float64(i)*0.3,
			WTSD:         20 + float64(i),
			HandsSampled: 200,
		}
	}

	_, err := engine.Cluster(pool, Options{Seed: 1})
	var degenerateErr *domain.DegenerateInputError
	if !errors.As(err, &degenerateErr) {
		t.Fatalf("expected DegenerateInputError, got %v", err)
	}
}

func TestClusterInvalidK(t *testing.T) {
	engine := testEngine()
	pool := opponentPool(20, 1)

	for _, k := range []int{1, MaxK + 1, -3} {
		_, err := engine.Cluster(pool, Options{K: k, Seed: 1})
		var invalidErr *domain.InvalidParameterError
		if !errors.As(err, &invalidErr) {
			t.Errorf("k=%d: expected InvalidParameterError, got %v", k, err)
		}
	}
}

func TestClusterExplainedVarianceBounds(t *testing.T) {
	engine := testEngine()
	pool := opponentPool(20, 8)

	result, err := engine.Cluster(pool, Options{Seed: 11})
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	sum := result.ExplainedVariance[0] + result.ExplainedVariance[1]
	if sum <= 0 || sum > 1.0000001 {
		t.Errorf("explained variance sum = %v, want in (0, 1]", sum)
	}
	if result.ExplainedVariance[0] < result.ExplainedVariance[1] {
		t.Errorf("PC1 should explain at least as much as PC2: %v", result.ExplainedVariance)
	}
}

func TestNearestArchetypeUsesRawStatUnits(t *testing.T) {
	// A low-AF centroid near the LAG profile in raw units. Standardizing
	// the distance would inflate the small AF gap past the large VPIP and
	// WTSD gaps and mislabel this as a calling station.
	centroid := [featureCount]float64{31, 22, 0.9, 29}

	if got := nearestArchetype(centroid); got != domain.ArchetypeLAG {
		t.Errorf("nearestArchetype(%v) = %v, want %v", centroid, got, domain.ArchetypeLAG)
	}
}

func TestNearestArchetypeReferencePoints(t *testing.T) {
	// Every reference profile labels as itself.
	for _, ref := range archetypeReferences {
		centroid := [featureCount]float64{ref.VPIP, ref.PFR, ref.AF, ref.WTSD}
		if got := nearestArchetype(centroid); got != ref.Archetype {
			t.Errorf("nearestArchetype(%v) = %v, want %v", centroid, got, ref.Archetype)
		}
	}
}
