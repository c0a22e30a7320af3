// Package population groups tracked opponents into player-style clusters.
// Stats are standardized, projected to two principal components for
// plotting, and clustered with seeded k-means; each cluster is labeled with
// the archetype nearest its centroid in raw stat units.
package population

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/railbird/internal/domain"
)

// ClusteringEngine discovers player-style groups in the opponent pool.
type ClusteringEngine struct {
	log zerolog.Logger
}

// NewClusteringEngine creates a new clustering engine.
func NewClusteringEngine(log zerolog.Logger) *ClusteringEngine {
	return &ClusteringEngine{
		log: log.With().Str("component", "population").Logger(),
	}
}

var featureNames = [featureCount]string{"vpip", "pfr", "af", "wtsd"}

// Cluster runs the full pipeline over the opponent pool. Opponents with
// fewer than MinHandsSampled hands are excluded up front. The same seed over
// the same pool produces identical assignments.
func (e *ClusteringEngine) Cluster(opponents []domain.OpponentRecord, opts Options) (*Result, error) {
	k := opts.K
	if k == 0 {
		k = DefaultK
	}
	if k < 2 || k > MaxK {
		return nil, &domain.InvalidParameterError{Param: "k", Reason: "must be between 2 and 8"}
	}

	usable := make([]domain.OpponentRecord, 0, len(opponents))
	for _, opp := range opponents {
		if opp.HandsSampled >= MinHandsSampled {
			usable = append(usable, opp)
		}
	}
	skipped := len(opponents) - len(usable)

	if len(usable) < k {
		return nil, &domain.InsufficientDataError{
			Op:       "population.cluster",
			Required: k,
			Actual:   len(usable),
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	raw := make([][featureCount]float64, len(usable))
	for i, opp := range usable {
		raw[i] = [featureCount]float64{opp.VPIP, opp.PFR, opp.AF, opp.WTSD}
	}

	means, stds, err := columnStats(raw)
	if err != nil {
		return nil, err
	}
	standardized := standardize(raw, means, stds)

	pc1, pc2, explained := e.principalComponents(standardized)

	assignments, centroids := kmeans(standardized, k, seed)

	clusters := e.buildClusters(usable, assignments, centroids, k, means, stds)

	points := make([]Point, len(usable))
	assignmentMap := make(map[string]int, len(usable))
	for i, opp := range usable {
		points[i] = Point{
			OpponentID: opp.ID,
			Name:       opp.Name,
			X:          project(standardized[i], pc1),
			Y:          project(standardized[i], pc2),
			Cluster:    assignments[i],
		}
		assignmentMap[opp.ID] = assignments[i]
	}

	result := &Result{
		Clusters:          clusters,
		Assignments:       assignmentMap,
		Points:            points,
		ExplainedVariance: explained,
		OpponentsUsed:     len(usable),
		OpponentsSkipped:  skipped,
		LowConfidence:     len(usable) < FullConfidenceMin,
		Seed:              seed,
	}

	e.log.Debug().
		Int("opponents", len(usable)).
		Int("skipped", skipped).
		Int("k", k).
		Bool("low_confidence", result.LowConfidence).
		Msg("Clustering complete")

	return result, nil
}

func (e *ClusteringEngine) buildClusters(
	usable []domain.OpponentRecord,
	assignments []int,
	centroids [][featureCount]float64,
	k int,
	means, stds [featureCount]float64,
) []Cluster {
	clusters := make([]Cluster, k)
	for ci := 0; ci < k; ci++ {
		rawCentroid := unstandardize(centroids[ci], means, stds)
		clusters[ci] = Cluster{
			Index:     ci,
			Archetype: nearestArchetype(rawCentroid),
			Centroid: CentroidStats{
				VPIP: rawCentroid[0],
				PFR:  rawCentroid[1],
				AF:   rawCentroid[2],
				WTSD: rawCentroid[3],
			},
			Members: []string{},
		}
	}
	for i, opp := range usable {
		ci := assignments[i]
		clusters[ci].Members = append(clusters[ci].Members, opp.ID)
		clusters[ci].Size++
	}
	return clusters
}

func columnStats(raw [][featureCount]float64) (means, stds [featureCount]float64, err error) {
	col := make([]float64, len(raw))
	for f := 0; f < featureCount; f++ {
		for i := range raw {
			col[i] = raw[i][f]
		}
		means[f] = stat.Mean(col, nil)
		stds[f] = stat.StdDev(col, nil)
		if stds[f] == 0 {
			return means, stds, &domain.DegenerateInputError{
				Op:     "population.cluster",
				Reason: "constant " + featureNames[f] + " column",
			}
		}
	}
	return means, stds, nil
}

func standardize(raw [][featureCount]float64, means, stds [featureCount]float64) [][featureCount]float64 {
	out := make([][featureCount]float64, len(raw))
	for i := range raw {
		for f := 0; f < featureCount; f++ {
			out[i][f] = (raw[i][f] - means[f]) / stds[f]
		}
	}
	return out
}

func unstandardize(v, means, stds [featureCount]float64) [featureCount]float64 {
	var out [featureCount]float64
	for f := 0; f < featureCount; f++ {
		out[f] = v[f]*stds[f] + means[f]
	}
	return out
}

// principalComponents returns the top two eigenvectors of the covariance
// matrix of the standardized data, plus the fraction of variance each
// explains.
func (e *ClusteringEngine) principalComponents(data [][featureCount]float64) (pc1, pc2 [featureCount]float64, explained [2]float64) {
	flat := make([]float64, len(data)*featureCount)
	for i, row := range data {
		copy(flat[i*featureCount:], row[:])
	}
	m := mat.NewDense(len(data), featureCount, flat)

	cov := mat.NewSymDense(featureCount, nil)
	stat.CovarianceMatrix(cov, m, nil)

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		// Covariance of standardized finite data always factorizes; fall
		// back to axis-aligned components if it somehow does not.
		e.log.Warn().Msg("Eigendecomposition failed, using axis-aligned components")
		pc1[0] = 1
		pc2[1] = 1
		return pc1, pc2, explained
	}

	values := eig.Values(nil) // ascending order
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	total := 0.0
	for _, v := range values {
		total += v
	}

	last := featureCount - 1
	for f := 0; f < featureCount; f++ {
		pc1[f] = vectors.At(f, last)
		pc2[f] = vectors.At(f, last-1)
	}
	if total > 0 {
		explained[0] = values[last] / total
		explained[1] = values[last-1] / total
	}
	return pc1, pc2, explained
}

func project(row, axis [featureCount]float64) float64 {
	sum := 0.0
	for f := 0; f < featureCount; f++ {
		sum += row[f] * axis[f]
	}
	return sum
}

// kmeans runs Lloyd's algorithm with k-means++ style seeding. Ties in
// nearest-centroid assignment resolve to the lowest cluster index.
func kmeans(data [][featureCount]float64, k int, seed uint64) ([]int, [][featureCount]float64) {
	rng := rand.New(rand.NewPCG(seed, seed))
	centroids := seedCentroids(data, k, rng)

	assignments := make([]int, len(data))
	for iter := 0; iter < MaxKMeansIters; iter++ {
		changed := false
		for i, row := range data {
			best := 0
			bestDist := distSq(row, centroids[0])
			for ci := 1; ci < k; ci++ {
				if d := distSq(row, centroids[ci]); d < bestDist {
					best = ci
					bestDist = d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][featureCount]float64, k)
		counts := make([]int, k)
		for i, row := range data {
			ci := assignments[i]
			counts[ci]++
			for f := 0; f < featureCount; f++ {
				sums[ci][f] += row[f]
			}
		}
		for ci := 0; ci < k; ci++ {
			if counts[ci] == 0 {
				// Empty cluster keeps its centroid; a later iteration may
				// repopulate it.
				continue
			}
			for f := 0; f < featureCount; f++ {
				centroids[ci][f] = sums[ci][f] / float64(counts[ci])
			}
		}
	}
	return assignments, centroids
}

// seedCentroids picks initial centroids with probability proportional to
// squared distance from the already-chosen set.
func seedCentroids(data [][featureCount]float64, k int, rng *rand.Rand) [][featureCount]float64 {
	centroids := make([][featureCount]float64, 0, k)
	centroids = append(centroids, data[rng.IntN(len(data))])

	dists := make([]float64, len(data))
	for len(centroids) < k {
		total := 0.0
		for i, row := range data {
			d := math.Inf(1)
			for _, c := range centroids {
				if dd := distSq(row, c); dd < d {
					d = dd
				}
			}
			dists[i] = d
			total += d
		}
		if total == 0 {
			// All remaining points coincide with a centroid.
			centroids = append(centroids, data[rng.IntN(len(data))])
			continue
		}
		target := rng.Float64() * total
		acc := 0.0
		chosen := len(data) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, data[chosen])
	}
	return centroids
}

func distSq(a, b [featureCount]float64) float64 {
	sum := 0.0
	for f := 0; f < featureCount; f++ {
		d := a[f] - b[f]
		sum += d * d
	}
	return sum
}

// nearestArchetype labels a centroid with the closest canonical profile,
// measured in raw stat units (VPIP/PFR points, AF, WTSD points). Slice
// order breaks ties.
func nearestArchetype(rawCentroid [featureCount]float64) domain.Archetype {
	best := archetypeReferences[0].Archetype
	bestDist := math.Inf(1)
	for _, ref := range archetypeReferences {
		refVec := [featureCount]float64{ref.VPIP, ref.PFR, ref.AF, ref.WTSD}
		if d := distSq(rawCentroid, refVec); d < bestDist {
			best = ref.Archetype
			bestDist = d
		}
	}
	return best
}
