package population

import "github.com/aristath/railbird/internal/domain"

// Constants for clustering configuration
const (
	DefaultK          = 4
	MaxK              = 8
	MinHandsSampled   = 30 // opponents below this are excluded from clustering
	FullConfidenceMin = 50 // fewer usable opponents than this sets LowConfidence
	MaxKMeansIters    = 100
)

// featureCount is the dimensionality of the clustering space:
// VPIP, PFR, AF, WTSD.
const featureCount = 4

// archetypeReference is a canonical stat profile for a player style, in raw
// stat units. Centroids are labeled with the nearest reference; ties resolve
// in slice order.
type archetypeReference struct {
	Archetype domain.Archetype
	VPIP      float64
	PFR       float64
	AF        float64
	WTSD      float64
}

// archetypeReferences is ordered by tie priority.
var archetypeReferences = []archetypeReference{
	{domain.ArchetypeNit, 15, 12, 1.5, 22},
	{domain.ArchetypeTAG, 22, 18, 2.5, 26},
	{domain.ArchetypeLAG, 30, 24, 3.0, 28},
	{domain.ArchetypeCallingStation, 45, 8, 0.8, 38},
	{domain.ArchetypeManiac, 55, 40, 4.0, 30},
}

// Options configures a clustering run. Zero values select defaults.
type Options struct {
	K    int    `json:"k,omitempty"`
	Seed uint64 `json:"seed,omitempty"` // 0 = nondeterministic
}

// Point is an opponent's position in the top-2 principal component plane,
// for scatter plotting.
type Point struct {
	OpponentID string  `json:"opponent_id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Cluster    int     `json:"cluster"`
}

// Cluster is one discovered player group.
type Cluster struct {
	Index     int              `json:"index"`
	Archetype domain.Archetype `json:"archetype"`
	Centroid  CentroidStats    `json:"centroid"` // raw stat units
	Members   []string         `json:"members"`  // opponent IDs
	Size      int              `json:"size"`
}

// CentroidStats is a cluster center expressed in raw stat units.
type CentroidStats struct {
	VPIP float64 `json:"vpip"`
	PFR  float64 `json:"pfr"`
	AF   float64 `json:"af"`
	WTSD float64 `json:"wtsd"`
}

// Result holds a full clustering run: assignments, labeled clusters, and
// the PCA projection for plotting.
type Result struct {
	Clusters          []Cluster      `json:"clusters"`
	Assignments       map[string]int `json:"assignments"` // opponent ID -> cluster index
	Points            []Point        `json:"points"`
	ExplainedVariance [2]float64     `json:"explained_variance"` // fraction per component
	OpponentsUsed     int            `json:"opponents_used"`
	OpponentsSkipped  int            `json:"opponents_skipped"` // below MinHandsSampled
	LowConfidence     bool           `json:"low_confidence"`
	Seed              uint64         `json:"seed"`
}
