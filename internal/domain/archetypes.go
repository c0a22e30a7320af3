package domain

// Archetype is a named player style. The tagger assigns one per opponent
// from threshold rules; the clustering engine labels whole clusters with
// the archetype nearest the cluster centroid.
type Archetype string

const (
	ArchetypeNit            Archetype = "nit"
	ArchetypeTAG            Archetype = "tag"
	ArchetypeLAG            Archetype = "lag"
	ArchetypeCallingStation Archetype = "calling_station"
	ArchetypeManiac         Archetype = "maniac"
	ArchetypeWhale          Archetype = "whale"
	ArchetypeUnknown        Archetype = "unknown"
)
