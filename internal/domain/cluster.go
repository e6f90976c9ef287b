package domain

// A spatial grouping of stops sharing a coarse grid cell, used as a
// density proxy. Rank 0 is the densest cluster.
type Cluster struct {
	CellKey string
	Rank    int
	Stops   []GeocodedStop
}
