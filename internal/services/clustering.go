package services

import (
	"fmt"
	"math"
	"sort"

	"route-planner-service/internal/domain"
)

// Rough conversion used for grid sizing: one degree of latitude is
// about 111 km. Good enough for coarse density cells.
const kmPerDegree = 111.0

// DefaultClusterCellKm is the grid cell size used when the caller does
// not specify one.
const DefaultClusterCellKm = 2.0

// ClusterByDensity buckets stops into square grid cells of cellKm per
// side and returns the cells as clusters ranked by descending member
// count. Ties keep first-encountered order (stable sort), so the
// output is deterministic for a fixed input order and cell size.
func ClusterByDensity(stops []domain.GeocodedStop, cellKm float64) []domain.Cluster {
	if cellKm <= 0 {
		cellKm = DefaultClusterCellKm
	}
	cellDegrees := cellKm / kmPerDegree

	byCell := make(map[string][]domain.GeocodedStop)
	keyOrder := make([]string, 0, len(stops))

	for _, stop := range stops {
		key := cellKey(stop.Coords, cellDegrees)
		if _, ok := byCell[key]; !ok {
			keyOrder = append(keyOrder, key)
		}
		byCell[key] = append(byCell[key], stop)
	}

	clusters := make([]domain.Cluster, 0, len(keyOrder))
	for _, key := range keyOrder {
		clusters = append(clusters, domain.Cluster{
			CellKey: key,
			Stops:   byCell[key],
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].Stops) > len(clusters[j].Stops)
	})

	for i := range clusters {
		clusters[i].Rank = i
	}
	return clusters
}

func cellKey(c domain.Coordinates, cellDegrees float64) string {
	return fmt.Sprintf("%d:%d",
		int(math.Floor(c.Lat/cellDegrees)),
		int(math.Floor(c.Lng/cellDegrees)),
	)
}
