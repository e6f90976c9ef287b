package ports

import (
	"context"

	"route-planner-service/internal/domain"
)

// Contract for the external stop-ordering optimizer.
type WaypointOptimizer interface {
	// Return the visiting order of stops as an index array into the
	// given stop list. The provider may use 0- or 1-based indices;
	// callers normalize.
	OptimizeOrder(ctx context.Context, origin domain.Coordinates, stops []domain.Coordinates) ([]int, error)
}
