package ports

import (
	"context"

	"route-planner-service/internal/domain"
)

// Contract for retrieving road geometry along an ordered coordinate list.
type RouteGeometryProvider interface {
	// Return the driving geometry visiting the coordinates in order.
	Directions(ctx context.Context, coords []domain.Coordinates) (domain.RouteGeometry, error)
}
