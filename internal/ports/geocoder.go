package ports

import (
	"context"

	"route-planner-service/internal/domain"
)

// A single geocoding candidate: resolved coordinates plus the
// provider's formatted address label.
type GeocodeCandidate struct {
	Coords domain.Coordinates
	Label  string
}

// Contract for resolving a free-form address to coordinates.
type Geocoder interface {
	// Return candidate matches for the address, best first. An empty
	// slice with a nil error means the provider found nothing.
	Search(ctx context.Context, address string) ([]GeocodeCandidate, error)
}
