package domain

import "time"

// Road geometry returned by the routing provider. Polyline points are
// ordered origin-first in lat/lng convention.
type RouteGeometry struct {
	Polyline        []Coordinates
	DistanceMeters  float64
	DurationSeconds float64
}

// The planned daily route for a single driver. A RoutePlan is the
// output of the planning pipeline and describes the ordered sequence
// of delivery stops with optional geometry and aggregate metrics.
// It is immutable planning data and contains no side effects.
type RoutePlan struct {
	PlanID          string
	MerchantID      string
	DriverID        string
	GeneratedAt     time.Time
	Stops           []RouteStop
	Geometry        *RouteGeometry
	ActiveFestivals []string
	DistanceKm      float64
	DurationMin     int
	FuelLiters      float64
}
