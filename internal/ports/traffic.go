package ports

import (
	"context"

	"route-planner-service/internal/domain"
)

// A point-in-time traffic flow sample at one coordinate.
type FlowSample struct {
	CurrentSpeedKmh  float64
	FreeFlowSpeedKmh float64
	Confidence       float64
}

// Contract for per-coordinate live traffic lookups.
type TrafficFlowProvider interface {
	FlowAt(ctx context.Context, c domain.Coordinates) (FlowSample, error)
}
