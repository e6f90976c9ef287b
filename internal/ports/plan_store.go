package ports

import (
	"context"
	"errors"

	"route-planner-service/internal/domain"
)

// Returned by DriverPlan when no plan has been persisted for the driver.
var ErrPlanNotFound = errors.New("route plan not found")

// Port: persistence boundary for finished route plans.
type PlanStore interface {
	// Persist a plan keyed by merchant and driver. Re-saving for the
	// same pair overwrites the previous plan (idempotent).
	SavePlan(ctx context.Context, plan *domain.RoutePlan) error

	// Return the most recently persisted plan for the driver, or
	// ErrPlanNotFound.
	DriverPlan(ctx context.Context, driverID string) (*domain.RoutePlan, error)
}
