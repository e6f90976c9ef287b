package ports

import (
	"context"

	"route-planner-service/internal/domain"
)

// Port: a boundary for reading pending orders from the upstream
// order-management data source.
type OrderRepository interface {
	// Return the merchant's orders eligible for planning
	// (statuses pending, confirmed, packed).
	PendingOrders(ctx context.Context, merchantID string) ([]*domain.Order, error)
}
