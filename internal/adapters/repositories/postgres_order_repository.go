package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-planner-service/internal/domain"
)

// Postgres-backed implementation of the OrderRepository port.
type PostgresOrderRepository struct{ DB *sql.DB }

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

// Return the merchant's orders eligible for planning, oldest first.
func (r *PostgresOrderRepository) PendingOrders(ctx context.Context, merchantID string) ([]*domain.Order, error) {
	if r.DB == nil {
		return nil, errors.New("order repository: DB is nil")
	}

	query := `
	SELECT
		order_id,
		merchant_id,
		COALESCE(address, ''),
		COALESCE(street, ''),
		COALESCE(city, ''),
		COALESCE(state, ''),
		COALESCE(pincode, ''),
		status
	FROM orders
	WHERE merchant_id = $1
	  AND status IN ('pending', 'confirmed', 'packed')
	ORDER BY created_at, order_id;
	`
	rows, err := r.DB.QueryContext(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("pending orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, 64)
	for rows.Next() {
		o := &domain.Order{}
		err := rows.Scan(
			&o.OrderID,
			&o.MerchantID,
			&o.Address.Raw,
			&o.Address.Street,
			&o.Address.City,
			&o.Address.State,
			&o.Address.Pincode,
			&o.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("pending orders: scan row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending orders: row iteration: %w", err)
	}

	return orders, nil
}
