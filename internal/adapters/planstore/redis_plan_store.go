package planstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

// RedisPlanStore implements the PlanStore port over Redis. Plans are
// stored as JSON under a merchant+driver key plus a driver index key,
// so re-saving for the same pair overwrites in place (idempotent
// re-save) and the driver's latest plan is a single GET.
type RedisPlanStore struct {
	rdb *redis.Client
}

func NewRedisPlanStore(rdb *redis.Client) *RedisPlanStore {
	return &RedisPlanStore{rdb: rdb}
}

func planKey(merchantID, driverID string) string {
	return fmt.Sprintf("routeplan:%s:%s", merchantID, driverID)
}

func driverKey(driverID string) string {
	return "driverplan:" + driverID
}

// SavePlan persists the plan under both keys in one pipeline.
func (s *RedisPlanStore) SavePlan(ctx context.Context, plan *domain.RoutePlan) error {
	if plan == nil {
		return errors.New("plan store: plan is nil")
	}
	if plan.MerchantID == "" || plan.DriverID == "" {
		return errors.New("plan store: merchant and driver IDs are required")
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("plan store: marshal plan: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, planKey(plan.MerchantID, plan.DriverID), data, 0)
	pipe.Set(ctx, driverKey(plan.DriverID), data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("plan store: save plan merchant=%s driver=%s: %w", plan.MerchantID, plan.DriverID, err)
	}

	return nil
}

// DriverPlan returns the most recently persisted plan for the driver.
func (s *RedisPlanStore) DriverPlan(ctx context.Context, driverID string) (*domain.RoutePlan, error) {
	data, err := s.rdb.Get(ctx, driverKey(driverID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("plan store: get driver plan %s: %w", driverID, err)
	}

	var plan domain.RoutePlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("plan store: unmarshal driver plan %s: %w", driverID, err)
	}

	return &plan, nil
}
