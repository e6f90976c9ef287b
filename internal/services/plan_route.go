package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
)

// ErrNoPendingOrders is surfaced to the caller when planning is
// requested with an empty order set. Callers reject the request before
// orchestration; the planner guards anyway.
var ErrNoPendingOrders = errors.New("no pending orders to plan")

// Liters of fuel per km at the assumed fleet average of 12 km/l.
const kmPerLiter = 12.0

// PlannerConfig carries the merchant anchor, stage timeouts, and pool
// sizes. API keys and base URLs live with the provider adapters, not
// here; the planner sees only ports.
type PlannerConfig struct {
	Anchor          domain.Coordinates
	ClusterCellKm   float64
	GeocodeTimeout  time.Duration
	OptimizeTimeout time.Duration
	RouteTimeout    time.Duration
	TrafficTimeout  time.Duration
	GeocodeWorkers  int
	TrafficStops    int
}

func (c *PlannerConfig) applyDefaults() {
	if c.ClusterCellKm <= 0 {
		c.ClusterCellKm = DefaultClusterCellKm
	}
	if c.GeocodeTimeout <= 0 {
		c.GeocodeTimeout = 5 * time.Second
	}
	if c.OptimizeTimeout <= 0 {
		c.OptimizeTimeout = 10 * time.Second
	}
	if c.RouteTimeout <= 0 {
		c.RouteTimeout = 10 * time.Second
	}
	if c.TrafficTimeout <= 0 {
		c.TrafficTimeout = 3 * time.Second
	}
	if c.GeocodeWorkers <= 0 {
		c.GeocodeWorkers = 5
	}
	if c.TrafficStops <= 0 {
		c.TrafficStops = 5
	}
}

// Planner runs the daily route pipeline: festivals, geocoding,
// density clustering, schedule assignment, waypoint sequencing, and
// geometry/traffic enrichment. Providers are ports so the planner is
// testable with fakes; every provider failure degrades locally and
// never fails the pipeline.
type Planner struct {
	geocoder  ports.Geocoder
	optimizer ports.WaypointOptimizer
	geometry  ports.RouteGeometryProvider
	traffic   ports.TrafficFlowProvider
	cfg       PlannerConfig
}

func NewPlanner(
	geocoder ports.Geocoder,
	optimizer ports.WaypointOptimizer,
	geometry ports.RouteGeometryProvider,
	traffic ports.TrafficFlowProvider,
	cfg PlannerConfig,
) *Planner {
	cfg.applyDefaults()
	return &Planner{
		geocoder:  geocoder,
		optimizer: optimizer,
		geometry:  geometry,
		traffic:   traffic,
		cfg:       cfg,
	}
}

// PlanDailyRoute computes the RoutePlan for one driver run. Every
// order appears exactly once in the result; stop numbers are a
// permutation of 1..N. The only error it returns is
// ErrNoPendingOrders.
func (p *Planner) PlanDailyRoute(
	ctx context.Context,
	merchantID string,
	driverID string,
	orders []*domain.Order,
	now time.Time,
) (_ *domain.RoutePlan, err error) {
	defer obs.Time(ctx, "planner.PlanDailyRoute")(&err)

	if len(orders) == 0 {
		return nil, ErrNoPendingOrders
	}

	festivals := NearbyFestivals(now)

	stops := ResolveStops(ctx, orders, p.cfg.Anchor, p.geocoder, p.cfg.GeocodeTimeout, p.cfg.GeocodeWorkers)
	clusters := ClusterByDensity(stops, p.cfg.ClusterCellKm)
	scheduled := AssignSchedule(clusters, festivals)
	sequenced := SequenceStops(ctx, p.optimizer, p.cfg.Anchor, scheduled, p.cfg.OptimizeTimeout)

	geometry := p.fetchGeometry(ctx, sequenced)
	routeStops := attachTraffic(ctx, p.traffic, sequenced, p.cfg.TrafficStops, p.cfg.TrafficTimeout)

	for i := range routeStops {
		routeStops[i].EstimatedTime = estimatedClock(i, len(routeStops))
	}

	plan := &domain.RoutePlan{
		PlanID:      uuid.New().String(),
		MerchantID:  merchantID,
		DriverID:    driverID,
		GeneratedAt: now,
		Stops:       routeStops,
		Geometry:    geometry,
	}

	for _, f := range festivals {
		plan.ActiveFestivals = append(plan.ActiveFestivals, f.Name)
	}

	if geometry != nil {
		plan.DistanceKm = round1(geometry.DistanceMeters / 1000)
		plan.DurationMin = int(math.Round(geometry.DurationSeconds / 60))
		plan.FuelLiters = round1(plan.DistanceKm / kmPerLiter)
	}

	return plan, nil
}

// fetchGeometry asks the routing provider for road geometry along
// anchor plus all stops in sequence. Missing geometry is fine; the
// plan just ships without a polyline.
func (p *Planner) fetchGeometry(ctx context.Context, stops []domain.SequencedStop) *domain.RouteGeometry {
	if p.geometry == nil || len(stops) == 0 {
		return nil
	}

	coords := make([]domain.Coordinates, 0, len(stops)+1)
	coords = append(coords, p.cfg.Anchor)
	for _, s := range stops {
		coords = append(coords, s.Coords)
	}

	return withFallback(ctx, p.cfg.RouteTimeout,
		func(cctx context.Context) (*domain.RouteGeometry, error) {
			g, err := p.geometry.Directions(cctx, coords)
			if err != nil {
				return nil, err
			}
			return &g, nil
		},
		func(err error) *domain.RouteGeometry {
			log.Printf("route geometry fallback err=%v", err)
			return nil
		},
	)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
