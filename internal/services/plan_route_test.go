package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

type fakeGeocoder struct {
	byAddress map[string][]ports.GeocodeCandidate
	errFor    map[string]error

	mu    sync.Mutex
	calls int
}

func (f *fakeGeocoder) Search(ctx context.Context, address string) ([]ports.GeocodeCandidate, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err, ok := f.errFor[address]; ok {
		return nil, err
	}
	return f.byAddress[address], nil
}

type fakeGeometry struct {
	geom   domain.RouteGeometry
	err    error
	coords []domain.Coordinates
}

func (f *fakeGeometry) Directions(ctx context.Context, coords []domain.Coordinates) (domain.RouteGeometry, error) {
	f.coords = coords
	if f.err != nil {
		return domain.RouteGeometry{}, f.err
	}
	return f.geom, nil
}

func orderWithAddress(id, raw string) *domain.Order {
	return &domain.Order{
		OrderID:    id,
		MerchantID: "m1",
		Address:    domain.Address{Raw: raw},
		Status:     domain.StatusPending,
	}
}

var quietDay = time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)

func testPlanner(g ports.Geocoder, o ports.WaypointOptimizer, geom ports.RouteGeometryProvider, tr ports.TrafficFlowProvider) *Planner {
	return NewPlanner(g, o, geom, tr, PlannerConfig{
		Anchor: domain.Coordinates{Lat: 19.0760, Lng: 72.8777},
	})
}

func TestPlanDailyRouteEmptyOrders(t *testing.T) {
	planner := testPlanner(&fakeGeocoder{}, &fakeOptimizer{}, nil, nil)

	_, err := planner.PlanDailyRoute(context.Background(), "m1", "d1", nil, quietDay)
	if !errors.Is(err, ErrNoPendingOrders) {
		t.Fatalf("err = %v, want ErrNoPendingOrders", err)
	}
}

func TestPlanDailyRouteContainsEveryOrderOnce(t *testing.T) {
	geocoder := &fakeGeocoder{byAddress: map[string][]ports.GeocodeCandidate{
		"Addr A": {{Coords: domain.Coordinates{Lat: 19.10, Lng: 72.88}, Label: "A, Mumbai"}},
		"Addr B": {{Coords: domain.Coordinates{Lat: 19.20, Lng: 72.95}, Label: "B, Mumbai"}},
		"Addr C": {{Coords: domain.Coordinates{Lat: 19.30, Lng: 73.10}, Label: "C, Mumbai"}},
		"Addr D": {{Coords: domain.Coordinates{Lat: 19.40, Lng: 73.20}, Label: "D, Mumbai"}},
	}}
	orders := []*domain.Order{
		orderWithAddress("o1", "Addr A"),
		orderWithAddress("o2", "Addr B"),
		orderWithAddress("o3", "Addr C"),
		orderWithAddress("o4", "Addr D"),
	}

	planner := testPlanner(geocoder, &fakeOptimizer{order: []int{3, 1, 0, 2}}, nil, nil)

	plan, err := planner.PlanDailyRoute(context.Background(), "m1", "d1", orders, quietDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Stops) != len(orders) {
		t.Fatalf("plan has %d stops, want %d", len(plan.Stops), len(orders))
	}

	seenOrders := map[string]bool{}
	seenNumbers := map[int]bool{}
	for _, s := range plan.Stops {
		if seenOrders[s.Order.OrderID] {
			t.Fatalf("order %s appears twice", s.Order.OrderID)
		}
		seenOrders[s.Order.OrderID] = true

		if s.StopNumber < 1 || s.StopNumber > len(orders) || seenNumbers[s.StopNumber] {
			t.Fatalf("bad stop number %d", s.StopNumber)
		}
		seenNumbers[s.StopNumber] = true
	}
	for _, o := range orders {
		if !seenOrders[o.OrderID] {
			t.Fatalf("order %s missing from plan", o.OrderID)
		}
	}

	if plan.PlanID == "" {
		t.Fatal("plan has no ID")
	}
}

func TestPlanDailyRouteAllAddressesMissing(t *testing.T) {
	orders := []*domain.Order{
		orderWithAddress("o1", ""),
		orderWithAddress("o2", "   "),
		orderWithAddress("o3", ""),
	}
	geocoder := &fakeGeocoder{}

	// Oversized cells keep the jittered coordinates in one cluster
	// regardless of where the anchor sits inside its cell.
	planner := NewPlanner(geocoder, &fakeOptimizer{err: errors.New("down")}, nil, nil, PlannerConfig{
		Anchor:        domain.Coordinates{Lat: 19.0760, Lng: 72.8777},
		ClusterCellKm: 500,
	})

	plan, err := planner.PlanDailyRoute(context.Background(), "m1", "d1", orders, quietDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if geocoder.calls != 0 {
		t.Fatalf("geocoder called %d times for empty addresses", geocoder.calls)
	}

	for _, s := range plan.Stops {
		if !s.Approximate {
			t.Fatalf("stop %s not marked approximate", s.Order.OrderID)
		}
		if s.GeocodedAddress != "Near merchant location" {
			t.Fatalf("stop %s address = %q", s.Order.OrderID, s.GeocodedAddress)
		}
		if math.Abs(s.Coords.Lat-19.0760) > 0.01 || math.Abs(s.Coords.Lng-72.8777) > 0.01 {
			t.Fatalf("stop %s jitter out of bounds: %+v", s.Order.OrderID, s.Coords)
		}
		if s.Priority != domain.PriorityHigh || s.TimeSlot != domain.SlotMorning {
			t.Fatalf("stop %s = %s/%s, want High/%s", s.Order.OrderID, s.Priority, s.TimeSlot, domain.SlotMorning)
		}
	}
}

func TestPlanDailyRouteMixedGeocodeFailure(t *testing.T) {
	geocoder := &fakeGeocoder{
		byAddress: map[string][]ports.GeocodeCandidate{
			"Addr A": {{Coords: domain.Coordinates{Lat: 19.21, Lng: 72.91}, Label: "A, Mumbai, MH"}},
		},
		errFor: map[string]error{
			"Addr B": context.DeadlineExceeded,
		},
	}
	orders := []*domain.Order{
		orderWithAddress("o1", "Addr A"),
		orderWithAddress("o2", "Addr B"),
	}

	planner := testPlanner(geocoder, &fakeOptimizer{err: errors.New("down")}, nil, nil)

	plan, err := planner.PlanDailyRoute(context.Background(), "m1", "d1", orders, quietDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := map[string]domain.RouteStop{}
	for _, s := range plan.Stops {
		byID[s.Order.OrderID] = s
	}

	resolved := byID["o1"]
	if resolved.Approximate {
		t.Fatal("o1 should carry the provider geocode")
	}
	if resolved.Coords.Lat != 19.21 || resolved.GeocodedAddress != "A, Mumbai, MH" {
		t.Fatalf("o1 = %+v", resolved.GeocodedStop)
	}

	fallback := byID["o2"]
	if !fallback.Approximate {
		t.Fatal("o2 should fall back to jitter")
	}
	if fallback.GeocodedAddress != "Addr B" {
		t.Fatalf("o2 address = %q, want original input", fallback.GeocodedAddress)
	}
	if math.Abs(fallback.Coords.Lat-19.0760) > 0.01 {
		t.Fatalf("o2 jitter out of bounds: %+v", fallback.Coords)
	}
}

func TestPlanDailyRouteOptimizerFallbackKeepsDensityOrder(t *testing.T) {
	geocoder := &fakeGeocoder{byAddress: map[string][]ports.GeocodeCandidate{
		"Addr A": {{Coords: domain.Coordinates{Lat: 19.0760, Lng: 72.8777}}},
		"Addr B": {{Coords: domain.Coordinates{Lat: 19.0761, Lng: 72.8778}}},
		"Addr C": {{Coords: domain.Coordinates{Lat: 19.0762, Lng: 72.8779}}},
	}}
	orders := []*domain.Order{
		orderWithAddress("o1", "Addr A"),
		orderWithAddress("o2", "Addr B"),
		orderWithAddress("o3", "Addr C"),
	}

	planner := testPlanner(geocoder, &fakeOptimizer{err: errors.New("down")}, nil, nil)

	plan, err := planner.PlanDailyRoute(context.Background(), "m1", "d1", orders, quietDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, want := range []string{"o1", "o2", "o3"} {
		if plan.Stops[i].Order.OrderID != want {
			t.Fatalf("stop %d = %s, want %s", i, plan.Stops[i].Order.OrderID, want)
		}
	}
}

func TestPlanDailyRouteFestivalOverride(t *testing.T) {
	// Three singleton clusters yield one stop per tier; planned three
	// days before Diwali.
	geocoder := &fakeGeocoder{byAddress: map[string][]ports.GeocodeCandidate{
		"Addr A": {{Coords: domain.Coordinates{Lat: 19.10, Lng: 72.88}}},
		"Addr B": {{Coords: domain.Coordinates{Lat: 19.20, Lng: 72.95}}},
		"Addr C": {{Coords: domain.Coordinates{Lat: 19.30, Lng: 73.10}}},
	}}
	orders := []*domain.Order{
		orderWithAddress("o1", "Addr A"),
		orderWithAddress("o2", "Addr B"),
		orderWithAddress("o3", "Addr C"),
	}

	planner := testPlanner(geocoder, &fakeOptimizer{err: errors.New("down")}, nil, nil)

	festivalDay := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	plan, err := planner.PlanDailyRoute(context.Background(), "m1", "d1", orders, festivalDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.ActiveFestivals) == 0 {
		t.Fatal("expected active festivals near Diwali")
	}

	sawLow := false
	for _, s := range plan.Stops {
		if s.FestivalNote == "" {
			t.Fatalf("stop %s missing festival note", s.Order.OrderID)
		}
		if s.Priority == domain.PriorityLow {
			sawLow = true
			if s.TimeSlot != "14:00-18:00" {
				t.Fatalf("low stop %s slot = %q, want 14:00-18:00", s.Order.OrderID, s.TimeSlot)
			}
		}
	}
	if !sawLow {
		t.Fatal("expected a low-priority stop in this layout")
	}
}

func TestPlanDailyRouteTotalsFromGeometry(t *testing.T) {
	geocoder := &fakeGeocoder{byAddress: map[string][]ports.GeocodeCandidate{
		"Addr A": {{Coords: domain.Coordinates{Lat: 19.10, Lng: 72.88}}},
		"Addr B": {{Coords: domain.Coordinates{Lat: 19.20, Lng: 72.95}}},
	}}
	orders := []*domain.Order{
		orderWithAddress("o1", "Addr A"),
		orderWithAddress("o2", "Addr B"),
	}

	geometry := &fakeGeometry{geom: domain.RouteGeometry{
		Polyline:        []domain.Coordinates{{Lat: 19.0760, Lng: 72.8777}, {Lat: 19.10, Lng: 72.88}},
		DistanceMeters:  24500,
		DurationSeconds: 3720,
	}}

	planner := testPlanner(geocoder, &fakeOptimizer{err: errors.New("down")}, geometry, nil)

	plan, err := planner.PlanDailyRoute(context.Background(), "m1", "d1", orders, quietDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Geometry == nil {
		t.Fatal("expected geometry on the plan")
	}
	if plan.DistanceKm != 24.5 {
		t.Fatalf("distance = %v, want 24.5", plan.DistanceKm)
	}
	if plan.DurationMin != 62 {
		t.Fatalf("duration = %v, want 62", plan.DurationMin)
	}
	if plan.FuelLiters != 2.0 {
		t.Fatalf("fuel = %v, want 2.0", plan.FuelLiters)
	}

	// Geometry request covers anchor plus every stop in sequence.
	if len(geometry.coords) != len(orders)+1 {
		t.Fatalf("geometry got %d coords, want %d", len(geometry.coords), len(orders)+1)
	}
	if geometry.coords[0].Lat != 19.0760 {
		t.Fatalf("geometry origin = %+v, want anchor", geometry.coords[0])
	}

	if plan.Stops[0].EstimatedTime != "06:00" {
		t.Fatalf("first stop time = %q, want 06:00", plan.Stops[0].EstimatedTime)
	}
	if plan.Stops[1].EstimatedTime != "13:00" {
		t.Fatalf("second stop time = %q, want 13:00", plan.Stops[1].EstimatedTime)
	}
}

func TestPlanDailyRouteGeometryFailureOmitsGeometry(t *testing.T) {
	geocoder := &fakeGeocoder{byAddress: map[string][]ports.GeocodeCandidate{
		"Addr A": {{Coords: domain.Coordinates{Lat: 19.10, Lng: 72.88}}},
	}}
	orders := []*domain.Order{orderWithAddress("o1", "Addr A")}

	planner := testPlanner(geocoder, &fakeOptimizer{}, &fakeGeometry{err: errors.New("osrm down")}, nil)

	plan, err := planner.PlanDailyRoute(context.Background(), "m1", "d1", orders, quietDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Geometry != nil {
		t.Fatal("expected geometry to be omitted on provider failure")
	}
	if plan.DistanceKm != 0 || plan.DurationMin != 0 || plan.FuelLiters != 0 {
		t.Fatalf("totals should be zero without geometry: %v %v %v", plan.DistanceKm, plan.DurationMin, plan.FuelLiters)
	}
	if len(plan.Stops) != 1 {
		t.Fatalf("plan lost stops: %d", len(plan.Stops))
	}
}

func TestPlanDailyRouteTrafficEnrichment(t *testing.T) {
	byAddress := map[string][]ports.GeocodeCandidate{}
	orders := make([]*domain.Order, 0, 6)
	samples := map[string]ports.FlowSample{}
	for i := 0; i < 6; i++ {
		addr := string(rune('A' + i))
		lat := 19.10 + float64(i)*0.05
		byAddress["Addr "+addr] = []ports.GeocodeCandidate{{Coords: domain.Coordinates{Lat: lat, Lng: 72.9}}}
		orders = append(orders, orderWithAddress("o"+addr, "Addr "+addr))
		samples[coordKey(domain.Coordinates{Lat: lat, Lng: 72.9})] = ports.FlowSample{
			CurrentSpeedKmh:  30,
			FreeFlowSpeedKmh: 40,
		}
	}

	planner := testPlanner(&fakeGeocoder{byAddress: byAddress}, &fakeOptimizer{err: errors.New("down")}, nil, &fakeTraffic{samples: samples})

	plan, err := planner.PlanDailyRoute(context.Background(), "m1", "d1", orders, quietDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if plan.Stops[i].Traffic != domain.TrafficLow {
			t.Fatalf("stop %d traffic = %q, want Low", i, plan.Stops[i].Traffic)
		}
	}
	if plan.Stops[5].Traffic != "" {
		t.Fatalf("stop 6 traffic = %q, want unset", plan.Stops[5].Traffic)
	}
}
