package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

func TestResolveStopsPreservesInputOrder(t *testing.T) {
	byAddress := map[string][]ports.GeocodeCandidate{}
	orders := make([]*domain.Order, 0, 10)
	for i := 0; i < 10; i++ {
		addr := fmt.Sprintf("Addr %d", i)
		byAddress[addr] = []ports.GeocodeCandidate{
			{Coords: domain.Coordinates{Lat: 19.0 + float64(i)*0.01, Lng: 72.9}, Label: addr},
		}
		orders = append(orders, orderWithAddress(fmt.Sprintf("o%d", i), addr))
	}

	anchor := domain.Coordinates{Lat: 19.0760, Lng: 72.8777}
	stops := ResolveStops(context.Background(), orders, anchor, &fakeGeocoder{byAddress: byAddress}, time.Second, 4)

	if len(stops) != len(orders) {
		t.Fatalf("resolved %d stops, want %d", len(stops), len(orders))
	}
	for i, s := range stops {
		if s.Order.OrderID != orders[i].OrderID {
			t.Fatalf("stop %d is %s, want %s", i, s.Order.OrderID, orders[i].OrderID)
		}
		if s.Approximate {
			t.Fatalf("stop %d unexpectedly approximate", i)
		}
	}
}

func TestResolveStopsEmptyResultSetFallsBack(t *testing.T) {
	// Provider answers with zero candidates, not an error.
	orders := []*domain.Order{orderWithAddress("o1", "Nowhere Lane")}
	anchor := domain.Coordinates{Lat: 19.0760, Lng: 72.8777}

	stops := ResolveStops(context.Background(), orders, anchor, &fakeGeocoder{}, time.Second, 1)

	s := stops[0]
	if !s.Approximate {
		t.Fatal("expected jitter fallback for empty result set")
	}
	if s.GeocodedAddress != "Nowhere Lane" {
		t.Fatalf("fallback label = %q, want original input", s.GeocodedAddress)
	}
	if math.Abs(s.Coords.Lat-anchor.Lat) > 0.01 || math.Abs(s.Coords.Lng-anchor.Lng) > 0.01 {
		t.Fatalf("jitter out of bounds: %+v", s.Coords)
	}
}

func TestResolveStopsBlankCandidateLabelFallsBackToInput(t *testing.T) {
	byAddress := map[string][]ports.GeocodeCandidate{
		"Addr X": {{Coords: domain.Coordinates{Lat: 19.2, Lng: 72.9}}},
	}
	orders := []*domain.Order{orderWithAddress("o1", "Addr X")}

	stops := ResolveStops(context.Background(), orders, domain.Coordinates{}, &fakeGeocoder{byAddress: byAddress}, time.Second, 1)

	if stops[0].GeocodedAddress != "Addr X" {
		t.Fatalf("label = %q, want input address", stops[0].GeocodedAddress)
	}
	if stops[0].Approximate {
		t.Fatal("provider geocode should not be approximate")
	}
}
