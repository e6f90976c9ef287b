package services

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

const (
	// Fallback coordinates are jittered around the merchant anchor by
	// up to this many degrees on each axis.
	jitterDegrees = 0.01

	fallbackAddressLabel = "Near merchant location"
)

// ResolveStops geocodes every order to a GeocodedStop. Lookups run on
// a bounded worker pool; results come back in input order so the
// clustering stage stays deterministic.
//
// Resolution never fails: empty addresses skip the provider entirely,
// and provider errors, timeouts, and empty result sets all fall back
// to a jittered coordinate near the merchant anchor.
func ResolveStops(
	ctx context.Context,
	orders []*domain.Order,
	anchor domain.Coordinates,
	geocoder ports.Geocoder,
	timeout time.Duration,
	workers int,
) []domain.GeocodedStop {
	if workers < 1 {
		workers = 1
	}

	stops := make([]domain.GeocodedStop, len(orders))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, order := range orders {
		wg.Add(1)
		go func(i int, order *domain.Order) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			stops[i] = resolveOne(ctx, order, anchor, geocoder, timeout)
		}(i, order)
	}

	wg.Wait()
	return stops
}

func resolveOne(
	ctx context.Context,
	order *domain.Order,
	anchor domain.Coordinates,
	geocoder ports.Geocoder,
	timeout time.Duration,
) domain.GeocodedStop {
	address := order.Address.Format()
	if address == "" {
		return jitteredStop(order, anchor, fallbackAddressLabel)
	}

	return withFallback(ctx, timeout,
		func(cctx context.Context) (domain.GeocodedStop, error) {
			candidates, err := geocoder.Search(cctx, address)
			if err != nil {
				return domain.GeocodedStop{}, err
			}
			if len(candidates) == 0 {
				return domain.GeocodedStop{}, errors.New("no geocode candidates")
			}

			best := candidates[0]
			label := best.Label
			if label == "" {
				label = address
			}

			return domain.GeocodedStop{
				Order:           order,
				Coords:          best.Coords,
				GeocodedAddress: label,
			}, nil
		},
		func(err error) domain.GeocodedStop {
			log.Printf("geocode fallback order=%s err=%v", order.OrderID, err)
			// Label keeps the original input so the failure stays visible
			// in the rendered plan.
			return jitteredStop(order, anchor, address)
		},
	)
}

func jitteredStop(order *domain.Order, anchor domain.Coordinates, label string) domain.GeocodedStop {
	return domain.GeocodedStop{
		Order: order,
		Coords: domain.Coordinates{
			Lat: anchor.Lat + jitter(),
			Lng: anchor.Lng + jitter(),
		},
		GeocodedAddress: label,
		Approximate:     true,
	}
}

// Uniform in [-jitterDegrees, jitterDegrees].
func jitter() float64 {
	return (rand.Float64()*2 - 1) * jitterDegrees
}
