package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

// Operating window for estimated delivery times: 06:00 to 20:00.
const (
	windowStartMinute = 6 * 60
	windowMinutes     = 14 * 60
)

// attachTraffic promotes sequenced stops to route stops, classifying
// live congestion for the first trafficStops of them. Lookups run
// concurrently; a failed lookup marks that stop Unknown and stops past
// the limit carry no traffic data at all.
func attachTraffic(
	ctx context.Context,
	provider ports.TrafficFlowProvider,
	stops []domain.SequencedStop,
	trafficStops int,
	timeout time.Duration,
) []domain.RouteStop {
	out := make([]domain.RouteStop, len(stops))
	for i, s := range stops {
		out[i] = domain.RouteStop{SequencedStop: s}
	}

	limit := trafficStops
	if limit > len(stops) {
		limit = len(stops)
	}
	if provider == nil || limit <= 0 {
		return out
	}

	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i].Traffic = withFallback(ctx, timeout,
				func(cctx context.Context) (string, error) {
					sample, err := provider.FlowAt(cctx, stops[i].Coords)
					if err != nil {
						return "", err
					}
					return classifyCongestion(sample), nil
				},
				func(err error) string {
					log.Printf("traffic lookup fallback stop=%d err=%v", stops[i].StopNumber, err)
					return domain.TrafficUnknown
				},
			)
		}(i)
	}
	wg.Wait()

	return out
}

// classifyCongestion buckets the current/free-flow speed ratio:
// below 0.5 High, below 0.75 Medium, otherwise Low.
func classifyCongestion(sample ports.FlowSample) string {
	if sample.FreeFlowSpeedKmh <= 0 {
		return domain.TrafficUnknown
	}
	ratio := sample.CurrentSpeedKmh / sample.FreeFlowSpeedKmh
	switch {
	case ratio < 0.5:
		return domain.TrafficHigh
	case ratio < 0.75:
		return domain.TrafficMedium
	default:
		return domain.TrafficLow
	}
}

// estimatedClock places stop idx of total evenly across the operating
// window, independent of real travel times.
func estimatedClock(idx, total int) string {
	minute := windowStartMinute + idx*windowMinutes/total
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
