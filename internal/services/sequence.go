package services

import (
	"context"
	"log"
	"time"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

// SequenceStops reorders stops by the external waypoint optimizer and
// assigns 1-based stop numbers. The optimizer only ever changes the
// visiting order, never the stop membership: indices that fail to map
// are dropped, and stops the ordering missed are appended in their
// existing order. On provider failure the existing (density-rank)
// order is kept.
func SequenceStops(
	ctx context.Context,
	optimizer ports.WaypointOptimizer,
	origin domain.Coordinates,
	stops []domain.ScheduledStop,
	timeout time.Duration,
) []domain.SequencedStop {
	if len(stops) == 0 {
		return []domain.SequencedStop{}
	}

	coords := make([]domain.Coordinates, len(stops))
	for i, s := range stops {
		coords[i] = s.Coords
	}

	order := withFallback(ctx, timeout,
		func(cctx context.Context) ([]int, error) {
			return optimizer.OptimizeOrder(cctx, origin, coords)
		},
		func(err error) []int {
			log.Printf("waypoint optimizer fallback err=%v", err)
			return nil
		},
	)

	order = normalizeOrder(order, len(stops))

	sequenced := make([]domain.SequencedStop, 0, len(stops))
	for _, idx := range order {
		sequenced = append(sequenced, domain.SequencedStop{
			ScheduledStop: stops[idx],
			StopNumber:    len(sequenced) + 1,
		})
	}
	return sequenced
}

// normalizeOrder turns a provider index array into a valid 0-based
// permutation of 0..n-1. Providers disagree on index base: an array
// that never uses 0 but stays within 1..n is treated as 1-based and
// shifted down. After that, out-of-range and repeated indices are
// dropped rather than guessed at, and any index the ordering missed is
// appended in original position order. An empty or fully invalid
// ordering degrades to identity.
func normalizeOrder(order []int, n int) []int {
	if looksOneBased(order, n) {
		shifted := make([]int, len(order))
		for i, v := range order {
			shifted[i] = v - 1
		}
		order = shifted
	}

	seen := make(map[int]bool, n)
	out := make([]int, 0, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}

	for i := 0; i < n; i++ {
		if !seen[i] {
			out = append(out, i)
		}
	}
	return out
}

func looksOneBased(order []int, n int) bool {
	if len(order) == 0 {
		return false
	}
	for _, v := range order {
		if v < 1 || v > n {
			return false
		}
	}
	for _, v := range order {
		if v == n {
			return true
		}
	}
	return false
}
