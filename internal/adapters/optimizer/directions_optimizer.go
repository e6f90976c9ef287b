package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"route-planner-service/internal/adapters/httpx"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
)

// Index entries arrive as numbers or numeric strings depending on the
// provider; anything else is skipped, never fatal.
type directionsResponse struct {
	Routes []struct {
		WaypointOrder []json.RawMessage `json:"waypoint_order"`
	} `json:"routes"`
	Status string `json:"status"`
}

// DirectionsOptimizer implements the WaypointOptimizer port against a
// Google-Directions-style API: origin plus waypoints with
// optimize:true, driving mode, returning a waypoint_order index array.
type DirectionsOptimizer struct {
	client  *httpx.Client
	apiKey  string
	baseURL string
}

func NewDirectionsOptimizer(apiKey, baseURL string) (*DirectionsOptimizer, error) {
	if apiKey == "" {
		return nil, errors.New("directions api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com"
	}

	return &DirectionsOptimizer{
		client:  httpx.NewClient(15 * time.Second),
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

// OptimizeOrder requests an optimized visiting order for the stops,
// with the merchant anchor as both origin and final destination.
func (o *DirectionsOptimizer) OptimizeOrder(
	ctx context.Context,
	origin domain.Coordinates,
	stops []domain.Coordinates,
) (_ []int, err error) {
	defer obs.Time(ctx, "directions.OptimizeOrder")(&err)

	if len(stops) == 0 {
		return []int{}, nil
	}

	endpoint := o.baseURL + "/maps/api/directions/json"
	anchor := fmt.Sprintf("%f,%f", origin.Lat, origin.Lng)

	waypoints := make([]string, 0, len(stops))
	for _, s := range stops {
		waypoints = append(waypoints, fmt.Sprintf("%f,%f", s.Lat, s.Lng))
	}

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		q := req.URL.Query()
		q.Set("origin", anchor)
		q.Set("destination", anchor)
		q.Set("waypoints", "optimize:true|"+strings.Join(waypoints, "|"))
		q.Set("mode", "driving")
		q.Set("key", o.apiKey)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute directions request: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if decoded.Status != "" && decoded.Status != "OK" {
		return nil, fmt.Errorf("directions status %q", decoded.Status)
	}
	if len(decoded.Routes) == 0 {
		return nil, errors.New("directions returned no routes")
	}

	order := make([]int, 0, len(decoded.Routes[0].WaypointOrder))
	for _, raw := range decoded.Routes[0].WaypointOrder {
		idx, ok := parseIndex(raw)
		if !ok {
			log.Printf("directions: skipping non-numeric waypoint index %s", string(raw))
			continue
		}
		order = append(order, idx)
	}

	return order, nil
}

func parseIndex(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}

	return 0, false
}
