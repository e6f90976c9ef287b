package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"route-planner-service/internal/adapters/httpx"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
)

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// RouteProvider implements the RouteGeometryProvider port against an
// OSRM instance (the public demo server by default, no key needed).
type RouteProvider struct {
	client  *httpx.Client
	baseURL string
}

func NewRouteProvider(baseURL string) *RouteProvider {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}

	return &RouteProvider{
		client:  httpx.NewClient(15 * time.Second),
		baseURL: baseURL,
	}
}

// Directions fetches driving geometry visiting the coordinates in
// order. The GeoJSON [lon,lat] polyline is swapped into the domain's
// lat/lng convention.
func (p *RouteProvider) Directions(ctx context.Context, coords []domain.Coordinates) (_ domain.RouteGeometry, err error) {
	defer obs.Time(ctx, "osrm.Directions")(&err)

	if len(coords) < 2 {
		return domain.RouteGeometry{}, errors.New("directions need at least two coordinates")
	}

	pairs := make([]string, 0, len(coords))
	for _, c := range coords {
		pairs = append(pairs, fmt.Sprintf("%f,%f", c.Lng, c.Lat))
	}

	endpoint := fmt.Sprintf("%s/route/v1/driving/%s", p.baseURL, strings.Join(pairs, ";"))

	resp, err := p.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		q := req.URL.Query()
		q.Set("overview", "full")
		q.Set("geometries", "geojson")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("execute route request: %w", err)
	}
	defer resp.Body.Close()

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("decode route response: %w", err)
	}

	if decoded.Code != "Ok" {
		return domain.RouteGeometry{}, fmt.Errorf("osrm code %q", decoded.Code)
	}
	if len(decoded.Routes) == 0 {
		return domain.RouteGeometry{}, errors.New("osrm returned no routes")
	}

	route := decoded.Routes[0]
	polyline := make([]domain.Coordinates, 0, len(route.Geometry.Coordinates))
	for _, pair := range route.Geometry.Coordinates {
		if len(pair) != 2 {
			continue
		}
		polyline = append(polyline, domain.Coordinates{Lat: pair[1], Lng: pair[0]})
	}

	return domain.RouteGeometry{
		Polyline:        polyline,
		DistanceMeters:  route.Distance,
		DurationSeconds: route.Duration,
	}, nil
}
