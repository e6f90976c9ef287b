package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"route-planner-service/internal/adapters/cache"
	"route-planner-service/internal/adapters/httpx"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// ORSGeocoder implements the Geocoder port using OpenRouteService
// (/geocode/search), scoped to a single country.
//
// It coordinates:
//   - Address normalization
//   - An optional persistent geocode cache
//   - External API calls with retry/backoff
//
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	client  *httpx.Client
	apiKey  string
	baseURL string
	country string
	cache   *cache.SqliteGeocodeCache
}

func NewORSGeocoder(apiKey, country string, geocodeCache *cache.SqliteGeocodeCache) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if country == "" {
		country = "IN"
	}

	return &ORSGeocoder{
		client:  httpx.NewClient(10 * time.Second),
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		country: country,
		cache:   geocodeCache,
	}, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (g *ORSGeocoder) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Search resolves an address to candidate coordinates, best first.
// An empty slice with a nil error means the provider found nothing.
func (g *ORSGeocoder) Search(ctx context.Context, address string) (_ []ports.GeocodeCandidate, err error) {
	defer obs.Time(ctx, "ors.geocode.Search")(&err)

	norm := g.normalize(address)
	if norm == "" {
		return nil, errors.New("address must be non-empty")
	}

	// Check the persistent cache before issuing an external call.
	if g.cache != nil {
		coords, ok, err := g.cache.Get(ctx, norm)
		if err != nil {
			return nil, fmt.Errorf("geocode cache read: %w", err)
		}
		if ok {
			return []ports.GeocodeCandidate{{Coords: coords, Label: norm}}, nil
		}
	}

	endpoint := g.baseURL + "/geocode/search"

	resp, err := g.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", g.apiKey)
		req.Header.Set("Accept", "application/json")

		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", g.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	candidates := make([]ports.GeocodeCandidate, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		coords := f.Geometry.Coordinates
		if len(coords) != 2 {
			continue
		}

		label := f.Properties.Label
		if label == "" {
			label = norm
		}

		candidates = append(candidates, ports.GeocodeCandidate{
			// ORS returns GeoJSON [lon, lat] order.
			Coords: domain.Coordinates{Lat: coords[1], Lng: coords[0]},
			Label:  label,
		})
	}

	if g.cache != nil && len(candidates) > 0 {
		if err := g.cache.Put(ctx, norm, candidates[0].Coords); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return candidates, nil
}
