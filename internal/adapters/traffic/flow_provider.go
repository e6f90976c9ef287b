package traffic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"route-planner-service/internal/adapters/httpx"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

type flowResponse struct {
	FlowSegmentData struct {
		CurrentSpeed  float64 `json:"currentSpeed"`
		FreeFlowSpeed float64 `json:"freeFlowSpeed"`
		Confidence    float64 `json:"confidence"`
	} `json:"flowSegmentData"`
}

// FlowProvider implements the TrafficFlowProvider port against the
// TomTom flow-segment endpoint.
type FlowProvider struct {
	client  *httpx.Client
	apiKey  string
	baseURL string
}

func NewFlowProvider(apiKey, baseURL string) (*FlowProvider, error) {
	if apiKey == "" {
		return nil, errors.New("traffic api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.tomtom.com"
	}

	return &FlowProvider{
		client:  httpx.NewClient(5 * time.Second),
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

// FlowAt samples live traffic flow at one coordinate.
func (p *FlowProvider) FlowAt(ctx context.Context, c domain.Coordinates) (ports.FlowSample, error) {
	endpoint := p.baseURL + "/traffic/services/4/flowSegmentData/absolute/10/json"

	resp, err := p.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		q := req.URL.Query()
		q.Set("point", fmt.Sprintf("%f,%f", c.Lat, c.Lng))
		q.Set("key", p.apiKey)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.FlowSample{}, fmt.Errorf("execute flow request: %w", err)
	}
	defer resp.Body.Close()

	var decoded flowResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.FlowSample{}, fmt.Errorf("decode flow response: %w", err)
	}

	data := decoded.FlowSegmentData
	if data.FreeFlowSpeed <= 0 {
		return ports.FlowSample{}, errors.New("flow response missing free-flow speed")
	}

	return ports.FlowSample{
		CurrentSpeedKmh:  data.CurrentSpeed,
		FreeFlowSpeedKmh: data.FreeFlowSpeed,
		Confidence:       data.Confidence,
	}, nil
}
