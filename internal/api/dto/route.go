package dto

import "time"

type OptimizeRequest struct {
	MerchantID string `json:"merchant_id"`
	DriverID   string `json:"driver_id"`
}

type RouteStopResponse struct {
	StopNumber      int     `json:"stop_number"`
	OrderID         string  `json:"order_id"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	GeocodedAddress string  `json:"geocoded_address"`
	Approximate     bool    `json:"approximate"`
	TimeSlot        string  `json:"time_slot"`
	Priority        string  `json:"priority"`
	FestivalNote    string  `json:"festival_note,omitempty"`
	Traffic         string  `json:"traffic,omitempty"`
	EstimatedTime   string  `json:"estimated_time"`
}

type GeometryResponse struct {
	Polyline        [][]float64 `json:"polyline"`
	DistanceMeters  float64     `json:"distance_meters"`
	DurationSeconds float64     `json:"duration_seconds"`
}

type RoutePlanResponse struct {
	PlanID          string              `json:"plan_id"`
	MerchantID      string              `json:"merchant_id"`
	DriverID        string              `json:"driver_id"`
	GeneratedAt     time.Time           `json:"generated_at"`
	Stops           []RouteStopResponse `json:"stops"`
	Geometry        *GeometryResponse   `json:"geometry,omitempty"`
	ActiveFestivals []string            `json:"active_festivals,omitempty"`
	DistanceKm      float64             `json:"distance_km"`
	DurationMin     int                 `json:"duration_min"`
	FuelLiters      float64             `json:"fuel_liters"`
}
