package domain

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lng float64
}

// Return coordinates as [lng, lat] for GeoJSON-ordered external APIs.
func (c Coordinates) LngLat() []float64 { return []float64{c.Lng, c.Lat} }
