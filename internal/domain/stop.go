package domain

// Priority tiers derived from cluster density rank.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Time-slot bands assigned by the schedule stage.
const (
	SlotMorning  = "06:00-10:00"
	SlotMidday   = "11:00-15:00"
	SlotEvening  = "16:00-20:00"
	SlotFestival = "14:00-18:00"
)

// Congestion classifications for live traffic lookups.
const (
	TrafficHigh    = "High"
	TrafficMedium  = "Medium"
	TrafficLow     = "Low"
	TrafficUnknown = "Unknown"
)

// An Order with a resolved delivery coordinate. Approximate is true
// when the coordinate came from the jitter fallback rather than a
// real geocode. Immutable once created.
type GeocodedStop struct {
	Order           *Order
	Coords          Coordinates
	GeocodedAddress string
	Approximate     bool
}

// A GeocodedStop with its time slot and priority, both derived from
// the density rank of the cluster the stop belongs to.
type ScheduledStop struct {
	GeocodedStop
	TimeSlot     string
	Priority     string
	FestivalNote string
}

// A ScheduledStop in final visiting order. StopNumber is 1-based.
type SequencedStop struct {
	ScheduledStop
	StopNumber int
}

// A fully enriched stop as it appears in the assembled RoutePlan.
// Traffic is set for the first few stops only; EstimatedTime is a
// clock time from even distribution across the operating window.
type RouteStop struct {
	SequencedStop
	Traffic       string
	EstimatedTime string
}
