package domain

// A fixed calendar entry describing a festival that affects delivery
// scheduling. ImpactDays is the window (in days) around the festival
// during which evening deliveries are compressed.
type Festival struct {
	Name       string
	Month      int
	Day        int
	ImpactDays int
}
