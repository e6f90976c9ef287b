package services

import (
	"time"

	"route-planner-service/internal/domain"
)

// Fixed festival calendar used by the scheduler. Dates are the
// commonly observed ones; lunar festivals are pinned rather than
// computed.
var festivalCalendar = []domain.Festival{
	{Name: "Makar Sankranti", Month: 1, Day: 14, ImpactDays: 1},
	{Name: "Republic Day", Month: 1, Day: 26, ImpactDays: 1},
	{Name: "Holi", Month: 3, Day: 14, ImpactDays: 2},
	{Name: "Eid al-Fitr", Month: 3, Day: 31, ImpactDays: 2},
	{Name: "Raksha Bandhan", Month: 8, Day: 9, ImpactDays: 1},
	{Name: "Independence Day", Month: 8, Day: 15, ImpactDays: 1},
	{Name: "Ganesh Chaturthi", Month: 8, Day: 27, ImpactDays: 4},
	{Name: "Navratri", Month: 9, Day: 22, ImpactDays: 3},
	{Name: "Dussehra", Month: 10, Day: 2, ImpactDays: 2},
	{Name: "Diwali", Month: 10, Day: 20, ImpactDays: 4},
	{Name: "Christmas", Month: 12, Day: 25, ImpactDays: 2},
}

// NearbyFestivals returns the festivals whose date lies within
// impactDays+1 of the given date. Proximity is measured as
// |Δmonths*30 + Δdays|, a coarse metric inherited from the legacy
// scheduler. It mishandles month lengths and the year boundary;
// preserved unchanged for compatibility with stored plans.
// The first entry, when present, is treated as the primary festival.
func NearbyFestivals(date time.Time) []domain.Festival {
	month := int(date.Month())
	day := date.Day()

	var active []domain.Festival
	for _, f := range festivalCalendar {
		delta := (f.Month-month)*30 + (f.Day - day)
		if delta < 0 {
			delta = -delta
		}
		if delta <= f.ImpactDays+1 {
			active = append(active, f)
		}
	}
	return active
}
