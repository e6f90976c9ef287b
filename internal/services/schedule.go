package services

import (
	"route-planner-service/internal/domain"
)

// AssignSchedule maps every cluster to a time slot and priority tier
// from its density rank, then flattens the clusters back into a single
// stop list. Intra-cluster order is preserved; priority never
// increases as rank grows.
//
// When a festival is active, the evening band is compressed: every
// Low-priority stop moves to the festival slot and every stop carries
// a note citing the primary festival. This is a blanket adjustment,
// not a per-stop one.
func AssignSchedule(clusters []domain.Cluster, festivals []domain.Festival) []domain.ScheduledStop {
	total := len(clusters)
	if total == 0 {
		return []domain.ScheduledStop{}
	}

	scheduled := make([]domain.ScheduledStop, 0, total)
	for idx, cluster := range clusters {
		slot, priority := slotForRank(idx, total)
		for _, stop := range cluster.Stops {
			scheduled = append(scheduled, domain.ScheduledStop{
				GeocodedStop: stop,
				TimeSlot:     slot,
				Priority:     priority,
			})
		}
	}

	if len(festivals) > 0 {
		note := "Festival rush expected: " + festivals[0].Name
		for i := range scheduled {
			scheduled[i].FestivalNote = note
			if scheduled[i].Priority == domain.PriorityLow {
				scheduled[i].TimeSlot = domain.SlotFestival
			}
		}
	}

	return scheduled
}

func slotForRank(idx, total int) (slot, priority string) {
	ratio := float64(idx) / float64(total)
	switch {
	case ratio < 0.33:
		return domain.SlotMorning, domain.PriorityHigh
	case ratio < 0.66:
		return domain.SlotMidday, domain.PriorityMedium
	default:
		return domain.SlotEvening, domain.PriorityLow
	}
}
