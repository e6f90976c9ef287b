package services

import (
	"testing"

	"route-planner-service/internal/domain"
)

func clusterOf(rank int, ids ...string) domain.Cluster {
	c := domain.Cluster{Rank: rank}
	for _, id := range ids {
		c.Stops = append(c.Stops, domain.GeocodedStop{Order: &domain.Order{OrderID: id}})
	}
	return c
}

func TestAssignScheduleTiers(t *testing.T) {
	clusters := []domain.Cluster{
		clusterOf(0, "a1", "a2", "a3"),
		clusterOf(1, "b1", "b2"),
		clusterOf(2, "c1"),
	}

	scheduled := AssignSchedule(clusters, nil)
	if len(scheduled) != 6 {
		t.Fatalf("expected 6 stops, got %d", len(scheduled))
	}

	want := []struct {
		id       string
		slot     string
		priority string
	}{
		{"a1", domain.SlotMorning, domain.PriorityHigh},
		{"a2", domain.SlotMorning, domain.PriorityHigh},
		{"a3", domain.SlotMorning, domain.PriorityHigh},
		{"b1", domain.SlotMidday, domain.PriorityMedium},
		{"b2", domain.SlotMidday, domain.PriorityMedium},
		{"c1", domain.SlotEvening, domain.PriorityLow},
	}

	for i, w := range want {
		s := scheduled[i]
		if s.Order.OrderID != w.id {
			t.Fatalf("stop %d = %q, want %q", i, s.Order.OrderID, w.id)
		}
		if s.TimeSlot != w.slot {
			t.Fatalf("stop %q slot = %q, want %q", w.id, s.TimeSlot, w.slot)
		}
		if s.Priority != w.priority {
			t.Fatalf("stop %q priority = %q, want %q", w.id, s.Priority, w.priority)
		}
	}
}

func TestAssignSchedulePriorityNonIncreasing(t *testing.T) {
	clusters := []domain.Cluster{
		clusterOf(0, "a"), clusterOf(1, "b"), clusterOf(2, "c"),
		clusterOf(3, "d"), clusterOf(4, "e"),
	}

	rank := map[string]int{
		domain.PriorityHigh:   3,
		domain.PriorityMedium: 2,
		domain.PriorityLow:    1,
	}

	prev := rank[domain.PriorityHigh]
	for _, s := range AssignSchedule(clusters, nil) {
		cur := rank[s.Priority]
		if cur > prev {
			t.Fatalf("priority increased at stop %q", s.Order.OrderID)
		}
		prev = cur
	}
}

func TestAssignScheduleSingleClusterIsHigh(t *testing.T) {
	scheduled := AssignSchedule([]domain.Cluster{clusterOf(0, "a", "b", "c")}, nil)

	for _, s := range scheduled {
		if s.Priority != domain.PriorityHigh || s.TimeSlot != domain.SlotMorning {
			t.Fatalf("stop %q = %s/%s, want High/%s", s.Order.OrderID, s.Priority, s.TimeSlot, domain.SlotMorning)
		}
	}
}

func TestAssignScheduleFestivalOverride(t *testing.T) {
	clusters := []domain.Cluster{
		clusterOf(0, "a"),
		clusterOf(1, "b"),
		clusterOf(2, "c"),
	}
	festivals := []domain.Festival{
		{Name: "Diwali", Month: 10, Day: 20, ImpactDays: 4},
		{Name: "Dussehra", Month: 10, Day: 2, ImpactDays: 2},
	}

	scheduled := AssignSchedule(clusters, festivals)

	for _, s := range scheduled {
		if s.FestivalNote == "" {
			t.Fatalf("stop %q missing festival note", s.Order.OrderID)
		}
		if s.Priority == domain.PriorityLow && s.TimeSlot != "14:00-18:00" {
			t.Fatalf("low stop %q slot = %q, want 14:00-18:00", s.Order.OrderID, s.TimeSlot)
		}
		if s.Priority != domain.PriorityLow && s.TimeSlot == domain.SlotFestival {
			t.Fatalf("non-low stop %q was compressed", s.Order.OrderID)
		}
	}
}

func TestAssignScheduleEmpty(t *testing.T) {
	if scheduled := AssignSchedule(nil, nil); len(scheduled) != 0 {
		t.Fatalf("expected empty schedule, got %d stops", len(scheduled))
	}
}
