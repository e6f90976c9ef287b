package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
)

type RouteHandler struct {
	Repo    ports.OrderRepository
	Planner *services.Planner
	Store   ports.PlanStore
}

// Optimize runs the daily route pipeline for one merchant/driver pair
// and persists the result. An empty pending-order set is a caller
// precondition violation and is rejected before planning starts.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	merchantID := strings.TrimSpace(req.MerchantID)
	if merchantID == "" {
		writeError(w, r, http.StatusBadRequest, "merchant_id is required")
		return
	}
	driverID := strings.TrimSpace(req.DriverID)
	if driverID == "" {
		writeError(w, r, http.StatusBadRequest, "driver_id is required")
		return
	}

	orders, err := h.Repo.PendingOrders(r.Context(), merchantID)
	if err != nil {
		log.Printf("pending orders failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(orders) == 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "no pending orders to optimize")
		return
	}

	plan, err := h.Planner.PlanDailyRoute(r.Context(), merchantID, driverID, orders, time.Now())
	if err != nil {
		// The planner only errors on an empty order set, which is
		// already rejected above; anything else is unexpected.
		if errors.Is(err, services.ErrNoPendingOrders) {
			writeError(w, r, http.StatusUnprocessableEntity, "no pending orders to optimize")
			return
		}
		log.Printf("plan daily route failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	// Persistence is the one step after validation that may fail; the
	// caller retries, the planner does not.
	if err := h.Store.SavePlan(r.Context(), plan); err != nil {
		log.Printf("save plan failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "failed to save route plan")
		return
	}

	writeJSON(w, r, http.StatusOK, planResponse(plan))
}

// DriverRoute returns the most recently persisted plan for a driver.
func (h *RouteHandler) DriverRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	driverID := strings.TrimSpace(r.URL.Query().Get("driver_id"))
	if driverID == "" {
		writeError(w, r, http.StatusBadRequest, "driver_id is required")
		return
	}

	plan, err := h.Store.DriverPlan(r.Context(), driverID)
	if errors.Is(err, ports.ErrPlanNotFound) {
		writeError(w, r, http.StatusNotFound, "no route plan for driver")
		return
	}
	if err != nil {
		log.Printf("driver plan failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, planResponse(plan))
}

func planResponse(plan *domain.RoutePlan) dto.RoutePlanResponse {
	stops := make([]dto.RouteStopResponse, 0, len(plan.Stops))
	for _, s := range plan.Stops {
		stops = append(stops, dto.RouteStopResponse{
			StopNumber:      s.StopNumber,
			OrderID:         s.Order.OrderID,
			Lat:             s.Coords.Lat,
			Lng:             s.Coords.Lng,
			GeocodedAddress: s.GeocodedAddress,
			Approximate:     s.Approximate,
			TimeSlot:        s.TimeSlot,
			Priority:        s.Priority,
			FestivalNote:    s.FestivalNote,
			Traffic:         s.Traffic,
			EstimatedTime:   s.EstimatedTime,
		})
	}

	res := dto.RoutePlanResponse{
		PlanID:          plan.PlanID,
		MerchantID:      plan.MerchantID,
		DriverID:        plan.DriverID,
		GeneratedAt:     plan.GeneratedAt,
		Stops:           stops,
		ActiveFestivals: plan.ActiveFestivals,
		DistanceKm:      plan.DistanceKm,
		DurationMin:     plan.DurationMin,
		FuelLiters:      plan.FuelLiters,
	}

	if plan.Geometry != nil {
		polyline := make([][]float64, 0, len(plan.Geometry.Polyline))
		for _, c := range plan.Geometry.Polyline {
			polyline = append(polyline, []float64{c.Lat, c.Lng})
		}
		res.Geometry = &dto.GeometryResponse{
			Polyline:        polyline,
			DistanceMeters:  plan.Geometry.DistanceMeters,
			DurationSeconds: plan.Geometry.DurationSeconds,
		}
	}

	return res
}
