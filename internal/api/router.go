package api

import (
	"net/http"

	"route-planner-service/internal/api/handlers"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.OrderRepository, planner *services.Planner, store ports.PlanStore) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Repo:    repo,
		Planner: planner,
		Store:   store,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes/optimize", routeHandler.Optimize)
	mux.HandleFunc("/routes/driver", routeHandler.DriverRoute)

	return loggingMiddleware(mux)
}
