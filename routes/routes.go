package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"p9e.in/choferes/handlers"
	"p9e.in/choferes/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(h *handlers.Handler, auth *middleware.Auth) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/", handlers.Health).Methods("GET")
	r.HandleFunc("/health", handlers.Health).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/token", h.Token).Methods("POST")

	// =====================================================
	// Protected Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/").Subrouter()
	api.Use(auth.Middleware)

	registerRouteRoutes(api, h)
	registerDeliveryRoutes(api, h)

	return r
}

func registerRouteRoutes(api *mux.Router, h *handlers.Handler) {
	api.HandleFunc("/routes/{routeNumber:[0-9]+}", h.GetRoute).Methods("GET")
	api.HandleFunc("/routes/{routeNumber:[0-9]+}/export", h.ExportRoute).Methods("GET")
	api.HandleFunc("/routes/{id:[0-9]+}/optimized-path", h.UpdateOptimizedPath).Methods("PATCH")

	// Paths used by the first release of the mobile app
	api.HandleFunc("/fec/{routeNumber:[0-9]+}", h.GetRoute).Methods("GET")
	api.HandleFunc("/fec/{id:[0-9]+}/route", h.UpdateOptimizedPath).Methods("PATCH")
}

func registerDeliveryRoutes(api *mux.Router, h *handlers.Handler) {
	api.HandleFunc("/events", h.LogEvents).Methods("POST")
	api.HandleFunc("/deliveries/events/log", h.LogEvents).Methods("POST")
	api.HandleFunc("/deliveries/events/log/batch", h.LogEvents).Methods("POST")

	api.HandleFunc("/deliveries/{id:[0-9]+}/incident", h.ReportIncident).Methods("POST")
	api.HandleFunc("/deliveries/{id:[0-9]+}/accept", h.AcceptNext).Methods("POST")
	api.HandleFunc("/deliveries/{id:[0-9]+}/track", h.Track).Methods("GET")
}
