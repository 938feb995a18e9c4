// handlers/handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"p9e.in/choferes/middleware"
	"p9e.in/choferes/models"
	"p9e.in/choferes/pkg/fec"
	"p9e.in/choferes/pkg/ingest"
	"p9e.in/choferes/pkg/lifecycle"
	"p9e.in/choferes/pkg/tracking"
)

// Handler serves the driver API. Every dependency is injected by main.
type Handler struct {
	auth       *middleware.Auth
	routes     *fec.Aggregator
	deliveries *lifecycle.Engine
	pipeline   *ingest.Pipeline
	points     *tracking.Store
}

func New(auth *middleware.Auth, routes *fec.Aggregator, deliveries *lifecycle.Engine, pipeline *ingest.Pipeline, points *tracking.Store) *Handler {
	return &Handler{
		auth:       auth,
		routes:     routes,
		deliveries: deliveries,
		pipeline:   pipeline,
		points:     points,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ failed to encode response: %v", err)
	}
}

// writeError maps the error taxonomy to a status and a {"detail": ...} body.
// Internal failures are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := models.StatusCode(err)
	detail := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("❌ req_id=%s %s %s: %v", middleware.RequestID(r.Context()), r.Method, r.URL.Path, err)
		detail = "internal server error"
	}
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewAppError(models.ErrBadRequest, "invalid JSON: %v", err)
	}
	return nil
}

func pathUint(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || v == 0 {
		return 0, models.NewAppError(models.ErrBadRequest, "invalid %s", name)
	}
	return uint(v), nil
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, models.NewAppError(models.ErrBadRequest, "invalid %s", name)
	}
	return v, nil
}
