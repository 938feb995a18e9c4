// handlers/events.go
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"p9e.in/choferes/middleware"
	"p9e.in/choferes/models"
)

const maxEventsBody = 4 << 20

// LogEvents ingests a batch of tracking events. The body is a JSON array;
// a single event object is accepted too. Individual event failures are
// reported in the body, never as an HTTP error.
func (h *Handler) LogEvents(w http.ResponseWriter, r *http.Request) {
	events, err := decodeEvents(http.MaxBytesReader(w, r.Body, maxEventsBody))
	if err != nil {
		writeError(w, r, err)
		return
	}

	driverID := middleware.DriverID(r)
	report, err := h.pipeline.Ingest(r.Context(), driverID, events)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if report.Failed > 0 {
		log.Printf("⚠️ driver %d: %d of %d events failed", driverID, report.Failed, report.Received)
	}
	writeJSON(w, http.StatusAccepted, report)
}

func decodeEvents(body io.Reader) ([]models.TrackingPointReport, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, models.NewAppError(models.ErrBadRequest, "could not read body: %v", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, models.NewAppError(models.ErrBadRequest, "empty body")
	}

	if raw[0] != '[' {
		var single models.TrackingPointReport
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, models.NewAppError(models.ErrBadRequest, "invalid JSON: %v", err)
		}
		return []models.TrackingPointReport{single}, nil
	}

	var events []models.TrackingPointReport
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, models.NewAppError(models.ErrBadRequest, "invalid JSON: %v", err)
	}
	return events, nil
}
