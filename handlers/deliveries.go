// handlers/deliveries.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/paulmach/orb"

	"p9e.in/choferes/middleware"
	"p9e.in/choferes/models"
	"p9e.in/choferes/pkg/geo"
	"p9e.in/choferes/utils"
)

// ReportIncident cancels a delivery with a reason.
func (h *Handler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := pathUint(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var incident models.IncidentReport
	if err := decodeJSON(r, &incident); err != nil {
		writeError(w, r, err)
		return
	}

	delivery, err := h.deliveries.ReportIncident(r.Context(), deliveryID, middleware.DriverID(r), incident)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, delivery)
}

// AcceptNext records that the driver accepted this delivery as the next stop.
func (h *Handler) AcceptNext(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := pathUint(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	delivery, err := h.deliveries.AcceptNext(r.Context(), deliveryID, middleware.DriverID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, delivery)
}

// Track returns the delivery's recorded path as a GeoJSON FeatureCollection.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := pathUint(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	delivery, err := h.deliveries.Find(r.Context(), deliveryID, middleware.DriverID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	points, err := h.points.ListOrderedByTime(r.Context(), delivery.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	track := make([]geo.TrackPoint, 0, len(points))
	for _, p := range points {
		if !p.HasLocation() {
			continue
		}
		track = append(track, geo.TrackPoint{
			Point:     orb.Point{*p.Longitude, *p.Latitude},
			EventType: p.EventType,
			Timestamp: p.Timestamp,
		})
	}

	var client *orb.Point
	if delivery.Client != nil {
		if c, ok := utils.ParseGPSLocation(delivery.Client.GPSLocation); ok {
			client = &orb.Point{c.Lng, c.Lat}
		}
	}

	fc := geo.TrackFeatureCollection(delivery.ID, track, client, models.IsLifecycleEvent)
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		log.Printf("❌ failed to encode track for delivery %d: %v", delivery.ID, err)
	}
}
