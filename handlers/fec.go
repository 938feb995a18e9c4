// handlers/fec.go
package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"p9e.in/choferes/middleware"
	"p9e.in/choferes/models"
	"p9e.in/choferes/pkg/export"
)

// GetRoute returns the driver's route by number, starting it on first fetch.
func (h *Handler) GetRoute(w http.ResponseWriter, r *http.Request) {
	number, err := pathInt(r, "routeNumber")
	if err != nil {
		writeError(w, r, err)
		return
	}

	route, err := h.routes.GetOrStart(r.Context(), number, middleware.DriverID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// UpdateOptimizedPath stores the optimizer output on the route.
func (h *Handler) UpdateOptimizedPath(w http.ResponseWriter, r *http.Request) {
	routeID, err := pathUint(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var data models.OptimizedRouteData
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, r, err)
		return
	}

	route, err := h.routes.RecordOptimizedRoute(r.Context(), routeID, middleware.DriverID(r), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Printf("📨 optimized path stored for route %d", route.ID)
	writeJSON(w, http.StatusOK, route)
}

// ExportRoute downloads the route summary as an XLSX workbook. It does not
// change the route status.
func (h *Handler) ExportRoute(w http.ResponseWriter, r *http.Request) {
	number, err := pathInt(r, "routeNumber")
	if err != nil {
		writeError(w, r, err)
		return
	}

	route, err := h.routes.Find(r.Context(), number, middleware.DriverID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	f, err := export.RouteWorkbook(route, now)
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to build workbook: %w", err))
		return
	}
	defer f.Close()

	buffer, err := f.WriteToBuffer()
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to write workbook: %w", err))
		return
	}

	filename := fmt.Sprintf("fec_%d_%s.xlsx", route.Number, now.Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}
