// models/requests.go
package models

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IncidentReport cancels a delivery. Coordinates are optional.
type IncidentReport struct {
	Reason    string   `json:"reason"`
	Notes     *string  `json:"notes,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (i IncidentReport) Location() *Location {
	if i.Latitude == nil || i.Longitude == nil {
		return nil
	}
	return &Location{Latitude: *i.Latitude, Longitude: *i.Longitude}
}

// OptimizedRouteData is produced by the external route optimizer and stored as is.
type OptimizedRouteData struct {
	OptimizedOrderListJSON   string `json:"optimized_order_list_json"`
	SuggestedJourneyPolyline string `json:"suggested_journey_polyline"`
}
