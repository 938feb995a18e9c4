// models/tracking.go
package models

import "time"

const (
	EventStartDelivery = "start_delivery"
	EventEndDelivery   = "end_delivery"
)

// IsLifecycleEvent reports whether the event type drives a delivery transition.
func IsLifecycleEvent(eventType string) bool {
	return eventType == EventStartDelivery || eventType == EventEndDelivery
}

// TrackingPoint is an append-only GPS/event record. Latitude and Longitude
// are nil only for incidents reported without a location.
type TrackingPoint struct {
	ID         uint      `gorm:"primaryKey"                                              json:"id"`
	Latitude   *float64  `gorm:"column:latitude"                                         json:"latitude"`
	Longitude  *float64  `gorm:"column:longitude"                                        json:"longitude"`
	Timestamp  time.Time `gorm:"column:timestamp;index;not null"                         json:"timestamp"`
	EventType  string    `gorm:"column:event_type;size:50;not null;index:idx_tracking_delivery_event,priority:2" json:"eventType"`
	DriverID   uint      `gorm:"column:driver_id;index;not null"                         json:"driverId"`
	DeliveryID *uint     `gorm:"column:delivery_id;index:idx_tracking_delivery_event,priority:1" json:"deliveryId"`
	CreatedAt  time.Time `gorm:"autoCreateTime"                                          json:"-"`
}

// HasLocation reports whether both coordinates are present.
func (p TrackingPoint) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// TrackingPointReport is one event as sent by the mobile app.
type TrackingPointReport struct {
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Timestamp         JSONTime `json:"timestamp"`
	EventType         string   `json:"eventType"`
	DeliveryID        *uint    `json:"deliveryId,omitempty"`
	EstimatedDuration *string  `json:"estimatedDuration,omitempty"`
	EstimatedDistance *string  `json:"estimatedDistance,omitempty"`
}

// Location is an optional coordinate pair attached to a transition.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location returns the report's coordinates, or nil if either is missing.
func (r TrackingPointReport) Location() *Location {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &Location{Latitude: *r.Latitude, Longitude: *r.Longitude}
}
