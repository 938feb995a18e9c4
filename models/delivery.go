// models/delivery.go
package models

import "time"

const (
	DeliveryStatusPending    = "pending"
	DeliveryStatusInProgress = "in_progress"
	DeliveryStatusCompleted  = "completed"
	DeliveryStatusCancelled  = "cancelled"
)

// allowed delivery transitions; completed and cancelled are absorbing
var deliveryTransitions = map[string][]string{
	DeliveryStatusPending:    {DeliveryStatusInProgress, DeliveryStatusCompleted, DeliveryStatusCancelled},
	DeliveryStatusInProgress: {DeliveryStatusInProgress, DeliveryStatusCompleted, DeliveryStatusCancelled},
	DeliveryStatusCompleted:  {},
	DeliveryStatusCancelled:  {},
}

// CanTransition reports whether a delivery may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range deliveryTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status is completed or cancelled.
func IsTerminal(status string) bool {
	return status == DeliveryStatusCompleted || status == DeliveryStatusCancelled
}

// Delivery is one stop on a Route.
//
// EstimatedDuration and EstimatedDistance are display values supplied by the
// device and are never used in calculations. Distance is computed server side
// from tracking points and is authoritative.
type Delivery struct {
	ID       uint    `gorm:"primaryKey"                  json:"delivery_id"`
	RouteID  uint    `gorm:"column:route_id;index;not null" json:"fec_id"`
	DriverID uint    `gorm:"column:driver_id;index;not null" json:"driver_id"`
	ClientID uint    `gorm:"column:client_id;not null"   json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID"         json:"client,omitempty"`

	InvoiceID *string `gorm:"column:invoice_id;size:50"                        json:"invoice_id"`
	Status    string  `gorm:"column:status;size:20;not null;default:pending"   json:"status"`
	Priority  *int    `gorm:"column:priority"                                  json:"priority"`

	StartTime      *time.Time `gorm:"column:start_time"       json:"start_time"`
	DeliveryTime   *time.Time `gorm:"column:delivery_time"    json:"delivery_time"`
	AcceptedNextAt *time.Time `gorm:"column:accepted_next_at" json:"accepted_next_at"`

	ActualDuration    *string `gorm:"column:actual_duration;size:50"    json:"actual_duration"`
	EstimatedDuration *string `gorm:"column:estimated_duration;size:50" json:"estimated_duration"`
	EstimatedDistance *string `gorm:"column:estimated_distance;size:50" json:"estimated_distance"`

	StartLatitude  *float64 `gorm:"column:start_latitude"  json:"start_latitud"`
	StartLongitude *float64 `gorm:"column:start_longitude" json:"start_longitud"`
	EndLatitude    *float64 `gorm:"column:end_latitude"    json:"end_latitud"`
	EndLongitude   *float64 `gorm:"column:end_longitude"   json:"end_longitud"`
	Distance       *float64 `gorm:"column:distance"        json:"distance"`

	CancellationReason *string `gorm:"column:cancellation_reason;size:255" json:"cancellation_reason"`
	CancellationNotes  *string `gorm:"column:cancellation_notes;type:text" json:"cancellation_notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (d *Delivery) IsTerminal() bool {
	return IsTerminal(d.Status)
}
