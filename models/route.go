// models/route.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RouteStatusPending    = "pending"
	RouteStatusInProgress = "in_progress"
	RouteStatusCompleted  = "completed"
)

// Route is a driver's daily delivery assignment (FEC). Number is unique per
// driver, not globally.
type Route struct {
	ID             uint           `gorm:"primaryKey"                                            json:"fec_id"`
	Number         int            `gorm:"column:number;not null;uniqueIndex:idx_route_driver_number" json:"fec_number"`
	DriverID       uint           `gorm:"column:driver_id;not null;uniqueIndex:idx_route_driver_number" json:"driver_id"`
	Driver         *Driver        `gorm:"foreignKey:DriverID"                                   json:"-"`
	Date           datatypes.Date `gorm:"column:date"                                           json:"fec_date"`
	Status         string         `gorm:"column:status;size:20;not null;default:pending"        json:"status"`
	OptimizedOrder *string        `gorm:"column:optimized_order;type:text"                      json:"optimized_order_list_json"`
	Polyline       *string        `gorm:"column:polyline;type:text"                             json:"suggested_journey_polyline"`
	Deliveries     []Delivery     `gorm:"foreignKey:RouteID"                                    json:"deliveries"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"                                        json:"-"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"                                        json:"-"`
}

// AllDeliveriesTerminal reports whether every loaded delivery is completed or
// cancelled. An empty route is considered finished.
func (r *Route) AllDeliveriesTerminal() bool {
	for _, d := range r.Deliveries {
		if !IsTerminal(d.Status) {
			return false
		}
	}
	return true
}
