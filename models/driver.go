// models/driver.go
package models

import "time"

// Driver is provisioned externally; the API never mutates it.
type Driver struct {
	ID           uint      `gorm:"primaryKey"                                 json:"driver_id"`
	Username     string    `gorm:"column:username;size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"     json:"-"`
	UnitNumber   string    `gorm:"column:unit_number;size:50"                 json:"num_unity"`
	VehiclePlate string    `gorm:"column:vehicle_plate;size:20"               json:"vehicle_plate"`
	PhoneNumber  string    `gorm:"column:phone_number;size:20"                json:"phone_number"`
	CreatedAt    time.Time `gorm:"autoCreateTime"                             json:"-"`
}

type Salesperson struct {
	ID      uint     `gorm:"primaryKey"                json:"salesperson_id"`
	Name    string   `gorm:"column:name;size:100;not null" json:"name"`
	Phone   *string  `gorm:"column:phone;size:20"      json:"phone"`
	Clients []Client `gorm:"foreignKey:SalespersonID"  json:"-"`
}

// Client.GPSLocation is free text in "lat,lng" form; see utils.ParseGPSLocation.
type Client struct {
	ID            uint         `gorm:"primaryKey"                      json:"client_id"`
	Name          string       `gorm:"column:name;size:150;not null"   json:"name"`
	Phone         *string      `gorm:"column:phone;size:20"            json:"phone"`
	GPSLocation   string       `gorm:"column:gps_location;size:100"    json:"gps_location"`
	SalespersonID *uint        `gorm:"column:salesperson_id;index"     json:"-"`
	Salesperson   *Salesperson `gorm:"foreignKey:SalespersonID"        json:"salesperson,omitempty"`
}

// NotifiablePhone returns the salesperson phone to notify on completion, if any.
func (c *Client) NotifiablePhone() (string, bool) {
	if c == nil || c.Salesperson == nil || c.Salesperson.Phone == nil || *c.Salesperson.Phone == "" {
		return "", false
	}
	return *c.Salesperson.Phone, true
}

func (Salesperson) TableName() string {
	return "salespersons"
}
