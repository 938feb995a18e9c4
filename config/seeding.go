package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"p9e.in/choferes/models"
)

// Demo credentials created by SeedDemoData.
const (
	DemoUsername = "chofer.demo"
	DemoPassword = "entrega123"
	DemoRoute    = 1001
)

// SeedDemoData creates one driver with a route of three deliveries. It is a
// no-op when the demo driver already exists.
func SeedDemoData(db *gorm.DB) error {
	log.Println("=== Starting Demo Seeding ===")

	var existing models.Driver
	err := db.Where("username = ?", DemoUsername).First(&existing).Error
	if err == nil {
		log.Printf("⚠️  Demo driver %s already exists, skipping seeding", DemoUsername)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up demo driver: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		driver := models.Driver{
			Username:     DemoUsername,
			PasswordHash: string(hash),
			UnitNumber:   "U-07",
			VehiclePlate: "ABC-123-D",
			PhoneNumber:  "5511122233",
		}
		if err := tx.Create(&driver).Error; err != nil {
			return fmt.Errorf("failed to create driver: %w", err)
		}

		phone := "5599988877"
		seller := models.Salesperson{Name: "Laura Méndez", Phone: &phone}
		if err := tx.Create(&seller).Error; err != nil {
			return fmt.Errorf("failed to create salesperson: %w", err)
		}

		clients := []models.Client{
			{Name: "Abarrotes La Esperanza", GPSLocation: "19.4326,-99.1332", SalespersonID: &seller.ID},
			{Name: "Farmacia San Rafael", GPSLocation: "19.4270,-99.1677", SalespersonID: &seller.ID},
			{Name: "Papelería El Lápiz", GPSLocation: "19.4204,-99.1890"},
		}
		if err := tx.Create(&clients).Error; err != nil {
			return fmt.Errorf("failed to create clients: %w", err)
		}

		route := models.Route{
			Number:   DemoRoute,
			DriverID: driver.ID,
			Date:     datatypes.Date(time.Now().UTC()),
			Status:   models.RouteStatusPending,
		}
		if err := tx.Create(&route).Error; err != nil {
			return fmt.Errorf("failed to create route: %w", err)
		}

		for i, c := range clients {
			invoice := fmt.Sprintf("F-%d-%03d", DemoRoute, i+1)
			priority := i + 1
			d := models.Delivery{
				RouteID:   route.ID,
				DriverID:  driver.ID,
				ClientID:  c.ID,
				InvoiceID: &invoice,
				Priority:  &priority,
				Status:    models.DeliveryStatusPending,
			}
			if err := tx.Create(&d).Error; err != nil {
				return fmt.Errorf("failed to create delivery: %w", err)
			}
		}

		log.Printf("✅ Seeded demo driver %s with route %d (%d deliveries)", DemoUsername, DemoRoute, len(clients))
		return nil
	})
}
