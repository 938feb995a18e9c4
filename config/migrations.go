package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/choferes/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "02062025_create_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Driver{}, &models.Salesperson{}, &models.Client{},
					&models.Route{}, &models.Delivery{}, &models.TrackingPoint{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("tracking_points", "deliveries", "routes", "clients", "salespersons", "drivers")
			},
		},
		{
			ID: "18062025_add_delivery_acceptance_and_estimates",
			Migrate: func(tx *gorm.DB) error {
				for _, field := range []string{"AcceptedNextAt", "EstimatedDistance"} {
					if !tx.Migrator().HasColumn(&models.Delivery{}, field) {
						if err := tx.Migrator().AddColumn(&models.Delivery{}, field); err != nil {
							return err
						}
					}
				}
				return nil
			},
		},
	})

	return m.Migrate()
}
