// Package testdb opens a migrated temporary SQLite database for package tests.
package testdb

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"p9e.in/choferes/config"
	"p9e.in/choferes/models"
)

// Open returns a fresh migrated database that is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := config.Migrations(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Fixture is a driver with one route; deliveries are added with AddDelivery.
type Fixture struct {
	DB          *gorm.DB
	Driver      models.Driver
	Salesperson models.Salesperson
	Client      models.Client
	Route       models.Route
}

// NewFixture seeds a driver, a salesperson with a phone, a client and a
// pending route with the given number.
func NewFixture(t testing.TB, db *gorm.DB, username string, routeNumber int) *Fixture {
	t.Helper()

	f := &Fixture{DB: db}
	f.Driver = models.Driver{Username: username, PasswordHash: "x"}
	mustCreate(t, db, &f.Driver)

	phone := "5599988877"
	f.Salesperson = models.Salesperson{Name: "Vendedor " + username, Phone: &phone}
	mustCreate(t, db, &f.Salesperson)

	f.Client = models.Client{Name: "Cliente " + username, GPSLocation: "19.4326,-99.1332", SalespersonID: &f.Salesperson.ID}
	mustCreate(t, db, &f.Client)

	f.Route = models.Route{
		Number:   routeNumber,
		DriverID: f.Driver.ID,
		Date:     datatypes.Date(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
		Status:   models.RouteStatusPending,
	}
	mustCreate(t, db, &f.Route)
	return f
}

// AddDelivery creates a pending delivery on the fixture route.
func (f *Fixture) AddDelivery(t testing.TB, invoice string) models.Delivery {
	t.Helper()

	d := models.Delivery{
		RouteID:  f.Route.ID,
		DriverID: f.Driver.ID,
		ClientID: f.Client.ID,
		Status:   models.DeliveryStatusPending,
	}
	if invoice != "" {
		d.InvoiceID = &invoice
	}
	mustCreate(t, f.DB, &d)
	return d
}

// Reload fetches the current state of a delivery.
func Reload(t testing.TB, db *gorm.DB, id uint) models.Delivery {
	t.Helper()
	var d models.Delivery
	if err := db.First(&d, id).Error; err != nil {
		t.Fatalf("reload delivery %d: %v", id, err)
	}
	return d
}

// RouteStatus returns the stored status of a route.
func RouteStatus(t testing.TB, db *gorm.DB, id uint) string {
	t.Helper()
	var r models.Route
	if err := db.First(&r, id).Error; err != nil {
		t.Fatalf("reload route %d: %v", id, err)
	}
	return r.Status
}

func mustCreate(t testing.TB, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}
