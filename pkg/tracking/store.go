// Package tracking is the append-only log of GPS and lifecycle events.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"p9e.in/choferes/models"
	"p9e.in/choferes/utils"
)

// Store has no update or delete operations.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a Store bound to tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// Exists reports whether the delivery already has a point of eventType.
func (s *Store) Exists(ctx context.Context, deliveryID uint, eventType string) (bool, error) {
	var point models.TrackingPoint
	err := s.db.WithContext(ctx).
		Select("id").
		Where("delivery_id = ? AND event_type = ?", deliveryID, eventType).
		Take(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tracking event: %w", err)
	}
	return true, nil
}

// Append validates and persists one report for driverID. Uniqueness is the
// caller's concern.
func (s *Store) Append(ctx context.Context, report models.TrackingPointReport, driverID uint) (*models.TrackingPoint, error) {
	eventType := strings.TrimSpace(report.EventType)
	if eventType == "" {
		return nil, models.NewAppError(models.ErrBadRequest, "eventType is required")
	}
	if (report.Latitude == nil) != (report.Longitude == nil) {
		return nil, models.NewAppError(models.ErrBadRequest, "latitude and longitude must be sent together")
	}
	if loc := report.Location(); loc != nil {
		if err := utils.ValidateCoordinate(utils.Coordinate{Lat: loc.Latitude, Lng: loc.Longitude}); err != nil {
			return nil, models.NewAppError(models.ErrBadRequest, "%s", err.Error())
		}
	}

	ts := report.Timestamp.Time()
	if report.Timestamp.IsZero() {
		ts = time.Now().UTC()
	}

	point := &models.TrackingPoint{
		Latitude:   report.Latitude,
		Longitude:  report.Longitude,
		Timestamp:  ts,
		EventType:  eventType,
		DriverID:   driverID,
		DeliveryID: report.DeliveryID,
	}
	if err := s.db.WithContext(ctx).Create(point).Error; err != nil {
		return nil, fmt.Errorf("failed to append tracking point: %w", err)
	}
	return point, nil
}

// ListOrderedByTime returns the delivery's points by ascending timestamp.
func (s *Store) ListOrderedByTime(ctx context.Context, deliveryID uint) ([]models.TrackingPoint, error) {
	var points []models.TrackingPoint
	if err := s.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&points).Error; err != nil {
		return nil, fmt.Errorf("failed to list tracking points: %w", err)
	}
	return points, nil
}

// Path returns the located points as a line, keeping their order.
func Path(points []models.TrackingPoint) orb.LineString {
	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		if !p.HasLocation() {
			continue
		}
		line = append(line, orb.Point{*p.Longitude, *p.Latitude})
	}
	return line
}
