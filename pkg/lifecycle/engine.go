// Package lifecycle owns the delivery state machine:
//
//	pending -> in_progress -> completed
//	pending | in_progress -> cancelled (incident)
//
// completed and cancelled are absorbing. Transitions requested against a
// terminal delivery are no-ops that report changed == false.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"p9e.in/choferes/models"
	"p9e.in/choferes/pkg/geo"
	"p9e.in/choferes/pkg/tracking"
)

type Engine struct {
	db     *gorm.DB
	points *tracking.Store
	now    func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{
		db:     db,
		points: tracking.NewStore(db),
		now:    time.Now,
	}
}

// WithTx returns an Engine whose reads and writes go through tx.
func (e *Engine) WithTx(tx *gorm.DB) *Engine {
	return &Engine{db: tx, points: e.points.WithTx(tx), now: e.now}
}

// SetClock replaces the time source used for incidents and acceptance.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Find loads a delivery owned by driverID with its client and salesperson.
func (e *Engine) Find(ctx context.Context, deliveryID, driverID uint) (*models.Delivery, error) {
	var d models.Delivery
	err := e.db.WithContext(ctx).
		Preload("Client.Salesperson").
		Where("id = ? AND driver_id = ?", deliveryID, driverID).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewAppError(models.ErrNotFound, "delivery %d not found for this driver", deliveryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery %d: %w", deliveryID, err)
	}
	return &d, nil
}

// Start moves a delivery to in_progress, recording the start time and
// location reported by the device. Start overwrites any seeded start location.
func (e *Engine) Start(ctx context.Context, d *models.Delivery, at time.Time, loc *models.Location, estimatedDuration, estimatedDistance *string) (bool, error) {
	if !models.CanTransition(d.Status, models.DeliveryStatusInProgress) {
		log.Printf("⚠️  Delivery %d is %s, ignoring start", d.ID, d.Status)
		return false, nil
	}

	start := at.UTC()
	d.Status = models.DeliveryStatusInProgress
	d.StartTime = &start
	if loc != nil {
		d.StartLatitude = &loc.Latitude
		d.StartLongitude = &loc.Longitude
	}
	if nonEmpty(estimatedDuration) {
		d.EstimatedDuration = estimatedDuration
	}
	if nonEmpty(estimatedDistance) {
		d.EstimatedDistance = estimatedDistance
	}

	if err := e.save(ctx, d); err != nil {
		return false, err
	}
	log.Printf("✅ Delivery %d started at %s", d.ID, start.Format(time.RFC3339))
	return true, nil
}

// Complete moves a non-terminal delivery to completed and finalizes it.
func (e *Engine) Complete(ctx context.Context, d *models.Delivery, at time.Time, loc *models.Location) (bool, error) {
	if !models.CanTransition(d.Status, models.DeliveryStatusCompleted) {
		log.Printf("⚠️  Delivery %d is %s, ignoring completion", d.ID, d.Status)
		return false, nil
	}

	d.Status = models.DeliveryStatusCompleted
	if err := e.finalize(ctx, d, at, loc); err != nil {
		return false, err
	}
	if err := e.save(ctx, d); err != nil {
		return false, err
	}
	log.Printf("✅ Delivery %d completed (%.2f km)", d.ID, *d.Distance)
	return true, nil
}

// ReportIncident cancels a delivery. A synthetic end_delivery point is
// appended at the current time so duration and distance are derived the same
// way as for a normal completion. An already terminal delivery is returned
// unchanged.
func (e *Engine) ReportIncident(ctx context.Context, deliveryID, driverID uint, incident models.IncidentReport) (*models.Delivery, error) {
	reason := strings.TrimSpace(incident.Reason)

	var result *models.Delivery
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := e.WithTx(tx)

		d, err := eng.Find(ctx, deliveryID, driverID)
		if err != nil {
			return err
		}
		if reason == "" {
			return models.NewAppError(models.ErrBadRequest, "reason is required")
		}
		if d.IsTerminal() {
			log.Printf("⚠️  Incident reported for delivery %d already %s, nothing to do", d.ID, d.Status)
			result = d
			return nil
		}

		now := e.now().UTC()
		if _, err := eng.points.Append(ctx, models.TrackingPointReport{
			Latitude:   incident.Latitude,
			Longitude:  incident.Longitude,
			Timestamp:  models.JSONTime(now),
			EventType:  models.EventEndDelivery,
			DeliveryID: &d.ID,
		}, driverID); err != nil {
			return err
		}

		d.Status = models.DeliveryStatusCancelled
		d.CancellationReason = &reason
		d.CancellationNotes = incident.Notes
		if err := eng.finalize(ctx, d, now, incident.Location()); err != nil {
			return err
		}
		if err := eng.save(ctx, d); err != nil {
			return err
		}

		log.Printf("✅ Delivery %d cancelled: %s", d.ID, reason)
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AcceptNext records when the driver acknowledged moving on to this stop.
// The first acknowledgement wins.
func (e *Engine) AcceptNext(ctx context.Context, deliveryID, driverID uint) (*models.Delivery, error) {
	var result *models.Delivery
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := e.WithTx(tx)

		d, err := eng.Find(ctx, deliveryID, driverID)
		if err != nil {
			return err
		}
		if d.AcceptedNextAt == nil {
			now := e.now().UTC()
			d.AcceptedNextAt = &now
			if err := eng.save(ctx, d); err != nil {
				return err
			}
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// finalize sets the completion time and location, the whole seconds since
// start, and the distance over every point of the delivery.
func (e *Engine) finalize(ctx context.Context, d *models.Delivery, at time.Time, loc *models.Location) error {
	end := at.UTC()
	d.DeliveryTime = &end
	if loc != nil {
		d.EndLatitude = &loc.Latitude
		d.EndLongitude = &loc.Longitude
	}

	if d.StartTime != nil {
		seconds := int64(end.Sub(d.StartTime.UTC()) / time.Second)
		duration := strconv.FormatInt(seconds, 10)
		d.ActualDuration = &duration
	}

	points, err := e.points.ListOrderedByTime(ctx, d.ID)
	if err != nil {
		return err
	}
	distance := geo.PathDistanceKm(tracking.Path(points))
	d.Distance = &distance
	return nil
}

func (e *Engine) save(ctx context.Context, d *models.Delivery) error {
	if err := e.db.WithContext(ctx).Omit(clause.Associations).Save(d).Error; err != nil {
		return fmt.Errorf("failed to save delivery %d: %w", d.ID, err)
	}
	return nil
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
