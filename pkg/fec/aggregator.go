// Package fec derives route (FEC) status from its deliveries and stores the
// optimizer output for a route.
package fec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"p9e.in/choferes/models"
)

type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// WithTx returns an Aggregator bound to tx.
func (a *Aggregator) WithTx(tx *gorm.DB) *Aggregator {
	return &Aggregator{db: tx}
}

// Find loads a route by number for a driver without changing it.
func (a *Aggregator) Find(ctx context.Context, number int, driverID uint) (*models.Route, error) {
	var route models.Route
	err := a.withDeliveries(a.db.WithContext(ctx)).
		Where("number = ? AND driver_id = ?", number, driverID).
		First(&route).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewAppError(models.ErrNotFound, "route %d not found for this driver", number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load route %d: %w", number, err)
	}
	return &route, nil
}

// GetOrStart returns a driver's route. The first fetch of a pending route
// moves it to in_progress. A completed route cannot be reopened.
func (a *Aggregator) GetOrStart(ctx context.Context, number int, driverID uint) (*models.Route, error) {
	var route *models.Route
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		agg := a.WithTx(tx)

		r, err := agg.Find(ctx, number, driverID)
		if err != nil {
			return err
		}
		if r.Status == models.RouteStatusCompleted {
			return models.NewAppError(models.ErrForbidden, "route %d is already completed and cannot be started again", number)
		}
		if r.Status == models.RouteStatusPending {
			if err := agg.setStatus(ctx, r, models.RouteStatusInProgress); err != nil {
				return err
			}
			log.Printf("✅ Route %d (id %d) started", r.Number, r.ID)
		}
		if _, err := agg.evaluate(ctx, r); err != nil {
			return err
		}
		route = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return route, nil
}

// EvaluateCompletion marks the route completed once every delivery is
// completed or cancelled. Calling it again is harmless.
func (a *Aggregator) EvaluateCompletion(ctx context.Context, routeID uint) (bool, error) {
	var route models.Route
	err := a.db.WithContext(ctx).
		Preload("Deliveries", func(db *gorm.DB) *gorm.DB { return db.Select("id", "route_id", "status") }).
		First(&route, routeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, models.NewAppError(models.ErrNotFound, "route id %d not found", routeID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to load route id %d: %w", routeID, err)
	}
	return a.evaluate(ctx, &route)
}

func (a *Aggregator) evaluate(ctx context.Context, route *models.Route) (bool, error) {
	if route.Status == models.RouteStatusCompleted || !route.AllDeliveriesTerminal() {
		return false, nil
	}
	if err := a.setStatus(ctx, route, models.RouteStatusCompleted); err != nil {
		return false, err
	}
	log.Printf("✅ All deliveries of route %d (id %d) are finished, route completed", route.Number, route.ID)
	return true, nil
}

// RecordOptimizedRoute stores the optimizer's stop order and polyline as
// sent. Only JSON syntax is checked; ids are not matched to deliveries.
func (a *Aggregator) RecordOptimizedRoute(ctx context.Context, routeID, driverID uint, data models.OptimizedRouteData) (*models.Route, error) {
	if !json.Valid([]byte(data.OptimizedOrderListJSON)) {
		return nil, models.NewAppError(models.ErrBadRequest, "optimized_order_list_json is not valid JSON")
	}

	var route models.Route
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND driver_id = ?", routeID, driverID).First(&route).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewAppError(models.ErrNotFound, "route id %d not found for this driver", routeID)
		}
		if err != nil {
			return fmt.Errorf("failed to load route id %d: %w", routeID, err)
		}

		route.OptimizedOrder = &data.OptimizedOrderListJSON
		route.Polyline = &data.SuggestedJourneyPolyline
		if err := tx.Model(&route).Updates(map[string]interface{}{
			"optimized_order": data.OptimizedOrderListJSON,
			"polyline":        data.SuggestedJourneyPolyline,
		}).Error; err != nil {
			return fmt.Errorf("failed to store optimized route: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Optimized route stored for route id %d", routeID)
	return &route, nil
}

func (a *Aggregator) setStatus(ctx context.Context, route *models.Route, status string) error {
	if err := a.db.WithContext(ctx).Model(route).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to set route %d to %s: %w", route.ID, status, err)
	}
	route.Status = status
	return nil
}

func (a *Aggregator) withDeliveries(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Deliveries", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Deliveries.Client.Salesperson")
}
