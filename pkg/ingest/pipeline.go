// Package ingest applies a batch of tracking events reported by one driver.
//
// The whole batch shares one transaction. Each event runs in its own
// savepoint, so an event that fails leaves no trace while the others are
// kept. Only a failure to commit the batch is returned as an error.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"p9e.in/choferes/models"
	"p9e.in/choferes/pkg/fec"
	"p9e.in/choferes/pkg/lifecycle"
	"p9e.in/choferes/pkg/notify"
	"p9e.in/choferes/pkg/tracking"
)

type Pipeline struct {
	db       *gorm.DB
	points   *tracking.Store
	engine   *lifecycle.Engine
	routes   *fec.Aggregator
	notifier notify.Notifier
	now      func() time.Time
}

func NewPipeline(db *gorm.DB, engine *lifecycle.Engine, routes *fec.Aggregator, notifier notify.Notifier) *Pipeline {
	return &Pipeline{
		db:       db,
		points:   tracking.NewStore(db),
		engine:   engine,
		routes:   routes,
		notifier: notifier,
		now:      time.Now,
	}
}

// outcome is what a successful event contributes to the batch.
type outcome struct {
	status     Status
	detail     string
	routeID    *uint
	completion *notify.Completion
}

// Ingest processes events in order for driverID.
func (p *Pipeline) Ingest(ctx context.Context, driverID uint, events []models.TrackingPointReport) (*BatchReport, error) {
	report := newBatchReport(len(events))
	var completions []notify.Completion

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected := map[uint]struct{}{}

		for i, ev := range events {
			item := ItemResult{Index: i, EventType: ev.EventType, DeliveryID: ev.DeliveryID}

			out, err := p.process(ctx, tx, driverID, ev)
			if err != nil {
				log.Printf("❌ Event %d (%s) for driver %d failed: %v", i, ev.EventType, driverID, err)
				item.Status = StatusFailed
				item.Error = err.Error()
				report.add(item)
				continue
			}

			item.Status = out.status
			item.Detail = out.detail
			report.add(item)
			if out.routeID != nil {
				affected[*out.routeID] = struct{}{}
			}
			if out.completion != nil {
				completions = append(completions, *out.completion)
			}
		}

		for _, routeID := range sortedIDs(affected) {
			report.AffectedRoutes = append(report.AffectedRoutes, routeID)

			var completed bool
			err := tx.Transaction(func(stx *gorm.DB) error {
				var err error
				completed, err = p.routes.WithTx(stx).EvaluateCompletion(ctx, routeID)
				return err
			})
			if err != nil {
				log.Printf("❌ Failed to evaluate completion of route id %d: %v", routeID, err)
				continue
			}
			if completed {
				report.CompletedRoutes = append(report.CompletedRoutes, routeID)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ CRITICAL: batch of %d events for driver %d was rolled back: %v", len(events), driverID, err)
		return nil, fmt.Errorf("%w: %v", models.NewAppError(models.ErrTransientStore, "tracking batch could not be saved"), err)
	}

	for _, c := range completions {
		if err := p.notifier.NotifyDeliveryCompleted(ctx, c); err != nil {
			log.Printf("⚠️  Completion notice for invoice %s not sent: %v", c.InvoiceID, err)
			continue
		}
		report.Notified++
	}

	log.Printf("✅ Batch for driver %d: %d received, %d applied, %d stored, %d duplicates, %d failed",
		driverID, report.Received, report.Applied, report.Stored, report.Duplicates, report.Failed)
	return report, nil
}

// process runs one event inside a savepoint. A panic is turned into an error
// after the savepoint has been rolled back.
func (p *Pipeline) process(ctx context.Context, tx *gorm.DB, driverID uint, ev models.TrackingPointReport) (out outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	err = tx.Transaction(func(stx *gorm.DB) error {
		var err error
		out, err = p.apply(ctx, stx, driverID, ev)
		return err
	})
	return out, err
}

func (p *Pipeline) apply(ctx context.Context, tx *gorm.DB, driverID uint, ev models.TrackingPointReport) (outcome, error) {
	points := p.points.WithTx(tx)
	ev.EventType = strings.TrimSpace(ev.EventType)
	if ev.Timestamp.IsZero() {
		ev.Timestamp = models.JSONTime(p.now().UTC())
	}

	if ev.DeliveryID == nil {
		if _, err := points.Append(ctx, ev, driverID); err != nil {
			return outcome{}, err
		}
		return outcome{status: StatusStored}, nil
	}

	engine := p.engine.WithTx(tx)
	delivery, err := engine.Find(ctx, *ev.DeliveryID, driverID)
	if errors.Is(err, models.ErrNotFound) {
		// Kept for the driver's trail, detached from a delivery it does not own.
		log.Printf("⚠️  Delivery %d not found for driver %d, point kept without delivery", *ev.DeliveryID, driverID)
		ev.DeliveryID = nil
		if _, err := points.Append(ctx, ev, driverID); err != nil {
			return outcome{}, err
		}
		return outcome{status: StatusStored, detail: "delivery not found for this driver"}, nil
	}
	if err != nil {
		return outcome{}, err
	}

	if models.IsLifecycleEvent(ev.EventType) {
		exists, err := points.Exists(ctx, delivery.ID, ev.EventType)
		if err != nil {
			return outcome{}, err
		}
		if exists {
			log.Printf("⚠️  Duplicate %s for delivery %d ignored", ev.EventType, delivery.ID)
			return outcome{status: StatusDuplicate}, nil
		}
	}

	if _, err := points.Append(ctx, ev, driverID); err != nil {
		return outcome{}, err
	}
	out := outcome{status: StatusStored, routeID: &delivery.RouteID}

	at := ev.Timestamp.Time()
	var changed bool
	switch ev.EventType {
	case models.EventStartDelivery:
		changed, err = engine.Start(ctx, delivery, at, ev.Location(), ev.EstimatedDuration, ev.EstimatedDistance)
	case models.EventEndDelivery:
		changed, err = engine.Complete(ctx, delivery, at, ev.Location())
	default:
		return out, nil
	}
	if err != nil {
		return outcome{}, err
	}
	if !changed {
		out.detail = "delivery already " + delivery.Status
		return out, nil
	}

	out.status = StatusApplied
	if ev.EventType == models.EventEndDelivery {
		out.completion = completionFor(delivery, at)
	}
	return out, nil
}

// completionFor returns nil when the salesperson phone or the invoice is missing.
func completionFor(d *models.Delivery, at time.Time) *notify.Completion {
	phone, ok := d.Client.NotifiablePhone()
	if !ok || d.InvoiceID == nil || *d.InvoiceID == "" {
		log.Printf("⚠️  Missing salesperson phone or invoice for delivery %d, no completion notice", d.ID)
		return nil
	}
	return &notify.Completion{
		SalespersonPhone: phone,
		ClientID:         d.ClientID,
		ClientName:       d.Client.Name,
		InvoiceID:        *d.InvoiceID,
		CompletedAt:      at,
	}
}

func sortedIDs(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
