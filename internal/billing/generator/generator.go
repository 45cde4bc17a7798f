// Package generator materializes due bills from active schedules.
//
// Each pass is idempotent: the horizon check in the selection query means a
// schedule whose latest bill is already far enough in the future is skipped,
// so re-running after a failed commit simply re-selects the same schedules.
package generator

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/fakturalabs/faktura/internal/audit/domain"
	billingdomain "github.com/fakturalabs/faktura/internal/billing/domain"
	"github.com/fakturalabs/faktura/internal/clock"
	"github.com/fakturalabs/faktura/internal/config"
	"github.com/fakturalabs/faktura/internal/events"
	"github.com/fakturalabs/faktura/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Store    billingdomain.Store
	Clock    clock.Clock
	Cfg      config.Config
	AuditSvc auditdomain.Service       `optional:"true"`
	Metrics  *metrics.GeneratorMetrics `optional:"true"`
	Outbox   *events.Outbox            `optional:"true"`
}

type Generator struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	store       billingdomain.Store
	clock       clock.Clock
	auditSvc    auditdomain.Service
	metrics     *metrics.GeneratorMetrics
	outbox      *events.Outbox
	horizonDays int
	systemActor snowflake.ID
}

func New(p Params) *Generator {
	horizon := p.Cfg.Generator.HorizonDays
	if horizon <= 0 {
		horizon = 10
	}
	return &Generator{
		db:          p.DB,
		log:         p.Log.Named("billing.generator"),
		genID:       p.GenID,
		store:       p.Store,
		clock:       p.Clock,
		auditSvc:    p.AuditSvc,
		metrics:     p.Metrics,
		outbox:      p.Outbox,
		horizonDays: horizon,
		systemActor: snowflake.ID(p.Cfg.Generator.SystemActorID),
	}
}

// RunOnce executes one generation pass at the current clock time.
func (g *Generator) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	created, err := g.GenerateDueBills(ctx, g.clock.Now())
	if err != nil {
		g.metrics.ObserveRun("failed", time.Since(start))
		return created, err
	}
	g.metrics.ObserveRun("success", time.Since(start))
	return created, nil
}

// GenerateDueBills selects schedules due for a new bill within the horizon
// and inserts one bill per schedule in a single transaction. It returns the
// number of bills created.
func (g *Generator) GenerateDueBills(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()

	schedules, err := g.store.ListDueSchedules(ctx, g.db, now, g.horizonDays)
	if err != nil {
		return 0, err
	}
	g.metrics.SetSchedulesDue(len(schedules))
	if len(schedules) == 0 {
		return 0, nil
	}

	bills := make([]billingdomain.Bill, 0, len(schedules))
	for i := range schedules {
		bill := g.buildBill(&schedules[i], now)
		// The horizon scan re-selects a schedule whose only bill is due
		// earlier in the current month. Skip it when the computed due
		// date is already billed, so a re-run inserts nothing instead of
		// hitting the uniqueness backstop.
		billed, err := g.store.HasBillForScheduleOn(ctx, g.db, schedules[i].ID, bill.DueDate)
		if err != nil {
			return 0, err
		}
		if billed {
			continue
		}
		bills = append(bills, bill)
	}
	if len(bills) == 0 {
		return 0, nil
	}

	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := g.store.InsertBills(ctx, tx, bills); err != nil {
			return err
		}
		return g.publishBillEvents(ctx, tx, bills)
	})
	if err != nil {
		return 0, err
	}

	g.metrics.AddBillsCreated(len(bills))
	g.log.Info("generated bills",
		zap.Int("count", len(bills)),
		zap.Time("run_at", now),
	)
	g.recordRun(ctx, len(bills), now)
	return len(bills), nil
}

// buildBill stamps a new bill for the schedule's due day in the current
// month, with the system actor on the audit fields.
func (g *Generator) buildBill(schedule *billingdomain.BillSchedule, now time.Time) billingdomain.Bill {
	scheduleID := schedule.ID
	return billingdomain.Bill{
		ID:         g.genID.Generate(),
		AccountID:  schedule.AccountID,
		ScheduleID: &scheduleID,
		Name:       schedule.Name,
		Amount:     schedule.Amount,
		Currency:   schedule.Currency,
		DueDate:    dueDateFor(now, schedule.DayDue),
		Metadata:   datatypes.JSONMap{},
		CreatedBy:  g.systemActor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// dueDateFor applies the schedule's day-of-month to the current calendar
// month. A day past the month's end is clamped to the last day, so a
// day-31 schedule bills on Feb 28/29 instead of rolling into March.
func dueDateFor(now time.Time, dayDue int) time.Time {
	year, month, _ := now.UTC().Date()
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dayDue > lastDay {
		dayDue = lastDay
	}
	if dayDue < 1 {
		dayDue = 1
	}
	return time.Date(year, month, dayDue, 0, 0, 0, 0, time.UTC)
}

// publishBillEvents writes one outbox event per bill inside the generation
// transaction. The dedupe key mirrors the bills uniqueness backstop.
func (g *Generator) publishBillEvents(ctx context.Context, tx *gorm.DB, bills []billingdomain.Bill) error {
	if g.outbox == nil {
		return nil
	}
	for i := range bills {
		bill := &bills[i]
		payload := events.BillCreatedPayload{
			BillID:    bill.ID.String(),
			AccountID: bill.AccountID.String(),
			DueDate:   bill.DueDate.Format(time.RFC3339),
		}
		dedupe := bill.ID.String()
		if bill.ScheduleID != nil {
			payload.ScheduleID = bill.ScheduleID.String()
			dedupe = bill.ScheduleID.String() + ":" + bill.DueDate.Format("2006-01-02")
		}
		err := g.outbox.PublishTx(ctx, tx, events.Event{
			AccountID: bill.AccountID,
			Type:      events.EventBillCreated,
			Payload:   payload.ToMap(),
			DedupeKey: dedupe,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) recordRun(ctx context.Context, created int, now time.Time) {
	if g.auditSvc == nil || created == 0 {
		return
	}
	entry := &auditdomain.AuditLog{
		ActorType:  string(auditdomain.ActorTypeSystem),
		Action:     auditdomain.ActionBillsGenerated,
		TargetType: auditdomain.TargetTypeSchedule,
		Metadata: datatypes.JSONMap{
			"count":  strconv.Itoa(created),
			"run_at": now.Format(time.RFC3339),
		},
	}
	if err := g.auditSvc.Record(ctx, entry); err != nil {
		g.log.Warn("failed to record generation run", zap.Error(err))
	}
}
