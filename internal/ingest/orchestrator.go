package ingest

import (
	"context"
	"errors"
	"time"

	"go-timesheet/internal/attendance"
	"go-timesheet/internal/biometric"
	"go-timesheet/internal/payroll"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LateNotifier receives the late-arrival map collected from the today pass.
// Backfill passes never notify: catching up after an outage must not flood
// anyone with stale alerts.
type LateNotifier interface {
	NotifyLate(ctx context.Context, date time.Time, late map[string]attendance.LateEmployee) error
}

type Config struct {
	Source     string
	ScopeCodes []string
}

type CycleResult struct {
	BackfilledDays int    `json:"backfilled_days"`
	TodayProcessed bool   `json:"today_processed"`
	Reconciled     bool   `json:"reconciled_yesterday"`
	Outage         bool   `json:"outage"`
	OutageReason   string `json:"outage_reason,omitempty"`
	LateNotified   int    `json:"late_notified"`
}

//go:generate mockgen -source=orchestrator.go -destination=mock/orchestrator_mock.go -package=mock
type Orchestrator interface {
	RunCycle(ctx context.Context) (*CycleResult, error)
	Status(ctx context.Context) (*Cursor, error)
}

type orchestrator struct {
	db        *gorm.DB
	cursors   Repository
	ingestor  attendance.Service
	generator payroll.Generator
	notifier  LateNotifier
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger
}

func NewOrchestrator(
	db *gorm.DB,
	cursors Repository,
	ingestor attendance.Service,
	generator payroll.Generator,
	notifier LateNotifier,
	cfg Config,
	logger ...*zap.Logger,
) Orchestrator {
	l := zap.L().Named("ingest.orchestrator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("ingest.orchestrator")
	}
	return &orchestrator{
		db:        db,
		cursors:   cursors,
		ingestor:  ingestor,
		generator: generator,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
		logger:    l,
	}
}

// RunCycle executes one full pass: backfill every missed day up to
// yesterday, process today, then best-effort reconcile yesterday. The
// cursor row stays locked for the backfill and today passes so concurrent
// scheduler triggers serialize; the yesterday pass deliberately runs
// outside the lock because upserts make re-running safe.
func (o *orchestrator) RunCycle(ctx context.Context) (*CycleResult, error) {
	now := o.now()
	today := dateOnly(now)
	result := &CycleResult{}

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := o.cursors.WithTx(tx)

		cursor, err := qtx.LockBySource(ctx, o.cfg.Source)
		if err != nil {
			return err
		}

		start := today
		if cursor.LastSuccessDate != nil {
			start = cursor.LastSuccessDate.AddDate(0, 0, 1)
		}

		for day := start; day.Before(today); day = day.AddDate(0, 0, 1) {
			if _, err := o.processDay(ctx, day, endOfDay(day)); err != nil {
				if errors.Is(err, biometric.ErrSourceUnavailable) {
					o.markOutage(cursor, err, now, result)
					return qtx.Save(ctx, cursor)
				}
				return err
			}
			// Advance even on empty or non-working days: forward progress
			// beats reprocessing days that will never yield data.
			d := day
			cursor.LastSuccessDate = &d
			result.BackfilledDays++
		}

		todayRes, err := o.processDay(ctx, today, now)
		if err != nil {
			if errors.Is(err, biometric.ErrSourceUnavailable) {
				o.markOutage(cursor, err, now, result)
				return qtx.Save(ctx, cursor)
			}
			return err
		}
		result.TodayProcessed = true
		result.LateNotified = o.notifyLate(ctx, today, todayRes.Late)

		cursor.Status = StatusOK
		cursor.OutageStartedAt = nil
		cursor.Reason = ""
		cursor.LastRunAt = &now
		return qtx.Save(ctx, cursor)
	})
	if err != nil {
		return nil, err
	}
	if result.Outage {
		o.logger.Warn("source outage, backfill halted",
			zap.String("source", o.cfg.Source),
			zap.String("reason", result.OutageReason),
		)
		return result, nil
	}

	// Second pass over yesterday picks up checkouts that landed after the
	// day's main run. No lock, no cursor movement.
	yesterday := today.AddDate(0, 0, -1)
	if _, err := o.processDay(ctx, yesterday, endOfDay(yesterday)); err != nil {
		o.logger.Warn("yesterday reconciliation failed",
			zap.String("date", yesterday.Format("2006-01-02")),
			zap.Error(err),
		)
	} else {
		result.Reconciled = true
	}

	o.logger.Info("cycle complete",
		zap.Int("backfilled_days", result.BackfilledDays),
		zap.Bool("today_processed", result.TodayProcessed),
		zap.Bool("reconciled_yesterday", result.Reconciled),
	)
	return result, nil
}

// processDay ingests one day's window and regenerates its payroll cells.
func (o *orchestrator) processDay(ctx context.Context, day, end time.Time) (*attendance.IngestResult, error) {
	res, err := o.ingestor.IngestWindow(ctx, attendance.IngestRequest{
		Begin:      day,
		End:        end,
		ScopeCodes: o.cfg.ScopeCodes,
	})
	if err != nil {
		return nil, err
	}
	if _, err := o.generator.GenerateDate(ctx, day); err != nil {
		return nil, err
	}
	return res, nil
}

func (o *orchestrator) notifyLate(ctx context.Context, today time.Time, late map[string]attendance.LateEmployee) int {
	if o.notifier == nil || len(late) == 0 {
		return 0
	}
	if err := o.notifier.NotifyLate(ctx, today, late); err != nil {
		o.logger.Warn("late notification failed", zap.Error(err))
		return 0
	}
	return len(late)
}

func (o *orchestrator) markOutage(cursor *Cursor, err error, now time.Time, result *CycleResult) {
	result.Outage = true
	result.OutageReason = err.Error()
	cursor.Status = StatusOutage
	cursor.Reason = err.Error()
	if cursor.OutageStartedAt == nil {
		cursor.OutageStartedAt = &now
	}
	cursor.LastRunAt = &now
}

func (o *orchestrator) Status(ctx context.Context) (*Cursor, error) {
	return o.cursors.FindBySource(ctx, o.cfg.Source)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(day time.Time) time.Time {
	return day.Add(24*time.Hour - time.Second)
}
