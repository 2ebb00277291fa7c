package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoWorkingDay means an entire pay-date scan window contained no working
// day. Payroll anchors cannot be computed; callers must treat this as fatal.
var ErrNoWorkingDay = errors.New("no working day found for pay date")

//go:generate mockgen -source=calendar_service.go -destination=mock/calendar_service_mock.go -package=mock
type Service interface {
	IsWorkingDay(ctx context.Context, date time.Time) (bool, error)
	ChooseMidPayDate(ctx context.Context, year int, month time.Month) (time.Time, error)
	ChooseFinalPayDate(ctx context.Context, year int, month time.Month) (time.Time, error)
	SyncWindow(ctx context.Context, from, to time.Time) (int, error)
}

// SyncSource is the external system the rolling work-day window is pulled
// from. Holiday metadata never comes through here.
type SyncSource interface {
	FetchDayStatuses(ctx context.Context, from, to time.Time) ([]DayStatus, error)
}

type service struct {
	repo   Repository
	source SyncSource
	logger *zap.Logger
}

func NewService(repo Repository, source SyncSource, logger ...*zap.Logger) Service {
	l := zap.L().Named("calendar.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.service")
	}
	return &service{repo: repo, source: source, logger: l}
}

// IsWorkingDay reads the stored flag for the date. A missing row falls back
// to a Mon-Fri heuristic: ingestion must never hard-fail just because the
// calendar has not been synced yet.
func (s *service) IsWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	day, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return date.Weekday() >= time.Monday && date.Weekday() <= time.Friday, nil
		}
		return false, err
	}
	return day.WorkDay == 1, nil
}

// ChooseMidPayDate picks the mid-month salary anchor: the first working day
// scanning from the 16th downward (16..13 preferred, then on down to the 1st).
func (s *service) ChooseMidPayDate(ctx context.Context, year int, month time.Month) (time.Time, error) {
	return s.scanDown(ctx, year, month, 16, 1)
}

// ChooseFinalPayDate picks the end-of-month anchor: the first working day
// scanning from the last day downward (last..27 preferred, then to the 1st).
func (s *service) ChooseFinalPayDate(ctx context.Context, year int, month time.Month) (time.Time, error) {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return s.scanDown(ctx, year, month, lastDay, 1)
}

func (s *service) scanDown(ctx context.Context, year int, month time.Month, fromDay, toDay int) (time.Time, error) {
	for day := fromDay; day >= toDay; day-- {
		candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		working, err := s.IsWorkingDay(ctx, candidate)
		if err != nil {
			return time.Time{}, err
		}
		if working {
			return candidate, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %d-%02d days %d..%d", ErrNoWorkingDay, year, month, fromDay, toDay)
}

// SyncWindow refreshes the stored work-day flags for [from, to] from the
// external feed.
func (s *service) SyncWindow(ctx context.Context, from, to time.Time) (int, error) {
	days, err := s.source.FetchDayStatuses(ctx, from, to)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.UpsertWorkFlags(ctx, days)
	if err != nil {
		return 0, err
	}

	s.logger.Info("calendar window synced",
		zap.String("from", from.Format("2006-01-02")),
		zap.String("to", to.Format("2006-01-02")),
		zap.Int("days", n),
	)
	return n, nil
}
