package attendance

import (
	"context"
	"errors"
	"time"

	"go-timesheet/internal/biometric"
	"go-timesheet/internal/calendar"
	"go-timesheet/internal/identity"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportSource is the vendor attendance report feed.
type ReportSource interface {
	FetchReport(ctx context.Context, q biometric.ReportQuery) ([]biometric.ReportRecord, error)
	DurationsInSeconds() bool
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	IngestWindow(ctx context.Context, req IngestRequest) (*IngestResult, error)
}

type service struct {
	db       *gorm.DB
	facts    Repository
	vendor   ReportSource
	resolver identity.Resolver
	calendar calendar.Service
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *gorm.DB,
	facts Repository,
	vendor ReportSource,
	resolver identity.Resolver,
	cal calendar.Service,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:       db,
		facts:    facts,
		vendor:   vendor,
		resolver: resolver,
		calendar: cal,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

// IngestWindow pulls the vendor report for the window and upserts one daily
// fact per resolvable record. A single record's failure is logged and
// skipped; it never aborts the batch. A vendor outage propagates unwrapped
// so the orchestrator can halt the backfill loop.
func (s *service) IngestWindow(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	records, err := s.vendor.FetchReport(ctx, biometric.ReportQuery{
		Begin:      req.Begin,
		End:        req.End,
		ScopeCodes: req.ScopeCodes,
		PersonCode: req.PersonCode,
	})
	if err != nil {
		return nil, err
	}

	day := dateOnly(req.Begin)
	workingDay, err := s.calendar.IsWorkingDay(ctx, day)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Late: make(map[string]LateEmployee)}
	secondsUnit := s.vendor.DurationsInSeconds()

	for _, rec := range records {
		u, err := s.resolver.Resolve(ctx, rec.PersonCode)
		if err != nil {
			if errors.Is(err, identity.ErrUnknownPerson) {
				s.logger.Warn("unresolvable person code, record skipped",
					zap.String("person_code", rec.PersonCode),
					zap.String("date", day.Format("2006-01-02")),
				)
				result.Skipped++
				continue
			}
			return nil, err
		}

		fact := deriveFact(deriveInput{
			Record:      rec,
			User:        u,
			Day:         day,
			WorkingDay:  workingDay,
			SecondsUnit: secondsUnit,
			Now:         s.now(),
		})

		// Row-scoped transaction: one bad record must not poison the batch.
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.facts.WithTx(tx).Upsert(ctx, fact)
		})
		if err != nil {
			s.logger.Error("fact upsert failed",
				zap.String("person_code", rec.PersonCode),
				zap.String("date", day.Format("2006-01-02")),
				zap.Error(err),
			)
			result.Failed++
			continue
		}

		result.Processed++

		if fact.Present && fact.LateMinutes > 0 && u.Phone != "" {
			result.Late[u.Phone] = LateEmployee{
				FullName:    u.FullName,
				Phone:       u.Phone,
				LateMinutes: fact.LateMinutes,
			}
		}
	}

	return result, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
