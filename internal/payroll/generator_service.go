package payroll

import (
	"context"
	"errors"
	"time"

	"go-timesheet/internal/attendance"
	"go-timesheet/internal/calendar"
	payrollerrors "go-timesheet/internal/payroll/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExceptionReadModel answers which users hold an approved attendance
// exception for a date.
type ExceptionReadModel interface {
	ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// LetterReadModel answers which users hold an approved explanation letter
// for a date.
type LetterReadModel interface {
	ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// ExclusionReadModel answers the exclusion roster effective on a date.
type ExclusionReadModel interface {
	ActiveUserIDs(ctx context.Context, date time.Time) (map[uuid.UUID]struct{}, error)
}

// FactReadModel is the attendance side of the boundary: facts are read-only
// to payroll generation.
type FactReadModel interface {
	FindByDate(ctx context.Context, date time.Time) ([]attendance.DailyFact, error)
}

type GenerateResult struct {
	Date          string `json:"date"`
	Scopes        int    `json:"scopes"`
	CellsWritten  int    `json:"cells_written"`
	RowsUpdated   int    `json:"rows_updated"`
	SkippedFrozen int    `json:"skipped_frozen"`
}

//go:generate mockgen -source=generator_service.go -destination=mock/generator_service_mock.go -package=mock
type Generator interface {
	GenerateDate(ctx context.Context, date time.Time) (*GenerateResult, error)
}

type generator struct {
	db         *gorm.DB
	repo       Repository
	facts      FactReadModel
	calendar   calendar.Service
	exceptions ExceptionReadModel
	letters    LetterReadModel
	exclusions ExclusionReadModel
	logger     *zap.Logger
}

func NewGenerator(
	db *gorm.DB,
	repo Repository,
	facts FactReadModel,
	cal calendar.Service,
	exceptions ExceptionReadModel,
	letters LetterReadModel,
	exclusions ExclusionReadModel,
	logger ...*zap.Logger,
) Generator {
	l := zap.L().Named("payroll.generator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.generator")
	}
	return &generator{
		db:         db,
		repo:       repo,
		facts:      facts,
		calendar:   cal,
		exceptions: exceptions,
		letters:    letters,
		exclusions: exclusions,
		logger:     l,
	}
}

// GenerateDate computes one payroll cell per employee with an attendance
// fact on the date, across every scope present in that day's data. The whole
// date runs inside one transaction: financial data favors fail-fast over a
// partially generated day.
func (g *generator) GenerateDate(ctx context.Context, date time.Time) (*GenerateResult, error) {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	workingDay, err := g.calendar.IsWorkingDay(ctx, date)
	if err != nil {
		return nil, err
	}

	facts, err := g.facts.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	excluded, err := g.exclusions.ActiveUserIDs(ctx, date)
	if err != nil {
		return nil, err
	}

	scopes := groupByScope(facts)
	result := &GenerateResult{Date: date.Format("2006-01-02")}

	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := g.repo.WithTx(tx)

		for key, scopeFacts := range scopes {
			if err := g.generateScope(ctx, qtx, key.scope(), scopeFacts, date, workingDay, excluded, result); err != nil {
				return err
			}
			result.Scopes++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("cells generated",
		zap.String("date", result.Date),
		zap.Int("scopes", result.Scopes),
		zap.Int("cells", result.CellsWritten),
		zap.Int("skipped_frozen", result.SkippedFrozen),
	)
	return result, nil
}

func (g *generator) generateScope(
	ctx context.Context,
	qtx Repository,
	scope Scope,
	scopeFacts []attendance.DailyFact,
	date time.Time,
	workingDay bool,
	excluded map[uuid.UUID]struct{},
	result *GenerateResult,
) error {
	period, err := g.resolvePeriod(ctx, qtx, scope, date)
	if err != nil {
		return err
	}

	// A locked window is immutable: skip the whole scope for this date.
	if period.WindowLocked(period.WindowFor(date)) {
		result.SkippedFrozen += len(scopeFacts)
		return nil
	}

	rows, err := qtx.FindRowsByPeriod(ctx, period.ID)
	if err != nil {
		return err
	}
	rowByUser := make(map[uuid.UUID]uuid.UUID, len(rows))
	currentTotals := make(map[uuid.UUID]RowTotals, len(rows))
	for _, row := range rows {
		rowByUser[row.UserID] = row.ID
		currentTotals[row.ID] = RowTotals{
			RowID:        row.ID,
			TotalHours:   row.TotalHours,
			AbsentDays:   row.AbsentDays,
			VacationDays: row.VacationDays,
			SickDays:     row.SickDays,
			TripDays:     row.TripDays,
		}
	}

	var missing []Row
	for _, f := range scopeFacts {
		if _, ok := rowByUser[f.UserID]; !ok {
			row := Row{ID: uuid.New(), PeriodID: period.ID, UserID: f.UserID}
			missing = append(missing, row)
			rowByUser[f.UserID] = row.ID
		}
	}
	if err := qtx.CreateRows(ctx, missing); err != nil {
		return err
	}

	userIDs := make([]uuid.UUID, 0, len(scopeFacts))
	for _, f := range scopeFacts {
		userIDs = append(userIDs, f.UserID)
	}

	// One batched lookup per scope for each read model, never per employee.
	withException, err := g.exceptions.ApprovedUserIDs(ctx, date, userIDs)
	if err != nil {
		return err
	}
	withLetter, err := g.letters.ApprovedUserIDs(ctx, date, userIDs)
	if err != nil {
		return err
	}

	cells := make([]Cell, 0, len(scopeFacts))
	for _, f := range scopeFacts {
		_, isExcluded := excluded[f.UserID]
		_, hasException := withException[f.UserID]
		_, hasLetter := withLetter[f.UserID]

		_, outcome := decideCell(ruleInput{
			WorkingDay:   workingDay,
			Excluded:     isExcluded,
			StatusCode:   f.UserStatusCode,
			Present:      f.Present,
			LateMinutes:  f.LateMinutes,
			EarlyMinutes: f.EarlyMinutes,
			HasException: hasException,
			HasLetter:    hasLetter,
			WorkedSecs:   f.WorkedSeconds,
		})

		cells = append(cells, Cell{
			ID:    uuid.New(),
			RowID: rowByUser[f.UserID],
			Date:  date,
			Code:  outcome.Code,
			Kind:  outcome.Kind,
			Hours: outcome.Hours,
		})
	}

	if err := qtx.UpsertCells(ctx, cells); err != nil {
		return err
	}
	result.CellsWritten += len(cells)

	totals, err := qtx.RowTotals(ctx, period.ID)
	if err != nil {
		return err
	}
	for _, t := range totals {
		if current, ok := currentTotals[t.RowID]; ok && current == t {
			continue
		}
		if err := qtx.UpdateRowTotals(ctx, t); err != nil {
			return err
		}
		result.RowsUpdated++
	}

	if count := len(rowByUser); count != period.EmployeeCount {
		period.EmployeeCount = count
		if err := qtx.SavePeriod(ctx, period); err != nil {
			return err
		}
	}
	return nil
}

// resolvePeriod loads or creates the scope's period for the date's month and
// refreshes its pay-date anchors whenever the calendar has moved them.
func (g *generator) resolvePeriod(ctx context.Context, qtx Repository, scope Scope, date time.Time) (*Period, error) {
	year, month := date.Year(), date.Month()

	midDate, err := g.calendar.ChooseMidPayDate(ctx, year, month)
	if err != nil {
		if errors.Is(err, calendar.ErrNoWorkingDay) {
			return nil, payrollerrors.ErrNoPayDateAnchor
		}
		return nil, err
	}
	finalDate, err := g.calendar.ChooseFinalPayDate(ctx, year, month)
	if err != nil {
		if errors.Is(err, calendar.ErrNoWorkingDay) {
			return nil, payrollerrors.ErrNoPayDateAnchor
		}
		return nil, err
	}

	period, err := qtx.FindPeriod(ctx, scope, year, int(month))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			period = &Period{
				ID:           uuid.New(),
				CompanyID:    scope.CompanyID,
				DepartmentID: scope.DepartmentID,
				HeadOffice:   scope.HeadOffice,
				PeriodType:   scope.PeriodType(),
				Year:         year,
				Month:        int(month),
				MidPayDate:   midDate,
				FinalPayDate: finalDate,
				Status:       StatusDraft,
			}
			if err := qtx.CreatePeriod(ctx, period); err != nil {
				return nil, err
			}
			return period, nil
		}
		return nil, err
	}

	if !period.MidPayDate.Equal(midDate) || !period.FinalPayDate.Equal(finalDate) {
		period.MidPayDate = midDate
		period.FinalPayDate = finalDate
		if err := qtx.SavePeriod(ctx, period); err != nil {
			return nil, err
		}
	}
	return period, nil
}

// scopeKey is Scope flattened into a comparable value for grouping.
// uuid.Nil stands in for the branch-level (nil department) scope.
type scopeKey struct {
	CompanyID    uuid.UUID
	DepartmentID uuid.UUID
	HeadOffice   bool
}

func (k scopeKey) scope() Scope {
	s := Scope{CompanyID: k.CompanyID, HeadOffice: k.HeadOffice}
	if k.DepartmentID != uuid.Nil {
		dept := k.DepartmentID
		s.DepartmentID = &dept
	}
	return s
}

func groupByScope(facts []attendance.DailyFact) map[scopeKey][]attendance.DailyFact {
	scopes := make(map[scopeKey][]attendance.DailyFact)
	for _, f := range facts {
		key := scopeKey{CompanyID: f.CompanyID, HeadOffice: f.HeadOffice}
		if f.DepartmentID != nil {
			key.DepartmentID = *f.DepartmentID
		}
		scopes[key] = append(scopes[key], f)
	}
	return scopes
}
