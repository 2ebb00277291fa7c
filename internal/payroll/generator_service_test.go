package payroll

import (
	"context"
	"testing"
	"time"

	"go-timesheet/internal/attendance"
	"go-timesheet/internal/calendar"
	payrollerrors "go-timesheet/internal/payroll/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakePayrollRepo struct {
	findPeriodFn           func(ctx context.Context, scope Scope, year, month int) (*Period, error)
	createPeriodFn         func(ctx context.Context, p *Period) error
	savePeriodFn           func(ctx context.Context, p *Period) error
	lockPeriodsFn          func(ctx context.Context, ids []uuid.UUID) ([]Period, error)
	findPeriodByIDFn       func(ctx context.Context, id uuid.UUID) (*Period, error)
	findPeriodsByCompanyFn func(ctx context.Context, companyID string) ([]Period, error)
	findRowsByPeriodFn     func(ctx context.Context, periodID uuid.UUID) ([]Row, error)
	createRowsFn           func(ctx context.Context, rows []Row) error
	upsertCellsFn          func(ctx context.Context, cells []Cell) error
	cellsByPeriodFn        func(ctx context.Context, periodID uuid.UUID) ([]Cell, error)
	rowTotalsFn            func(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error)
	updateRowTotalsFn      func(ctx context.Context, t RowTotals) error
	upsertApprovalFn       func(ctx context.Context, a *Approval) error
}

func (f *fakePayrollRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakePayrollRepo) FindPeriod(ctx context.Context, scope Scope, year, month int) (*Period, error) {
	return f.findPeriodFn(ctx, scope, year, month)
}
func (f *fakePayrollRepo) CreatePeriod(ctx context.Context, p *Period) error {
	return f.createPeriodFn(ctx, p)
}
func (f *fakePayrollRepo) SavePeriod(ctx context.Context, p *Period) error {
	return f.savePeriodFn(ctx, p)
}
func (f *fakePayrollRepo) LockPeriods(ctx context.Context, ids []uuid.UUID) ([]Period, error) {
	return f.lockPeriodsFn(ctx, ids)
}
func (f *fakePayrollRepo) FindPeriodByID(ctx context.Context, id uuid.UUID) (*Period, error) {
	return f.findPeriodByIDFn(ctx, id)
}
func (f *fakePayrollRepo) FindPeriodsByCompany(ctx context.Context, companyID string) ([]Period, error) {
	return f.findPeriodsByCompanyFn(ctx, companyID)
}
func (f *fakePayrollRepo) FindRowsByPeriod(ctx context.Context, periodID uuid.UUID) ([]Row, error) {
	return f.findRowsByPeriodFn(ctx, periodID)
}
func (f *fakePayrollRepo) CreateRows(ctx context.Context, rows []Row) error {
	return f.createRowsFn(ctx, rows)
}
func (f *fakePayrollRepo) UpsertCells(ctx context.Context, cells []Cell) error {
	return f.upsertCellsFn(ctx, cells)
}
func (f *fakePayrollRepo) CellsByPeriod(ctx context.Context, periodID uuid.UUID) ([]Cell, error) {
	return f.cellsByPeriodFn(ctx, periodID)
}
func (f *fakePayrollRepo) RowTotals(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error) {
	return f.rowTotalsFn(ctx, periodID)
}
func (f *fakePayrollRepo) UpdateRowTotals(ctx context.Context, t RowTotals) error {
	return f.updateRowTotalsFn(ctx, t)
}
func (f *fakePayrollRepo) UpsertApproval(ctx context.Context, a *Approval) error {
	return f.upsertApprovalFn(ctx, a)
}

type fakeCalendar struct {
	calendar.Service
	isWorkingDayFn func(ctx context.Context, date time.Time) (bool, error)
	midPayDateFn   func(ctx context.Context, year int, month time.Month) (time.Time, error)
	finalPayDateFn func(ctx context.Context, year int, month time.Month) (time.Time, error)
}

func (f *fakeCalendar) IsWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	return f.isWorkingDayFn(ctx, date)
}
func (f *fakeCalendar) ChooseMidPayDate(ctx context.Context, year int, month time.Month) (time.Time, error) {
	return f.midPayDateFn(ctx, year, month)
}
func (f *fakeCalendar) ChooseFinalPayDate(ctx context.Context, year int, month time.Month) (time.Time, error) {
	return f.finalPayDateFn(ctx, year, month)
}

type idSet map[uuid.UUID]struct{}

type fakeApprovalReads struct {
	ids idSet
	err error
}

func (f *fakeApprovalReads) ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return f.ids, f.err
}

type fakeExclusions struct {
	ids idSet
}

func (f *fakeExclusions) ActiveUserIDs(ctx context.Context, date time.Time) (map[uuid.UUID]struct{}, error) {
	return f.ids, nil
}

type fakeFacts struct {
	facts []attendance.DailyFact
}

func (f *fakeFacts) FindByDate(ctx context.Context, date time.Time) ([]attendance.DailyFact, error) {
	return f.facts, nil
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gdb, mock
}

func dayAt(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func juneCalendar() *fakeCalendar {
	return &fakeCalendar{
		isWorkingDayFn: func(ctx context.Context, date time.Time) (bool, error) { return true, nil },
		midPayDateFn: func(ctx context.Context, year int, month time.Month) (time.Time, error) {
			return dayAt(2025, 6, 13), nil
		},
		finalPayDateFn: func(ctx context.Context, year int, month time.Month) (time.Time, error) {
			return dayAt(2025, 6, 30), nil
		},
	}
}

func deptFact(companyID uuid.UUID, deptID *uuid.UUID, userID uuid.UUID, present bool) attendance.DailyFact {
	return attendance.DailyFact{
		UserID:         userID,
		CompanyID:      companyID,
		DepartmentID:   deptID,
		Present:        present,
		UserStatusCode: "active",
	}
}

func TestGenerateDate_NewScopeCreatesPeriodRowsAndCells(t *testing.T) {
	ctx := context.Background()
	date := dayAt(2025, 6, 5)
	companyID := uuid.New()
	deptID := uuid.New()
	punctual := uuid.New()
	noShow := uuid.New()

	var createdPeriod *Period
	var createdRows []Row
	var cells []Cell
	var rowsUpdated []RowTotals
	var savedPeriod *Period

	repo := &fakePayrollRepo{
		findPeriodFn: func(ctx context.Context, scope Scope, year, month int) (*Period, error) {
			assert.Equal(t, companyID, scope.CompanyID)
			assert.Equal(t, 2025, year)
			assert.Equal(t, 6, month)
			return nil, gorm.ErrRecordNotFound
		},
		createPeriodFn: func(ctx context.Context, p *Period) error { createdPeriod = p; return nil },
		savePeriodFn:   func(ctx context.Context, p *Period) error { savedPeriod = p; return nil },
		findRowsByPeriodFn: func(ctx context.Context, periodID uuid.UUID) ([]Row, error) {
			return nil, nil
		},
		createRowsFn:  func(ctx context.Context, rows []Row) error { createdRows = rows; return nil },
		upsertCellsFn: func(ctx context.Context, c []Cell) error { cells = c; return nil },
		rowTotalsFn: func(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error) {
			totals := make([]RowTotals, 0, len(createdRows))
			for _, r := range createdRows {
				totals = append(totals, RowTotals{RowID: r.ID, TotalHours: 8})
			}
			return totals, nil
		},
		updateRowTotalsFn: func(ctx context.Context, tot RowTotals) error {
			rowsUpdated = append(rowsUpdated, tot)
			return nil
		},
	}

	facts := &fakeFacts{facts: []attendance.DailyFact{
		deptFact(companyID, &deptID, punctual, true),
		deptFact(companyID, &deptID, noShow, false),
	}}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	gen := NewGenerator(gdb, repo, facts, juneCalendar(),
		&fakeApprovalReads{}, &fakeApprovalReads{}, &fakeExclusions{}, zap.NewNop())

	res, err := gen.GenerateDate(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Scopes)
	assert.Equal(t, 2, res.CellsWritten)
	assert.Equal(t, 2, res.RowsUpdated)
	assert.Equal(t, 0, res.SkippedFrozen)

	assert.NotNil(t, createdPeriod)
	assert.Equal(t, StatusDraft, createdPeriod.Status)
	assert.Equal(t, PeriodTypeDepartment, createdPeriod.PeriodType)
	assert.Equal(t, dayAt(2025, 6, 13), createdPeriod.MidPayDate)
	assert.Equal(t, dayAt(2025, 6, 30), createdPeriod.FinalPayDate)

	assert.Len(t, createdRows, 2)
	assert.Len(t, cells, 2)
	byRow := make(map[uuid.UUID]Cell, len(cells))
	for _, c := range cells {
		byRow[c.RowID] = c
	}
	for _, r := range createdRows {
		c := byRow[r.ID]
		if r.UserID == punctual {
			assert.Equal(t, "8", c.Code)
			assert.Equal(t, KindWork, c.Kind)
		} else {
			assert.Equal(t, "0", c.Code)
			assert.Equal(t, KindAbsent, c.Kind)
		}
	}

	assert.Len(t, rowsUpdated, 2)
	assert.NotNil(t, savedPeriod)
	assert.Equal(t, 2, savedPeriod.EmployeeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateDate_LockedWindowSkipsScope(t *testing.T) {
	ctx := context.Background()
	date := dayAt(2025, 6, 5)
	companyID := uuid.New()
	deptID := uuid.New()

	locked := &Period{
		ID:           uuid.New(),
		CompanyID:    companyID,
		MidPayDate:   dayAt(2025, 6, 13),
		FinalPayDate: dayAt(2025, 6, 30),
		MidLocked:    true,
		Status:       StatusInReview,
	}
	repo := &fakePayrollRepo{
		findPeriodFn: func(ctx context.Context, scope Scope, year, month int) (*Period, error) {
			return locked, nil
		},
		findRowsByPeriodFn: func(ctx context.Context, periodID uuid.UUID) ([]Row, error) {
			t.Fatal("rows must not be touched inside a locked window")
			return nil, nil
		},
	}
	facts := &fakeFacts{facts: []attendance.DailyFact{
		deptFact(companyID, &deptID, uuid.New(), true),
		deptFact(companyID, &deptID, uuid.New(), true),
	}}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	gen := NewGenerator(gdb, repo, facts, juneCalendar(),
		&fakeApprovalReads{}, &fakeApprovalReads{}, &fakeExclusions{}, zap.NewNop())

	res, err := gen.GenerateDate(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 2, res.SkippedFrozen)
	assert.Equal(t, 0, res.CellsWritten)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateDate_UnchangedTotalsNotRewritten(t *testing.T) {
	ctx := context.Background()
	date := dayAt(2025, 6, 5)
	companyID := uuid.New()
	deptID := uuid.New()
	userID := uuid.New()
	rowID := uuid.New()

	period := &Period{
		ID:            uuid.New(),
		CompanyID:     companyID,
		MidPayDate:    dayAt(2025, 6, 13),
		FinalPayDate:  dayAt(2025, 6, 30),
		Status:        StatusDraft,
		EmployeeCount: 1,
	}
	repo := &fakePayrollRepo{
		findPeriodFn: func(ctx context.Context, scope Scope, year, month int) (*Period, error) {
			return period, nil
		},
		savePeriodFn: func(ctx context.Context, p *Period) error {
			t.Fatal("period must not be saved when nothing changed")
			return nil
		},
		findRowsByPeriodFn: func(ctx context.Context, periodID uuid.UUID) ([]Row, error) {
			return []Row{{ID: rowID, PeriodID: period.ID, UserID: userID, TotalHours: 32}}, nil
		},
		createRowsFn:  func(ctx context.Context, rows []Row) error { return nil },
		upsertCellsFn: func(ctx context.Context, c []Cell) error { return nil },
		rowTotalsFn: func(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error) {
			return []RowTotals{{RowID: rowID, TotalHours: 32}}, nil
		},
		updateRowTotalsFn: func(ctx context.Context, tot RowTotals) error {
			t.Fatal("unchanged totals must not be rewritten")
			return nil
		},
	}
	facts := &fakeFacts{facts: []attendance.DailyFact{
		deptFact(companyID, &deptID, userID, true),
	}}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	gen := NewGenerator(gdb, repo, facts, juneCalendar(),
		&fakeApprovalReads{}, &fakeApprovalReads{}, &fakeExclusions{}, zap.NewNop())

	res, err := gen.GenerateDate(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 0, res.RowsUpdated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateDate_RefreshesMovedPayDateAnchors(t *testing.T) {
	ctx := context.Background()
	date := dayAt(2025, 6, 5)
	companyID := uuid.New()
	deptID := uuid.New()
	userID := uuid.New()
	rowID := uuid.New()

	// Stored anchors predate a calendar resync that moved the mid date.
	period := &Period{
		ID:            uuid.New(),
		CompanyID:     companyID,
		MidPayDate:    dayAt(2025, 6, 16),
		FinalPayDate:  dayAt(2025, 6, 30),
		Status:        StatusDraft,
		EmployeeCount: 1,
	}
	var saves int
	repo := &fakePayrollRepo{
		findPeriodFn: func(ctx context.Context, scope Scope, year, month int) (*Period, error) {
			return period, nil
		},
		savePeriodFn: func(ctx context.Context, p *Period) error { saves++; return nil },
		findRowsByPeriodFn: func(ctx context.Context, periodID uuid.UUID) ([]Row, error) {
			return []Row{{ID: rowID, PeriodID: period.ID, UserID: userID}}, nil
		},
		createRowsFn:  func(ctx context.Context, rows []Row) error { return nil },
		upsertCellsFn: func(ctx context.Context, c []Cell) error { return nil },
		rowTotalsFn: func(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error) {
			return nil, nil
		},
	}
	facts := &fakeFacts{facts: []attendance.DailyFact{
		deptFact(companyID, &deptID, userID, true),
	}}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	gen := NewGenerator(gdb, repo, facts, juneCalendar(),
		&fakeApprovalReads{}, &fakeApprovalReads{}, &fakeExclusions{}, zap.NewNop())

	_, err := gen.GenerateDate(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 1, saves)
	assert.Equal(t, dayAt(2025, 6, 13), period.MidPayDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateDate_NoWorkingDayAnchorFails(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	cal := juneCalendar()
	cal.midPayDateFn = func(ctx context.Context, year int, month time.Month) (time.Time, error) {
		return time.Time{}, calendar.ErrNoWorkingDay
	}

	facts := &fakeFacts{facts: []attendance.DailyFact{
		deptFact(companyID, nil, uuid.New(), true),
	}}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	gen := NewGenerator(gdb, &fakePayrollRepo{}, facts, cal,
		&fakeApprovalReads{}, &fakeApprovalReads{}, &fakeExclusions{}, zap.NewNop())

	res, err := gen.GenerateDate(ctx, dayAt(2025, 6, 5))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, payrollerrors.ErrNoPayDateAnchor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateDate_GroupsBranchAndDepartmentScopes(t *testing.T) {
	ctx := context.Background()
	date := dayAt(2025, 6, 5)
	companyID := uuid.New()
	deptID := uuid.New()

	var periodTypes []string
	repo := &fakePayrollRepo{
		findPeriodFn: func(ctx context.Context, scope Scope, year, month int) (*Period, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createPeriodFn: func(ctx context.Context, p *Period) error {
			periodTypes = append(periodTypes, p.PeriodType)
			return nil
		},
		savePeriodFn:       func(ctx context.Context, p *Period) error { return nil },
		findRowsByPeriodFn: func(ctx context.Context, periodID uuid.UUID) ([]Row, error) { return nil, nil },
		createRowsFn:       func(ctx context.Context, rows []Row) error { return nil },
		upsertCellsFn:      func(ctx context.Context, c []Cell) error { return nil },
		rowTotalsFn:        func(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error) { return nil, nil },
		updateRowTotalsFn:  func(ctx context.Context, tot RowTotals) error { return nil },
	}
	facts := &fakeFacts{facts: []attendance.DailyFact{
		deptFact(companyID, &deptID, uuid.New(), true),
		deptFact(companyID, nil, uuid.New(), true),
	}}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	gen := NewGenerator(gdb, repo, facts, juneCalendar(),
		&fakeApprovalReads{}, &fakeApprovalReads{}, &fakeExclusions{}, zap.NewNop())

	res, err := gen.GenerateDate(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 2, res.Scopes)
	assert.ElementsMatch(t, []string{PeriodTypeBranch, PeriodTypeDepartment}, periodTypes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateDate_ExcludedUserGetsFullCredit(t *testing.T) {
	ctx := context.Background()
	date := dayAt(2025, 6, 5)
	companyID := uuid.New()
	deptID := uuid.New()
	excludedUser := uuid.New()

	var cells []Cell
	repo := &fakePayrollRepo{
		findPeriodFn: func(ctx context.Context, scope Scope, year, month int) (*Period, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createPeriodFn:     func(ctx context.Context, p *Period) error { return nil },
		savePeriodFn:       func(ctx context.Context, p *Period) error { return nil },
		findRowsByPeriodFn: func(ctx context.Context, periodID uuid.UUID) ([]Row, error) { return nil, nil },
		createRowsFn:       func(ctx context.Context, rows []Row) error { return nil },
		upsertCellsFn:      func(ctx context.Context, c []Cell) error { cells = c; return nil },
		rowTotalsFn:        func(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error) { return nil, nil },
	}
	facts := &fakeFacts{facts: []attendance.DailyFact{
		deptFact(companyID, &deptID, excludedUser, false),
	}}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	gen := NewGenerator(gdb, repo, facts, juneCalendar(),
		&fakeApprovalReads{}, &fakeApprovalReads{},
		&fakeExclusions{ids: idSet{excludedUser: {}}}, zap.NewNop())

	_, err := gen.GenerateDate(ctx, date)
	assert.NoError(t, err)
	assert.Len(t, cells, 1)
	assert.Equal(t, "8", cells[0].Code)
	assert.Equal(t, KindWork, cells[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateDate_SecondPassWritesNothingNew(t *testing.T) {
	ctx := context.Background()
	date := dayAt(2025, 6, 5)
	companyID := uuid.New()
	deptID := uuid.New()
	punctual := uuid.New()
	noShow := uuid.New()

	// Stateful fake: the first pass populates it, the second pass reads
	// back what the first one wrote.
	var period *Period
	var rows []Row
	cellByRow := map[uuid.UUID]Cell{}
	var totalUpdates, periodSaves int

	repo := &fakePayrollRepo{
		findPeriodFn: func(ctx context.Context, scope Scope, year, month int) (*Period, error) {
			if period == nil {
				return nil, gorm.ErrRecordNotFound
			}
			p := *period
			return &p, nil
		},
		createPeriodFn: func(ctx context.Context, p *Period) error {
			cp := *p
			period = &cp
			return nil
		},
		savePeriodFn: func(ctx context.Context, p *Period) error {
			periodSaves++
			cp := *p
			period = &cp
			return nil
		},
		findRowsByPeriodFn: func(ctx context.Context, periodID uuid.UUID) ([]Row, error) {
			return append([]Row(nil), rows...), nil
		},
		createRowsFn: func(ctx context.Context, created []Row) error {
			rows = append(rows, created...)
			return nil
		},
		upsertCellsFn: func(ctx context.Context, cells []Cell) error {
			for _, c := range cells {
				cellByRow[c.RowID] = c
			}
			return nil
		},
		rowTotalsFn: func(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error) {
			totals := make([]RowTotals, 0, len(rows))
			for _, r := range rows {
				c := cellByRow[r.ID]
				tot := RowTotals{RowID: r.ID, TotalHours: c.Hours}
				if c.Kind == KindAbsent {
					tot.AbsentDays = 1
				}
				totals = append(totals, tot)
			}
			return totals, nil
		},
		updateRowTotalsFn: func(ctx context.Context, tot RowTotals) error {
			totalUpdates++
			for i := range rows {
				if rows[i].ID == tot.RowID {
					rows[i].TotalHours = tot.TotalHours
					rows[i].AbsentDays = tot.AbsentDays
					rows[i].VacationDays = tot.VacationDays
					rows[i].SickDays = tot.SickDays
					rows[i].TripDays = tot.TripDays
				}
			}
			return nil
		},
	}

	facts := &fakeFacts{facts: []attendance.DailyFact{
		deptFact(companyID, &deptID, punctual, true),
		deptFact(companyID, &deptID, noShow, false),
	}}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	gen := NewGenerator(gdb, repo, facts, juneCalendar(),
		&fakeApprovalReads{}, &fakeApprovalReads{}, &fakeExclusions{}, zap.NewNop())

	first, err := gen.GenerateDate(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 2, first.RowsUpdated)
	assert.Equal(t, 2, first.CellsWritten)

	firstCells := make(map[uuid.UUID]Cell, len(cellByRow))
	for id, c := range cellByRow {
		firstCells[id] = c
	}

	second, err := gen.GenerateDate(ctx, date)
	assert.NoError(t, err)
	assert.Equal(t, 2, second.CellsWritten)
	assert.Equal(t, 0, second.RowsUpdated)
	assert.Equal(t, 0, second.SkippedFrozen)

	// Rerunning the same date must not touch rows or the period again.
	assert.Equal(t, 2, totalUpdates)
	assert.Equal(t, 1, periodSaves)
	assert.Len(t, rows, 2)

	// And the second pass must land on the exact same cell values.
	for id, c := range cellByRow {
		prev := firstCells[id]
		assert.Equal(t, prev.Code, c.Code)
		assert.Equal(t, prev.Kind, c.Kind)
		assert.Equal(t, prev.Hours, c.Hours)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
