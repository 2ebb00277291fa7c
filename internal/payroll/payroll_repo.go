package payroll

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-timesheet/internal/tenant"
)

// Scope identifies one generation target: a company branch or one of its
// departments (head office departments are tracked separately).
type Scope struct {
	CompanyID    uuid.UUID
	DepartmentID *uuid.UUID
	HeadOffice   bool
}

func (s Scope) PeriodType() string {
	if s.DepartmentID == nil {
		return PeriodTypeBranch
	}
	return PeriodTypeDepartment
}

// RowTotals is one row's aggregate recomputed from its cells.
type RowTotals struct {
	RowID        uuid.UUID
	TotalHours   float64
	AbsentDays   int
	VacationDays int
	SickDays     int
	TripDays     int
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindPeriod(ctx context.Context, scope Scope, year, month int) (*Period, error)
	CreatePeriod(ctx context.Context, p *Period) error
	SavePeriod(ctx context.Context, p *Period) error
	LockPeriods(ctx context.Context, ids []uuid.UUID) ([]Period, error)
	FindPeriodByID(ctx context.Context, id uuid.UUID) (*Period, error)
	FindPeriodsByCompany(ctx context.Context, companyID string) ([]Period, error)

	FindRowsByPeriod(ctx context.Context, periodID uuid.UUID) ([]Row, error)
	CreateRows(ctx context.Context, rows []Row) error
	UpsertCells(ctx context.Context, cells []Cell) error
	CellsByPeriod(ctx context.Context, periodID uuid.UUID) ([]Cell, error)
	RowTotals(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error)
	UpdateRowTotals(ctx context.Context, t RowTotals) error

	UpsertApproval(ctx context.Context, a *Approval) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindPeriod(ctx context.Context, scope Scope, year, month int) (*Period, error) {
	var p Period
	q := r.db.WithContext(ctx).
		Where("company_id = ? AND head_office = ? AND year = ? AND month = ?",
			scope.CompanyID, scope.HeadOffice, year, month)
	if scope.DepartmentID != nil {
		q = q.Where("department_id = ?", *scope.DepartmentID)
	} else {
		q = q.Where("department_id IS NULL")
	}
	if err := q.First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreatePeriod(ctx context.Context, p *Period) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) SavePeriod(ctx context.Context, p *Period) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// LockPeriods takes row-level locks on all targeted periods so batch
// decisions and status transitions are serialized per period.
func (r *repository) LockPeriods(ctx context.Context, ids []uuid.UUID) ([]Period, error) {
	var periods []Period
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&periods).Error
	return periods, err
}

func (r *repository) FindPeriodByID(ctx context.Context, id uuid.UUID) (*Period, error) {
	var p Period
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindPeriodsByCompany(ctx context.Context, companyID string) ([]Period, error) {
	var periods []Period
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("year DESC, month DESC").
		Find(&periods).Error
	return periods, err
}

func (r *repository) FindRowsByPeriod(ctx context.Context, periodID uuid.UUID) ([]Row, error) {
	var rows []Row
	err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateRows(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// UpsertCells writes the whole scope batch in one statement keyed on
// (row_id, date). Re-generating a date with unchanged facts rewrites the
// same values: a true upsert, no duplicates.
func (r *repository) UpsertCells(ctx context.Context, cells []Cell) error {
	if len(cells) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "row_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "kind", "hours", "updated_at"}),
	}).Create(&cells).Error
}

func (r *repository) CellsByPeriod(ctx context.Context, periodID uuid.UUID) ([]Cell, error) {
	var cells []Cell
	err := r.db.WithContext(ctx).
		Joins("JOIN payroll_rows ON payroll_rows.id = payroll_cells.row_id").
		Where("payroll_rows.period_id = ?", periodID).
		Order("payroll_cells.date ASC").
		Find(&cells).Error
	return cells, err
}

// RowTotals aggregates every row of the period from its cells in a single
// query.
func (r *repository) RowTotals(ctx context.Context, periodID uuid.UUID) ([]RowTotals, error) {
	var totals []RowTotals
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.row_id AS row_id,
			COALESCE(SUM(c.hours), 0) AS total_hours,
			COUNT(*) FILTER (WHERE c.kind = 'absent')   AS absent_days,
			COUNT(*) FILTER (WHERE c.kind = 'vacation') AS vacation_days,
			COUNT(*) FILTER (WHERE c.kind = 'sick')     AS sick_days,
			COUNT(*) FILTER (WHERE c.kind = 'trip')     AS trip_days
		FROM payroll_cells c
		JOIN payroll_rows r ON r.id = c.row_id
		WHERE r.period_id = ?
		GROUP BY c.row_id
	`, periodID).Scan(&totals).Error
	return totals, err
}

func (r *repository) UpdateRowTotals(ctx context.Context, t RowTotals) error {
	return r.db.WithContext(ctx).
		Model(&Row{}).
		Where("id = ?", t.RowID).
		Updates(map[string]any{
			"total_hours":   t.TotalHours,
			"absent_days":   t.AbsentDays,
			"vacation_days": t.VacationDays,
			"sick_days":     t.SickDays,
			"trip_days":     t.TripDays,
		}).Error
}

// UpsertApproval keeps one decision per (period, user) so a deciding user
// may update their own prior verdict.
func (r *repository) UpsertApproval(ctx context.Context, a *Approval) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "period_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"window", "decided", "approved", "note", "decided_at", "updated_at"}),
	}).Create(a).Error
}
