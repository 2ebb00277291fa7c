package payroll

import (
	"time"

	"github.com/google/uuid"
)

// Period status values.
const (
	StatusDraft    = "draft"
	StatusInReview = "in_review"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusFrozen   = "frozen"
)

// Lock windows within a period's month.
const (
	WindowMid   = "mid"
	WindowFinal = "final"
)

// Period scope types.
const (
	PeriodTypeDepartment = "department"
	PeriodTypeBranch     = "branch"
)

// Cell kinds.
const (
	KindWork     = "work"
	KindVacation = "vacation"
	KindSick     = "sick"
	KindTrip     = "trip"
	KindAbsent   = "absent"
	KindOff      = "off"
)

// Period is one scope's payroll ledger for a month. The two lock flags gate
// cell mutation independently: once a window is locked, every cell inside it
// is frozen regardless of the overall status.
type Period struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID  `gorm:"column:company_id;type:uuid;not null;uniqueIndex:uq_payroll_periods_scope"`
	DepartmentID    *uuid.UUID `gorm:"column:department_id;type:uuid;uniqueIndex:uq_payroll_periods_scope"`
	HeadOffice      bool       `gorm:"column:head_office;not null;default:false;uniqueIndex:uq_payroll_periods_scope"`
	PeriodType      string     `gorm:"column:period_type;type:varchar(20);not null"`
	Year            int        `gorm:"column:year;not null;uniqueIndex:uq_payroll_periods_scope"`
	Month           int        `gorm:"column:month;not null;uniqueIndex:uq_payroll_periods_scope"`
	MidPayDate      time.Time  `gorm:"column:mid_pay_date;type:date;not null"`
	FinalPayDate    time.Time  `gorm:"column:final_pay_date;type:date;not null"`
	MidLocked       bool       `gorm:"column:mid_locked;not null;default:false"`
	MidApprovedAt   *time.Time `gorm:"column:mid_approved_at;type:timestamptz"`
	FinalLocked     bool       `gorm:"column:final_locked;not null;default:false"`
	FinalApprovedAt *time.Time `gorm:"column:final_approved_at;type:timestamptz"`
	Status          string     `gorm:"column:status;type:varchar(20);not null;default:draft"`
	EmployeeCount   int        `gorm:"column:employee_count;not null;default:0"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (Period) TableName() string {
	return "payroll_periods"
}

// WindowLocked reports whether the given lock window is already frozen.
func (p *Period) WindowLocked(window string) bool {
	if window == WindowFinal {
		return p.FinalLocked
	}
	return p.MidLocked
}

// WindowFor resolves which lock window a date of this period's month falls
// into, by comparing against the mid pay-date anchor.
func (p *Period) WindowFor(date time.Time) string {
	if date.Day() <= p.MidPayDate.Day() {
		return WindowMid
	}
	return WindowFinal
}

// Row is one employee's aggregate within a period, recomputed from its cells
// after every generation pass.
type Row struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	PeriodID     uuid.UUID `gorm:"column:period_id;type:uuid;not null;uniqueIndex:uq_payroll_rows_employee"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_payroll_rows_employee"`
	TotalHours   float64   `gorm:"column:total_hours;type:numeric(6,2);not null;default:0"`
	AbsentDays   int       `gorm:"column:absent_days;not null;default:0"`
	VacationDays int       `gorm:"column:vacation_days;not null;default:0"`
	SickDays     int       `gorm:"column:sick_days;not null;default:0"`
	TripDays     int       `gorm:"column:trip_days;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Row) TableName() string {
	return "payroll_rows"
}

// Cell is the atomic payroll fact for a (row, date). Cells are created and
// overwritten exclusively by the generator, never hand-edited.
type Cell struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	RowID     uuid.UUID `gorm:"column:row_id;type:uuid;not null;uniqueIndex:uq_payroll_cells_date"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex:uq_payroll_cells_date"`
	Code      string    `gorm:"column:code;type:varchar(10);not null"`
	Kind      string    `gorm:"column:kind;type:varchar(10);not null"`
	Hours     float64   `gorm:"column:hours;type:numeric(4,2);not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Cell) TableName() string {
	return "payroll_cells"
}

// Approval is one deciding user's verdict on a period window. A user may
// revise their own prior decision; the period's lock/status fields are the
// authoritative aggregate.
type Approval struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	PeriodID  uuid.UUID  `gorm:"column:period_id;type:uuid;not null;uniqueIndex:uq_payroll_approvals_user"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_payroll_approvals_user"`
	Window    string     `gorm:"column:window;type:varchar(10);not null"`
	Decided   bool       `gorm:"column:decided;not null;default:false"`
	Approved  bool       `gorm:"column:approved;not null;default:false"`
	Note      string     `gorm:"column:note;type:text"`
	DecidedAt *time.Time `gorm:"column:decided_at;type:timestamptz"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (Approval) TableName() string {
	return "payroll_approvals"
}
