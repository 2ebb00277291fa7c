package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Check-in/check-out status codes derived by the daily reconciler.
const (
	CheckOnTime     = "on_time"
	CheckLate       = "late"
	CheckEarly      = "early"
	CheckAbsent     = "absent"
	CheckExcused    = "excused"
	CheckNotChecked = "not_checked"
)

// DailyFact is the single attendance fact for a (user, date). Rows are
// written with upsert semantics: re-running a window for the same date is
// safe and expected (late checkouts arrive on a later pass).
type DailyFact struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_daily_facts_user_date"`
	Date           time.Time  `gorm:"column:date;type:date;not null;uniqueIndex:uq_daily_facts_user_date"`
	CompanyID      uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	DepartmentID   *uuid.UUID `gorm:"column:department_id;type:uuid;index"`
	HeadOffice     bool       `gorm:"column:head_office;not null;default:false"`
	PersonCode     string     `gorm:"column:person_code;type:varchar(50);not null"`
	PlanBegin      *time.Time `gorm:"column:plan_begin;type:timestamptz"`
	PlanEnd        *time.Time `gorm:"column:plan_end;type:timestamptz"`
	FirstIn        *time.Time `gorm:"column:first_in;type:timestamptz"`
	LastOut        *time.Time `gorm:"column:last_out;type:timestamptz"`
	WorkedSeconds  int        `gorm:"column:worked_seconds;not null;default:0"`
	LateMinutes    int        `gorm:"column:late_minutes;not null;default:0"`
	EarlyMinutes   int        `gorm:"column:early_minutes;not null;default:0"`
	Present        bool       `gorm:"column:present;not null;default:false"`
	Absent         bool       `gorm:"column:absent;not null;default:false"`
	CheckInStatus  string     `gorm:"column:check_in_status;type:varchar(20);not null;default:not_checked"`
	CheckOutStatus string     `gorm:"column:check_out_status;type:varchar(20);not null;default:not_checked"`
	UserStatusCode string     `gorm:"column:user_status_code;type:varchar(20);not null;default:active"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (DailyFact) TableName() string {
	return "daily_facts"
}
