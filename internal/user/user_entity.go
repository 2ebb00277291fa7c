package user

import (
	"time"

	"github.com/google/uuid"
)

// Employment status codes snapshotted onto attendance facts. Anything other
// than StatusActive suppresses the normal presence-based payroll decision.
const (
	StatusActive   = "active"
	StatusTrip     = "trip"
	StatusSick     = "sick"
	StatusVacation = "vacation"
)

// reasonableAbsenceCodes are pre-approved leave categories: a user carrying
// one of these is marked excused regardless of check-in/out timestamps.
var reasonableAbsenceCodes = map[string]struct{}{
	StatusTrip:     {},
	StatusSick:     {},
	StatusVacation: {},
}

func IsReasonableAbsence(statusCode string) bool {
	_, ok := reasonableAbsenceCodes[statusCode]
	return ok
}

type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	DepartmentID *uuid.UUID `gorm:"column:department_id;type:uuid;index"`
	HeadOffice   bool       `gorm:"column:head_office;not null;default:false"`
	FullName     string     `gorm:"column:full_name;not null"`
	Phone        string     `gorm:"column:phone;type:varchar(20)"`
	PINFL        string     `gorm:"column:pinfl;type:varchar(14);uniqueIndex"`
	PersonCode   *string    `gorm:"column:person_code;type:varchar(50);index"`
	StatusCode   string     `gorm:"column:status_code;type:varchar(20);not null;default:active"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
