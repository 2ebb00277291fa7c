package exception

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	RoleManager = "manager"
	RoleHR      = "hr"
)

// requiredRoles must all approve before the exception itself counts as
// approved.
var requiredRoles = []string{RoleManager, RoleHR}

// Exception is an employee appeal against an attendance deficiency. Its
// status is derived from approver decisions, never set directly by the
// employee.
type Exception struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	FactID     *uuid.UUID `gorm:"column:fact_id;type:uuid;index"`
	LetterID   *uuid.UUID `gorm:"column:letter_id;type:uuid"`
	Date       time.Time  `gorm:"column:date;type:date;not null;index"`
	ReasonCode string     `gorm:"column:reason_code;type:varchar(30);not null"`
	Status     string     `gorm:"column:status;type:varchar(20);not null;default:pending"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (Exception) TableName() string {
	return "attendance_exceptions"
}

// Decision is one approver's independent verdict on an exception.
type Decision struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ExceptionID uuid.UUID `gorm:"column:exception_id;type:uuid;not null;uniqueIndex:uq_exception_decisions_role"`
	Role        string    `gorm:"column:role;type:varchar(20);not null;uniqueIndex:uq_exception_decisions_role"`
	ApproverID  uuid.UUID `gorm:"column:approver_id;type:uuid;not null"`
	Approved    bool      `gorm:"column:approved;not null"`
	Note        string    `gorm:"column:note;type:text"`
	DecidedAt   time.Time `gorm:"column:decided_at;type:timestamptz;not null"`
}

func (Decision) TableName() string {
	return "exception_decisions"
}
