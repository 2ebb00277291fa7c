package exclusion

import (
	"time"

	"github.com/google/uuid"
)

// ExcludedEmployee is a time-boxed exemption from attendance-based
// deduction: while active, the employee is always credited full hours.
// Multiple historical records may exist per user; the service keeps at most
// one active at a time when creating new ones (soft invariant, no DB
// constraint).
type ExcludedEmployee struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	ValidFrom time.Time  `gorm:"column:valid_from;type:date;not null"`
	ValidTo   *time.Time `gorm:"column:valid_to;type:date"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	Reason    string     `gorm:"column:reason;type:text"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (ExcludedEmployee) TableName() string {
	return "excluded_employees"
}
