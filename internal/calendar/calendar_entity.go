package calendar

import (
	"time"

	"github.com/google/uuid"
)

type WorkDay struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Date        time.Time `gorm:"column:date;type:date;not null;uniqueIndex"`
	Year        int       `gorm:"column:year;not null;index"`
	WorkDay     int       `gorm:"column:work_day;not null"`
	IsHoliday   bool      `gorm:"column:is_holiday;not null;default:false"`
	HolidayName *string   `gorm:"column:holiday_name"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (WorkDay) TableName() string {
	return "working_day_calendar"
}

// DayStatus is one imported (date, working) pair from the external calendar
// feed. Only the working flag is trusted; holiday metadata stays curated.
type DayStatus struct {
	Date    time.Time
	Working bool
}
