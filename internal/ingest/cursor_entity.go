package ingest

import (
	"time"

	"github.com/google/uuid"
)

// Cursor status values.
const (
	StatusOK     = "OK"
	StatusOutage = "OUTAGE"
)

// Cursor is the per-source ingestion watermark. LastSuccessDate is the last
// fully completed day; today is always reprocessed and never advances it.
type Cursor struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Source          string     `gorm:"column:source;type:varchar(50);not null;uniqueIndex"`
	LastSuccessDate *time.Time `gorm:"column:last_success_date;type:date"`
	Status          string     `gorm:"column:status;type:varchar(10);not null;default:OK"`
	OutageStartedAt *time.Time `gorm:"column:outage_started_at;type:timestamptz"`
	Reason          string     `gorm:"column:reason;type:text"`
	LastRunAt       *time.Time `gorm:"column:last_run_at;type:timestamptz"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (Cursor) TableName() string {
	return "ingest_cursors"
}
