package attendance

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, f *DailyFact) error
	FindByDate(ctx context.Context, date time.Time) ([]DailyFact, error)
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

// Upsert writes the fact keyed on (user_id, date), overwriting every derived
// column. This is what makes re-running a window idempotent.
func (r *repository) Upsert(ctx context.Context, f *DailyFact) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company_id", "department_id", "head_office", "person_code",
			"plan_begin", "plan_end", "first_in", "last_out",
			"worked_seconds", "late_minutes", "early_minutes",
			"present", "absent", "check_in_status", "check_out_status",
			"user_status_code", "updated_at",
		}),
	}).Create(f).Error
}

func (r *repository) FindByDate(ctx context.Context, date time.Time) ([]DailyFact, error) {
	var facts []DailyFact
	err := r.db.WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		Order("company_id, department_id, user_id").
		Find(&facts).Error
	return facts, err
}
