package calendar

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=calendar_repo.go -destination=mock/calendar_repo_mock.go -package=mock
type Repository interface {
	FindByDate(ctx context.Context, date time.Time) (*WorkDay, error)
	FindRange(ctx context.Context, from, to time.Time) ([]WorkDay, error)
	UpsertWorkFlags(ctx context.Context, days []DayStatus) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByDate(ctx context.Context, date time.Time) (*WorkDay, error) {
	var day WorkDay
	err := r.db.WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *repository) FindRange(ctx context.Context, from, to time.Time) ([]WorkDay, error) {
	var days []WorkDay
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date ASC").
		Find(&days).Error
	return days, err
}

// UpsertWorkFlags imports day statuses from the external feed. Holiday
// columns are never part of the update set: they are manually curated.
func (r *repository) UpsertWorkFlags(ctx context.Context, days []DayStatus) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}

	rows := make([]WorkDay, 0, len(days))
	for _, d := range days {
		flag := 0
		if d.Working {
			flag = 1
		}
		rows = append(rows, WorkDay{
			Date:    d.Date,
			Year:    d.Date.Year(),
			WorkDay: flag,
		})
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"work_day", "updated_at"}),
	}).Create(&rows)

	return int(res.RowsAffected), res.Error
}
