package exclusion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=exclusion_repo.go -destination=mock/exclusion_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *ExcludedEmployee) error
	DeactivateByUser(ctx context.Context, userID uuid.UUID, until time.Time) error
	ActiveUserIDs(ctx context.Context, date time.Time) ([]uuid.UUID, error)
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

func (r *repository) Create(ctx context.Context, e *ExcludedEmployee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) DeactivateByUser(ctx context.Context, userID uuid.UUID, until time.Time) error {
	return r.db.WithContext(ctx).
		Model(&ExcludedEmployee{}).
		Where("user_id = ? AND is_active = true", userID).
		Updates(map[string]any{
			"is_active": false,
			"valid_to":  until.Format("2006-01-02"),
		}).Error
}

func (r *repository) ActiveUserIDs(ctx context.Context, date time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	d := date.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Model(&ExcludedEmployee{}).
		Where("is_active = true AND valid_from <= ? AND (valid_to IS NULL OR valid_to >= ?)", d, d).
		Distinct().
		Pluck("user_id", &ids).Error
	return ids, err
}
