package letter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const StatusApproved = "approved"

// ExplanationLetter is a read-only projection of the document workflow: the
// composing/signing pipeline lives elsewhere, payroll only cares whether a
// signed letter exists for a (user, date).
type ExplanationLetter struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Date      time.Time `gorm:"column:date;type:date;not null;index"`
	Status    string    `gorm:"column:status;type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (ExplanationLetter) TableName() string {
	return "explanation_letters"
}

//go:generate mockgen -source=letter_repo.go -destination=mock/letter_repo_mock.go -package=mock
type Repository interface {
	ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ApprovedUserIDs answers which of the given users hold an approved
// explanation letter for the date, in one batched query.
func (r *repository) ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if len(userIDs) == 0 {
		return map[uuid.UUID]struct{}{}, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&ExplanationLetter{}).
		Where("date = ? AND status = ? AND user_id IN ?", date.Format("2006-01-02"), StatusApproved, userIDs).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}

	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
