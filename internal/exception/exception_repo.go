package exception

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=exception_repo.go -destination=mock/exception_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *Exception) error
	LockByID(ctx context.Context, id uuid.UUID) (*Exception, error)
	SaveStatus(ctx context.Context, id uuid.UUID, status string) error
	UpsertDecision(ctx context.Context, d *Decision) error
	DecisionsByException(ctx context.Context, exceptionID uuid.UUID) ([]Decision, error)
	ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
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

func (r *repository) Create(ctx context.Context, e *Exception) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*Exception, error) {
	var e Exception
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) SaveStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&Exception{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpsertDecision keeps one decision per (exception, role): an approver may
// revise their prior verdict.
func (r *repository) UpsertDecision(ctx context.Context, d *Decision) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exception_id"}, {Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{"approver_id", "approved", "note", "decided_at"}),
	}).Create(d).Error
}

func (r *repository) DecisionsByException(ctx context.Context, exceptionID uuid.UUID) ([]Decision, error) {
	var decisions []Decision
	err := r.db.WithContext(ctx).
		Where("exception_id = ?", exceptionID).
		Find(&decisions).Error
	return decisions, err
}

// ApprovedUserIDs answers, in one batched query, which of the given users
// hold an approved exception for the date. The cell generator calls this
// once per scope batch instead of per employee.
func (r *repository) ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if len(userIDs) == 0 {
		return map[uuid.UUID]struct{}{}, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Exception{}).
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
