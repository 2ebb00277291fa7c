package ingest

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=cursor_repo.go -destination=mock/cursor_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// LockBySource takes a row-level lock on the source's cursor, creating
	// the row first if the source has never run.
	LockBySource(ctx context.Context, source string) (*Cursor, error)
	Save(ctx context.Context, c *Cursor) error
	FindBySource(ctx context.Context, source string) (*Cursor, error)
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

func (r *repository) LockBySource(ctx context.Context, source string) (*Cursor, error) {
	var c Cursor
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("source = ?", source).
		First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c = Cursor{ID: uuid.New(), Source: source, Status: StatusOK}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		// A concurrent first run may have created the row between our
		// read and this insert; fall through to the locked re-read.
		if !isUniqueViolation(err) {
			return nil, err
		}
	}
	// Re-read under the lock so concurrent first runs serialize on the row.
	err = r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("source = ?", source).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repository) Save(ctx context.Context, c *Cursor) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *repository) FindBySource(ctx context.Context, source string) (*Cursor, error) {
	var c Cursor
	if err := r.db.WithContext(ctx).Where("source = ?", source).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
