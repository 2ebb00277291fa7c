package exception

import (
	"context"
	"errors"
	"time"

	"go-timesheet/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubmitRequest struct {
	UserID     uuid.UUID
	FactID     *uuid.UUID
	LetterID   *uuid.UUID
	Date       time.Time
	ReasonCode string
}

//go:generate mockgen -source=exception_service.go -destination=mock/exception_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Exception, error)
	Decide(ctx context.Context, exceptionID, approverID uuid.UUID, role string, approved bool, note string) (*Exception, error)
	ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("exception.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("exception.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Exception, error) {
	if req.ReasonCode == "" {
		return nil, apperror.RequiredField("reason_code")
	}

	e := &Exception{
		ID:         uuid.New(),
		UserID:     req.UserID,
		FactID:     req.FactID,
		LetterID:   req.LetterID,
		Date:       req.Date,
		ReasonCode: req.ReasonCode,
		Status:     StatusPending,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Decide records one approver's verdict and recomputes the parent status
// from the full decision set. The parent status is only ever mutated here.
func (s *service) Decide(
	ctx context.Context,
	exceptionID, approverID uuid.UUID,
	role string,
	approved bool,
	note string,
) (*Exception, error) {
	if role != RoleManager && role != RoleHR {
		return nil, apperror.InvalidField("role")
	}

	var result *Exception
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		e, err := qtx.LockByID(ctx, exceptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		if err := qtx.UpsertDecision(ctx, &Decision{
			ID:          uuid.New(),
			ExceptionID: e.ID,
			Role:        role,
			ApproverID:  approverID,
			Approved:    approved,
			Note:        note,
			DecidedAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}

		decisions, err := qtx.DecisionsByException(ctx, e.ID)
		if err != nil {
			return err
		}

		status := DeriveStatus(decisions)
		if status != e.Status {
			if err := qtx.SaveStatus(ctx, e.ID, status); err != nil {
				return err
			}
		}
		e.Status = status
		result = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("exception decided",
		zap.String("exception_id", result.ID.String()),
		zap.String("role", role),
		zap.Bool("approved", approved),
		zap.String("status", result.Status),
	)
	return result, nil
}

func (s *service) ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return s.repo.ApprovedUserIDs(ctx, date, userIDs)
}

// DeriveStatus folds the decision set into the parent status: any rejection
// rejects, full approval by every required role approves, anything less
// stays pending.
func DeriveStatus(decisions []Decision) string {
	byRole := make(map[string]bool, len(decisions))
	for _, d := range decisions {
		if !d.Approved {
			return StatusRejected
		}
		byRole[d.Role] = true
	}

	for _, role := range requiredRoles {
		if !byRole[role] {
			return StatusPending
		}
	}
	return StatusApproved
}
