package exception

import (
	"context"
	"testing"
	"time"

	"go-timesheet/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn               func(ctx context.Context, e *Exception) error
	lockByIDFn             func(ctx context.Context, id uuid.UUID) (*Exception, error)
	saveStatusFn           func(ctx context.Context, id uuid.UUID, status string) error
	upsertDecisionFn       func(ctx context.Context, d *Decision) error
	decisionsByExceptionFn func(ctx context.Context, exceptionID uuid.UUID) ([]Decision, error)
	approvedUserIDsFn      func(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository                  { return f }
func (f *fakeRepo) Create(ctx context.Context, e *Exception) error { return f.createFn(ctx, e) }
func (f *fakeRepo) LockByID(ctx context.Context, id uuid.UUID) (*Exception, error) {
	return f.lockByIDFn(ctx, id)
}
func (f *fakeRepo) SaveStatus(ctx context.Context, id uuid.UUID, status string) error {
	return f.saveStatusFn(ctx, id, status)
}
func (f *fakeRepo) UpsertDecision(ctx context.Context, d *Decision) error {
	return f.upsertDecisionFn(ctx, d)
}
func (f *fakeRepo) DecisionsByException(ctx context.Context, exceptionID uuid.UUID) ([]Decision, error) {
	return f.decisionsByExceptionFn(ctx, exceptionID)
}
func (f *fakeRepo) ApprovedUserIDs(ctx context.Context, date time.Time, userIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return f.approvedUserIDsFn(ctx, date, userIDs)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gdb, mock
}

func decision(role string, approved bool) Decision {
	return Decision{
		ID:         uuid.New(),
		Role:       role,
		ApproverID: uuid.New(),
		Approved:   approved,
		DecidedAt:  time.Now().UTC(),
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		decisions []Decision
		want      string
	}{
		{"no decisions stays pending", nil, StatusPending},
		{"manager alone stays pending", []Decision{decision(RoleManager, true)}, StatusPending},
		{"hr alone stays pending", []Decision{decision(RoleHR, true)}, StatusPending},
		{"both roles approve", []Decision{decision(RoleManager, true), decision(RoleHR, true)}, StatusApproved},
		{"any rejection rejects", []Decision{decision(RoleManager, true), decision(RoleHR, false)}, StatusRejected},
		{"rejection wins even alone", []Decision{decision(RoleHR, false)}, StatusRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.decisions))
		})
	}
}

func TestSubmit_RequiresReasonCode(t *testing.T) {
	gdb, _ := newMockDB(t)
	svc := NewService(gdb, &fakeRepo{}, zap.NewNop())

	_, err := svc.Submit(context.Background(), SubmitRequest{UserID: uuid.New()})
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
}

func TestSubmit_CreatesPendingException(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	var created *Exception
	repo := &fakeRepo{createFn: func(ctx context.Context, e *Exception) error {
		created = e
		return nil
	}}

	gdb, _ := newMockDB(t)
	svc := NewService(gdb, repo, zap.NewNop())

	e, err := svc.Submit(ctx, SubmitRequest{
		UserID:     userID,
		Date:       time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
		ReasonCode: "field_visit",
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, created, e)
	assert.Equal(t, userID, created.UserID)
}

func TestDecide_RejectsUnknownRole(t *testing.T) {
	gdb, _ := newMockDB(t)
	svc := NewService(gdb, &fakeRepo{}, zap.NewNop())

	_, err := svc.Decide(context.Background(), uuid.New(), uuid.New(), "employee", true, "")
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
}

func TestDecide_FirstApprovalKeepsPending(t *testing.T) {
	ctx := context.Background()
	e := &Exception{ID: uuid.New(), UserID: uuid.New(), Status: StatusPending}

	var upserted *Decision
	repo := &fakeRepo{
		lockByIDFn: func(ctx context.Context, id uuid.UUID) (*Exception, error) { return e, nil },
		upsertDecisionFn: func(ctx context.Context, d *Decision) error {
			upserted = d
			return nil
		},
		decisionsByExceptionFn: func(ctx context.Context, exceptionID uuid.UUID) ([]Decision, error) {
			return []Decision{*upserted}, nil
		},
		saveStatusFn: func(ctx context.Context, id uuid.UUID, status string) error {
			t.Fatal("status must not be rewritten while still pending")
			return nil
		},
	}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewService(gdb, repo, zap.NewNop())

	got, err := svc.Decide(ctx, e.ID, uuid.New(), RoleManager, true, "ok")
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, RoleManager, upserted.Role)
	assert.True(t, upserted.Approved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecide_SecondApprovalApproves(t *testing.T) {
	ctx := context.Background()
	e := &Exception{ID: uuid.New(), UserID: uuid.New(), Status: StatusPending}

	var savedStatus string
	repo := &fakeRepo{
		lockByIDFn:       func(ctx context.Context, id uuid.UUID) (*Exception, error) { return e, nil },
		upsertDecisionFn: func(ctx context.Context, d *Decision) error { return nil },
		decisionsByExceptionFn: func(ctx context.Context, exceptionID uuid.UUID) ([]Decision, error) {
			return []Decision{decision(RoleManager, true), decision(RoleHR, true)}, nil
		},
		saveStatusFn: func(ctx context.Context, id uuid.UUID, status string) error {
			savedStatus = status
			return nil
		},
	}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewService(gdb, repo, zap.NewNop())

	got, err := svc.Decide(ctx, e.ID, uuid.New(), RoleHR, true, "")
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, StatusApproved, savedStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecide_RejectionRejectsImmediately(t *testing.T) {
	ctx := context.Background()
	e := &Exception{ID: uuid.New(), UserID: uuid.New(), Status: StatusPending}

	var savedStatus string
	repo := &fakeRepo{
		lockByIDFn:       func(ctx context.Context, id uuid.UUID) (*Exception, error) { return e, nil },
		upsertDecisionFn: func(ctx context.Context, d *Decision) error { return nil },
		decisionsByExceptionFn: func(ctx context.Context, exceptionID uuid.UUID) ([]Decision, error) {
			return []Decision{decision(RoleManager, false)}, nil
		},
		saveStatusFn: func(ctx context.Context, id uuid.UUID, status string) error {
			savedStatus = status
			return nil
		},
	}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewService(gdb, repo, zap.NewNop())

	got, err := svc.Decide(ctx, e.ID, uuid.New(), RoleManager, false, "no evidence attached")
	assert.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, StatusRejected, savedStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecide_UnknownException(t *testing.T) {
	repo := &fakeRepo{
		lockByIDFn: func(ctx context.Context, id uuid.UUID) (*Exception, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	svc := NewService(gdb, repo, zap.NewNop())

	_, err := svc.Decide(context.Background(), uuid.New(), uuid.New(), RoleManager, true, "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
