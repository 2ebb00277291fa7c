package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-timesheet/internal/events"
	"go-timesheet/internal/messaging/kafka"
	payrollerrors "go-timesheet/internal/payroll/errors"
	"go-timesheet/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DecideCommand is one reviewer's verdict applied to a batch of periods.
type DecideCommand struct {
	PeriodIDs []uuid.UUID
	UserID    uuid.UUID
	Window    string
	Approved  bool
	Note      string
}

type DecideResult struct {
	Locked  []uuid.UUID `json:"locked,omitempty"`
	Skipped []uuid.UUID `json:"skipped,omitempty"`
}

// UserDirectory supplies employee display data for the matrix read side.
type UserDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
}

//go:generate mockgen -source=ledger_service.go -destination=mock/ledger_service_mock.go -package=mock
type Ledger interface {
	SendToReview(ctx context.Context, periodIDs []uuid.UUID) error
	Decide(ctx context.Context, cmd DecideCommand) (*DecideResult, error)
	Matrix(ctx context.Context, periodID uuid.UUID) (*MatrixResponse, error)
	ListPeriods(ctx context.Context, companyID string) ([]PeriodResponse, error)
}

type ledger struct {
	db     *gorm.DB
	repo   Repository
	users  UserDirectory
	outbox kafka.OutboxRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewLedger(db *gorm.DB, repo Repository, users UserDirectory, outbox kafka.OutboxRepository, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("payroll.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.ledger")
	}
	return &ledger{db: db, repo: repo, users: users, outbox: outbox, now: time.Now, logger: l}
}

func validWindow(window string) bool {
	return window == WindowMid || window == WindowFinal
}

// SendToReview moves a batch of periods into review. Only draft and
// rejected periods are eligible; one ineligible period rejects the whole
// call so a reviewer never sees a half-submitted batch.
func (s *ledger) SendToReview(ctx context.Context, periodIDs []uuid.UUID) error {
	if len(periodIDs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		periods, err := qtx.LockPeriods(ctx, periodIDs)
		if err != nil {
			return err
		}
		if missing := missingIDs(periodIDs, periods); len(missing) > 0 {
			return payrollerrors.InvalidPeriodState("period not found", missing)
		}

		var ineligible []uuid.UUID
		for i := range periods {
			p := &periods[i]
			if p.Status != StatusDraft && p.Status != StatusRejected {
				ineligible = append(ineligible, p.ID)
			}
		}
		if len(ineligible) > 0 {
			return payrollerrors.InvalidPeriodState("period not in draft or rejected state", ineligible)
		}

		for i := range periods {
			p := &periods[i]
			p.Status = StatusInReview
			if err := qtx.SavePeriod(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// Decide records the reviewer's verdict on every period of the batch and,
// on approval, locks the target window. Periods whose window is already
// locked are skipped, not failed, whether the verdict approves or rejects,
// so a retried batch is idempotent. A rejection on an open window reopens
// the period for regeneration.
func (s *ledger) Decide(ctx context.Context, cmd DecideCommand) (*DecideResult, error) {
	if !validWindow(cmd.Window) {
		return nil, payrollerrors.ErrInvalidWindow
	}
	result := &DecideResult{}
	if len(cmd.PeriodIDs) == 0 {
		return result, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		periods, err := qtx.LockPeriods(ctx, cmd.PeriodIDs)
		if err != nil {
			return err
		}
		if missing := missingIDs(cmd.PeriodIDs, periods); len(missing) > 0 {
			return payrollerrors.InvalidPeriodState("period not found", missing)
		}

		// Validate the whole batch before any mutation. Already-locked
		// windows are skipped later, not failed: a retried request must
		// not error on work the first attempt already did.
		var notInReview, midStillOpen []uuid.UUID
		for i := range periods {
			p := &periods[i]
			if p.WindowLocked(cmd.Window) {
				continue
			}
			if p.Status != StatusInReview {
				notInReview = append(notInReview, p.ID)
			}
			if cmd.Window == WindowFinal && !p.MidLocked {
				midStillOpen = append(midStillOpen, p.ID)
			}
		}
		if len(notInReview) > 0 {
			return payrollerrors.InvalidPeriodState("period not in review", notInReview)
		}
		if len(midStillOpen) > 0 {
			return payrollerrors.InvalidPeriodState("mid window still open", midStillOpen)
		}

		now := s.now()
		for i := range periods {
			p := &periods[i]

			if p.WindowLocked(cmd.Window) {
				result.Skipped = append(result.Skipped, p.ID)
				continue
			}

			approval := &Approval{
				ID:        uuid.New(),
				PeriodID:  p.ID,
				UserID:    cmd.UserID,
				Window:    cmd.Window,
				Decided:   true,
				Approved:  cmd.Approved,
				Note:      cmd.Note,
				DecidedAt: &now,
			}
			if err := qtx.UpsertApproval(ctx, approval); err != nil {
				return err
			}

			if cmd.Approved {
				s.lockWindow(p, cmd.Window, now)
				result.Locked = append(result.Locked, p.ID)
			} else {
				p.Status = StatusRejected
			}
			if err := qtx.SavePeriod(ctx, p); err != nil {
				return err
			}
			if err := s.queueDecidedEvent(ctx, tx, p, cmd, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch decided",
		zap.String("window", cmd.Window),
		zap.Bool("approved", cmd.Approved),
		zap.Int("locked", len(result.Locked)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// queueDecidedEvent writes the decision event through the outbox in the
// same transaction as the status change, so a crash never publishes a
// decision that did not commit.
func (s *ledger) queueDecidedEvent(ctx context.Context, tx *gorm.DB, p *Period, cmd DecideCommand, now time.Time) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.PeriodDecidedEvent{
		EventType:  "period_decided",
		PeriodID:   p.ID.String(),
		CompanyID:  p.CompanyID.String(),
		Window:     cmd.Window,
		Approved:   cmd.Approved,
		DecidedBy:  cmd.UserID.String(),
		OccurredAt: now.UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		AggregateType: "payroll_period",
		AggregateID:   p.ID.String(),
		EventType:     "period_decided",
		Topic:         events.PeriodDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// lockWindow freezes one half of the month. Mid approval keeps the period
// in review for the final window; final approval settles the whole month.
func (s *ledger) lockWindow(p *Period, window string, now time.Time) {
	if window == WindowFinal {
		p.FinalLocked = true
		p.FinalApprovedAt = &now
		p.Status = StatusApproved
		return
	}
	p.MidLocked = true
	p.MidApprovedAt = &now
	p.Status = StatusInReview
}

// Matrix renders the period as rows by dates: every employee's cells for
// the month plus their recomputed totals and display name.
func (s *ledger) Matrix(ctx context.Context, periodID uuid.UUID) (*MatrixResponse, error) {
	period, err := s.repo.FindPeriodByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrPeriodNotFound
		}
		return nil, err
	}

	rows, err := s.repo.FindRowsByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	cells, err := s.repo.CellsByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}

	names, err := s.rowUserNames(ctx, rows)
	if err != nil {
		return nil, err
	}

	return mapToMatrixResponse(period, rows, cells, names), nil
}

func (s *ledger) rowUserNames(ctx context.Context, rows []Row) (map[uuid.UUID]string, error) {
	if s.users == nil || len(rows) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].UserID)
	}
	found, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(found))
	for i := range found {
		names[found[i].ID] = found[i].FullName
	}
	return names, nil
}

func (s *ledger) ListPeriods(ctx context.Context, companyID string) ([]PeriodResponse, error) {
	periods, err := s.repo.FindPeriodsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]PeriodResponse, 0, len(periods))
	for i := range periods {
		out = append(out, mapToPeriodResponse(&periods[i]))
	}
	return out, nil
}

func missingIDs(wanted []uuid.UUID, found []Period) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(found))
	for i := range found {
		present[found[i].ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range wanted {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
