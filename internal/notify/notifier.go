package notify

import (
	"context"
	"encoding/json"
	"time"

	"go-timesheet/internal/attendance"
	"go-timesheet/internal/events"
	"go-timesheet/internal/messaging/kafka"
	"go-timesheet/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier queues one late-arrival event per employee through the outbox.
// Delivery happens asynchronously from the outbox worker, so a slow broker
// never stalls an ingest cycle.
type Notifier struct {
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewNotifier(outbox kafka.OutboxRepository, logger ...*zap.Logger) *Notifier {
	l := zap.L().Named("notify")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify")
	}
	return &Notifier{outbox: outbox, logger: l}
}

func (n *Notifier) NotifyLate(ctx context.Context, date time.Time, late map[string]attendance.LateEmployee) error {
	requestID := contextutil.GetRequestID(ctx)

	for phone, emp := range late {
		event := events.LateArrivalEvent{
			EventType:   "late_arrival",
			Date:        date.Format("2006-01-02"),
			Phone:       phone,
			FullName:    emp.FullName,
			LateMinutes: emp.LateMinutes,
			OccurredAt:  time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		err = n.outbox.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     requestID,
			AggregateType: "attendance",
			AggregateID:   phone,
			EventType:     "late_arrival",
			Topic:         events.LateArrivalTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		})
		if err != nil {
			return err
		}
	}

	n.logger.Info("late arrivals queued",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("count", len(late)),
	)
	return nil
}
