package consumer

import (
	"context"
	"encoding/json"

	"go-timesheet/internal/events"
	"go-timesheet/internal/notify"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeLateArrivals(
	ctx context.Context,
	reader *kafkago.Reader,
	sender notify.SMSSender,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.late_arrival")
	log.Info("late arrival consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("late arrival consumer stopped")
				return
			}
			log.Error("fetch late arrival message failed", zap.Error(err))
			continue
		}

		var event events.LateArrivalEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode late arrival event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := sender.Send(ctx, event.Phone, notify.LateMessage(event.FullName, event.LateMinutes)); err != nil {
			log.Error("send late arrival sms failed",
				zap.String("phone", event.Phone),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit late arrival message failed", zap.Error(err))
			continue
		}

		log.Info("late arrival notified",
			zap.String("phone", event.Phone),
			zap.Int("late_minutes", event.LateMinutes),
		)
	}
}
