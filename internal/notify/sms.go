package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SMSSender delivers one message to one phone number. The production
// gateway integration lives behind this interface; the default
// implementation only logs.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

type logSMSSender struct {
	logger *zap.Logger
}

func NewLogSMSSender(logger ...*zap.Logger) SMSSender {
	l := zap.L().Named("notify.sms")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify.sms")
	}
	return &logSMSSender{logger: l}
}

func (s *logSMSSender) Send(_ context.Context, phone, message string) error {
	s.logger.Info("sms suppressed", zap.String("phone", phone), zap.String("message", message))
	return nil
}

// LateMessage renders the text sent for one late arrival.
func LateMessage(fullName string, lateMinutes int) string {
	return fmt.Sprintf("%s arrived %d minutes late today", fullName, lateMinutes)
}
