package events

import "time"

const PeriodDecidedTopic = "payroll.period.decided.v1"

type PeriodDecidedEvent struct {
	EventType  string    `json:"event_type"`
	PeriodID   string    `json:"period_id"`
	CompanyID  string    `json:"company_id"`
	Window     string    `json:"window"`
	Approved   bool      `json:"approved"`
	DecidedBy  string    `json:"decided_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
