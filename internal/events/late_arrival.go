package events

import "time"

const LateArrivalTopic = "attendance.late_arrival.v1"

type LateArrivalEvent struct {
	EventType   string    `json:"event_type"`
	Date        string    `json:"date"`
	Phone       string    `json:"phone"`
	FullName    string    `json:"full_name"`
	LateMinutes int       `json:"late_minutes"`
	OccurredAt  time.Time `json:"occurred_at"`
}
