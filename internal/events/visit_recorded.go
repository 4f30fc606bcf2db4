package events

import "time"

const VisitRecordedTopic = "field.visit.v1"

type VisitRecordedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	VisitID    string    `json:"visit_id"`
	EmployeeID string    `json:"employee_id"`
	Date       string    `json:"date"`
	PhotoURL   string    `json:"photo_url"`
	OccurredAt time.Time `json:"occurred_at"`
}
