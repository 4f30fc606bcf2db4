package events

import "time"

const AttendanceMarkedTopic = "field.attendance.v1"

type AttendanceMarkedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	AttendanceID string    `json:"attendance_id"`
	EmployeeID   string    `json:"employee_id"`
	Date         string    `json:"date"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}
