package events

import "time"

const SalaryChangedTopic = "salary.records.changed.v1"

const (
	SalaryCreatedEventType = "salary_created"
	SalaryUpdatedEventType = "salary_updated"
	SalaryDeletedEventType = "salary_deleted"
)

type SalaryChangedEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id,omitempty"`
	SalaryID        int64     `json:"salary_id"`
	Email           string    `json:"email"`
	DisplayedSalary string    `json:"displayed_salary,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
