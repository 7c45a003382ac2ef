// Package events defines the domain event payloads published by the service.
package events

import "time"

// ProfileUpdated is emitted when a pregnancy profile is created or replaced.
type ProfileUpdated struct {
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	DueDate   string    `json:"due_date"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChecklistChanged is emitted after every successful checklist write-through.
type ChecklistChanged struct {
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id"`
	Subject    string    `json:"subject"`
	ItemCount  int       `json:"item_count"`
	DoneCount  int       `json:"done_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AppointmentBooked is emitted when a visit is created.
type AppointmentBooked struct {
	AppointmentID string    `json:"appointment_id"`
	TenantID      string    `json:"tenant_id"`
	UserID        string    `json:"user_id"`
	Provider      string    `json:"provider"`
	StartsAt      time.Time `json:"starts_at"`
}
