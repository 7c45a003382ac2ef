package domain

import (
	"context"
	"time"
)

// Appointment is a booked visit with a provider.
type Appointment struct {
	ID        string
	TenantID  string
	UserID    string
	Provider  string
	Location  string
	Notes     string
	StartsAt  time.Time
	CreatedAt time.Time
}

// Cursor models the pagination token for time-ordered listings.
type Cursor struct {
	StartsAt time.Time
	ID       string
}

// AppointmentRepository captures appointment persistence.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appt Appointment) error
	ListAppointmentsByUser(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]Appointment, *Cursor, error)
	// DaysWithAppointments returns the distinct days-of-month carrying at
	// least one appointment, for calendar day-dot markers.
	DaysWithAppointments(ctx context.Context, tenantID, userID string, year int, month time.Month) ([]int, error)
}
