package domain

import (
	"context"
	"time"
)

// PregnancyProfile is the user record the gestational engine reads from.
// Only the due date is persisted; everything derived is recomputed per
// request.
type PregnancyProfile struct {
	TenantID    string
	UserID      string
	DisplayName string
	DueDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileRepository captures pregnancy profile persistence.
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile PregnancyProfile) error
	GetProfile(ctx context.Context, tenantID, userID string) (*PregnancyProfile, error)
}

// ChecklistRepository stores the keyed {items, done} blob for a checklist.
// GetChecklist returns nil for absent or structurally corrupt blobs; both
// cases feed the reset-to-template policy. The undo stack is never stored.
type ChecklistRepository interface {
	GetChecklist(ctx context.Context, tenantID, userID, subject string) (*ChecklistState, error)
	SaveChecklist(ctx context.Context, tenantID, userID, subject string, items []string, done []bool) error
}
