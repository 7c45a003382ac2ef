// Package postgres provides pgx-backed persistence for profiles, checklists,
// care records, and the transactional outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/maternity/internal/domain"
	"example.com/maternity/internal/events"
	"example.com/maternity/internal/observability"
)

// Repository provides Postgres-backed persistence for the maternity service.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// setTenant scopes the transaction to a tenant for row-level security.
func setTenant(ctx context.Context, tx pgx.Tx, tenantID string) error {
	_, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID)
	return err
}

// UpsertProfile stores or replaces a pregnancy profile and records a profile.updated
// outbox event in the same transaction.
func (r *Repository) UpsertProfile(ctx context.Context, profile domain.PregnancyProfile) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = setTenant(ctx, tx, profile.TenantID); err != nil {
		return err
	}

	const stmt = `INSERT INTO pregnancy_profiles (tenant_id, user_id, display_name, due_date, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (tenant_id, user_id)
        DO UPDATE SET display_name = EXCLUDED.display_name, due_date = EXCLUDED.due_date, updated_at = EXCLUDED.updated_at`

	_, err = tx.Exec(ctx, stmt,
		profile.TenantID,
		profile.UserID,
		profile.DisplayName,
		profile.DueDate,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, outboxEntry{
		TenantID:      profile.TenantID,
		AggregateType: "profile",
		AggregateID:   profile.TenantID + ":" + profile.UserID,
		EventType:     "profile.updated",
	}, events.ProfileUpdated{
		TenantID:  profile.TenantID,
		UserID:    profile.UserID,
		DueDate:   profile.DueDate.Format("2006-01-02"),
		UpdatedAt: profile.UpdatedAt,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordProfilePersisted(profile.UpdatedAt)
	return nil
}

// GetProfile fetches the pregnancy profile for a user. Returns nil when absent.
func (r *Repository) GetProfile(ctx context.Context, tenantID, userID string) (*domain.PregnancyProfile, error) {
	const query = `SELECT tenant_id, user_id, display_name, due_date, created_at, updated_at
        FROM pregnancy_profiles WHERE tenant_id=$1 AND user_id=$2`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, query, tenantID, userID)
	var profile domain.PregnancyProfile
	if err := row.Scan(&profile.TenantID, &profile.UserID, &profile.DisplayName, &profile.DueDate, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &profile, nil
}

// checklistBlob is the persisted shape of a checklist state. The undo stack
// is deliberately absent.
type checklistBlob struct {
	Items []string `json:"items"`
	Done  []bool   `json:"done"`
}

// GetChecklist loads the persisted {items, done} pair for a keyed checklist.
// Absent rows and structurally corrupt blobs both return nil so the caller
// resets to the template.
func (r *Repository) GetChecklist(ctx context.Context, tenantID, userID, subject string) (*domain.ChecklistState, error) {
	const query = `SELECT state FROM checklist_states WHERE tenant_id=$1 AND user_id=$2 AND subject=$3`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	var raw []byte
	if err := tx.QueryRow(ctx, query, tenantID, userID, subject).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	var blob checklistBlob
	if err := json.Unmarshal(raw, &blob); err != nil || len(blob.Items) != len(blob.Done) {
		// Corrupt blob: treated as absent, never surfaced.
		return nil, nil
	}
	return &domain.ChecklistState{Items: blob.Items, Done: blob.Done}, nil
}

// SaveChecklist writes the full {items, done} pair through and records a
// checklist.changed outbox event in the same transaction.
func (r *Repository) SaveChecklist(ctx context.Context, tenantID, userID, subject string, items []string, done []bool) error {
	raw, err := json.Marshal(checklistBlob{Items: items, Done: done})
	if err != nil {
		return err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = setTenant(ctx, tx, tenantID); err != nil {
		return err
	}

	now := time.Now().UTC()
	const stmt = `INSERT INTO checklist_states (tenant_id, user_id, subject, state, updated_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (tenant_id, user_id, subject)
        DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`

	_, err = tx.Exec(ctx, stmt, tenantID, userID, subject, raw, now)
	if err != nil {
		return err
	}

	doneCount := 0
	for _, d := range done {
		if d {
			doneCount++
		}
	}
	if err = insertOutbox(ctx, tx, outboxEntry{
		TenantID:      tenantID,
		AggregateType: "checklist",
		AggregateID:   tenantID + ":" + userID + ":" + subject,
		EventType:     "checklist.changed",
	}, events.ChecklistChanged{
		TenantID:   tenantID,
		UserID:     userID,
		Subject:    subject,
		ItemCount:  len(items),
		DoneCount:  doneCount,
		OccurredAt: now,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordChecklistPersisted(now)
	return nil
}

// outboxEntry carries routing facts for an outbox insert.
type outboxEntry struct {
	TenantID      string
	AggregateType string
	AggregateID   string
	EventType     string
}

func insertOutbox(ctx context.Context, tx pgx.Tx, entry outboxEntry, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[entry.EventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", entry.EventType)
	}

	partitionKey := meta.PartitionKeyFn(entry)
	dedupeKey := fmt.Sprintf("%s:%s:%d", entry.AggregateID, entry.EventType, time.Now().UTC().UnixNano())

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		entry.TenantID,
		entry.AggregateType,
		entry.AggregateID,
		entry.EventType,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(outboxEntry) string
}

var eventCatalog = map[string]EventMetadata{
	"profile.updated": {
		Topic:         "maternity_profile_events",
		SchemaSubject: "maternity_profile_events-value",
		PartitionKeyFn: func(e outboxEntry) string {
			return e.AggregateID
		},
	},
	"checklist.changed": {
		Topic:         "maternity_checklist_events",
		SchemaSubject: "maternity_checklist_events-value",
		PartitionKeyFn: func(e outboxEntry) string {
			return e.AggregateID
		},
	},
	"appointment.booked": {
		Topic:         "maternity_appointment_events",
		SchemaSubject: "maternity_appointment_events-value",
		PartitionKeyFn: func(e outboxEntry) string {
			return e.TenantID
		},
	},
}
