package consumer

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EngagementHandler appends consumed care events to the engagement log so
// analytics can replay how users interact with checklists, profiles, and
// appointments.
type EngagementHandler struct {
	pool *pgxpool.Pool
}

// NewEngagementHandler constructs a handler backed by the provided pool.
func NewEngagementHandler(pool *pgxpool.Pool) *EngagementHandler {
	return &EngagementHandler{pool: pool}
}

// Handle stores the event payload in the care_event_log table.
func (h *EngagementHandler) Handle(ctx context.Context, msg Message) error {
	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`INSERT INTO care_event_log (event_type, tenant_id, schema_id, schema_subject, topic, partition, record_offset, payload, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		msg.EventType,
		msg.TenantID,
		msg.SchemaID,
		msg.SchemaSubject,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		msg.Payload,
		msg.Timestamp,
	)
	return err
}
