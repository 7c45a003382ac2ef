package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"example.com/maternity/internal/domain"
	"example.com/maternity/internal/events"
)

// CreateAppointment persists a booked visit and records an
// appointment.booked outbox event in the same transaction.
func (r *Repository) CreateAppointment(ctx context.Context, appt domain.Appointment) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = setTenant(ctx, tx, appt.TenantID); err != nil {
		return err
	}

	const stmt = `INSERT INTO appointments (appointment_id, tenant_id, user_id, provider, location, notes, starts_at, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		appt.ID,
		appt.TenantID,
		appt.UserID,
		appt.Provider,
		appt.Location,
		appt.Notes,
		appt.StartsAt,
		appt.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, outboxEntry{
		TenantID:      appt.TenantID,
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "appointment.booked",
	}, events.AppointmentBooked{
		AppointmentID: appt.ID,
		TenantID:      appt.TenantID,
		UserID:        appt.UserID,
		Provider:      appt.Provider,
		StartsAt:      appt.StartsAt,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListAppointmentsByUser returns appointments ordered by start time, newest
// first, with cursor pagination.
func (r *Repository) ListAppointmentsByUser(ctx context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.Appointment, *domain.Cursor, error) {
	args := []interface{}{tenantID, userID, limit}
	query := `SELECT appointment_id, tenant_id, user_id, provider, location, notes, starts_at, created_at
        FROM appointments WHERE tenant_id=$1 AND user_id=$2`

	if cursor != nil {
		query += ` AND (starts_at, appointment_id) < ($4, $5)`
		args = append(args, cursor.StartsAt, cursor.ID)
	}

	query += ` ORDER BY starts_at DESC, appointment_id DESC LIMIT $3`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Appointment, 0, limit)
	for rows.Next() {
		var appt domain.Appointment
		if err := rows.Scan(&appt.ID, &appt.TenantID, &appt.UserID, &appt.Provider, &appt.Location, &appt.Notes, &appt.StartsAt, &appt.CreatedAt); err != nil {
			return nil, nil, err
		}
		results = append(results, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{StartsAt: last.StartsAt, ID: last.ID}
	}
	return results, nextCursor, nil
}

// DaysWithAppointments returns the distinct days-of-month with at least one
// appointment, for calendar day markers.
func (r *Repository) DaysWithAppointments(ctx context.Context, tenantID, userID string, year int, month time.Month) ([]int, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	const query = `SELECT DISTINCT EXTRACT(DAY FROM starts_at)::int AS day
        FROM appointments
        WHERE tenant_id=$1 AND user_id=$2 AND starts_at >= $3 AND starts_at < $4
        ORDER BY day`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, tenantID, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return days, tx.Commit(ctx)
}

// ListResources returns curated resources, optionally filtered by category.
func (r *Repository) ListResources(ctx context.Context, tenantID, category string) ([]domain.Resource, error) {
	args := []interface{}{tenantID}
	query := `SELECT resource_id, tenant_id, title, category, url, summary, created_at
        FROM resources WHERE tenant_id=$1`
	if category != "" {
		query += ` AND category=$2`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		var res domain.Resource
		if err := rows.Scan(&res.ID, &res.TenantID, &res.Title, &res.Category, &res.URL, &res.Summary, &res.CreatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return resources, tx.Commit(ctx)
}

// CreateReview stores a provider review.
func (r *Repository) CreateReview(ctx context.Context, review domain.Review) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = setTenant(ctx, tx, review.TenantID); err != nil {
		return err
	}

	const stmt = `INSERT INTO provider_reviews (review_id, tenant_id, user_id, provider, rating, comment, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, stmt, review.ID, review.TenantID, review.UserID, review.Provider, review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListReviewsByProvider returns reviews for a provider, newest first.
func (r *Repository) ListReviewsByProvider(ctx context.Context, tenantID, provider string) ([]domain.Review, error) {
	const query = `SELECT review_id, tenant_id, user_id, provider, rating, comment, created_at
        FROM provider_reviews WHERE tenant_id=$1 AND provider=$2 ORDER BY created_at DESC`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, tenantID, provider)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.TenantID, &rev.UserID, &rev.Provider, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, tx.Commit(ctx)
}

// AppendChatMessage persists one transcript turn.
func (r *Repository) AppendChatMessage(ctx context.Context, msg domain.ChatMessage) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = setTenant(ctx, tx, msg.TenantID); err != nil {
		return err
	}

	const stmt = `INSERT INTO chat_messages (message_id, tenant_id, user_id, role, body, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err = tx.Exec(ctx, stmt, msg.ID, msg.TenantID, msg.UserID, string(msg.Role), msg.Text, msg.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ChatHistory returns the most recent transcript turns in chronological
// order.
func (r *Repository) ChatHistory(ctx context.Context, tenantID, userID string, limit int) ([]domain.ChatMessage, error) {
	const query = `SELECT message_id, tenant_id, user_id, role, body, created_at FROM (
            SELECT message_id, tenant_id, user_id, role, body, created_at
            FROM chat_messages WHERE tenant_id=$1 AND user_id=$2
            ORDER BY created_at DESC, message_id DESC LIMIT $3
        ) recent ORDER BY created_at ASC, message_id ASC`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, tenantID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		if err := rows.Scan(&msg.ID, &msg.TenantID, &msg.UserID, &role, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Role = domain.ChatRole(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, tx.Commit(ctx)
}
