package repositories

import (
	"context"
	"database/sql"
	"log"
	"time"

	"brightlend/internal/models"
)

// CallbackStore is what the callback scheduler and the reminder dispatcher
// need from persistence.
type CallbackStore interface {
	Insert(ctx context.Context, cb *models.Callback) error
	ListByLead(ctx context.Context, key models.LeadKey) ([]models.Callback, error)
	Delete(ctx context.Context, id int64) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.Callback, error)
	MarkDelivered(ctx context.Context, id int64, at time.Time) error
}

type CallbackRepository struct {
	db *sql.DB
}

func NewCallbackRepository(db *sql.DB) *CallbackRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &CallbackRepository{db: db}
}

func (r *CallbackRepository) Insert(ctx context.Context, cb *models.Callback) error {
	const query = `
		INSERT INTO callbacks (origin, lead_id, scheduled_for, note, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		cb.Origin, cb.LeadID, cb.ScheduledFor, cb.Note, cb.CreatedBy, cb.CreatedAt,
	).Scan(&cb.ID, &cb.CreatedAt)
}

func (r *CallbackRepository) ListByLead(ctx context.Context, key models.LeadKey) ([]models.Callback, error) {
	const query = `
		SELECT id, origin, lead_id, scheduled_for, note, created_by, created_at, delivered_at
		FROM callbacks
		WHERE origin = $1 AND lead_id = $2
		ORDER BY scheduled_for ASC`
	rows, err := r.db.QueryContext(ctx, query, key.Origin, key.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Callback
	for rows.Next() {
		var cb models.Callback
		if err := rows.Scan(&cb.ID, &cb.Origin, &cb.LeadID, &cb.ScheduledFor,
			&cb.Note, &cb.CreatedBy, &cb.CreatedAt, &cb.DeliveredAt); err != nil {
			return nil, err
		}
		out = append(out, cb)
	}
	return out, rows.Err()
}

func (r *CallbackRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM callbacks WHERE id = $1`, id)
	return err
}

// ListDue returns undelivered callbacks whose scheduled time has passed,
// oldest first.
func (r *CallbackRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Callback, error) {
	const query = `
		SELECT id, origin, lead_id, scheduled_for, note, created_by, created_at, delivered_at
		FROM callbacks
		WHERE delivered_at IS NULL AND scheduled_for <= $1
		ORDER BY scheduled_for ASC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Callback
	for rows.Next() {
		var cb models.Callback
		if err := rows.Scan(&cb.ID, &cb.Origin, &cb.LeadID, &cb.ScheduledFor,
			&cb.Note, &cb.CreatedBy, &cb.CreatedAt, &cb.DeliveredAt); err != nil {
			return nil, err
		}
		out = append(out, cb)
	}
	return out, rows.Err()
}

func (r *CallbackRepository) MarkDelivered(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE callbacks SET delivered_at = $1 WHERE id = $2`, at, id)
	return err
}
