package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"brightlend/internal/models"
)

// ActivityStore is what the activity service needs from persistence.
type ActivityStore interface {
	AppendWithLastContact(ctx context.Context, a *models.Activity) error
	ListByLead(ctx context.Context, key models.LeadKey) ([]models.Activity, error)
	Delete(ctx context.Context, key models.LeadKey, activityID int64) error
	LastContactFromActivities(ctx context.Context, key models.LeadKey) (*time.Time, error)
}

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &ActivityRepository{db: db}
}

// AppendWithLastContact inserts the activity row and bumps the owning lead's
// last_contact_at in one transaction, so the activity can never persist while
// the timestamp stays stale. GREATEST keeps the clock forward-only.
func (r *ActivityRepository) AppendWithLastContact(ctx context.Context, a *models.Activity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insert = `
		INSERT INTO activities (origin, lead_id, type, notes, created_at, author_id, audio_ref)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, insert,
		a.Origin, a.LeadID, a.Type, a.Notes, a.CreatedAt, a.AuthorID, a.AudioRef,
	).Scan(&a.ID, &a.CreatedAt); err != nil {
		return err
	}

	bump := fmt.Sprintf(
		`UPDATE %s SET last_contact_at = GREATEST(COALESCE(last_contact_at, 'epoch'::timestamptz), $1) WHERE id = $2`,
		leadTable(a.Origin))
	if _, err := tx.ExecContext(ctx, bump, a.CreatedAt, a.LeadID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ActivityRepository) ListByLead(ctx context.Context, key models.LeadKey) ([]models.Activity, error) {
	const query = `
		SELECT id, origin, lead_id, type, notes, created_at, author_id, audio_ref
		FROM activities
		WHERE origin = $1 AND lead_id = $2
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, key.Origin, key.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Origin, &a.LeadID, &a.Type, &a.Notes,
			&a.CreatedAt, &a.AuthorID, &a.AudioRef); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ActivityRepository) Delete(ctx context.Context, key models.LeadKey, activityID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM activities WHERE id = $1 AND origin = $2 AND lead_id = $3`,
		activityID, key.Origin, key.ID)
	return err
}

// LastContactFromActivities recomputes the contact clock from the log itself.
// Used by the drift report to cross-check rows written before the
// single-transaction append existed.
func (r *ActivityRepository) LastContactFromActivities(ctx context.Context, key models.LeadKey) (*time.Time, error) {
	var t sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(created_at) FROM activities WHERE origin = $1 AND lead_id = $2`,
		key.Origin, key.ID).Scan(&t)
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, nil
	}
	return &t.Time, nil
}
