package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"brightlend/internal/models"
)

// LeadSource is the single capability contract over one origin's backing
// table. Both origins implement it; callers never branch on table names.
type LeadSource interface {
	Origin() models.Origin
	// Fetch returns the origin's leads newest-first. ownerScope == nil means
	// full visibility; otherwise rows are restricted to that owner key. The
	// scope is decided by role resolution before the call, never in here.
	Fetch(ctx context.Context, ownerScope *int64) ([]models.Lead, error)
	GetByID(ctx context.Context, id int64) (*models.Lead, error)
	UpdateStatus(ctx context.Context, id int64, status models.LeadStatus) error
	UpdateOwner(ctx context.Context, id int64, ownerID int64) error
	// UpdateLastContact never moves the timestamp backward.
	UpdateLastContact(ctx context.Context, id int64, t time.Time) error
	Delete(ctx context.Context, id int64) error
}

func leadTable(origin models.Origin) string {
	if origin == models.OriginPaid {
		return "ad_leads"
	}
	return "organic_leads"
}

// OrganicLeadSource reads web-submission leads from organic_leads.
type OrganicLeadSource struct {
	db         *sql.DB
	fetchLimit int
}

func NewOrganicLeadSource(db *sql.DB, fetchLimit int) *OrganicLeadSource {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &OrganicLeadSource{db: db, fetchLimit: fetchLimit}
}

func (r *OrganicLeadSource) Origin() models.Origin { return models.OriginOrganic }

const organicColumns = `id, first_name, last_name, email, phone, status, created_at, last_contact_at, owner_id, loan_purpose, loan_amount, property_value`

func scanOrganic(s interface{ Scan(...interface{}) error }, l *models.Lead) error {
	err := s.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Status,
		&l.CreatedAt, &l.LastContactAt, &l.OwnerID, &l.LoanPurpose, &l.LoanAmount, &l.PropertyValue)
	l.Origin = models.OriginOrganic
	return err
}

func (r *OrganicLeadSource) Fetch(ctx context.Context, ownerScope *int64) ([]models.Lead, error) {
	query := `SELECT ` + organicColumns + ` FROM organic_leads`
	args := []interface{}{}
	if ownerScope != nil {
		query += ` WHERE owner_id = $1`
		args = append(args, *ownerScope)
	}
	query += ` ORDER BY created_at DESC, id ASC`
	if r.fetchLimit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, r.fetchLimit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		var l models.Lead
		if err := scanOrganic(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *OrganicLeadSource) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organicColumns+` FROM organic_leads WHERE id = $1`, id)
	l := &models.Lead{}
	if err := scanOrganic(row, l); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *OrganicLeadSource) UpdateStatus(ctx context.Context, id int64, status models.LeadStatus) error {
	return updateLeadStatus(ctx, r.db, "organic_leads", id, status)
}

func (r *OrganicLeadSource) UpdateOwner(ctx context.Context, id int64, ownerID int64) error {
	return updateLeadOwner(ctx, r.db, "organic_leads", id, ownerID)
}

func (r *OrganicLeadSource) UpdateLastContact(ctx context.Context, id int64, t time.Time) error {
	return updateLeadLastContact(ctx, r.db, "organic_leads", id, t)
}

func (r *OrganicLeadSource) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM organic_leads WHERE id = $1`, id)
	return err
}

// PaidLeadSource reads ad-campaign leads from ad_leads.
type PaidLeadSource struct {
	db         *sql.DB
	fetchLimit int
}

func NewPaidLeadSource(db *sql.DB, fetchLimit int) *PaidLeadSource {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &PaidLeadSource{db: db, fetchLimit: fetchLimit}
}

func (r *PaidLeadSource) Origin() models.Origin { return models.OriginPaid }

const paidColumns = `id, first_name, last_name, email, phone, status, created_at, last_contact_at, owner_id, campaign_id, ad_set, click_ref`

func scanPaid(s interface{ Scan(...interface{}) error }, l *models.Lead) error {
	err := s.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Status,
		&l.CreatedAt, &l.LastContactAt, &l.OwnerID, &l.CampaignID, &l.AdSet, &l.ClickRef)
	l.Origin = models.OriginPaid
	return err
}

func (r *PaidLeadSource) Fetch(ctx context.Context, ownerScope *int64) ([]models.Lead, error) {
	query := `SELECT ` + paidColumns + ` FROM ad_leads`
	args := []interface{}{}
	if ownerScope != nil {
		query += ` WHERE owner_id = $1`
		args = append(args, *ownerScope)
	}
	query += ` ORDER BY created_at DESC, id ASC`
	if r.fetchLimit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, r.fetchLimit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		var l models.Lead
		if err := scanPaid(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PaidLeadSource) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paidColumns+` FROM ad_leads WHERE id = $1`, id)
	l := &models.Lead{}
	if err := scanPaid(row, l); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *PaidLeadSource) UpdateStatus(ctx context.Context, id int64, status models.LeadStatus) error {
	return updateLeadStatus(ctx, r.db, "ad_leads", id, status)
}

func (r *PaidLeadSource) UpdateOwner(ctx context.Context, id int64, ownerID int64) error {
	return updateLeadOwner(ctx, r.db, "ad_leads", id, ownerID)
}

func (r *PaidLeadSource) UpdateLastContact(ctx context.Context, id int64, t time.Time) error {
	return updateLeadLastContact(ctx, r.db, "ad_leads", id, t)
}

func (r *PaidLeadSource) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ad_leads WHERE id = $1`, id)
	return err
}

func updateLeadStatus(ctx context.Context, db *sql.DB, table string, id int64, status models.LeadStatus) error {
	_, err := db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status = $1 WHERE id = $2`, table), status, id)
	return err
}

func updateLeadOwner(ctx context.Context, db *sql.DB, table string, id int64, ownerID int64) error {
	_, err := db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET owner_id = $1 WHERE id = $2`, table), ownerID, id)
	return err
}

// GREATEST keeps the per-lead contact clock forward-only even if two appends
// land out of order.
func updateLeadLastContact(ctx context.Context, db *sql.DB, table string, id int64, t time.Time) error {
	_, err := db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET last_contact_at = GREATEST(COALESCE(last_contact_at, 'epoch'::timestamptz), $1) WHERE id = $2`, table), t, id)
	return err
}

// SourcesByOrigin is a convenience index used by services that receive a
// LeadKey and need the owning origin's capability.
func SourcesByOrigin(organic, paid LeadSource) map[models.Origin]LeadSource {
	return map[models.Origin]LeadSource{
		models.OriginOrganic: organic,
		models.OriginPaid:    paid,
	}
}
