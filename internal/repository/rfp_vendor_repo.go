package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rfpflow/internal/model"
)

type RFPVendorRepository struct {
	db *pgxpool.Pool
}

func NewRFPVendorRepository(db *pgxpool.Pool) *RFPVendorRepository {
	return &RFPVendorRepository{db: db}
}

// Create records a dispatch attempt for an RFP-vendor pair.
func (r *RFPVendorRepository) Create(ctx context.Context, link *model.RFPVendor) error {
	query := `
        INSERT INTO rfp_vendors (rfp_id, vendor_id, email_status, email_message_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, sent_at
    `
	return r.db.QueryRow(ctx, query,
		link.RFPID, link.VendorID, link.EmailStatus, link.EmailMessageID,
	).Scan(&link.ID, &link.SentAt)
}

// ListByRFPID returns the dispatch records for an RFP with vendor identity.
func (r *RFPVendorRepository) ListByRFPID(ctx context.Context, rfpID int) ([]model.RFPVendor, error) {
	query := `
        SELECT rv.id, rv.rfp_id, rv.vendor_id, rv.sent_at, rv.email_status,
               rv.email_message_id, v.name, v.email
        FROM rfp_vendors rv
        JOIN vendors v ON v.id = rv.vendor_id
        WHERE rv.rfp_id = $1
        ORDER BY rv.sent_at DESC
    `
	rows, err := r.db.Query(ctx, query, rfpID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []model.RFPVendor{}
	for rows.Next() {
		var link model.RFPVendor
		err := rows.Scan(
			&link.ID,
			&link.RFPID,
			&link.VendorID,
			&link.SentAt,
			&link.EmailStatus,
			&link.EmailMessageID,
			&link.VendorName,
			&link.VendorEmail,
		)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// UpdateStatus moves a dispatch record through sending/sent/failed.
func (r *RFPVendorRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE rfp_vendors SET email_status = $1 WHERE id = $2`, status, id)
	return err
}

// FindByMessageID resolves an inbound reply back to its dispatch record.
func (r *RFPVendorRepository) FindByMessageID(ctx context.Context, messageID string) (*model.RFPVendor, error) {
	query := `
        SELECT id, rfp_id, vendor_id, sent_at, email_status, email_message_id
        FROM rfp_vendors
        WHERE email_message_id = $1
    `
	var link model.RFPVendor
	err := r.db.QueryRow(ctx, query, messageID).Scan(
		&link.ID,
		&link.RFPID,
		&link.VendorID,
		&link.SentAt,
		&link.EmailStatus,
		&link.EmailMessageID,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}
