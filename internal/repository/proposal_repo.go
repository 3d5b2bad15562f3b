package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rfpflow/internal/model"
)

type ProposalRepository struct {
	db *pgxpool.Pool
}

func NewProposalRepository(db *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create inserts a new proposal with the given pre-processing status.
func (r *ProposalRepository) Create(ctx context.Context, p *model.Proposal) error {
	query := `
        INSERT INTO proposals (rfp_id, vendor_id, raw_email_content, email_subject, processing_status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, received_at
    `
	return r.db.QueryRow(ctx, query,
		p.RFPID, p.VendorID, p.RawEmailContent, p.EmailSubject, p.ProcessingStatus,
	).Scan(&p.ID, &p.ReceivedAt)
}

// FindByID returns a proposal with its vendor identity joined in.
func (r *ProposalRepository) FindByID(ctx context.Context, id int) (*model.Proposal, error) {
	query := `
        SELECT p.id, p.rfp_id, p.vendor_id, p.raw_email_content, p.email_subject,
               p.structured_proposal, p.ai_scores, p.processing_status, p.archived,
               p.received_at, p.processed_at, v.name, v.email
        FROM proposals p
        JOIN vendors v ON v.id = p.vendor_id
        WHERE p.id = $1
    `
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// ListByRFPID returns the active (non-archived) proposals for an RFP,
// newest first.
func (r *ProposalRepository) ListByRFPID(ctx context.Context, rfpID int) ([]model.Proposal, error) {
	query := `
        SELECT p.id, p.rfp_id, p.vendor_id, p.raw_email_content, p.email_subject,
               p.structured_proposal, p.ai_scores, p.processing_status, p.archived,
               p.received_at, p.processed_at, v.name, v.email
        FROM proposals p
        JOIN vendors v ON v.id = p.vendor_id
        WHERE p.rfp_id = $1 AND p.archived = FALSE
        ORDER BY p.received_at DESC
    `
	return r.scanMany(ctx, query, rfpID)
}

// ListArchivedByRFPID returns proposals archived by a requirements change.
func (r *ProposalRepository) ListArchivedByRFPID(ctx context.Context, rfpID int) ([]model.Proposal, error) {
	query := `
        SELECT p.id, p.rfp_id, p.vendor_id, p.raw_email_content, p.email_subject,
               p.structured_proposal, p.ai_scores, p.processing_status, p.archived,
               p.received_at, p.processed_at, v.name, v.email
        FROM proposals p
        JOIN vendors v ON v.id = p.vendor_id
        WHERE p.rfp_id = $1 AND p.archived = TRUE
        ORDER BY p.received_at DESC
    `
	return r.scanMany(ctx, query, rfpID)
}

// ListByStatus returns active proposals in a processing status, oldest first
// so batch runs drain the backlog in arrival order.
func (r *ProposalRepository) ListByStatus(ctx context.Context, status string) ([]model.Proposal, error) {
	query := `
        SELECT p.id, p.rfp_id, p.vendor_id, p.raw_email_content, p.email_subject,
               p.structured_proposal, p.ai_scores, p.processing_status, p.archived,
               p.received_at, p.processed_at, v.name, v.email
        FROM proposals p
        JOIN vendors v ON v.id = p.vendor_id
        WHERE p.processing_status = $1 AND p.archived = FALSE
        ORDER BY p.received_at ASC
    `
	return r.scanMany(ctx, query, status)
}

// UpdateStatus moves a proposal between processing states.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE proposals SET processing_status = $1 WHERE id = $2`, status, id)
	return err
}

// SaveResults persists the AI outputs of a completed run and stamps
// processed_at.
func (r *ProposalRepository) SaveResults(ctx context.Context, id int, structuredProposal, aiScores string) error {
	query := `
        UPDATE proposals
        SET structured_proposal = $1,
            ai_scores = $2,
            processing_status = $3,
            processed_at = NOW()
        WHERE id = $4
    `
	_, err := r.db.Exec(ctx, query, structuredProposal, aiScores, model.ProposalStatusCompleted, id)
	return err
}

// ArchiveByRFPID flags every active proposal of an RFP as archived and
// returns how many were affected.
func (r *ProposalRepository) ArchiveByRFPID(ctx context.Context, rfpID int) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE proposals SET archived = TRUE WHERE rfp_id = $1 AND archived = FALSE`, rfpID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Delete removes a proposal permanently.
func (r *ProposalRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ProposalRepository) scanOne(row rowScanner) (*model.Proposal, error) {
	var p model.Proposal
	var structured, scores []byte
	err := row.Scan(
		&p.ID,
		&p.RFPID,
		&p.VendorID,
		&p.RawEmailContent,
		&p.EmailSubject,
		&structured,
		&scores,
		&p.ProcessingStatus,
		&p.Archived,
		&p.ReceivedAt,
		&p.ProcessedAt,
		&p.VendorName,
		&p.VendorEmail,
	)
	if err != nil {
		return nil, err
	}
	p.StructuredProposal = structured
	p.AIScores = scores
	return &p, nil
}

func (r *ProposalRepository) scanMany(ctx context.Context, query string, args ...any) ([]model.Proposal, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := []model.Proposal{}
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}
